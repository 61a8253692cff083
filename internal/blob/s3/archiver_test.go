package s3blob

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/Sudhir-Rajesh/ipl-pro-auction/internal/auction"
	"github.com/Sudhir-Rajesh/ipl-pro-auction/internal/domain"
)

type memWriter struct {
	objects map[string][]byte
	types   map[string]string
}

func newMemWriter() *memWriter {
	return &memWriter{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (w *memWriter) Put(_ context.Context, path string, data io.Reader, contentType string) error {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(data); err != nil {
		return err
	}
	w.objects[path] = buf.Bytes()
	w.types[path] = contentType
	return nil
}

type memAudit struct {
	events []string
}

func (m *memAudit) Log(_ context.Context, event string, _ map[string]any) error {
	m.events = append(m.events, event)
	return nil
}

func (m *memAudit) List(_ context.Context, _ domain.ListOpts) ([]domain.AuditEntry, error) {
	return nil, nil
}

func TestArchiveUploadsResultsAndState(t *testing.T) {
	writer := newMemWriter()
	audit := &memAudit{}

	a := NewArchiver(writer, audit)
	a.now = func() time.Time {
		return time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	}

	state := auction.State{Version: 42, Status: domain.StatusStopped, Complete: true}
	results := []domain.ResultRecord{
		{ID: 1, Team: "CSK", Player: "V Kohli", Price: 2_500_000},
		{ID: 2, Team: domain.UnsoldTeam, Player: "A Nortje"},
	}

	assert.NoError(t, a.Archive(context.Background(), state, results))

	jsonl, ok := writer.objects["auctions/2026-03-14/results.jsonl"]
	assert.True(t, ok)
	lines := strings.Split(strings.TrimSpace(string(jsonl)), "\n")
	check.Equal(t, 2, len(lines))
	check.True(t, strings.Contains(lines[0], `"V Kohli"`))
	check.Equal(t, "application/x-ndjson", writer.types["auctions/2026-03-14/results.jsonl"])

	snapshot, ok := writer.objects["auctions/2026-03-14/state.json"]
	assert.True(t, ok)
	check.True(t, strings.Contains(string(snapshot), `"version": 42`))

	check.Equal(t, []string{"archive.auction"}, audit.events)
}

func TestArchiveEmptyResultLog(t *testing.T) {
	writer := newMemWriter()
	a := NewArchiver(writer, &memAudit{})

	err := a.Archive(context.Background(), auction.State{}, nil)
	assert.NoError(t, err)

	// Both objects are still written so a completed-but-empty run is visible.
	check.Equal(t, 2, len(writer.objects))
}
