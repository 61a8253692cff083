package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Sudhir-Rajesh/ipl-pro-auction/internal/auction"
	"github.com/Sudhir-Rajesh/ipl-pro-auction/internal/domain"
)

// ArchiveImpl exports a finished auction to object storage: the result log as
// JSONL and the final state snapshot as JSON, partitioned by date. Records are
// never deleted from the primary store; the archive is a copy.
type ArchiveImpl struct {
	writer domain.BlobWriter
	audit  domain.AuditStore
	// now is swappable in tests.
	now func() time.Time
}

// NewArchiver creates a new ArchiveImpl.
func NewArchiver(writer domain.BlobWriter, audit domain.AuditStore) *ArchiveImpl {
	return &ArchiveImpl{
		writer: writer,
		audit:  audit,
		now:    time.Now,
	}
}

// Archive uploads the result log and the state snapshot, then records the
// export in the audit log.
//
//	auctions/2026-08-31/results.jsonl
//	auctions/2026-08-31/state.json
func (a *ArchiveImpl) Archive(ctx context.Context, state auction.State, results []domain.ResultRecord) error {
	day := a.now().UTC().Format("2006-01-02")

	resultsBuf, err := marshalJSONL(results)
	if err != nil {
		return fmt.Errorf("s3blob: archive results marshal: %w", err)
	}
	resultsPath := fmt.Sprintf("auctions/%s/results.jsonl", day)
	if err := a.writer.Put(ctx, resultsPath, bytes.NewReader(resultsBuf), "application/x-ndjson"); err != nil {
		return fmt.Errorf("s3blob: archive results upload: %w", err)
	}

	stateBuf, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("s3blob: archive state marshal: %w", err)
	}
	statePath := fmt.Sprintf("auctions/%s/state.json", day)
	if err := a.writer.Put(ctx, statePath, bytes.NewReader(stateBuf), "application/json"); err != nil {
		return fmt.Errorf("s3blob: archive state upload: %w", err)
	}

	if err := a.audit.Log(ctx, "archive.auction", map[string]any{
		"results_path": resultsPath,
		"state_path":   statePath,
		"count":        len(results),
		"version":      state.Version,
	}); err != nil {
		return fmt.Errorf("s3blob: archive audit log: %w", err)
	}

	return nil
}

// marshalJSONL serialises a slice of values as newline-delimited JSON (JSONL).
// Each element is marshalled as a single compact JSON line followed by '\n'.
func marshalJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}
