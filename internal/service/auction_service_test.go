package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/Sudhir-Rajesh/ipl-pro-auction/internal/auction"
	"github.com/Sudhir-Rajesh/ipl-pro-auction/internal/domain"
)

// --- fakes -----------------------------------------------------------------

type memResults struct {
	mu      sync.Mutex
	records []domain.ResultRecord
	cleared int
}

func (m *memResults) Append(_ context.Context, rec domain.ResultRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.ID = int64(len(m.records) + 1)
	rec.CreatedAt = time.Now().UTC()
	m.records = append(m.records, rec)
	return nil
}

func (m *memResults) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = nil
	m.cleared++
	return nil
}

func (m *memResults) List(_ context.Context, _ domain.ListOpts) ([]domain.ResultRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ResultRecord(nil), m.records...), nil
}

func (m *memResults) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.records)), nil
}

type memAudit struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

func (m *memAudit) Log(_ context.Context, event string, detail map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, domain.AuditEntry{Event: event, Detail: detail})
	return nil
}

func (m *memAudit) List(_ context.Context, _ domain.ListOpts) ([]domain.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.AuditEntry(nil), m.entries...), nil
}

type memBus struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (m *memBus) Publish(_ context.Context, _ string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payloads = append(m.payloads, payload)
	return nil
}

func (m *memBus) Subscribe(_ context.Context, _ string) (<-chan []byte, error) {
	ch := make(chan []byte)
	close(ch)
	return ch, nil
}

func (m *memBus) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.payloads)
}

type stubLimiter struct {
	allow bool
}

func (l *stubLimiter) Allow(_ context.Context, _ string, _ int, _ time.Duration) (bool, error) {
	return l.allow, nil
}

type memNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *memNotifier) Notify(_ context.Context, event, _, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

type memArchiver struct {
	mu    sync.Mutex
	calls int
	last  []domain.ResultRecord
}

func (a *memArchiver) Archive(_ context.Context, _ auction.State, results []domain.ResultRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	a.last = results
	return nil
}

// --- helpers ---------------------------------------------------------------

type fixture struct {
	svc      *AuctionService
	results  *memResults
	audit    *memAudit
	bus      *memBus
	notifier *memNotifier
	archiver *memArchiver
}

func newFixture(t *testing.T, autoResolve bool) *fixture {
	t.Helper()

	roster := []domain.Player{
		{Name: "V Kohli", Role: "Batsman", BasePrice: 2_000_000},
		{Name: "J Bumrah", Role: "Bowler", BasePrice: 2_000_000},
	}
	rules := auction.Rules{
		InitialBudget: 10_000_000,
		Increment:     5_000,
		Teams:         []domain.TeamID{"CSK", "MI", "RCB"},
		AutoResolve:   autoResolve,
	}

	f := &fixture{
		results:  &memResults{},
		audit:    &memAudit{},
		bus:      &memBus{},
		notifier: &memNotifier{},
		archiver: &memArchiver{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = NewAuctionService(
		auction.NewEngine(roster, rules),
		f.results, f.audit, f.bus, nil, 0, logger,
	).WithNotifier(f.notifier).WithArchiver(f.archiver)
	return f
}

var (
	admin = domain.AdminRole()
	csk   = domain.TeamRole("CSK")
	mi    = domain.TeamRole("MI")
	rcb   = domain.TeamRole("RCB")
)

// --- tests -----------------------------------------------------------------

func TestAdminCommandsForbiddenForTeams(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, csk)
	check.True(t, errors.Is(err, domain.ErrForbidden))
	_, err = f.svc.FinalizeSale(ctx, csk)
	check.True(t, errors.Is(err, domain.ErrForbidden))
	_, err = f.svc.Reset(ctx, csk)
	check.True(t, errors.Is(err, domain.ErrForbidden))

	// Rejected commands publish nothing.
	check.Equal(t, 0, f.bus.count())
}

func TestTeamCommandsForbiddenForAdmin(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.RaiseBid(ctx, admin)
	check.True(t, errors.Is(err, domain.ErrForbidden))
	_, err = f.svc.Decline(ctx, admin)
	check.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestSaleAppendsResultAndNotifies(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, admin)
	assert.NoError(t, err)
	_, err = f.svc.RaiseBid(ctx, csk)
	assert.NoError(t, err)
	state, err := f.svc.FinalizeSale(ctx, admin)
	assert.NoError(t, err)

	records, err := f.results.List(ctx, domain.ListOpts{})
	assert.NoError(t, err)
	assert.Equal(t, 1, len(records))
	check.Equal(t, "CSK", records[0].Team)
	check.Equal(t, "V Kohli", records[0].Player)
	// A first raise lands one increment above the base price.
	check.Equal(t, int64(2_005_000), records[0].Price)

	check.Equal(t, []string{"sold"}, f.notifier.events)
	check.Equal(t, "J Bumrah", state.Current.Name)
}

func TestUnsoldAppendsSentinelRow(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, admin)
	assert.NoError(t, err)
	_, err = f.svc.MarkUnsold(ctx, admin)
	assert.NoError(t, err)

	records, err := f.results.List(ctx, domain.ListOpts{})
	assert.NoError(t, err)
	assert.Equal(t, 1, len(records))
	check.Equal(t, domain.UnsoldTeam, records[0].Team)
	check.Equal(t, int64(0), records[0].Price)
}

func TestResetClearsResultLog(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, admin)
	assert.NoError(t, err)
	_, err = f.svc.RaiseBid(ctx, csk)
	assert.NoError(t, err)
	_, err = f.svc.FinalizeSale(ctx, admin)
	assert.NoError(t, err)

	state, err := f.svc.Reset(ctx, admin)
	assert.NoError(t, err)

	check.Equal(t, 1, f.results.cleared)
	n, err := f.results.Count(ctx)
	assert.NoError(t, err)
	check.Equal(t, int64(0), n)
	check.Equal(t, domain.StatusStopped, state.Status)
}

func TestEveryAcceptedCommandPublishesSnapshot(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, admin)
	assert.NoError(t, err)
	_, err = f.svc.RaiseBid(ctx, csk)
	assert.NoError(t, err)
	_, err = f.svc.RaiseBid(ctx, mi)
	assert.NoError(t, err)
	check.Equal(t, 3, f.bus.count())

	// A rejected bid publishes nothing further.
	_, err = f.svc.RaiseBid(ctx, mi)
	check.True(t, errors.Is(err, domain.ErrInvalidBid))
	check.Equal(t, 3, f.bus.count())
}

func TestRateLimitedBidRejected(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	f.svc.limiter = &stubLimiter{allow: false}
	f.svc.bidRate = 5

	_, err := f.svc.Start(ctx, admin)
	assert.NoError(t, err)

	before := f.svc.Snapshot().Version
	_, err = f.svc.RaiseBid(ctx, csk)
	check.True(t, errors.Is(err, domain.ErrRateLimited))
	check.Equal(t, before, f.svc.Snapshot().Version)
}

func TestCompletionArchivesAndNotifies(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, admin)
	assert.NoError(t, err)
	_, err = f.svc.RaiseBid(ctx, csk)
	assert.NoError(t, err)
	_, err = f.svc.FinalizeSale(ctx, admin)
	assert.NoError(t, err)
	state, err := f.svc.MarkUnsold(ctx, admin)
	assert.NoError(t, err)

	check.True(t, state.Complete)
	check.Equal(t, 1, f.archiver.calls)
	check.Equal(t, 2, len(f.archiver.last))
	check.Equal(t, []string{"sold", "unsold", "auction_complete"}, f.notifier.events)
}

func TestAutoResolutionRecordsAutoSale(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, admin)
	assert.NoError(t, err)
	_, err = f.svc.RaiseBid(ctx, csk)
	assert.NoError(t, err)
	_, err = f.svc.Decline(ctx, mi)
	assert.NoError(t, err)
	state, err := f.svc.Decline(ctx, rcb)
	assert.NoError(t, err)

	// The last decline closed the floor and sold to the leader.
	records, err := f.results.List(ctx, domain.ListOpts{})
	assert.NoError(t, err)
	assert.Equal(t, 1, len(records))
	check.Equal(t, "CSK", records[0].Team)
	check.Equal(t, "J Bumrah", state.Current.Name)
}

func TestAuditLogAdminOnly(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, admin)
	assert.NoError(t, err)

	_, err = f.svc.AuditLog(ctx, csk, domain.ListOpts{})
	check.True(t, errors.Is(err, domain.ErrForbidden))

	entries, err := f.svc.AuditLog(ctx, admin, domain.ListOpts{})
	assert.NoError(t, err)
	assert.Equal(t, 1, len(entries))
	check.Equal(t, string(auction.EventStatusChanged), entries[0].Event)
}
