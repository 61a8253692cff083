// Package service wires the auction engine to persistence, messaging, and
// notifications, and enforces role checks on every command.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Sudhir-Rajesh/ipl-pro-auction/internal/auction"
	"github.com/Sudhir-Rajesh/ipl-pro-auction/internal/domain"
)

// StateChannel is the pub/sub channel carrying state snapshots after every
// accepted command.
const StateChannel = "auction"

// Notifier delivers human-readable announcements for auction events.
type Notifier interface {
	Notify(ctx context.Context, event, title, message string) error
}

// Archiver uploads a completed auction's results to object storage.
type Archiver interface {
	Archive(ctx context.Context, state auction.State, results []domain.ResultRecord) error
}

// AuctionService is the single entry point for auction commands. It checks
// the caller's role, applies the command through the engine, and runs the
// side effects an accepted command implies: result log writes, audit entries,
// snapshot publication, and notifications.
type AuctionService struct {
	engine   *auction.Engine
	results  domain.ResultStore
	audit    domain.AuditStore
	bus      domain.SignalBus
	limiter  domain.RateLimiter
	notifier Notifier
	archiver Archiver
	// bidRate is the max raise/decline commands per team per second.
	// Zero disables the limiter.
	bidRate int
	logger  *slog.Logger
}

// NewAuctionService creates an AuctionService with all required dependencies.
func NewAuctionService(
	engine *auction.Engine,
	results domain.ResultStore,
	audit domain.AuditStore,
	bus domain.SignalBus,
	limiter domain.RateLimiter,
	bidRate int,
	logger *slog.Logger,
) *AuctionService {
	return &AuctionService{
		engine:  engine,
		results: results,
		audit:   audit,
		bus:     bus,
		limiter: limiter,
		bidRate: bidRate,
		logger:  logger,
	}
}

// WithNotifier attaches a notifier for sold/unsold/completion announcements.
// Without one, announcements are skipped.
func (s *AuctionService) WithNotifier(n Notifier) *AuctionService {
	s.notifier = n
	return s
}

// WithArchiver attaches an archiver invoked once the roster is exhausted.
// Without one, completed auctions are not exported.
func (s *AuctionService) WithArchiver(a Archiver) *AuctionService {
	s.archiver = a
	return s
}

// Snapshot returns the current auction state. Available to every
// authenticated caller.
func (s *AuctionService) Snapshot() auction.State {
	return s.engine.Snapshot()
}

// Roster returns the full roster in auction order.
func (s *AuctionService) Roster() []domain.Player {
	return s.engine.Roster()
}

// Rules returns the fixed auction parameters.
func (s *AuctionService) Rules() auction.Rules {
	return s.engine.Rules()
}

// RaiseBid places a bid for the caller's team at the next increment.
func (s *AuctionService) RaiseBid(ctx context.Context, role domain.Role) (auction.State, error) {
	team, err := s.teamFor(role)
	if err != nil {
		return s.engine.Snapshot(), err
	}
	if err := s.allowBid(ctx, team); err != nil {
		return s.engine.Snapshot(), err
	}
	return s.do(ctx, auction.RaiseBid(team))
}

// Decline opts the caller's team out of the current player. Only valid when
// the auction runs with auto-resolution.
func (s *AuctionService) Decline(ctx context.Context, role domain.Role) (auction.State, error) {
	team, err := s.teamFor(role)
	if err != nil {
		return s.engine.Snapshot(), err
	}
	if err := s.allowBid(ctx, team); err != nil {
		return s.engine.Snapshot(), err
	}
	return s.do(ctx, auction.Decline(team))
}

// Start begins or resumes the auction. Admin only.
func (s *AuctionService) Start(ctx context.Context, role domain.Role) (auction.State, error) {
	if err := s.requireAdmin(role); err != nil {
		return s.engine.Snapshot(), err
	}
	return s.do(ctx, auction.Start())
}

// Pause suspends item commands without losing any state. Admin only.
func (s *AuctionService) Pause(ctx context.Context, role domain.Role) (auction.State, error) {
	if err := s.requireAdmin(role); err != nil {
		return s.engine.Snapshot(), err
	}
	return s.do(ctx, auction.Pause())
}

// Reset restores the initial state and clears the result log. Admin only.
func (s *AuctionService) Reset(ctx context.Context, role domain.Role) (auction.State, error) {
	if err := s.requireAdmin(role); err != nil {
		return s.engine.Snapshot(), err
	}
	return s.do(ctx, auction.Reset())
}

// FinalizeSale sells the current player to the leading team. Admin only.
func (s *AuctionService) FinalizeSale(ctx context.Context, role domain.Role) (auction.State, error) {
	if err := s.requireAdmin(role); err != nil {
		return s.engine.Snapshot(), err
	}
	return s.do(ctx, auction.FinalizeSale())
}

// ForceSale closes the current player immediately: sold to the leader when
// one exists, unsold otherwise. Admin only.
func (s *AuctionService) ForceSale(ctx context.Context, role domain.Role) (auction.State, error) {
	if err := s.requireAdmin(role); err != nil {
		return s.engine.Snapshot(), err
	}
	return s.do(ctx, auction.ForceSale())
}

// MarkUnsold passes the current player without a sale. Admin only.
func (s *AuctionService) MarkUnsold(ctx context.Context, role domain.Role) (auction.State, error) {
	if err := s.requireAdmin(role); err != nil {
		return s.engine.Snapshot(), err
	}
	return s.do(ctx, auction.MarkUnsold())
}

// Results lists the persisted result log.
func (s *AuctionService) Results(ctx context.Context, opts domain.ListOpts) ([]domain.ResultRecord, error) {
	records, err := s.results.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("auction_service: list results: %w", err)
	}
	return records, nil
}

// AuditLog lists audit entries. Admin only.
func (s *AuctionService) AuditLog(ctx context.Context, role domain.Role, opts domain.ListOpts) ([]domain.AuditEntry, error) {
	if err := s.requireAdmin(role); err != nil {
		return nil, err
	}
	entries, err := s.audit.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("auction_service: list audit: %w", err)
	}
	return entries, nil
}

// Archive exports the current state and result log to object storage. Used
// by export mode and by the completion hook.
func (s *AuctionService) Archive(ctx context.Context) error {
	if s.archiver == nil {
		return fmt.Errorf("auction_service: no archiver configured")
	}
	records, err := s.results.List(ctx, domain.ListOpts{})
	if err != nil {
		return fmt.Errorf("auction_service: archive list results: %w", err)
	}
	if err := s.archiver.Archive(ctx, s.engine.Snapshot(), records); err != nil {
		return fmt.Errorf("auction_service: archive: %w", err)
	}
	return nil
}

func (s *AuctionService) teamFor(role domain.Role) (domain.TeamID, error) {
	if role.Kind != domain.RoleKindTeam || role.Team == "" {
		return "", domain.ErrForbidden
	}
	return role.Team, nil
}

func (s *AuctionService) requireAdmin(role domain.Role) error {
	if !role.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}

func (s *AuctionService) allowBid(ctx context.Context, team domain.TeamID) error {
	if s.bidRate <= 0 || s.limiter == nil {
		return nil
	}
	allowed, err := s.limiter.Allow(ctx, "bid:"+string(team), s.bidRate, time.Second)
	if err != nil {
		return fmt.Errorf("auction_service: rate limiter: %w", err)
	}
	if !allowed {
		return domain.ErrRateLimited
	}
	return nil
}

// do applies the command and runs the side effects for the resulting event.
// Result log writes are required to succeed; audit, publish, and notify
// failures are logged and swallowed so a flaky side channel cannot wedge the
// floor.
func (s *AuctionService) do(ctx context.Context, cmd auction.Command) (auction.State, error) {
	state, ev, err := s.engine.Do(cmd)
	if err != nil {
		return state, err
	}

	if err := s.record(ctx, ev); err != nil {
		return state, err
	}

	s.auditEvent(ctx, cmd, ev, state)
	s.publish(ctx, state)
	s.announce(ctx, ev)

	if state.Complete && ev.Kind != auction.EventReset {
		s.onComplete(ctx, state)
	}

	s.logger.InfoContext(ctx, "auction_service: command applied",
		slog.String("command", string(cmd.Kind)),
		slog.String("event", string(ev.Kind)),
		slog.Int64("version", state.Version),
	)
	return state, nil
}

// record persists the durable consequences of an event: sold and unsold both
// append to the result log, reset clears it.
func (s *AuctionService) record(ctx context.Context, ev auction.Event) error {
	switch ev.Kind {
	case auction.EventSold:
		rec := domain.ResultRecord{
			Team:   string(ev.Team),
			Player: ev.Player,
			Price:  ev.Price,
		}
		if err := s.results.Append(ctx, rec); err != nil {
			return fmt.Errorf("auction_service: record sale: %w", err)
		}
	case auction.EventUnsold:
		rec := domain.ResultRecord{
			Team:   domain.UnsoldTeam,
			Player: ev.Player,
		}
		if err := s.results.Append(ctx, rec); err != nil {
			return fmt.Errorf("auction_service: record unsold: %w", err)
		}
	case auction.EventReset:
		if err := s.results.Clear(ctx); err != nil {
			return fmt.Errorf("auction_service: clear results: %w", err)
		}
	}
	return nil
}

func (s *AuctionService) auditEvent(ctx context.Context, cmd auction.Command, ev auction.Event, state auction.State) {
	detail := map[string]any{
		"command": string(cmd.Kind),
		"event":   string(ev.Kind),
		"version": state.Version,
	}
	if cmd.Team != "" {
		detail["team"] = string(cmd.Team)
	}
	if ev.Player != "" {
		detail["player"] = ev.Player
	}
	if ev.Kind == auction.EventSold {
		detail["price"] = ev.Price
		detail["auto"] = ev.Auto
	}
	if err := s.audit.Log(ctx, string(ev.Kind), detail); err != nil {
		s.logger.WarnContext(ctx, "auction_service: audit log failed",
			slog.String("event", string(ev.Kind)),
			slog.String("error", err.Error()),
		)
	}
}

func (s *AuctionService) publish(ctx context.Context, state auction.State) {
	payload, err := json.Marshal(state)
	if err != nil {
		s.logger.WarnContext(ctx, "auction_service: marshal snapshot failed",
			slog.String("error", err.Error()),
		)
		return
	}
	if err := s.bus.Publish(ctx, StateChannel, payload); err != nil {
		s.logger.WarnContext(ctx, "auction_service: publish snapshot failed",
			slog.String("error", err.Error()),
		)
	}
}

func (s *AuctionService) announce(ctx context.Context, ev auction.Event) {
	if s.notifier == nil {
		return
	}

	var event, title, message string
	switch ev.Kind {
	case auction.EventSold:
		event = "sold"
		title = "SOLD"
		message = fmt.Sprintf("%s to %s for %d", ev.Player, ev.Team, ev.Price)
	case auction.EventUnsold:
		event = "unsold"
		title = "UNSOLD"
		message = fmt.Sprintf("%s went unsold", ev.Player)
	default:
		return
	}

	if err := s.notifier.Notify(ctx, event, title, message); err != nil {
		s.logger.WarnContext(ctx, "auction_service: notify failed",
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
	}
}

// onComplete runs once the last roster entry has been resolved.
func (s *AuctionService) onComplete(ctx context.Context, state auction.State) {
	s.logger.InfoContext(ctx, "auction_service: roster exhausted",
		slog.Int64("version", state.Version),
		slog.Int("unsold", len(state.Unsold)),
	)

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, "auction_complete", "Auction complete",
			fmt.Sprintf("All players resolved; %d went unsold", len(state.Unsold)),
		); err != nil {
			s.logger.WarnContext(ctx, "auction_service: completion notify failed",
				slog.String("error", err.Error()),
			)
		}
	}

	if s.archiver != nil {
		if err := s.Archive(ctx); err != nil {
			s.logger.ErrorContext(ctx, "auction_service: completion archive failed",
				slog.String("error", err.Error()),
			)
		}
	}
}
