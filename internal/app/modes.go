package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Sudhir-Rajesh/ipl-pro-auction/internal/auction"
	"github.com/Sudhir-Rajesh/ipl-pro-auction/internal/auth"
	"github.com/Sudhir-Rajesh/ipl-pro-auction/internal/domain"
	"github.com/Sudhir-Rajesh/ipl-pro-auction/internal/roster"
	"github.com/Sudhir-Rajesh/ipl-pro-auction/internal/server"
	"github.com/Sudhir-Rajesh/ipl-pro-auction/internal/server/handler"
	"github.com/Sudhir-Rajesh/ipl-pro-auction/internal/server/ws"
	"github.com/Sudhir-Rajesh/ipl-pro-auction/internal/service"
)

// rules translates the auction section of the config into engine parameters.
func (a *App) rules() auction.Rules {
	teams := make([]domain.TeamID, 0, len(a.cfg.Auction.Teams))
	for _, t := range a.cfg.Auction.Teams {
		teams = append(teams, domain.TeamID(strings.TrimSpace(t)))
	}
	return auction.Rules{
		InitialBudget: a.cfg.Auction.InitialBudget,
		Increment:     a.cfg.Auction.BidIncrement,
		Teams:         teams,
		AutoResolve:   strings.EqualFold(a.cfg.Auction.Resolution, "auto"),
	}
}

// ServerMode loads the roster, builds the auction engine and services, and
// runs the HTTP + WebSocket server until the context is cancelled.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode")

	players, err := roster.Load(a.cfg.Roster.Path)
	if err != nil {
		return fmt.Errorf("server mode: load roster: %w", err)
	}
	a.logger.InfoContext(ctx, "roster loaded",
		slog.String("path", a.cfg.Roster.Path),
		slog.Int("players", len(players)),
	)

	rules := a.rules()
	engine := auction.NewEngine(players, rules)

	svc := service.NewAuctionService(
		engine,
		deps.ResultStore,
		deps.AuditStore,
		deps.SignalBus,
		deps.RateLimiter,
		a.cfg.Auction.BidRateLimit,
		a.logger,
	).WithNotifier(deps.Notifier)
	if deps.Archiver != nil {
		svc.WithArchiver(deps.Archiver)
	}

	authSvc := auth.NewService(deps.SessionStore, auth.Config{
		Teams:               rules.Teams,
		AdminUser:           a.cfg.Session.AdminUser,
		AdminPassword:       a.cfg.Session.AdminPassword,
		AdminPasswordBcrypt: a.cfg.Session.AdminPasswordBcrypt,
		SessionTTL:          a.cfg.Session.TTL.Duration,
	}, a.logger)

	hub := ws.NewHub(deps.SignalBus, a.logger, ws.Config{
		Mode:       a.cfg.Mode,
		Resolution: a.cfg.Auction.Resolution,
		StartedAt:  time.Now().UTC(),
	})

	handlers := server.Handlers{
		Health:  handler.NewHealthHandler(a.logger),
		Session: handler.NewSessionHandler(authSvc, a.logger),
		Auction: handler.NewAuctionHandler(svc, a.logger),
		Roster:  handler.NewRosterHandler(svc, a.logger),
		Teams:   handler.NewTeamHandler(svc, a.logger),
		Results: handler.NewResultHandler(svc, a.logger),
	}

	srv := server.NewServer(server.Config{
		Port:         a.cfg.Server.Port,
		CORSOrigins:  a.cfg.Server.CORSOrigins,
		APIRateLimit: a.cfg.Server.APIRateLimit,
	}, handlers, authSvc, deps.RateLimiter, hub, a.logger)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return hub.Run(ctx)
	})

	g.Go(func() error {
		return srv.Start()
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// ExportMode rebuilds the auction state from the persisted result log,
// uploads the archive to object storage, and exits.
func (a *App) ExportMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting export mode")

	if deps.Archiver == nil {
		return fmt.Errorf("export mode: s3 is not enabled")
	}

	players, err := roster.Load(a.cfg.Roster.Path)
	if err != nil {
		return fmt.Errorf("export mode: load roster: %w", err)
	}

	records, err := deps.ResultStore.List(ctx, domain.ListOpts{})
	if err != nil {
		return fmt.Errorf("export mode: list results: %w", err)
	}

	state := auction.Replay(players, a.rules(), records)

	if err := deps.Archiver.Archive(ctx, state, records); err != nil {
		return fmt.Errorf("export mode: %w", err)
	}

	a.logger.InfoContext(ctx, "export complete",
		slog.Int("results", len(records)),
		slog.Bool("auction_complete", state.Complete),
	)
	return nil
}
