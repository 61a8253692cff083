// Package server assembles the HTTP + WebSocket API for the auction.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Sudhir-Rajesh/ipl-pro-auction/internal/domain"
	"github.com/Sudhir-Rajesh/ipl-pro-auction/internal/server/handler"
	"github.com/Sudhir-Rajesh/ipl-pro-auction/internal/server/middleware"
	"github.com/Sudhir-Rajesh/ipl-pro-auction/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	// APIRateLimit is the max requests per second per client IP. Zero
	// disables the per-IP limiter.
	APIRateLimit int
}

// Handlers aggregates all HTTP handlers that the server needs to register.
type Handlers struct {
	Health  *handler.HealthHandler
	Session *handler.SessionHandler
	Auction *handler.AuctionHandler
	Roster  *handler.RosterHandler
	Teams   *handler.TeamHandler
	Results *handler.ResultHandler
}

// Server is the headless HTTP + WebSocket API server for the auction.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates a new Server with all routes registered on the ServeMux.
// It wires up middleware (CORS, logging, rate limiting, auth) and attaches
// the WebSocket hub. The limiter may be nil when APIRateLimit is zero.
func NewServer(
	cfg Config,
	handlers Handlers,
	resolver middleware.SessionResolver,
	limiter domain.RateLimiter,
	wsHub *ws.Hub,
	logger *slog.Logger,
) *Server {
	mux := http.NewServeMux()

	// --- Register routes ---

	// Health check (no auth required).
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Session endpoints. Login is open; logout needs the session itself.
	mux.HandleFunc("POST /api/session", handlers.Session.Login)
	mux.HandleFunc("DELETE /api/session", handlers.Session.Logout)

	// Auction state and commands.
	mux.HandleFunc("GET /api/auction", handlers.Auction.GetState)
	mux.HandleFunc("POST /api/auction/bid", handlers.Auction.Bid)
	mux.HandleFunc("POST /api/auction/decline", handlers.Auction.Decline)
	mux.HandleFunc("POST /api/auction/start", handlers.Auction.Start)
	mux.HandleFunc("POST /api/auction/pause", handlers.Auction.Pause)
	mux.HandleFunc("POST /api/auction/reset", handlers.Auction.Reset)
	mux.HandleFunc("POST /api/auction/finalize", handlers.Auction.Finalize)
	mux.HandleFunc("POST /api/auction/force-sale", handlers.Auction.ForceSale)
	mux.HandleFunc("POST /api/auction/unsold", handlers.Auction.Unsold)

	// Roster, team ledgers, and the result log.
	mux.HandleFunc("GET /api/roster", handlers.Roster.ListRoster)
	mux.HandleFunc("GET /api/teams", handlers.Teams.ListTeams)
	mux.HandleFunc("GET /api/teams/{id}", handlers.Teams.GetTeam)
	mux.HandleFunc("GET /api/results", handlers.Results.ListResults)
	mux.HandleFunc("GET /api/audit", handlers.Results.ListAudit)

	// WebSocket endpoint.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	// Build the middleware chain.
	var h http.Handler = mux

	h = middleware.Auth(resolver)(h)

	if cfg.APIRateLimit > 0 && limiter != nil {
		h = middleware.RateLimit(limiter, cfg.APIRateLimit, time.Second)(h)
	}

	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
