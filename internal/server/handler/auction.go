package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Sudhir-Rajesh/ipl-pro-auction/internal/auction"
	"github.com/Sudhir-Rajesh/ipl-pro-auction/internal/domain"
	"github.com/Sudhir-Rajesh/ipl-pro-auction/internal/server/middleware"
)

// Commander is the slice of the auction service the auction handler needs.
// Role checks happen inside the service; the handler only carries the
// authenticated role across.
type Commander interface {
	Snapshot() auction.State
	RaiseBid(ctx context.Context, role domain.Role) (auction.State, error)
	Decline(ctx context.Context, role domain.Role) (auction.State, error)
	Start(ctx context.Context, role domain.Role) (auction.State, error)
	Pause(ctx context.Context, role domain.Role) (auction.State, error)
	Reset(ctx context.Context, role domain.Role) (auction.State, error)
	FinalizeSale(ctx context.Context, role domain.Role) (auction.State, error)
	ForceSale(ctx context.Context, role domain.Role) (auction.State, error)
	MarkUnsold(ctx context.Context, role domain.Role) (auction.State, error)
}

// AuctionHandler serves the auction state and command endpoints.
type AuctionHandler struct {
	svc    Commander
	logger *slog.Logger
}

// NewAuctionHandler creates an AuctionHandler backed by the given commander.
func NewAuctionHandler(svc Commander, logger *slog.Logger) *AuctionHandler {
	return &AuctionHandler{
		svc:    svc,
		logger: logHandler(logger, "auction"),
	}
}

// GetState returns the current auction snapshot.
// GET /api/auction
func (h *AuctionHandler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Snapshot())
}

type commandFunc func(ctx context.Context, role domain.Role) (auction.State, error)

// command runs one auction command for the authenticated role and writes the
// resulting snapshot.
func (h *AuctionHandler) command(w http.ResponseWriter, r *http.Request, fn commandFunc) {
	role := middleware.RoleFrom(r.Context())
	state, err := fn(r.Context(), role)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// Bid raises the bid for the caller's team.
// POST /api/auction/bid
func (h *AuctionHandler) Bid(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, h.svc.RaiseBid)
}

// Decline opts the caller's team out of the current player.
// POST /api/auction/decline
func (h *AuctionHandler) Decline(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, h.svc.Decline)
}

// Start begins or resumes the auction.
// POST /api/auction/start
func (h *AuctionHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, h.svc.Start)
}

// Pause suspends the auction.
// POST /api/auction/pause
func (h *AuctionHandler) Pause(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, h.svc.Pause)
}

// Reset restores the initial state and clears the result log.
// POST /api/auction/reset
func (h *AuctionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, h.svc.Reset)
}

// Finalize sells the current player to the leading team.
// POST /api/auction/finalize
func (h *AuctionHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, h.svc.FinalizeSale)
}

// ForceSale closes the current player immediately.
// POST /api/auction/force-sale
func (h *AuctionHandler) ForceSale(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, h.svc.ForceSale)
}

// Unsold passes the current player without a sale.
// POST /api/auction/unsold
func (h *AuctionHandler) Unsold(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, h.svc.MarkUnsold)
}
