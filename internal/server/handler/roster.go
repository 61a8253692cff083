package handler

import (
	"log/slog"
	"net/http"

	"github.com/Sudhir-Rajesh/ipl-pro-auction/internal/domain"
	"github.com/Sudhir-Rajesh/ipl-pro-auction/internal/roster"
)

// RosterProvider exposes the loaded roster.
type RosterProvider interface {
	Roster() []domain.Player
}

// RosterHandler serves the player roster with an optional role filter. The
// filter changes only what is displayed, never the auction order.
type RosterHandler struct {
	svc    RosterProvider
	logger *slog.Logger
}

// NewRosterHandler creates a RosterHandler backed by the given provider.
func NewRosterHandler(svc RosterProvider, logger *slog.Logger) *RosterHandler {
	return &RosterHandler{
		svc:    svc,
		logger: logHandler(logger, "roster"),
	}
}

// ListRoster returns the roster, optionally filtered by ?role=.
// GET /api/roster
func (h *RosterHandler) ListRoster(w http.ResponseWriter, r *http.Request) {
	players := h.svc.Roster()
	role := r.URL.Query().Get("role")

	writeJSON(w, http.StatusOK, map[string]any{
		"players": roster.Filter(players, role),
		"roles":   roster.Roles(players),
		"total":   len(players),
	})
}
