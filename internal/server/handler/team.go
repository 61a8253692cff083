package handler

import (
	"log/slog"
	"net/http"

	"github.com/Sudhir-Rajesh/ipl-pro-auction/internal/auction"
	"github.com/Sudhir-Rajesh/ipl-pro-auction/internal/domain"
)

// StateProvider exposes the current auction snapshot.
type StateProvider interface {
	Snapshot() auction.State
}

// TeamHandler serves the per-team ledgers.
type TeamHandler struct {
	svc    StateProvider
	logger *slog.Logger
}

// NewTeamHandler creates a TeamHandler backed by the given provider.
func NewTeamHandler(svc StateProvider, logger *slog.Logger) *TeamHandler {
	return &TeamHandler{
		svc:    svc,
		logger: logHandler(logger, "team"),
	}
}

// ListTeams returns every team ledger.
// GET /api/teams
func (h *TeamHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	state := h.svc.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"teams": state.Teams,
	})
}

// GetTeam returns one team's ledger by id.
// GET /api/teams/{id}
func (h *TeamHandler) GetTeam(w http.ResponseWriter, r *http.Request) {
	id := domain.TeamID(r.PathValue("id"))
	state := h.svc.Snapshot()

	team, ok := state.Team(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown team")
		return
	}
	writeJSON(w, http.StatusOK, team)
}
