package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Sudhir-Rajesh/ipl-pro-auction/internal/domain"
	"github.com/Sudhir-Rajesh/ipl-pro-auction/internal/server/middleware"
)

// Authenticator is the slice of the auth service the session handler needs.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (domain.Session, error)
	Logout(ctx context.Context, token string) error
}

// SessionHandler serves login and logout.
type SessionHandler struct {
	auth   Authenticator
	logger *slog.Logger
}

// NewSessionHandler creates a SessionHandler backed by the given authenticator.
func NewSessionHandler(auth Authenticator, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		auth:   auth,
		logger: logHandler(logger, "session"),
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges a username/password pair for a bearer token.
// POST /api/session
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}

	session, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"token":    session.Token,
		"username": session.Username,
		"role":     session.Role,
	})
}

// Logout invalidates the caller's own session.
// DELETE /api/session
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.auth.Logout(r.Context(), session.Token); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
