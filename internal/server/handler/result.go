package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Sudhir-Rajesh/ipl-pro-auction/internal/domain"
	"github.com/Sudhir-Rajesh/ipl-pro-auction/internal/server/middleware"
)

// ResultLister is the slice of the auction service the result handler needs.
type ResultLister interface {
	Results(ctx context.Context, opts domain.ListOpts) ([]domain.ResultRecord, error)
	AuditLog(ctx context.Context, role domain.Role, opts domain.ListOpts) ([]domain.AuditEntry, error)
}

// ResultHandler serves the persisted result log and the audit log.
type ResultHandler struct {
	svc    ResultLister
	logger *slog.Logger
}

// NewResultHandler creates a ResultHandler backed by the given lister.
func NewResultHandler(svc ResultLister, logger *slog.Logger) *ResultHandler {
	return &ResultHandler{
		svc:    svc,
		logger: logHandler(logger, "result"),
	}
}

// ListResults returns the result log in hammer order.
// GET /api/results
func (h *ResultHandler) ListResults(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.Results(r.Context(), parseListOpts(r))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list results failed",
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}
	if records == nil {
		records = []domain.ResultRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": records,
		"count":   len(records),
	})
}

// ListAudit returns audit entries. Admin only; the service enforces the role.
// GET /api/audit
func (h *ResultHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	role := middleware.RoleFrom(r.Context())
	entries, err := h.svc.AuditLog(r.Context(), role, parseListOpts(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}
