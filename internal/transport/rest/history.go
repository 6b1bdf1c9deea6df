package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/expense-ledger/internal/domain"
)

type historyService interface {
	Budget(ctx context.Context, id int64) ([]domain.AuditRecord, error)
	Reimbursement(ctx context.Context, id int64) ([]domain.AuditRecord, error)
}

// HistoryHandler serves the audit trail of a single record.
type HistoryHandler struct {
	svc     historyService
	present *Presenter
	log     *slog.Logger
}

// NewHistoryHandler creates a HistoryHandler.
func NewHistoryHandler(svc historyService, present *Presenter, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{svc: svc, present: present, log: logger.With("handler", "history")}
}

// Budget handles GET /api/budgets/{id}/history.
func (h *HistoryHandler) Budget(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.svc.Budget)
}

// Reimbursement handles GET /api/reimbursements/{id}/history.
func (h *HistoryHandler) Reimbursement(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.svc.Reimbursement)
}

func (h *HistoryHandler) serve(w http.ResponseWriter, r *http.Request, fetch func(context.Context, int64) ([]domain.AuditRecord, error)) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	entries, err := fetch(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, h.present.auditTrail(entries))
}
