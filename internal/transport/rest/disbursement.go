package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/expense-ledger/internal/domain"
)

type disbursementService interface {
	ListAll(ctx context.Context, f domain.Filter) ([]domain.Disbursement, error)
	ListMine(ctx context.Context, f domain.Filter) ([]domain.Disbursement, error)
	Export(ctx context.Context, f domain.Filter) ([]domain.Disbursement, error)
}

// DisbursementHandler serves the read-only payout ledger.
type DisbursementHandler struct {
	svc     disbursementService
	render  reportRenderer
	present *Presenter
	log     *slog.Logger
}

// NewDisbursementHandler creates a DisbursementHandler.
func NewDisbursementHandler(svc disbursementService, render reportRenderer, present *Presenter, logger *slog.Logger) *DisbursementHandler {
	return &DisbursementHandler{svc: svc, render: render, present: present, log: logger.With("handler", "disbursement")}
}

// ListAll handles GET /api/disbursements.
func (h *DisbursementHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.svc.ListAll)
}

// ListMine handles GET /api/disbursements/me.
func (h *DisbursementHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.svc.ListMine)
}

func (h *DisbursementHandler) list(w http.ResponseWriter, r *http.Request, fetch func(context.Context, domain.Filter) ([]domain.Disbursement, error)) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	rows, err := fetch(r.Context(), f)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, h.present.disbursements(rows))
}

// Export handles GET /api/disbursements/export. An empty selection still
// yields a workbook holding only the header and total rows.
func (h *DisbursementHandler) Export(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	rows, err := h.svc.Export(r.Context(), f)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	filename := "disbursements.xlsx"
	if f.Period != "" {
		filename = "disbursements_" + f.Period + ".xlsx"
	}
	writeReport(w, r, h.log, h.render, filename, h.present.disbursementSheet(rows))
}
