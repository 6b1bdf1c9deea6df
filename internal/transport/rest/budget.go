package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/expense-ledger/internal/domain"
	"github.com/heartmarshall/expense-ledger/internal/service/budget"
)

type budgetService interface {
	Create(ctx context.Context, input budget.CreateInput) (*domain.Budget, error)
	ListAll(ctx context.Context, f domain.Filter) ([]domain.Budget, error)
	ListMine(ctx context.Context, f domain.Filter) ([]domain.Budget, error)
	Update(ctx context.Context, input budget.UpdateInput) (*domain.Budget, error)
	Verify(ctx context.Context, input budget.VerifyInput) (*domain.Budget, error)
	Settle(ctx context.Context, id int64) (*domain.Budget, error)
	Delete(ctx context.Context, id int64) error
}

// BudgetHandler serves budget REST endpoints.
type BudgetHandler struct {
	svc     budgetService
	present *Presenter
	log     *slog.Logger
}

// NewBudgetHandler creates a BudgetHandler.
func NewBudgetHandler(svc budgetService, present *Presenter, logger *slog.Logger) *BudgetHandler {
	return &BudgetHandler{svc: svc, present: present, log: logger.With("handler", "budget")}
}

type budgetRequest struct {
	Title       *string    `json:"title"`
	Amount      flexString `json:"amount"`
	Description *string    `json:"description"`
}

type statusRequest struct {
	Status string `json:"status"`
}

// Create handles POST /api/budgets.
func (h *BudgetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	created, err := h.svc.Create(r.Context(), budget.CreateInput{
		Title:       req.Title,
		Amount:      req.Amount.value,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, messageResponse{Message: "Budget created", Result: h.present.budget(created)})
}

// ListAll handles GET /api/budgets.
func (h *BudgetHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.svc.ListAll)
}

// ListMine handles GET /api/budgets/me.
func (h *BudgetHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.svc.ListMine)
}

func (h *BudgetHandler) list(w http.ResponseWriter, r *http.Request, fetch func(context.Context, domain.Filter) ([]domain.Budget, error)) {
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

	writeJSON(w, http.StatusOK, h.present.budgets(rows))
}

// Update handles PATCH /api/budgets/{id}.
func (h *BudgetHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	updated, err := h.svc.Update(r.Context(), budget.UpdateInput{
		ID:          id,
		Title:       req.Title,
		Amount:      req.Amount.value,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Budget updated", Result: h.present.budget(updated)})
}

// Verify handles PATCH /api/budgets/{id}/status.
func (h *BudgetHandler) Verify(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	updated, err := h.svc.Verify(r.Context(), budget.VerifyInput{ID: id, Status: req.Status})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Status updated", Result: h.present.budget(updated)})
}

// Settle handles PATCH /api/budgets/{id}/settle.
func (h *BudgetHandler) Settle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	settled, err := h.svc.Settle(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Budget marked as settled", Result: h.present.budget(settled)})
}

// Delete handles DELETE /api/budgets/{id}.
func (h *BudgetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Budget deleted"})
}
