package rest

import (
	"context"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/heartmarshall/expense-ledger/internal/domain"
	"github.com/heartmarshall/expense-ledger/internal/service/reimbursement"
)

type reimbursementService interface {
	Create(ctx context.Context, input reimbursement.CreateInput) (*domain.Reimbursement, error)
	ListAll(ctx context.Context, f domain.Filter) ([]domain.Reimbursement, error)
	ListMine(ctx context.Context, f domain.Filter) ([]domain.Reimbursement, error)
	Export(ctx context.Context, f domain.Filter) ([]domain.Reimbursement, error)
	Update(ctx context.Context, input reimbursement.UpdateInput) (*domain.Reimbursement, error)
	Verify(ctx context.Context, input reimbursement.VerifyInput) (*domain.Reimbursement, error)
	Delete(ctx context.Context, id int64) error
}

type settlementService interface {
	SettleOne(ctx context.Context, id int64) (*domain.Disbursement, error)
	SettleMany(ctx context.Context, ids []int64) (*domain.SettleOutcome, error)
}

// multipartMemory is how much of a multipart body is kept in memory; the
// rest is spooled to temporary files by net/http.
const (
	multipartMemory   = 1 << 20
	multipartOverhead = 1 << 20
)

// ReimbursementHandler serves reimbursement REST endpoints, including
// settlement and the payout request export.
type ReimbursementHandler struct {
	svc       reimbursementService
	settle    settlementService
	render    reportRenderer
	present   *Presenter
	maxUpload int64
	log       *slog.Logger
}

// NewReimbursementHandler creates a ReimbursementHandler. maxUpload is the
// largest receipt accepted, in bytes.
func NewReimbursementHandler(
	svc reimbursementService,
	settle settlementService,
	render reportRenderer,
	present *Presenter,
	maxUpload int64,
	logger *slog.Logger,
) *ReimbursementHandler {
	return &ReimbursementHandler{
		svc:       svc,
		settle:    settle,
		render:    render,
		present:   present,
		maxUpload: maxUpload,
		log:       logger.With("handler", "reimbursement"),
	}
}

type claimRequest struct {
	Title       *string    `json:"title"`
	Amount      flexString `json:"amount"`
	Description *string    `json:"description"`
	BudgetID    *int64     `json:"budgetId"`
}

// claimForm is a create or edit request read from multipart or JSON.
type claimForm struct {
	Title       *string
	Amount      *string
	Description *string
	BudgetID    *int64
	Receipt     *reimbursement.Upload
}

type settleManyRequest struct {
	IDs []int64 `json:"ids"`
}

// readClaim parses the request body. The returned close func releases the
// uploaded file and must always be called.
func (h *ReimbursementHandler) readClaim(w http.ResponseWriter, r *http.Request) (claimForm, func(), error) {
	noop := func() {}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var req claimRequest
		if err := decodeJSON(r, &req); err != nil {
			return claimForm{}, noop, err
		}
		return claimForm{
			Title:       req.Title,
			Amount:      req.Amount.value,
			Description: req.Description,
			BudgetID:    req.BudgetID,
		}, noop, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return claimForm{}, noop, domain.NewValidationError("receipt", "Receipt image is too large")
		}
		return claimForm{}, noop, errInvalidBody
	}

	form := claimForm{
		Title:       formValue(r, "title"),
		Amount:      formValue(r, "amount"),
		Description: formValue(r, "description"),
	}
	if raw := formValue(r, "budgetId"); raw != nil && strings.TrimSpace(*raw) != "" {
		id, err := positiveInt(strings.TrimSpace(*raw))
		if err != nil {
			return claimForm{}, noop, domain.NewValidationError("budgetId", "Invalid budgetId")
		}
		form.BudgetID = &id
	}

	files := r.MultipartForm.File["receipt"]
	if len(files) == 0 {
		return form, noop, nil
	}
	file, err := files[0].Open()
	if err != nil {
		return claimForm{}, noop, errInvalidBody
	}
	form.Receipt = &reimbursement.Upload{
		Body:        file,
		ContentType: files[0].Header.Get("Content-Type"),
	}
	return form, func() { file.Close() }, nil //nolint:errcheck
}

// formValue returns nil for an absent field, so that edits can tell
// "not sent" from "sent empty".
func formValue(r *http.Request, key string) *string {
	vs, ok := r.MultipartForm.Value[key]
	if !ok || len(vs) == 0 {
		return nil
	}
	return &vs[0]
}

// Create handles POST /api/reimbursements.
func (h *ReimbursementHandler) Create(w http.ResponseWriter, r *http.Request) {
	form, release, err := h.readClaim(w, r)
	defer release()
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	created, err := h.svc.Create(r.Context(), reimbursement.CreateInput{
		Title:       form.Title,
		Amount:      form.Amount,
		Description: form.Description,
		BudgetID:    form.BudgetID,
		Receipt:     form.Receipt,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, messageResponse{
		Message: "Reimbursement created",
		Result:  h.present.reimbursement(created),
	})
}

// ListAll handles GET /api/reimbursements.
func (h *ReimbursementHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.svc.ListAll)
}

// ListMine handles GET /api/reimbursements/me.
func (h *ReimbursementHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.svc.ListMine)
}

func (h *ReimbursementHandler) list(w http.ResponseWriter, r *http.Request, fetch func(context.Context, domain.Filter) ([]domain.Reimbursement, error)) {
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

	writeJSON(w, http.StatusOK, h.present.reimbursements(rows))
}

// Export handles GET /api/reimbursements/export. It answers 204 when no
// claim is exportable.
func (h *ReimbursementHandler) Export(w http.ResponseWriter, r *http.Request) {
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
	if len(rows) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeReport(w, r, h.log, h.render, "reimbursement_request.xlsx", h.present.reimbursementSheet(rows))
}

// Update handles PATCH /api/reimbursements/{id}.
func (h *ReimbursementHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	form, release, err := h.readClaim(w, r)
	defer release()
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	updated, err := h.svc.Update(r.Context(), reimbursement.UpdateInput{
		ID:          id,
		Title:       form.Title,
		Amount:      form.Amount,
		Description: form.Description,
		Receipt:     form.Receipt,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Message: "Reimbursement updated",
		Result:  h.present.reimbursement(updated),
	})
}

// Verify handles PATCH /api/reimbursements/{id}/status.
func (h *ReimbursementHandler) Verify(w http.ResponseWriter, r *http.Request) {
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

	updated, err := h.svc.Verify(r.Context(), reimbursement.VerifyInput{ID: id, Status: req.Status})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Message: "Status updated",
		Result:  h.present.reimbursement(updated),
	})
}

// SettleOne handles PATCH /api/reimbursements/{id}/settle.
func (h *ReimbursementHandler) SettleOne(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	created, err := h.settle.SettleOne(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Message: "Reimbursement marked as settled, disbursement created",
		Result:  h.present.disbursement(created),
	})
}

// SettleMany handles PATCH /api/reimbursements/settle.
func (h *ReimbursementHandler) SettleMany(w http.ResponseWriter, r *http.Request) {
	var req settleManyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, domain.NewValidationError("ids", "Invalid reimbursement IDs"))
		return
	}

	outcome, err := h.settle.SettleMany(r.Context(), req.IDs)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toSettleManyResponse(outcome))
}

// Delete handles DELETE /api/reimbursements/{id}.
func (h *ReimbursementHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Reimbursement deleted"})
}
