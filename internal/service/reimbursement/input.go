package reimbursement

import (
	"io"
	"strings"

	"github.com/heartmarshall/expense-ledger/internal/domain"
)

// Upload is a receipt file as received from the client.
type Upload struct {
	Body        io.Reader
	ContentType string
}

// CreateInput holds the fields of a new claim. A claim with BudgetID draws
// against that budget; without it the claim is direct.
type CreateInput struct {
	Title       *string
	Amount      *string
	Description *string
	BudgetID    *int64
	Receipt     *Upload
}

// UpdateInput holds an edit. Nil fields are left unchanged; a non-nil
// Receipt replaces the stored one.
type UpdateInput struct {
	ID          int64
	Title       *string
	Amount      *string
	Description *string
	Receipt     *Upload
}

func (i UpdateInput) params() (domain.ReimbursementUpdateParams, error) {
	if i.Title == nil && i.Amount == nil && i.Description == nil && i.Receipt == nil {
		return domain.ReimbursementUpdateParams{}, domain.NewValidationError("body", "Nothing to update")
	}

	var params domain.ReimbursementUpdateParams
	if i.Title != nil {
		title, err := domain.ValidateTitle(i.Title)
		if err != nil {
			return params, err
		}
		params.Title = &title
	}
	if i.Amount != nil {
		amount, err := domain.ParseAmount(i.Amount)
		if err != nil {
			return params, err
		}
		params.Amount = &amount
	}
	if i.Description != nil {
		desc := strings.TrimSpace(*i.Description)
		params.Description = &desc
	}
	return params, nil
}

// VerifyInput requests a review decision.
type VerifyInput struct {
	ID     int64
	Status string
}

func (i VerifyInput) target() (domain.Status, error) {
	if strings.TrimSpace(i.Status) == "" {
		return "", domain.NewValidationError("status", "Status is required")
	}
	target := domain.Status(strings.TrimSpace(i.Status))
	if !target.IsVerifyTarget() {
		return "", domain.NewValidationError("status", "Invalid verify status value")
	}
	return target, nil
}

func describe(desc *string) string {
	if desc == nil {
		return ""
	}
	return strings.TrimSpace(*desc)
}
