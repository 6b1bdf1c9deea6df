package budget

import (
	"strings"

	"github.com/heartmarshall/expense-ledger/internal/domain"
)

// CreateInput holds the fields of a new budget as submitted by the client.
type CreateInput struct {
	Title       *string
	Amount      *string
	Description *string
}

// UpdateInput holds an edit. Nil fields are left unchanged.
type UpdateInput struct {
	ID          int64
	Title       *string
	Amount      *string
	Description *string
}

func (i UpdateInput) params() (domain.BudgetUpdateParams, error) {
	if i.Title == nil && i.Amount == nil && i.Description == nil {
		return domain.BudgetUpdateParams{}, domain.NewValidationError("body", "Nothing to update")
	}

	var params domain.BudgetUpdateParams
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
