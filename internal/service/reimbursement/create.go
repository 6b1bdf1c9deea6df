package reimbursement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/expense-ledger/internal/domain"
	"github.com/heartmarshall/expense-ledger/pkg/ctxutil"
)

// Create records a new pending claim owned by the caller. The receipt is
// stored before the record is written and discarded if any later step fails.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Reimbursement, error) {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	title, err := domain.ValidateTitle(input.Title)
	if err != nil {
		return nil, err
	}
	amount, err := domain.ParseAmount(input.Amount)
	if err != nil {
		return nil, err
	}
	if input.Receipt == nil || input.Receipt.Body == nil {
		return nil, domain.NewValidationError("receipt", "Receipt image is required")
	}

	handle, keep, release, err := s.saveReceipt(ctx, input.Receipt)
	if err != nil {
		return nil, err
	}
	defer release()

	sourceType := domain.SourceTypeDirect
	if input.BudgetID != nil {
		sourceType = domain.SourceTypeBudget
	}

	var created *domain.Reimbursement
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if input.BudgetID != nil {
			if linkErr := s.checkLinkedBudget(txCtx, *input.BudgetID); linkErr != nil {
				return linkErr
			}
		}

		var createErr error
		created, createErr = s.reimbursements.Create(txCtx, &domain.Reimbursement{
			Title:         title,
			Amount:        amount,
			Description:   describe(input.Description),
			ReceiptHandle: handle,
			Status:        domain.StatusPending,
			SourceType:    sourceType,
			BudgetID:      input.BudgetID,
			UserID:        &actor.ID,
		})
		if createErr != nil {
			return fmt.Errorf("create reimbursement: %w", createErr)
		}

		if auditErr := s.logAudit(txCtx, actor, created.ID, domain.AuditActionCreate, map[string]any{
			"title":      map[string]any{"new": title},
			"amount":     map[string]any{"new": amount.String()},
			"sourceType": map[string]any{"new": sourceType},
		}); auditErr != nil {
			return fmt.Errorf("audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	keep()

	s.log.InfoContext(ctx, "reimbursement created",
		slog.Int64("user_id", actor.ID),
		slog.Int64("reimbursement_id", created.ID),
		slog.String("source_type", sourceType.String()),
	)

	return created, nil
}

// checkLinkedBudget locks the budget so it cannot change status while the
// claim referencing it is written.
func (s *Service) checkLinkedBudget(ctx context.Context, budgetID int64) error {
	b, err := s.budgets.GetByIDForUpdate(ctx, budgetID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewRuleError(domain.ErrNotFound, "Linked budget not found")
		}
		return fmt.Errorf("get linked budget: %w", err)
	}
	if b.Status != domain.StatusApproved {
		return domain.NewRuleError(domain.ErrValidation, "Linked budget must be approved")
	}
	return nil
}
