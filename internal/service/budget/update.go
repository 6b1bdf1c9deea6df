package budget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/expense-ledger/internal/domain"
	"github.com/heartmarshall/expense-ledger/internal/permission"
	"github.com/heartmarshall/expense-ledger/pkg/ctxutil"
)

var errBudgetNotFound = domain.NewRuleError(domain.ErrNotFound, "Budget not found")

// Update edits a budget. Any edit sends the budget back to review.
func (s *Service) Update(ctx context.Context, input UpdateInput) (*domain.Budget, error) {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	params, err := input.params()
	if err != nil {
		return nil, err
	}

	var updated *domain.Budget
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		old, lockErr := s.lock(txCtx, actor, input.ID, permission.OpEdit)
		if lockErr != nil {
			return lockErr
		}

		params.Status = old.Status.AfterEdit()

		var updateErr error
		updated, updateErr = s.budgets.Update(txCtx, input.ID, params)
		if updateErr != nil {
			return fmt.Errorf("update budget: %w", updateErr)
		}

		if auditErr := s.logAudit(txCtx, actor, input.ID, domain.AuditActionUpdate, buildChanges(old, updated)); auditErr != nil {
			return fmt.Errorf("audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "budget updated",
		slog.Int64("user_id", actor.ID),
		slog.Int64("budget_id", input.ID),
	)

	return updated, nil
}

// lock reads the budget under a row lock and checks op against it.
// It must be called inside a transaction.
func (s *Service) lock(ctx context.Context, actor domain.Actor, id int64, op permission.Operation) (*domain.Budget, error) {
	b, err := s.budgets.GetByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errBudgetNotFound
		}
		return nil, fmt.Errorf("get budget: %w", err)
	}
	if err := permission.Decide(actor, b.Record(), op).Err(); err != nil {
		return nil, err
	}
	return b, nil
}

// buildChanges returns only changed fields for audit.
func buildChanges(old, updated *domain.Budget) map[string]any {
	changes := make(map[string]any)
	if old.Title != updated.Title {
		changes["title"] = domain.Change(old.Title, updated.Title)
	}
	if !old.Amount.Equal(updated.Amount) {
		changes["amount"] = domain.Change(old.Amount.String(), updated.Amount.String())
	}
	if old.Description != updated.Description {
		changes["description"] = domain.Change(old.Description, updated.Description)
	}
	if old.Status != updated.Status {
		changes["status"] = domain.Change(old.Status, updated.Status)
	}
	return changes
}
