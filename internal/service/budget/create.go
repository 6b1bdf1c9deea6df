package budget

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/expense-ledger/internal/domain"
	"github.com/heartmarshall/expense-ledger/pkg/ctxutil"
)

// Create records a new pending budget owned by the caller.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Budget, error) {
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

	var created *domain.Budget
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var createErr error
		created, createErr = s.budgets.Create(txCtx, &domain.Budget{
			Title:       title,
			Amount:      amount,
			Description: describe(input.Description),
			Status:      domain.StatusPending,
			UserID:      &actor.ID,
		})
		if createErr != nil {
			return fmt.Errorf("create budget: %w", createErr)
		}

		if auditErr := s.logAudit(txCtx, actor, created.ID, domain.AuditActionCreate, map[string]any{
			"title":  map[string]any{"new": title},
			"amount": map[string]any{"new": amount.String()},
		}); auditErr != nil {
			return fmt.Errorf("audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "budget created",
		slog.Int64("user_id", actor.ID),
		slog.Int64("budget_id", created.ID),
		slog.String("amount", amount.String()),
	)

	return created, nil
}
