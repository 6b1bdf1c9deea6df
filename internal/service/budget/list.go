package budget

import (
	"context"
	"fmt"

	"github.com/heartmarshall/expense-ledger/internal/domain"
	"github.com/heartmarshall/expense-ledger/internal/query"
	"github.com/heartmarshall/expense-ledger/pkg/ctxutil"
)

// ListAll returns budgets of every user with their owner's identity.
// Only managers and admins may call it.
func (s *Service) ListAll(ctx context.Context, f domain.Filter) ([]domain.Budget, error) {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if !actor.Role.IsPrivileged() {
		return nil, domain.NewRuleError(domain.ErrForbidden, "Only managers and admins can list all budgets")
	}
	return s.list(ctx, f, nil, true)
}

// ListMine returns the caller's own budgets.
func (s *Service) ListMine(ctx context.Context, f domain.Filter) ([]domain.Budget, error) {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return s.list(ctx, f, &actor.ID, false)
}

func (s *Service) list(ctx context.Context, f domain.Filter, userID *int64, withOwner bool) ([]domain.Budget, error) {
	where, err := s.filters.Build(query.Budgets, f, userID)
	if err != nil {
		return nil, err
	}

	budgets, err := s.budgets.List(ctx, where, withOwner)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}

	if len(f.IDs) > 0 && len(budgets) == 0 {
		return nil, domain.NewRuleError(domain.ErrNotFound, "Budget not found")
	}
	return budgets, nil
}
