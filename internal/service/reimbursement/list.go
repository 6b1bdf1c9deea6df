package reimbursement

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/heartmarshall/expense-ledger/internal/domain"
	"github.com/heartmarshall/expense-ledger/internal/query"
	"github.com/heartmarshall/expense-ledger/pkg/ctxutil"
)

// ListAll returns claims of every user with their owner's identity.
// Only managers and admins may call it.
func (s *Service) ListAll(ctx context.Context, f domain.Filter) ([]domain.Reimbursement, error) {
	if err := requirePrivileged(ctx, "list all reimbursements"); err != nil {
		return nil, err
	}
	return s.list(ctx, f, nil, true)
}

// ListMine returns the caller's own claims.
func (s *Service) ListMine(ctx context.Context, f domain.Filter) ([]domain.Reimbursement, error) {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return s.list(ctx, f, &actor.ID, false)
}

// Export returns the approved direct claims not linked to any budget that
// match the ids, keyword and date fields of f. Other filter fields are
// ignored. An empty result is not an error.
func (s *Service) Export(ctx context.Context, f domain.Filter) ([]domain.Reimbursement, error) {
	if err := requirePrivileged(ctx, "export reimbursements"); err != nil {
		return nil, err
	}

	where, err := s.filters.Build(query.Reimbursements, domain.Filter{
		IDs:       f.IDs,
		Keyword:   f.Keyword,
		StartDate: f.StartDate,
		EndDate:   f.EndDate,
		Period:    f.Period,
	}, nil)
	if err != nil {
		return nil, err
	}

	exportable := squirrel.And{where, squirrel.Eq{
		query.Reimbursements.Status:     domain.StatusApproved.String(),
		query.Reimbursements.SourceType: domain.SourceTypeDirect.String(),
		query.Reimbursements.BudgetID:   nil,
	}}

	rows, err := s.reimbursements.List(ctx, exportable, true)
	if err != nil {
		return nil, fmt.Errorf("list exportable reimbursements: %w", err)
	}
	return rows, nil
}

func (s *Service) list(ctx context.Context, f domain.Filter, userID *int64, withOwner bool) ([]domain.Reimbursement, error) {
	where, err := s.filters.Build(query.Reimbursements, f, userID)
	if err != nil {
		return nil, err
	}

	rows, err := s.reimbursements.List(ctx, where, withOwner)
	if err != nil {
		return nil, fmt.Errorf("list reimbursements: %w", err)
	}

	if len(f.IDs) > 0 && len(rows) == 0 {
		return nil, errReimbursementNotFound
	}
	return rows, nil
}

func requirePrivileged(ctx context.Context, what string) error {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}
	if !actor.Role.IsPrivileged() {
		return domain.NewRuleError(domain.ErrForbidden, "Only managers and admins can "+what)
	}
	return nil
}
