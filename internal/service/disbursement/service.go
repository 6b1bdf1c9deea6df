// Package disbursement exposes the payout ledger. Entries are written only
// by the settlement service and are read-only here.
package disbursement

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"

	"github.com/heartmarshall/expense-ledger/internal/domain"
	"github.com/heartmarshall/expense-ledger/internal/query"
	"github.com/heartmarshall/expense-ledger/pkg/ctxutil"
)

type disbursementRepo interface {
	List(ctx context.Context, where squirrel.Sqlizer, withOwner bool) ([]domain.Disbursement, error)
}

// Service lists and exports disbursements.
type Service struct {
	disbursements disbursementRepo
	filters       *query.Builder
	log           *slog.Logger
}

// NewService creates a new Disbursement service.
func NewService(log *slog.Logger, disbursements disbursementRepo, filters *query.Builder) *Service {
	return &Service{
		disbursements: disbursements,
		filters:       filters,
		log:           log.With("service", "disbursement"),
	}
}

var errDisbursementNotFound = domain.NewRuleError(domain.ErrNotFound, "Disbursement not found")

// ListAll returns every payout with its owner's identity, newest first.
func (s *Service) ListAll(ctx context.Context, f domain.Filter) ([]domain.Disbursement, error) {
	if err := requirePrivileged(ctx, "list all disbursements"); err != nil {
		return nil, err
	}
	return s.list(ctx, f, nil, true)
}

// ListMine returns the caller's payouts, newest first.
func (s *Service) ListMine(ctx context.Context, f domain.Filter) ([]domain.Disbursement, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return s.list(ctx, f, &userID, false)
}

// Export returns the payouts matching f for a report. Unlike a listing, an
// id filter that matches nothing yields an empty report.
func (s *Service) Export(ctx context.Context, f domain.Filter) ([]domain.Disbursement, error) {
	if err := requirePrivileged(ctx, "export disbursements"); err != nil {
		return nil, err
	}

	where, err := s.filters.Build(query.Disbursements, f, nil)
	if err != nil {
		return nil, err
	}

	rows, err := s.disbursements.List(ctx, where, true)
	if err != nil {
		return nil, fmt.Errorf("list disbursements for export: %w", err)
	}

	s.log.DebugContext(ctx, "disbursements exported", slog.Int("rows", len(rows)))
	return rows, nil
}

func (s *Service) list(ctx context.Context, f domain.Filter, userID *int64, withOwner bool) ([]domain.Disbursement, error) {
	where, err := s.filters.Build(query.Disbursements, f, userID)
	if err != nil {
		return nil, err
	}

	rows, err := s.disbursements.List(ctx, where, withOwner)
	if err != nil {
		return nil, fmt.Errorf("list disbursements: %w", err)
	}

	if len(f.IDs) > 0 && len(rows) == 0 {
		return nil, errDisbursementNotFound
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
