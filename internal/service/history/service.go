// Package history serves the audit trail of a single budget or
// reimbursement.
package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/heartmarshall/expense-ledger/internal/domain"
	"github.com/heartmarshall/expense-ledger/pkg/ctxutil"
)

// Limit caps the number of entries returned for one record.
const Limit = 100

type budgetRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Budget, error)
}

type reimbursementRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Reimbursement, error)
}

type auditReader interface {
	GetByEntity(ctx context.Context, kind domain.EntityKind, entityID int64, limit int) ([]domain.AuditRecord, error)
}

// Service reads audit entries. The record's owner and reviewers may read
// them; a deleted record has no readable history.
type Service struct {
	budgets        budgetRepo
	reimbursements reimbursementRepo
	audit          auditReader
}

// NewService creates a new history service.
func NewService(budgets budgetRepo, reimbursements reimbursementRepo, audit auditReader) *Service {
	return &Service{budgets: budgets, reimbursements: reimbursements, audit: audit}
}

// Budget returns the audit entries of budget id, newest first.
func (s *Service) Budget(ctx context.Context, id int64) ([]domain.AuditRecord, error) {
	return s.entries(ctx, domain.EntityBudget, id, func() (domain.Record, error) {
		b, err := s.budgets.GetByID(ctx, id)
		if err != nil {
			return domain.Record{}, err
		}
		return b.Record(), nil
	})
}

// Reimbursement returns the audit entries of reimbursement id, newest first.
func (s *Service) Reimbursement(ctx context.Context, id int64) ([]domain.AuditRecord, error) {
	return s.entries(ctx, domain.EntityReimbursement, id, func() (domain.Record, error) {
		r, err := s.reimbursements.GetByID(ctx, id)
		if err != nil {
			return domain.Record{}, err
		}
		return r.Record(), nil
	})
}

func (s *Service) entries(ctx context.Context, kind domain.EntityKind, id int64, load func() (domain.Record, error)) ([]domain.AuditRecord, error) {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	rec, err := load()
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewRuleError(domain.ErrNotFound, kind.Title()+" not found")
		}
		return nil, fmt.Errorf("get %s: %w", kind, err)
	}
	if !actor.Owns(rec.OwnerID) && !actor.Role.IsPrivileged() {
		return nil, domain.NewRuleError(domain.ErrForbidden, fmt.Sprintf("Unauthorized to view this %s", kind))
	}

	entries, err := s.audit.GetByEntity(ctx, kind, id, Limit)
	if err != nil {
		return nil, fmt.Errorf("get %s history: %w", kind, err)
	}
	if entries == nil {
		entries = []domain.AuditRecord{}
	}
	return entries, nil
}
