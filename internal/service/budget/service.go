package budget

import (
	"context"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/heartmarshall/expense-ledger/internal/domain"
	"github.com/heartmarshall/expense-ledger/internal/query"
)

type budgetRepo interface {
	Create(ctx context.Context, b *domain.Budget) (*domain.Budget, error)
	Update(ctx context.Context, id int64, params domain.BudgetUpdateParams) (*domain.Budget, error)
	SetStatus(ctx context.Context, id int64, status domain.Status, settledAt *time.Time) (*domain.Budget, error)
	Delete(ctx context.Context, id int64) error
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Budget, error)
	List(ctx context.Context, where squirrel.Sqlizer, withOwner bool) ([]domain.Budget, error)
}

type auditLogger interface {
	Log(ctx context.Context, record domain.AuditRecord) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements the budget lifecycle.
type Service struct {
	budgets budgetRepo
	audit   auditLogger
	tx      txManager
	filters *query.Builder
	now     func() time.Time
	log     *slog.Logger
}

// NewService creates a new Budget service.
func NewService(
	log *slog.Logger,
	budgets budgetRepo,
	audit auditLogger,
	tx txManager,
	filters *query.Builder,
) *Service {
	return &Service{
		budgets: budgets,
		audit:   audit,
		tx:      tx,
		filters: filters,
		now:     time.Now,
		log:     log.With("service", "budget"),
	}
}

func (s *Service) logAudit(ctx context.Context, actor domain.Actor, id int64, action domain.AuditAction, changes map[string]any) error {
	return s.audit.Log(ctx, domain.AuditRecord{
		ActorID:    actor.ID,
		EntityType: domain.EntityBudget,
		EntityID:   id,
		Action:     action,
		Changes:    changes,
	})
}
