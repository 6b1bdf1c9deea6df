package reimbursement

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/heartmarshall/expense-ledger/internal/domain"
	"github.com/heartmarshall/expense-ledger/internal/permission"
	"github.com/heartmarshall/expense-ledger/internal/query"
)

type reimbursementRepo interface {
	Create(ctx context.Context, r *domain.Reimbursement) (*domain.Reimbursement, error)
	Update(ctx context.Context, id int64, params domain.ReimbursementUpdateParams) (*domain.Reimbursement, error)
	SetStatus(ctx context.Context, id int64, status domain.Status, settledAt *time.Time) (*domain.Reimbursement, error)
	Delete(ctx context.Context, id int64) error
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Reimbursement, error)
	List(ctx context.Context, where squirrel.Sqlizer, withOwner bool) ([]domain.Reimbursement, error)
}

type budgetReader interface {
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Budget, error)
}

type receiptStore interface {
	Save(ctx context.Context, r io.Reader, contentType string) (string, error)
}

type receiptDiscarder interface {
	Discard(handle string)
}

type auditLogger interface {
	Log(ctx context.Context, record domain.AuditRecord) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements the reimbursement lifecycle up to approval. Settlement
// lives in the settlement service.
type Service struct {
	reimbursements reimbursementRepo
	budgets        budgetReader
	store          receiptStore
	discard        receiptDiscarder
	audit          auditLogger
	tx             txManager
	filters        *query.Builder
	log            *slog.Logger
}

// NewService creates a new Reimbursement service.
func NewService(
	log *slog.Logger,
	reimbursements reimbursementRepo,
	budgets budgetReader,
	store receiptStore,
	discard receiptDiscarder,
	audit auditLogger,
	tx txManager,
	filters *query.Builder,
) *Service {
	return &Service{
		reimbursements: reimbursements,
		budgets:        budgets,
		store:          store,
		discard:        discard,
		audit:          audit,
		tx:             tx,
		filters:        filters,
		log:            log.With("service", "reimbursement"),
	}
}

var errReimbursementNotFound = domain.NewRuleError(domain.ErrNotFound, "Reimbursement not found")

// lock reads the reimbursement under a row lock and checks op against it.
// It must be called inside a transaction.
func (s *Service) lock(ctx context.Context, actor domain.Actor, id int64, op permission.Operation) (*domain.Reimbursement, error) {
	r, err := s.reimbursements.GetByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errReimbursementNotFound
		}
		return nil, fmt.Errorf("get reimbursement: %w", err)
	}
	if err := permission.Decide(actor, r.Record(), op).Err(); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) logAudit(ctx context.Context, actor domain.Actor, id int64, action domain.AuditAction, changes map[string]any) error {
	return s.audit.Log(ctx, domain.AuditRecord{
		ActorID:    actor.ID,
		EntityType: domain.EntityReimbursement,
		EntityID:   id,
		Action:     action,
		Changes:    changes,
	})
}

// saveReceipt stores an upload and returns a release func that discards it
// unless keep was called. Callers defer release on every exit path.
func (s *Service) saveReceipt(ctx context.Context, upload *Upload) (handle string, keep func(), release func(), err error) {
	handle, err = s.store.Save(ctx, upload.Body, upload.ContentType)
	if err != nil {
		return "", nil, nil, err
	}
	kept := false
	keep = func() { kept = true }
	release = func() {
		if !kept {
			s.discard.Discard(handle)
		}
	}
	return handle, keep, release, nil
}
