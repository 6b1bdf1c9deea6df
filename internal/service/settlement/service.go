// Package settlement turns approved reimbursements into disbursements.
// A settlement writes the ledger entry and the settled status in one
// transaction, so neither is ever visible without the other.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/heartmarshall/expense-ledger/internal/domain"
)

// DefaultMaxIDs caps the id list of a bulk settlement.
const DefaultMaxIDs = 50

type reimbursementRepo interface {
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Reimbursement, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]domain.Reimbursement, error)
	SetStatus(ctx context.Context, id int64, status domain.Status, settledAt *time.Time) (*domain.Reimbursement, error)
}

type disbursementRepo interface {
	Create(ctx context.Context, d *domain.Disbursement) (*domain.Disbursement, error)
}

type auditLogger interface {
	Log(ctx context.Context, record domain.AuditRecord) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics counts settlement outcomes.
type Metrics struct {
	settled *prometheus.CounterVec
	skipped *prometheus.CounterVec
}

// NewMetrics registers the settlement counters with reg. A nil reg leaves
// them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		settled: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "settlements_total",
			Help: "Reimbursements settled, by request mode.",
		}, []string{"mode"}),
		skipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "settlement_skips_total",
			Help: "Ids left untouched by bulk settlements, by reason.",
		}, []string{"reason"}),
	}
}

// Service settles reimbursements.
type Service struct {
	reimbursements reimbursementRepo
	disbursements  disbursementRepo
	audit          auditLogger
	tx             txManager
	metrics        *Metrics
	maxIDs         int
	now            func() time.Time
	log            *slog.Logger
}

// NewService creates a new Settlement service. A non-positive maxIDs means
// DefaultMaxIDs.
func NewService(
	log *slog.Logger,
	reimbursements reimbursementRepo,
	disbursements disbursementRepo,
	audit auditLogger,
	tx txManager,
	metrics *Metrics,
	maxIDs int,
) *Service {
	if maxIDs <= 0 {
		maxIDs = DefaultMaxIDs
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Service{
		reimbursements: reimbursements,
		disbursements:  disbursements,
		audit:          audit,
		tx:             tx,
		metrics:        metrics,
		maxIDs:         maxIDs,
		now:            time.Now,
		log:            log.With("service", "settlement"),
	}
}

var errReimbursementNotFound = domain.NewRuleError(domain.ErrNotFound, "Reimbursement not found")

// settleLocked writes the ledger entry and marks r settled. r must be
// locked by the surrounding transaction.
func (s *Service) settleLocked(ctx context.Context, actor domain.Actor, r *domain.Reimbursement) (*domain.Disbursement, error) {
	settledAt := s.now().UTC()

	entry := domain.NewDisbursement(r, settledAt)
	created, err := s.disbursements.Create(ctx, &entry)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, domain.NewRuleError(domain.ErrConflict, "Reimbursement already has a disbursement")
		}
		return nil, fmt.Errorf("create disbursement: %w", err)
	}

	if _, err := s.reimbursements.SetStatus(ctx, r.ID, domain.StatusSettled, &settledAt); err != nil {
		return nil, fmt.Errorf("set reimbursement status: %w", err)
	}

	if err := s.audit.Log(ctx, domain.AuditRecord{
		ActorID:    actor.ID,
		EntityType: domain.EntityReimbursement,
		EntityID:   r.ID,
		Action:     domain.AuditActionSettle,
		Changes: map[string]any{
			"status":         domain.Change(r.Status, domain.StatusSettled),
			"disbursementId": map[string]any{"new": created.ID},
		},
	}); err != nil {
		return nil, fmt.Errorf("audit log: %w", err)
	}
	return created, nil
}
