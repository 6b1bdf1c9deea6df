package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/expense-ledger/internal/domain"
	"github.com/heartmarshall/expense-ledger/internal/permission"
	"github.com/heartmarshall/expense-ledger/internal/query"
	"github.com/heartmarshall/expense-ledger/pkg/ctxutil"
)

// Skip reasons reported by SettleMany.
const (
	ReasonNotFound       = "Reimbursement not found"
	ReasonAlreadySettled = "Already settled"
	ReasonNotApproved    = "Not approved yet"
	ReasonFailed         = "Settlement failed"
)

// SettleOne settles a single approved reimbursement and returns the
// disbursement created for it.
func (s *Service) SettleOne(ctx context.Context, id int64) (*domain.Disbursement, error) {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	var created *domain.Disbursement
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		r, err := s.reimbursements.GetByIDForUpdate(txCtx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return errReimbursementNotFound
			}
			return fmt.Errorf("get reimbursement: %w", err)
		}
		if err := permission.Decide(actor, r.Record(), permission.OpSettle).Err(); err != nil {
			return err
		}

		created, err = s.settleLocked(txCtx, actor, r)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.metrics.settled.WithLabelValues("one").Inc()

	s.log.InfoContext(ctx, "reimbursement settled",
		slog.Int64("user_id", actor.ID),
		slog.Int64("reimbursement_id", id),
		slog.Int64("disbursement_id", created.ID),
	)

	return created, nil
}

// skipError carries the reason an id was left out of a bulk settlement.
type skipError struct {
	reason string
}

func (e *skipError) Error() string { return e.reason }

func skipReason(r *domain.Reimbursement) string {
	switch {
	case r == nil:
		return ReasonNotFound
	case r.Status == domain.StatusSettled:
		return ReasonAlreadySettled
	case r.Status != domain.StatusApproved:
		return ReasonNotApproved
	}
	return ""
}

// SettleMany settles every eligible id and reports the rest as skipped,
// in the order the ids were given. Duplicate ids are settled once. Each id
// is settled in its own transaction, so one failure never undoes another
// id's settlement.
func (s *Service) SettleMany(ctx context.Context, ids []int64) (*domain.SettleOutcome, error) {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if len(ids) == 0 {
		return nil, domain.NewValidationError("ids", "Invalid reimbursement IDs")
	}
	if len(ids) > s.maxIDs {
		return nil, &domain.TooManyIDsError{Max: s.maxIDs}
	}
	// Role gate only: an approved record isolates the role branch.
	if err := permission.Decide(actor, domain.Record{
		Kind:   domain.EntityReimbursement,
		Status: domain.StatusApproved,
	}, permission.OpSettle).Err(); err != nil {
		return nil, err
	}

	unique := query.UniqueIDs(ids)
	found, err := s.reimbursements.GetByIDs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("get reimbursements: %w", err)
	}

	outcome := &domain.SettleOutcome{Updated: []int64{}, Skipped: []domain.SkippedID{}}
	skip := func(id int64, reason string) {
		outcome.Skipped = append(outcome.Skipped, domain.SkippedID{ID: id, Reason: reason})
		s.metrics.skipped.WithLabelValues(reason).Inc()
	}

	for _, id := range unique {
		var snapshot *domain.Reimbursement
		if r, ok := found[id]; ok {
			snapshot = &r
		}
		if reason := skipReason(snapshot); reason != "" {
			skip(id, reason)
			continue
		}

		if err := s.settleChecked(ctx, actor, id); err != nil {
			var se *skipError
			if errors.As(err, &se) {
				skip(id, se.reason)
				continue
			}
			if errors.Is(err, domain.ErrConflict) {
				skip(id, ReasonAlreadySettled)
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.log.ErrorContext(ctx, "settle reimbursement",
				slog.Int64("reimbursement_id", id),
				slog.String("error", err.Error()),
			)
			skip(id, ReasonFailed)
			continue
		}
		outcome.Updated = append(outcome.Updated, id)
		s.metrics.settled.WithLabelValues("bulk").Inc()
	}

	s.log.InfoContext(ctx, "reimbursements settled",
		slog.Int64("user_id", actor.ID),
		slog.Int("updated", len(outcome.Updated)),
		slog.Int("skipped", len(outcome.Skipped)),
	)

	return outcome, nil
}

// settleChecked re-reads id under a row lock, since its status may have
// changed since the bulk read, and settles it if still eligible.
func (s *Service) settleChecked(ctx context.Context, actor domain.Actor, id int64) error {
	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		r, err := s.reimbursements.GetByIDForUpdate(txCtx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return &skipError{reason: ReasonNotFound}
			}
			return fmt.Errorf("get reimbursement: %w", err)
		}
		if reason := skipReason(r); reason != "" {
			return &skipError{reason: reason}
		}

		_, err = s.settleLocked(txCtx, actor, r)
		return err
	})
}
