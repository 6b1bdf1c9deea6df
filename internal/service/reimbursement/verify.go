package reimbursement

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/expense-ledger/internal/domain"
	"github.com/heartmarshall/expense-ledger/internal/permission"
	"github.com/heartmarshall/expense-ledger/pkg/ctxutil"
)

// Verify records a review decision on a claim.
func (s *Service) Verify(ctx context.Context, input VerifyInput) (*domain.Reimbursement, error) {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	target, err := input.target()
	if err != nil {
		return nil, err
	}

	var updated *domain.Reimbursement
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		old, lockErr := s.lock(txCtx, actor, input.ID, permission.OpVerify)
		if lockErr != nil {
			return lockErr
		}

		var setErr error
		updated, setErr = s.reimbursements.SetStatus(txCtx, input.ID, target, nil)
		if setErr != nil {
			return fmt.Errorf("set reimbursement status: %w", setErr)
		}

		if auditErr := s.logAudit(txCtx, actor, input.ID, domain.AuditActionVerify, map[string]any{
			"status": domain.Change(old.Status, target),
		}); auditErr != nil {
			return fmt.Errorf("audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "reimbursement verified",
		slog.Int64("user_id", actor.ID),
		slog.Int64("reimbursement_id", input.ID),
		slog.String("status", target.String()),
	)

	return updated, nil
}
