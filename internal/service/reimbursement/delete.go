package reimbursement

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/expense-ledger/internal/domain"
	"github.com/heartmarshall/expense-ledger/internal/permission"
	"github.com/heartmarshall/expense-ledger/pkg/ctxutil"
)

// Delete removes a claim together with its disbursement, if any, and
// discards its receipt once the removal is committed.
func (s *Service) Delete(ctx context.Context, id int64) error {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}

	var old *domain.Reimbursement
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var lockErr error
		old, lockErr = s.lock(txCtx, actor, id, permission.OpDelete)
		if lockErr != nil {
			return lockErr
		}

		if delErr := s.reimbursements.Delete(txCtx, id); delErr != nil {
			return fmt.Errorf("delete reimbursement: %w", delErr)
		}

		if auditErr := s.logAudit(txCtx, actor, id, domain.AuditActionDelete, map[string]any{
			"title":  map[string]any{"old": old.Title},
			"status": map[string]any{"old": old.Status},
		}); auditErr != nil {
			return fmt.Errorf("audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.discard.Discard(old.ReceiptHandle)

	s.log.InfoContext(ctx, "reimbursement deleted",
		slog.Int64("user_id", actor.ID),
		slog.Int64("reimbursement_id", id),
	)

	return nil
}
