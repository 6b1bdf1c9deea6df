package budget

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/expense-ledger/internal/domain"
	"github.com/heartmarshall/expense-ledger/internal/permission"
	"github.com/heartmarshall/expense-ledger/pkg/ctxutil"
)

// Delete removes a budget. Reimbursements drawn against it keep existing
// with their budget link cleared.
func (s *Service) Delete(ctx context.Context, id int64) error {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		old, lockErr := s.lock(txCtx, actor, id, permission.OpDelete)
		if lockErr != nil {
			return lockErr
		}

		if delErr := s.budgets.Delete(txCtx, id); delErr != nil {
			return fmt.Errorf("delete budget: %w", delErr)
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

	s.log.InfoContext(ctx, "budget deleted",
		slog.Int64("user_id", actor.ID),
		slog.Int64("budget_id", id),
	)

	return nil
}
