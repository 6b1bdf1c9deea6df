package budget

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/expense-ledger/internal/domain"
	"github.com/heartmarshall/expense-ledger/internal/permission"
	"github.com/heartmarshall/expense-ledger/pkg/ctxutil"
)

// Settle closes an approved budget. Unlike reimbursements, a settled budget
// produces no disbursement.
func (s *Service) Settle(ctx context.Context, id int64) (*domain.Budget, error) {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	var settled *domain.Budget
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		old, lockErr := s.lock(txCtx, actor, id, permission.OpSettle)
		if lockErr != nil {
			return lockErr
		}

		now := s.now().UTC()
		var setErr error
		settled, setErr = s.budgets.SetStatus(txCtx, id, domain.StatusSettled, &now)
		if setErr != nil {
			return fmt.Errorf("settle budget: %w", setErr)
		}

		if auditErr := s.logAudit(txCtx, actor, id, domain.AuditActionSettle, map[string]any{
			"status": domain.Change(old.Status, domain.StatusSettled),
		}); auditErr != nil {
			return fmt.Errorf("audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "budget settled",
		slog.Int64("user_id", actor.ID),
		slog.Int64("budget_id", id),
	)

	return settled, nil
}
