package reimbursement

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/expense-ledger/internal/domain"
	"github.com/heartmarshall/expense-ledger/internal/permission"
	"github.com/heartmarshall/expense-ledger/pkg/ctxutil"
)

// Update edits a claim and sends it back to review. A replacement receipt
// is stored first; the previous one is discarded only once the record
// points at the new one.
func (s *Service) Update(ctx context.Context, input UpdateInput) (*domain.Reimbursement, error) {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	params, err := input.params()
	if err != nil {
		return nil, err
	}

	keep := func() {}
	if input.Receipt != nil {
		handle, keepNew, release, saveErr := s.saveReceipt(ctx, input.Receipt)
		if saveErr != nil {
			return nil, saveErr
		}
		defer release()
		keep = keepNew
		params.ReceiptHandle = &handle
	}

	var old, updated *domain.Reimbursement
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var lockErr error
		old, lockErr = s.lock(txCtx, actor, input.ID, permission.OpEdit)
		if lockErr != nil {
			return lockErr
		}

		params.Status = old.Status.AfterEdit()

		var updateErr error
		updated, updateErr = s.reimbursements.Update(txCtx, input.ID, params)
		if updateErr != nil {
			return fmt.Errorf("update reimbursement: %w", updateErr)
		}

		if auditErr := s.logAudit(txCtx, actor, input.ID, domain.AuditActionUpdate, buildChanges(old, updated)); auditErr != nil {
			return fmt.Errorf("audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	keep()

	if params.ReceiptHandle != nil && old.ReceiptHandle != *params.ReceiptHandle {
		s.discard.Discard(old.ReceiptHandle)
	}

	s.log.InfoContext(ctx, "reimbursement updated",
		slog.Int64("user_id", actor.ID),
		slog.Int64("reimbursement_id", input.ID),
		slog.Bool("receipt_replaced", params.ReceiptHandle != nil),
	)

	return updated, nil
}

// buildChanges returns only changed fields for audit.
func buildChanges(old, updated *domain.Reimbursement) map[string]any {
	changes := make(map[string]any)
	if old.Title != updated.Title {
		changes["title"] = domain.Change(old.Title, updated.Title)
	}
	if !old.Amount.Equal(updated.Amount) {
		changes["amount"] = domain.Change(old.Amount.String(), updated.Amount.String())
	}
	if old.Description != updated.Description {
		changes["description"] = domain.Change(old.Description, updated.Description)
	}
	if old.ReceiptHandle != updated.ReceiptHandle {
		changes["receipt"] = domain.Change(old.ReceiptHandle, updated.ReceiptHandle)
	}
	if old.Status != updated.Status {
		changes["status"] = domain.Change(old.Status, updated.Status)
	}
	return changes
}
