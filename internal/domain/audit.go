package domain

import "time"

// AuditAction is the kind of mutation recorded in the audit log.
type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionVerify AuditAction = "verify"
	AuditActionSettle AuditAction = "settle"
	AuditActionDelete AuditAction = "delete"
)

func (a AuditAction) String() string { return string(a) }

// AuditRecord logs a mutation of a budget or reimbursement. Rows are written
// in the same transaction as the mutation they describe.
type AuditRecord struct {
	ID         int64
	ActorID    int64
	EntityType EntityKind
	EntityID   int64
	Action     AuditAction
	Changes    map[string]any
	CreatedAt  time.Time
}

// Change builds an old/new pair for AuditRecord.Changes.
func Change(old, updated any) map[string]any {
	return map[string]any{"old": old, "new": updated}
}
