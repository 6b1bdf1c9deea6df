package postgres

import "github.com/heartmarshall/expense-ledger/internal/domain"

// OwnerColumns are the public user columns attached by OwnerJoin.
var OwnerColumns = []string{"u.id", "u.name", "u.email"}

// OwnerJoin returns the LEFT JOIN clause attaching the owner of the rows
// aliased as alias. Rows whose owner was removed keep NULL owner columns.
func OwnerJoin(alias string) string {
	return "users u ON u.id = " + alias + ".user_id"
}

// OwnerRow scans the nullable columns produced by OwnerJoin.
type OwnerRow struct {
	ID    *int64
	Name  *string
	Email *string
}

// Dest returns the scan destinations in OwnerColumns order.
func (o *OwnerRow) Dest() []any {
	return []any{&o.ID, &o.Name, &o.Email}
}

// Identity returns the owner's identity, or nil when there is no owner.
func (o *OwnerRow) Identity() *domain.UserIdentity {
	if o.ID == nil {
		return nil
	}
	id := domain.UserIdentity{ID: *o.ID}
	if o.Name != nil {
		id.Name = *o.Name
	}
	if o.Email != nil {
		id.Email = *o.Email
	}
	return &id
}
