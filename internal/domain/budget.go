package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget is a spending allowance a member requests before incurring costs.
type Budget struct {
	ID          int64
	Title       string
	Amount      decimal.Decimal
	Description string
	Status      Status
	UserID      *int64
	SettledAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// User is populated only by privileged listings.
	User *UserIdentity
}

// Record returns the view evaluated by the permission rules.
func (b *Budget) Record() Record {
	return Record{Kind: EntityBudget, OwnerID: b.UserID, Status: b.Status}
}

// BudgetUpdateParams holds the columns written by an edit. Nil fields keep
// their stored value; Status is always written.
type BudgetUpdateParams struct {
	Title       *string
	Amount      *decimal.Decimal
	Description *string
	Status      Status
}

// Record is the ownership and lifecycle view of a budget or reimbursement.
type Record struct {
	Kind    EntityKind
	OwnerID *int64
	Status  Status
}
