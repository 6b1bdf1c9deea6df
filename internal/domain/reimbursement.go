package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reimbursement is a claim for funds, either direct or drawn against an
// approved budget.
type Reimbursement struct {
	ID            int64
	Title         string
	Amount        decimal.Decimal
	Description   string
	ReceiptHandle string
	Status        Status
	SourceType    SourceType
	BudgetID      *int64
	UserID        *int64
	SettledAt     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	User *UserIdentity
}

// Record returns the view evaluated by the permission rules.
func (r *Reimbursement) Record() Record {
	return Record{Kind: EntityReimbursement, OwnerID: r.UserID, Status: r.Status}
}

// IsExportable reports whether the claim belongs on a payout request sheet:
// approved, direct and not linked to any budget.
func (r *Reimbursement) IsExportable() bool {
	return r.Status == StatusApproved && r.SourceType == SourceTypeDirect && r.BudgetID == nil
}

// ReimbursementUpdateParams holds the columns written by an edit. Nil fields
// keep their stored value; Status is always written.
type ReimbursementUpdateParams struct {
	Title         *string
	Amount        *decimal.Decimal
	Description   *string
	ReceiptHandle *string
	Status        Status
}
