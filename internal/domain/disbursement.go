package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Disbursement is the immutable ledger entry of a payout. It exists only for
// settled reimbursements and is removed only together with its source.
type Disbursement struct {
	ID              int64
	Title           string
	Amount          decimal.Decimal
	Description     string
	ReceiptHandle   string
	UserID          *int64
	ReimbursementID int64
	SettledAt       time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	User *UserIdentity
}

// NewDisbursement snapshots r as a payout made at settledAt. Values are
// copied verbatim and never re-validated.
func NewDisbursement(r *Reimbursement, settledAt time.Time) Disbursement {
	var userID *int64
	if r.UserID != nil {
		id := *r.UserID
		userID = &id
	}
	return Disbursement{
		Title:           r.Title,
		Amount:          r.Amount,
		Description:     r.Description,
		ReceiptHandle:   r.ReceiptHandle,
		UserID:          userID,
		ReimbursementID: r.ID,
		SettledAt:       settledAt,
	}
}

// SettleOutcome is the result of a bulk settlement.
type SettleOutcome struct {
	Updated []int64
	Skipped []SkippedID
}

// SkippedID names an id a bulk settlement left untouched and why.
type SkippedID struct {
	ID     int64
	Reason string
}
