package domain

// Status is the lifecycle state shared by budgets and reimbursements.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusSettled  Status = "settled"
)

func (s Status) String() string { return string(s) }

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusSettled:
		return true
	}
	return false
}

// IsVerifyTarget reports whether s can be requested through a verify call.
// Settled is only reachable through settlement.
func (s Status) IsVerifyTarget() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition may leave s.
func (s Status) IsTerminal() bool {
	return s == StatusSettled
}

// AfterEdit returns the status a record enters when its content is edited.
// Edits are only permitted from pending and rejected, and an edited record
// must be reviewed again, so the result is always pending.
func (s Status) AfterEdit() Status {
	return StatusPending
}

// SourceType tells whether a reimbursement draws against a budget.
type SourceType string

const (
	SourceTypeBudget SourceType = "budget"
	SourceTypeDirect SourceType = "direct"
)

func (t SourceType) String() string { return string(t) }

func (t SourceType) IsValid() bool {
	switch t {
	case SourceTypeBudget, SourceTypeDirect:
		return true
	}
	return false
}

// UserRole represents the authorization level of a user.
type UserRole string

const (
	UserRoleMember  UserRole = "member"
	UserRoleManager UserRole = "manager"
	UserRoleAdmin   UserRole = "admin"
)

func (r UserRole) String() string { return string(r) }

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleMember, UserRoleManager, UserRoleAdmin:
		return true
	}
	return false
}

// IsPrivileged reports whether the role may review and settle other users' records.
func (r UserRole) IsPrivileged() bool {
	return r == UserRoleManager || r == UserRoleAdmin
}

// EntityKind names the record type in messages and metrics.
type EntityKind string

const (
	EntityBudget        EntityKind = "budget"
	EntityReimbursement EntityKind = "reimbursement"
	EntityDisbursement  EntityKind = "disbursement"
)

func (k EntityKind) String() string { return string(k) }

// Title returns the kind with an upper-case first letter, for sentence starts.
func (k EntityKind) Title() string {
	switch k {
	case EntityBudget:
		return "Budget"
	case EntityReimbursement:
		return "Reimbursement"
	case EntityDisbursement:
		return "Disbursement"
	}
	return string(k)
}
