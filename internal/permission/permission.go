// Package permission decides whether an actor may mutate a budget or a
// reimbursement. Decisions are pure functions of the actor, the record's
// ownership and status, and the requested operation.
package permission

import (
	"fmt"

	"github.com/heartmarshall/expense-ledger/internal/domain"
)

// Operation is a mutation gated by the permission rules.
type Operation string

const (
	OpEdit   Operation = "edit"
	OpVerify Operation = "verify"
	OpDelete Operation = "delete"
	OpSettle Operation = "settle"
)

func (o Operation) String() string { return string(o) }

// Decision is the outcome of a permission check. Kind is domain.ErrForbidden
// or domain.ErrStateInvalid for denials and nil otherwise.
type Decision struct {
	Allowed bool
	Reason  string
	Kind    error
}

// Err returns nil for an allowed decision and a *domain.RuleError otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return domain.NewRuleError(d.Kind, d.Reason)
}

func allow() Decision { return Decision{Allowed: true} }

func deny(kind error, reason string) Decision {
	return Decision{Kind: kind, Reason: reason}
}

// branch is the status gate applied to one class of actor.
type branch struct {
	statuses []domain.Status
	// only inverts the gate: the operation is allowed only in statuses.
	only   bool
	reason func(kind domain.EntityKind, s domain.Status) string
}

func (b *branch) permits(s domain.Status) bool {
	listed := false
	for _, st := range b.statuses {
		if st == s {
			listed = true
			break
		}
	}
	return listed == b.only
}

// rule gates one operation. A nil owner branch means ownership grants
// nothing and the operation is decided by role alone. A transition moves the
// record to another status and is never permitted from a terminal status.
type rule struct {
	transition bool
	owner      *branch
	privileged *branch
	forbidden  func(kind domain.EntityKind) string
}

var rules = map[Operation]rule{
	OpEdit: {
		transition: true,
		owner: &branch{
			statuses: []domain.Status{domain.StatusApproved},
			reason:   cannot("edit"),
		},
		privileged: &branch{
			reason: cannot("edit"),
		},
		forbidden: unauthorizedTo("edit"),
	},
	OpVerify: {
		transition: true,
		privileged: &branch{
			statuses: []domain.Status{domain.StatusApproved},
			reason:   alreadyIn,
		},
		forbidden: onlyPrivileged("verify"),
	},
	OpDelete: {
		owner: &branch{
			statuses: []domain.Status{domain.StatusApproved},
			reason:   cannot("delete"),
		},
		privileged: &branch{
			statuses: []domain.Status{domain.StatusSettled},
			only:     true,
			reason: func(kind domain.EntityKind, _ domain.Status) string {
				return fmt.Sprintf("Cannot delete unsettled %s", kind)
			},
		},
		forbidden: unauthorizedTo("delete"),
	},
	OpSettle: {
		transition: true,
		privileged: &branch{
			statuses: []domain.Status{domain.StatusApproved},
			only:     true,
			reason: func(kind domain.EntityKind, s domain.Status) string {
				if s == domain.StatusSettled {
					return alreadyIn(kind, s)
				}
				return fmt.Sprintf("%s is not approved yet", kind.Title())
			},
		},
		forbidden: onlyPrivileged("settle"),
	},
}

// Decide evaluates op on rec for actor. The owner branch is evaluated
// before the role branch, so a manager acting on their own record is held
// to the owner's rules.
func Decide(actor domain.Actor, rec domain.Record, op Operation) Decision {
	if rec.Kind == domain.EntityDisbursement {
		return deny(domain.ErrForbidden, "Disbursements cannot be modified")
	}
	r, ok := rules[op]
	if !ok {
		return deny(domain.ErrForbidden, fmt.Sprintf("Unknown operation %q", op))
	}

	switch {
	case r.owner != nil && actor.Owns(rec.OwnerID):
		return r.decideBranch(r.owner, rec)
	case actor.Role.IsPrivileged():
		return r.decideBranch(r.privileged, rec)
	}
	return deny(domain.ErrForbidden, r.forbidden(rec.Kind))
}

func (r rule) decideBranch(b *branch, rec domain.Record) Decision {
	if r.transition && rec.Status.IsTerminal() {
		return deny(domain.ErrStateInvalid, b.reason(rec.Kind, rec.Status))
	}
	if b.permits(rec.Status) {
		return allow()
	}
	return deny(domain.ErrStateInvalid, b.reason(rec.Kind, rec.Status))
}

func cannot(verb string) func(domain.EntityKind, domain.Status) string {
	return func(kind domain.EntityKind, s domain.Status) string {
		return fmt.Sprintf("Cannot %s %s %s", verb, s, kind)
	}
}

func alreadyIn(kind domain.EntityKind, s domain.Status) string {
	return fmt.Sprintf("%s is already %s", kind.Title(), s)
}

func unauthorizedTo(verb string) func(domain.EntityKind) string {
	return func(kind domain.EntityKind) string {
		return fmt.Sprintf("Unauthorized to %s this %s", verb, kind)
	}
}

func onlyPrivileged(verb string) func(domain.EntityKind) string {
	return func(kind domain.EntityKind) string {
		return fmt.Sprintf("Only managers and admins can %s %ss", verb, kind)
	}
}
