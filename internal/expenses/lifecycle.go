package expenses

import (
	"fmt"
	"strings"

	"github.com/kensetsu-erp/kensetsu-erp/internal/shared"
)

// Action enumerates lifecycle actions on an expense.
type Action string

const (
	ActionSubmit  Action = "submit"
	ActionEdit    Action = "edit"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionSettle  Action = "settle"
)

type transitionRule struct {
	to        Status
	role      shared.Role
	ownerOnly bool
	needsNote bool
}

// transitions is the single source of truth for the expense workflow.
// Edit keeps the current status, so it is handled separately below.
var transitions = map[Status]map[Action]transitionRule{
	StatusDraft: {
		ActionSubmit: {to: StatusSubmitted, role: shared.RoleApplicant, ownerOnly: true},
	},
	StatusSubmitted: {
		ActionApprove: {to: StatusApproved, role: shared.RoleApprover},
		ActionReject:  {to: StatusRejected, role: shared.RoleApprover, needsNote: true},
	},
	StatusApproved: {
		ActionSettle: {to: StatusSettled, role: shared.RoleFinance},
	},
}

// editableStatuses are the statuses in which the owner may change content.
var editableStatuses = map[Status]bool{
	StatusDraft:    true,
	StatusRejected: true,
}

// Transition resolves the target status for action performed by actor, or an
// error describing why the action is not allowed. It never mutates e.
func Transition(e Expense, action Action, actor shared.Actor, comment string) (Status, error) {
	if action == ActionEdit {
		if !editableStatuses[e.Status] {
			return "", invalidTransition(e.Status, action)
		}
		if e.ApplicantID != actor.ID {
			return "", fmt.Errorf("%w: only the applicant may edit", ErrForbidden)
		}
		return e.Status, nil
	}

	rule, ok := transitions[e.Status][action]
	if !ok {
		return "", invalidTransition(e.Status, action)
	}
	if rule.ownerOnly && e.ApplicantID != actor.ID {
		return "", fmt.Errorf("%w: only the applicant may %s", ErrForbidden, action)
	}
	if !actor.Is(rule.role) {
		return "", fmt.Errorf("%w: %s requires role %s", ErrForbidden, action, rule.role)
	}
	if rule.needsNote && strings.TrimSpace(comment) == "" {
		return "", fmt.Errorf("%w: reject requires a reason", ErrValidation)
	}
	return rule.to, nil
}

// CanDelete reports whether the expense may be deleted at all. Deletion is a
// precondition check, not a transition.
func CanDelete(e Expense) bool {
	return e.Status == StatusDraft
}

// RecordsApproval reports whether the action appends an approval log entry.
func RecordsApproval(action Action) bool {
	switch action {
	case ActionApprove, ActionReject, ActionSettle:
		return true
	}
	return false
}

func invalidTransition(from Status, action Action) error {
	return fmt.Errorf("%w: cannot %s from %s", ErrInvalidTransition, action, from)
}
