package expenses

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kensetsu-erp/kensetsu-erp/internal/shared"
)

var (
	owner    = shared.Actor{ID: 1, Role: shared.RoleApplicant}
	approver = shared.Actor{ID: 2, Role: shared.RoleApprover}
	finance  = shared.Actor{ID: 3, Role: shared.RoleFinance}
	admin    = shared.Actor{ID: 4, Role: shared.RoleAdmin}
)

func claim(status Status) Expense {
	return Expense{ID: 10, ApplicantID: owner.ID, Status: status}
}

func TestTransitionHappyPath(t *testing.T) {
	to, err := Transition(claim(StatusDraft), ActionSubmit, owner, "")
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, to)

	to, err = Transition(claim(StatusSubmitted), ActionApprove, approver, "")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, to)

	to, err = Transition(claim(StatusSubmitted), ActionReject, approver, "金額不明")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, to)

	to, err = Transition(claim(StatusApproved), ActionSettle, finance, "")
	require.NoError(t, err)
	assert.Equal(t, StatusSettled, to)
}

func TestTransitionInvalidFromStatus(t *testing.T) {
	cases := []struct {
		from   Status
		action Action
	}{
		{StatusDraft, ActionApprove},
		{StatusDraft, ActionSettle},
		{StatusSubmitted, ActionSubmit},
		{StatusSubmitted, ActionSettle},
		{StatusApproved, ActionApprove},
		{StatusRejected, ActionApprove},
		{StatusSettled, ActionSettle},
	}
	for _, tc := range cases {
		_, err := Transition(claim(tc.from), tc.action, admin, "note")
		assert.ErrorIs(t, err, ErrInvalidTransition, "%s from %s", tc.action, tc.from)
	}
}

func TestSubmitRequiresOwner(t *testing.T) {
	stranger := shared.Actor{ID: 99, Role: shared.RoleApplicant}
	_, err := Transition(claim(StatusDraft), ActionSubmit, stranger, "")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestApproveRequiresApproverRole(t *testing.T) {
	_, err := Transition(claim(StatusSubmitted), ActionApprove, owner, "")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = Transition(claim(StatusSubmitted), ActionApprove, finance, "")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAdminSatisfiesAnyRole(t *testing.T) {
	e := claim(StatusSubmitted)
	e.ApplicantID = admin.ID
	_, err := Transition(e, ActionApprove, admin, "")
	assert.NoError(t, err)
}

func TestRejectRequiresReason(t *testing.T) {
	_, err := Transition(claim(StatusSubmitted), ActionReject, approver, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = Transition(claim(StatusSubmitted), ActionReject, approver, "   ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestEditAllowedInDraftAndRejected(t *testing.T) {
	for _, st := range []Status{StatusDraft, StatusRejected} {
		to, err := Transition(claim(st), ActionEdit, owner, "")
		require.NoError(t, err)
		assert.Equal(t, st, to, "edit keeps the current status")
	}
	for _, st := range []Status{StatusSubmitted, StatusApproved, StatusSettled} {
		_, err := Transition(claim(st), ActionEdit, owner, "")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	}
}

func TestEditForbiddenForNonOwner(t *testing.T) {
	_, err := Transition(claim(StatusDraft), ActionEdit, approver, "")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCanDelete(t *testing.T) {
	assert.True(t, CanDelete(claim(StatusDraft)))
	assert.False(t, CanDelete(claim(StatusSubmitted)))
	assert.False(t, CanDelete(claim(StatusRejected)))
}

func TestRecordsApproval(t *testing.T) {
	assert.False(t, RecordsApproval(ActionSubmit))
	assert.False(t, RecordsApproval(ActionEdit))
	assert.True(t, RecordsApproval(ActionApprove))
	assert.True(t, RecordsApproval(ActionReject))
	assert.True(t, RecordsApproval(ActionSettle))
}
