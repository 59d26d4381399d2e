package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestCanReview(t *testing.T) {
	t.Parallel()

	cases := []struct {
		from Status
		to   Status
		want bool
	}{
		{StatusSubmitted, StatusUnderReview, true},
		{StatusSubmitted, StatusApproved, true},
		{StatusSubmitted, StatusRejected, true},
		{StatusUnderReview, StatusApproved, true},
		{StatusUnderReview, StatusRejected, true},
		{StatusUnderReview, StatusUnderReview, false},
		{StatusApproved, StatusUnderReview, true},
		{StatusApproved, StatusRejected, false},
		{StatusApproved, StatusCancelled, false},
		{StatusRejected, StatusUnderReview, false},
		{StatusCancelled, StatusUnderReview, false},
		{StatusSubmitted, StatusCancelled, false},
	}

	for _, tc := range cases {
		if got := CanReview(tc.from, tc.to); got != tc.want {
			t.Errorf("CanReview(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestStatusCountsTowardCapacity(t *testing.T) {
	t.Parallel()

	counted := []Status{StatusSubmitted, StatusUnderReview, StatusApproved}
	for _, s := range counted {
		if !s.CountsTowardCapacity() {
			t.Errorf("expected %s to count toward capacity", s)
		}
	}
	for _, s := range []Status{StatusRejected, StatusCancelled} {
		if s.CountsTowardCapacity() {
			t.Errorf("expected %s not to count toward capacity", s)
		}
		if !s.Terminal() {
			t.Errorf("expected %s to be terminal", s)
		}
	}
}

func TestReason(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want string
	}{
		{ErrTeamSizeOutOfBounds, ReasonValidation},
		{ErrEventNotFound, ReasonEventNotFound},
		{ErrEventNotOpen, ReasonEventNotOpen},
		{ErrDeadlinePassed, ReasonDeadlinePassed},
		{ErrAlreadyRegistered, ReasonAlreadyRegistered},
		{ErrEventFull, ReasonEventFull},
		{ErrMissingPaymentProof, ReasonMissingPaymentProof},
		{ErrTransitionNotAllowed, ReasonTransitionNotAllowed},
		{ErrTransitionConflict, ReasonTransitionConflict},
		{ErrCancellationNotAllowed, ReasonCancelNotAllowed},
		{fmt.Errorf("allocate: %w", ErrAllocationUnavailable), ReasonAllocationUnavailable},
		{fmt.Errorf("reserve: %w", ErrLedgerUnavailable), ReasonLedgerUnavailable},
		{errors.New("boom"), ReasonInternal},
	}

	for _, tc := range cases {
		if got := Reason(tc.err); got != tc.want {
			t.Errorf("Reason(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}
