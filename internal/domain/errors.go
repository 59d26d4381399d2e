package domain

import "errors"

var (
	ErrEventNotFound          = errors.New("event not found")
	ErrEventNotOpen           = errors.New("event is not open for registration")
	ErrDeadlinePassed         = errors.New("registration deadline has passed")
	ErrAlreadyRegistered      = errors.New("already registered for this event")
	ErrEventFull              = errors.New("event is full")
	ErrMissingPaymentProof    = errors.New("payment screenshot is required")
	ErrInvalidKind            = errors.New("invalid registration kind")
	ErrTeamNameRequired       = errors.New("team name is required")
	ErrTeamSizeOutOfBounds    = errors.New("team size outside event bounds")
	ErrRegistrationNotFound   = errors.New("registration not found")
	ErrTransitionNotAllowed   = errors.New("transition not allowed")
	ErrTransitionConflict     = errors.New("registration changed concurrently")
	ErrCancellationNotAllowed = errors.New("registration cannot be cancelled")
	ErrAllocationUnavailable  = errors.New("sequence allocator unavailable")
	ErrLedgerUnavailable      = errors.New("capacity ledger unavailable")
)

// Stable reason codes. Calling layers branch on these, never on messages.
const (
	ReasonValidation            = "validation_error"
	ReasonEventNotFound         = "event_not_found"
	ReasonEventNotOpen          = "event_not_open"
	ReasonDeadlinePassed        = "deadline_passed"
	ReasonAlreadyRegistered     = "already_registered"
	ReasonEventFull             = "event_full"
	ReasonMissingPaymentProof   = "missing_payment_proof"
	ReasonRegistrationNotFound  = "registration_not_found"
	ReasonTransitionNotAllowed  = "transition_not_allowed"
	ReasonTransitionConflict    = "transition_conflict"
	ReasonCancelNotAllowed      = "cancellation_not_allowed"
	ReasonAllocationUnavailable = "allocation_unavailable"
	ReasonLedgerUnavailable     = "ledger_unavailable"
	ReasonInternal              = "internal_error"
)

// Reason maps an error to its stable reason code. Unknown errors are
// reported as internal.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidKind),
		errors.Is(err, ErrTeamNameRequired),
		errors.Is(err, ErrTeamSizeOutOfBounds):
		return ReasonValidation
	case errors.Is(err, ErrEventNotFound):
		return ReasonEventNotFound
	case errors.Is(err, ErrEventNotOpen):
		return ReasonEventNotOpen
	case errors.Is(err, ErrDeadlinePassed):
		return ReasonDeadlinePassed
	case errors.Is(err, ErrAlreadyRegistered):
		return ReasonAlreadyRegistered
	case errors.Is(err, ErrEventFull):
		return ReasonEventFull
	case errors.Is(err, ErrMissingPaymentProof):
		return ReasonMissingPaymentProof
	case errors.Is(err, ErrRegistrationNotFound):
		return ReasonRegistrationNotFound
	case errors.Is(err, ErrTransitionNotAllowed):
		return ReasonTransitionNotAllowed
	case errors.Is(err, ErrTransitionConflict):
		return ReasonTransitionConflict
	case errors.Is(err, ErrCancellationNotAllowed):
		return ReasonCancelNotAllowed
	case errors.Is(err, ErrAllocationUnavailable):
		return ReasonAllocationUnavailable
	case errors.Is(err, ErrLedgerUnavailable):
		return ReasonLedgerUnavailable
	default:
		return ReasonInternal
	}
}
