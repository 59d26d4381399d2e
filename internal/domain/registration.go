package domain

import "time"

type RegistrationKind string

const (
	KindIndividual RegistrationKind = "individual"
	KindTeam       RegistrationKind = "team"
)

type Status string

const (
	StatusSubmitted   Status = "submitted"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
	StatusCancelled   Status = "cancelled"
)

// Terminal reports whether no further transition is permitted from s.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusCancelled
}

// CountsTowardCapacity reports whether a registration in status s occupies a
// slot in its event's capacity counter. Rejected and cancelled registrations
// do not.
func (s Status) CountsTowardCapacity() bool {
	switch s {
	case StatusSubmitted, StatusUnderReview, StatusApproved:
		return true
	default:
		return false
	}
}

// CanReview reports whether a reviewer may move a registration from one
// status to another. Re-flagging back to under_review is allowed from any
// non-terminal status except under_review itself.
func CanReview(from, to Status) bool {
	switch from {
	case StatusSubmitted:
		return to == StatusUnderReview || to == StatusApproved || to == StatusRejected
	case StatusUnderReview:
		return to == StatusApproved || to == StatusRejected
	case StatusApproved:
		return to == StatusUnderReview
	default:
		return false
	}
}

// CanCancel reports whether a registrant may self-cancel from status s.
// The event-start guard is checked separately against the event directory.
func CanCancel(s Status) bool {
	return s == StatusApproved
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentVerified PaymentStatus = "verified"
	PaymentRejected PaymentStatus = "rejected"
)

// PaymentClaim records what the registrant claims to have paid. The
// screenshot pointer is produced by the upload collaborator; nothing here is
// verified by this service.
type PaymentClaim struct {
	Amount        int
	Reference     string
	ScreenshotRef string
	Status        PaymentStatus
}

type TeamMember struct {
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	College    string `json:"college,omitempty"`
	Department string `json:"department,omitempty"`
	Year       string `json:"year,omitempty"`
}

// Registration is the admitted record for one subject on one event. Its
// identity is the allocator-issued number (EVT-YYYY-MM-DD-NNNN). Version
// guards concurrent lifecycle transitions: every status or detail update
// must carry the version it read and bumps it by one.
type Registration struct {
	Number              string
	EventID             string
	SubjectID           string
	Kind                RegistrationKind
	TeamName            string
	TeamMembers         []TeamMember
	Status              Status
	ContactEmail        string
	ContactPhone        string
	SpecialRequirements string
	Payment             PaymentClaim
	AdminNotes          string
	ReviewedBy          string
	ReviewedAt          *time.Time
	SubmittedAt         time.Time
	Version             int
}

// StatusUpdate is the mutation applied by a lifecycle transition.
type StatusUpdate struct {
	Status     Status
	ReviewedBy string
	ReviewedAt *time.Time
	AdminNotes string
}

// DetailsUpdate is the limited self-edit a registrant may apply while the
// registration is still in submitted status. Nil fields are left untouched.
type DetailsUpdate struct {
	ContactEmail        *string
	ContactPhone        *string
	SpecialRequirements *string
	PaymentScreenshot   *string
}
