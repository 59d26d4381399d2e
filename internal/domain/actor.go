package domain

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

// Actor is the capability token the identity collaborator hands to every
// lifecycle operation. Review transitions require the reviewer capability;
// self-edits and cancels require ownership.
type Actor struct {
	SubjectID string
	Role      Role
}

func (a Actor) CanReview() bool {
	return a.Role == RoleAdmin
}

func (a Actor) Owns(r Registration) bool {
	return a.SubjectID != "" && a.SubjectID == r.SubjectID
}
