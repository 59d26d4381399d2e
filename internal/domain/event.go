package domain

import "time"

type EventStatus string

const (
	EventUpcoming  EventStatus = "upcoming"
	EventOngoing   EventStatus = "ongoing"
	EventCompleted EventStatus = "completed"
	EventCancelled EventStatus = "cancelled"
)

// TeamSizeBounds constrains the member count of a team registration.
// A zero-value bounds (Min and Max both 0) means the event imposes none.
type TeamSizeBounds struct {
	Min int
	Max int
}

// Event is the directory record for a campus event. The engine owns none of
// it beyond TotalRegistrations; everything else is written by the event
// collaborator and read here at admission time.
type Event struct {
	ID                   string
	Name                 string
	Status               EventStatus
	StartsAt             time.Time
	RegistrationDeadline time.Time
	Capacity             *int
	TeamSize             TeamSizeBounds
	TotalRegistrations   int
	Active               bool
}

// EventEligibility is the admission-relevant slice of an event, re-read on
// every submit and cancel because the underlying event can change
// concurrently.
type EventEligibility struct {
	Status               EventStatus
	StartsAt             time.Time
	RegistrationDeadline time.Time
	Capacity             *int
	TeamSize             TeamSizeBounds
	Active               bool
}
