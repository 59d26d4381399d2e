package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lokeshloki65/college-event/internal/domain"
)

// EventDirectory reads admission-relevant event data and maintains the
// denormalized registration bookkeeping the event collaborator exposes to
// its own callers.
type EventDirectory struct {
	pool *pgxpool.Pool
}

func NewEventDirectory(pool *pgxpool.Pool) *EventDirectory {
	return &EventDirectory{pool: pool}
}

// CreateEvent inserts a directory record. Used by seeding and tests; the
// engine itself never creates events.
func (d *EventDirectory) CreateEvent(ctx context.Context, ev domain.Event) error {
	_, err := exec(ctx, d.pool,
		`INSERT INTO events
		   (id, name, status, starts_at, registration_deadline, capacity,
		    team_size_min, team_size_max, total_registrations, active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		ev.ID, ev.Name, string(ev.Status), ev.StartsAt, ev.RegistrationDeadline,
		ev.Capacity, ev.TeamSize.Min, ev.TeamSize.Max, ev.TotalRegistrations, ev.Active,
	)
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// GetEventEligibility re-reads the admission-relevant slice of an event.
func (d *EventDirectory) GetEventEligibility(ctx context.Context, eventID string) (domain.EventEligibility, error) {
	var (
		el     domain.EventEligibility
		status string
	)
	err := queryRow(ctx, d.pool,
		`SELECT status, starts_at, registration_deadline, capacity,
		        team_size_min, team_size_max, active
		 FROM events WHERE id = $1`,
		eventID,
	).Scan(&status, &el.StartsAt, &el.RegistrationDeadline, &el.Capacity,
		&el.TeamSize.Min, &el.TeamSize.Max, &el.Active)
	if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
		return domain.EventEligibility{}, domain.ErrEventNotFound
	}
	if err != nil {
		return domain.EventEligibility{}, fmt.Errorf("get event eligibility: %w", err)
	}
	el.Status = domain.EventStatus(status)
	return el, nil
}

// AdjustRegistrationTotal bumps the event's denormalized registration count
// by delta, floored at zero.
func (d *EventDirectory) AdjustRegistrationTotal(ctx context.Context, eventID string, delta int) error {
	_, err := exec(ctx, d.pool,
		`UPDATE events
		 SET total_registrations = GREATEST(total_registrations + $2, 0)
		 WHERE id = $1`,
		eventID, delta,
	)
	if err != nil {
		return fmt.Errorf("adjust registration total: %w", err)
	}
	return nil
}

// AddSubjectEvent records that the subject holds a live registration for the
// event. Idempotent.
func (d *EventDirectory) AddSubjectEvent(ctx context.Context, subjectID, eventID string) error {
	_, err := exec(ctx, d.pool,
		`INSERT INTO subject_events (subject_id, event_id) VALUES ($1, $2)
		 ON CONFLICT (subject_id, event_id) DO NOTHING`,
		subjectID, eventID,
	)
	if err != nil {
		return fmt.Errorf("add subject event: %w", err)
	}
	return nil
}

// RemoveSubjectEvent drops the subject-event link after a cancellation.
func (d *EventDirectory) RemoveSubjectEvent(ctx context.Context, subjectID, eventID string) error {
	_, err := exec(ctx, d.pool,
		`DELETE FROM subject_events WHERE subject_id = $1 AND event_id = $2`,
		subjectID, eventID,
	)
	if err != nil {
		return fmt.Errorf("remove subject event: %w", err)
	}
	return nil
}
