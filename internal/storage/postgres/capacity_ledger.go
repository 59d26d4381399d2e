package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lokeshloki65/college-event/internal/domain"
)

// CapacityLedger owns the per-event admitted counters. Both operations are
// single conditional statements so check-and-increment can never interleave
// at the application tier, even across service instances.
type CapacityLedger struct {
	pool *pgxpool.Pool
}

func NewCapacityLedger(pool *pgxpool.Pool) *CapacityLedger {
	return &CapacityLedger{pool: pool}
}

// TryReserve atomically admits one slot for the event if the counter is
// still below the ceiling. A nil ceiling means unlimited.
func (l *CapacityLedger) TryReserve(ctx context.Context, eventID string, ceiling *int) error {
	// Counter rows are created lazily; the insert is a no-op once one exists.
	if _, err := exec(ctx, l.pool,
		`INSERT INTO capacity_counters (event_id, admitted_count) VALUES ($1, 0)
		 ON CONFLICT (event_id) DO NOTHING`,
		eventID,
	); err != nil {
		if isInvalidUUID(err) {
			return domain.ErrEventNotFound
		}
		return fmt.Errorf("%w: ensure counter: %v", domain.ErrLedgerUnavailable, err)
	}

	tag, err := exec(ctx, l.pool,
		`UPDATE capacity_counters
		 SET admitted_count = admitted_count + 1
		 WHERE event_id = $1 AND ($2::INT IS NULL OR admitted_count < $2)`,
		eventID, ceiling,
	)
	if err != nil {
		return fmt.Errorf("%w: reserve: %v", domain.ErrLedgerUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventFull
	}
	return nil
}

// Release atomically gives one admitted slot back, floored at zero.
func (l *CapacityLedger) Release(ctx context.Context, eventID string) error {
	_, err := exec(ctx, l.pool,
		`UPDATE capacity_counters
		 SET admitted_count = GREATEST(admitted_count - 1, 0)
		 WHERE event_id = $1`,
		eventID,
	)
	if err != nil {
		return fmt.Errorf("%w: release: %v", domain.ErrLedgerUnavailable, err)
	}
	return nil
}

// AdmittedCount reads the current counter; 0 when no row exists yet.
func (l *CapacityLedger) AdmittedCount(ctx context.Context, eventID string) (int, error) {
	var count int
	err := queryRow(ctx, l.pool,
		`SELECT COALESCE((SELECT admitted_count FROM capacity_counters WHERE event_id = $1), 0)`,
		eventID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("admitted count: %w", err)
	}
	return count, nil
}
