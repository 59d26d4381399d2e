package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lokeshloki65/college-event/internal/domain"
)

// SequenceAllocator hands out gapless per-day ordinals for registration
// numbers. The upsert both creates the day row and increments it in one
// statement, so concurrent callers always see distinct values.
type SequenceAllocator struct {
	pool *pgxpool.Pool
}

func NewSequenceAllocator(pool *pgxpool.Pool) *SequenceAllocator {
	return &SequenceAllocator{pool: pool}
}

// Allocate returns the next ordinal for the given day key, starting at 1.
func (a *SequenceAllocator) Allocate(ctx context.Context, day string) (int, error) {
	var value int
	err := queryRow(ctx, a.pool,
		`INSERT INTO day_sequences (day, next_value) VALUES ($1, 1)
		 ON CONFLICT (day) DO UPDATE SET next_value = day_sequences.next_value + 1
		 RETURNING next_value`,
		day,
	).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrAllocationUnavailable, err)
	}
	return value, nil
}
