package postgres

import (
	"context"
	"sync"
	"testing"

	"github.com/lokeshloki65/college-event/internal/testutil"
)

func TestSequenceAllocator(t *testing.T) {
	pool := testutil.NewTestPool(t)
	alloc := NewSequenceAllocator(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	t.Run("values are sequential from one per day", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		for want := 1; want <= 3; want++ {
			got, err := alloc.Allocate(ctx, "2026-09-01")
			if err != nil {
				t.Fatalf("allocate: %v", err)
			}
			if got != want {
				t.Fatalf("expected %d, got %d", want, got)
			}
		}

		// A different day starts its own sequence.
		got, err := alloc.Allocate(ctx, "2026-09-02")
		if err != nil {
			t.Fatalf("allocate: %v", err)
		}
		if got != 1 {
			t.Fatalf("expected fresh day to start at 1, got %d", got)
		}
	})

	t.Run("concurrent allocations are distinct and gapless", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		const workers = 50
		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			seen = make(map[int]bool, workers)
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				v, err := alloc.Allocate(ctx, "2026-09-01")
				if err != nil {
					t.Errorf("allocate: %v", err)
					return
				}
				mu.Lock()
				defer mu.Unlock()
				if seen[v] {
					t.Errorf("duplicate value %d", v)
				}
				seen[v] = true
			}()
		}
		wg.Wait()

		if len(seen) != workers {
			t.Fatalf("expected %d distinct values, got %d", workers, len(seen))
		}
		for v := 1; v <= workers; v++ {
			if !seen[v] {
				t.Fatalf("missing value %d", v)
			}
		}
	})
}
