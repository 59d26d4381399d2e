package app

import (
	"fmt"
	"time"
)

const dayKeyLayout = "2006-01-02"

// dayKey is the sequence-allocator key for t: the calendar day in the
// service's configured timezone.
func dayKey(t time.Time) string {
	return t.Format(dayKeyLayout)
}

// formatRegistrationNumber renders the human-readable registration
// identifier, e.g. EVT-2026-09-01-0042.
func formatRegistrationNumber(t time.Time, sequence int) string {
	return fmt.Sprintf("EVT-%s-%04d", t.Format(dayKeyLayout), sequence)
}
