package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lokeshloki65/college-event/internal/domain"
	"github.com/lokeshloki65/college-event/internal/testutil"
)

func testRegistration(number, eventID, subjectID string) domain.Registration {
	return domain.Registration{
		Number:       number,
		EventID:      eventID,
		SubjectID:    subjectID,
		Kind:         domain.KindIndividual,
		Status:       domain.StatusSubmitted,
		ContactEmail: "student@example.edu",
		ContactPhone: "9999999999",
		Payment: domain.PaymentClaim{
			Amount:        250,
			Reference:     "UPI-1234",
			ScreenshotRef: "uploads/proof.png",
			Status:        domain.PaymentPending,
		},
		SubmittedAt: time.Now().UTC().Truncate(time.Microsecond),
		Version:     1,
	}
}

func TestRegistrationRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewRegistrationRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	t.Run("Create and Get round-trip", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		eventID := testutil.InsertEvent(t, ctx, pool, "Hackathon", 100)

		reg := testRegistration("EVT-2026-09-01-0001", eventID, "stu-1")
		reg.Kind = domain.KindTeam
		reg.TeamName = "Null Pointers"
		reg.TeamMembers = []domain.TeamMember{
			{Name: "Asha", Email: "asha@example.edu"},
			{Name: "Ravi"},
		}
		if err := repo.Create(ctx, reg); err != nil {
			t.Fatalf("create: %v", err)
		}

		got, err := repo.Get(ctx, reg.Number)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.EventID != eventID || got.SubjectID != "stu-1" {
			t.Fatalf("unexpected registration: %+v", got)
		}
		if got.TeamName != "Null Pointers" || len(got.TeamMembers) != 2 {
			t.Fatalf("team fields not persisted: %+v", got)
		}
		if got.Payment.Amount != 250 || got.Payment.Status != domain.PaymentPending {
			t.Fatalf("payment fields not persisted: %+v", got.Payment)
		}
		if got.Version != 1 {
			t.Fatalf("expected version 1, got %d", got.Version)
		}
	})

	t.Run("Get unknown number returns ErrRegistrationNotFound", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		_, err := repo.Get(ctx, "EVT-2026-01-01-9999")
		if !errors.Is(err, domain.ErrRegistrationNotFound) {
			t.Fatalf("expected ErrRegistrationNotFound, got %v", err)
		}
	})

	t.Run("duplicate active registration is rejected at the index", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		eventID := testutil.InsertEvent(t, ctx, pool, "Hackathon", 100)

		if err := repo.Create(ctx, testRegistration("EVT-2026-09-01-0001", eventID, "stu-1")); err != nil {
			t.Fatalf("first create: %v", err)
		}
		err := repo.Create(ctx, testRegistration("EVT-2026-09-01-0002", eventID, "stu-1"))
		if !errors.Is(err, domain.ErrAlreadyRegistered) {
			t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
		}
	})

	t.Run("cancelled registration frees the slot for a fresh attempt", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		eventID := testutil.InsertEvent(t, ctx, pool, "Hackathon", 100)

		first := testRegistration("EVT-2026-09-01-0001", eventID, "stu-1")
		if err := repo.Create(ctx, first); err != nil {
			t.Fatalf("first create: %v", err)
		}
		err := repo.UpdateStatus(ctx, first.Number, 1, domain.StatusUpdate{Status: domain.StatusCancelled})
		if err != nil {
			t.Fatalf("cancel: %v", err)
		}

		if err := repo.Create(ctx, testRegistration("EVT-2026-09-01-0002", eventID, "stu-1")); err != nil {
			t.Fatalf("re-register after cancel: %v", err)
		}
	})

	t.Run("FindActive ignores cancelled rows", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		eventID := testutil.InsertEvent(t, ctx, pool, "Hackathon", 100)

		reg := testRegistration("EVT-2026-09-01-0001", eventID, "stu-1")
		if err := repo.Create(ctx, reg); err != nil {
			t.Fatalf("create: %v", err)
		}

		got, err := repo.FindActive(ctx, eventID, "stu-1")
		if err != nil {
			t.Fatalf("find active: %v", err)
		}
		if got == nil || got.Number != reg.Number {
			t.Fatalf("expected active registration, got %+v", got)
		}

		if err := repo.UpdateStatus(ctx, reg.Number, 1, domain.StatusUpdate{Status: domain.StatusCancelled}); err != nil {
			t.Fatalf("cancel: %v", err)
		}
		got, err = repo.FindActive(ctx, eventID, "stu-1")
		if err != nil {
			t.Fatalf("find active after cancel: %v", err)
		}
		if got != nil {
			t.Fatalf("expected nil after cancel, got %+v", got)
		}
	})

	t.Run("UpdateStatus enforces the version check", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		eventID := testutil.InsertEvent(t, ctx, pool, "Hackathon", 100)

		reg := testRegistration("EVT-2026-09-01-0001", eventID, "stu-1")
		if err := repo.Create(ctx, reg); err != nil {
			t.Fatalf("create: %v", err)
		}

		reviewedAt := time.Now().UTC().Truncate(time.Microsecond)
		update := domain.StatusUpdate{
			Status:     domain.StatusApproved,
			ReviewedBy: "admin-1",
			ReviewedAt: &reviewedAt,
			AdminNotes: "looks good",
		}
		if err := repo.UpdateStatus(ctx, reg.Number, 1, update); err != nil {
			t.Fatalf("update status: %v", err)
		}

		got, err := repo.Get(ctx, reg.Number)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Status != domain.StatusApproved || got.Version != 2 {
			t.Fatalf("expected approved v2, got %s v%d", got.Status, got.Version)
		}
		if got.ReviewedBy != "admin-1" || got.ReviewedAt == nil || got.AdminNotes != "looks good" {
			t.Fatalf("review metadata not persisted: %+v", got)
		}

		// A second writer carrying the stale version loses.
		err = repo.UpdateStatus(ctx, reg.Number, 1, domain.StatusUpdate{Status: domain.StatusRejected})
		if !errors.Is(err, domain.ErrTransitionConflict) {
			t.Fatalf("expected ErrTransitionConflict, got %v", err)
		}

		err = repo.UpdateStatus(ctx, "EVT-2026-01-01-9999", 1, update)
		if !errors.Is(err, domain.ErrRegistrationNotFound) {
			t.Fatalf("expected ErrRegistrationNotFound, got %v", err)
		}
	})

	t.Run("UpdateDetails patches only the provided fields", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		eventID := testutil.InsertEvent(t, ctx, pool, "Hackathon", 100)

		reg := testRegistration("EVT-2026-09-01-0001", eventID, "stu-1")
		if err := repo.Create(ctx, reg); err != nil {
			t.Fatalf("create: %v", err)
		}

		phone := "8888888888"
		if err := repo.UpdateDetails(ctx, reg.Number, 1, domain.DetailsUpdate{ContactPhone: &phone}); err != nil {
			t.Fatalf("update details: %v", err)
		}

		got, err := repo.Get(ctx, reg.Number)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.ContactPhone != phone || got.ContactEmail != reg.ContactEmail {
			t.Fatalf("unexpected contact fields: %+v", got)
		}
		if got.Version != 2 {
			t.Fatalf("expected version 2, got %d", got.Version)
		}
	})

	t.Run("ListBySubject returns newest first", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		first := testutil.InsertEvent(t, ctx, pool, "Hackathon", 100)
		second := testutil.InsertEvent(t, ctx, pool, "Quiz Night", 100)

		older := testRegistration("EVT-2026-09-01-0001", first, "stu-1")
		older.SubmittedAt = time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond)
		newer := testRegistration("EVT-2026-09-01-0002", second, "stu-1")
		if err := repo.Create(ctx, older); err != nil {
			t.Fatalf("create older: %v", err)
		}
		if err := repo.Create(ctx, newer); err != nil {
			t.Fatalf("create newer: %v", err)
		}
		if err := repo.Create(ctx, testRegistration("EVT-2026-09-01-0003", first, "stu-2")); err != nil {
			t.Fatalf("create other subject: %v", err)
		}

		regs, err := repo.ListBySubject(ctx, "stu-1")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(regs) != 2 {
			t.Fatalf("expected 2 registrations, got %d", len(regs))
		}
		if regs[0].Number != newer.Number || regs[1].Number != older.Number {
			t.Fatalf("unexpected order: %s, %s", regs[0].Number, regs[1].Number)
		}
	})

	t.Run("WithTx rolls back the whole batch on failure", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		eventID := testutil.InsertEvent(t, ctx, pool, "Hackathon", 100)

		boom := errors.New("boom")
		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			if err := repo.Create(txCtx, testRegistration("EVT-2026-09-01-0001", eventID, "stu-1")); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}

		got, err := repo.FindActive(ctx, eventID, "stu-1")
		if err != nil {
			t.Fatalf("find active: %v", err)
		}
		if got != nil {
			t.Fatalf("expected rollback, found %+v", got)
		}
	})
}
