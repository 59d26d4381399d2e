package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lokeshloki65/college-event/internal/clock"
	"github.com/lokeshloki65/college-event/internal/domain"
	"github.com/lokeshloki65/college-event/internal/metrics"
	"github.com/lokeshloki65/college-event/internal/notifier"
)

// LifecycleService governs the status transitions a registration may undergo
// after admission. Every transition is all-or-nothing: the status write, its
// review metadata, and any ledger side effect commit in one transaction, and
// a guard failure mutates nothing.
type LifecycleService struct {
	regs   RegistrationStore
	events EventDirectory
	ledger CapacityLedger
	pub    Publisher
	clock  clock.Clock
	log    *zap.Logger
}

type LifecycleOption func(*LifecycleService)

func WithLifecycleLogger(log *zap.Logger) LifecycleOption {
	return func(s *LifecycleService) {
		if log != nil {
			s.log = log
		}
	}
}

func NewLifecycleService(
	regs RegistrationStore,
	events EventDirectory,
	ledger CapacityLedger,
	pub Publisher,
	clk clock.Clock,
	opts ...LifecycleOption,
) *LifecycleService {
	svc := &LifecycleService{
		regs:   regs,
		events: events,
		ledger: ledger,
		pub:    pub,
		clock:  clk,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Transition moves a registration to a reviewer-set target status. The
// update carries the version the registration was read at; a concurrent
// transition makes the write miss and surfaces ErrTransitionConflict, which
// callers may retry.
func (s *LifecycleService) Transition(ctx context.Context, number string, target domain.Status, actor domain.Actor, notes string) (domain.Registration, error) {
	if !actor.CanReview() {
		return domain.Registration{}, domain.ErrTransitionNotAllowed
	}

	reg, err := s.regs.Get(ctx, number)
	if err != nil {
		return domain.Registration{}, err
	}
	if !domain.CanReview(reg.Status, target) {
		return domain.Registration{}, domain.ErrTransitionNotAllowed
	}

	now := s.clock.Now()
	upd := domain.StatusUpdate{
		Status:     target,
		ReviewedBy: actor.SubjectID,
		ReviewedAt: &now,
		AdminNotes: notes,
	}

	err = s.regs.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.regs.UpdateStatus(txCtx, number, reg.Version, upd); err != nil {
			return err
		}
		// Rejection moves the registration out of the capacity-counted set,
		// so the ledger must come down with it, atomically.
		if target == domain.StatusRejected && reg.Status.CountsTowardCapacity() {
			if err := s.ledger.Release(txCtx, reg.EventID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Registration{}, err
	}

	reg.Status = target
	reg.ReviewedBy = actor.SubjectID
	reg.ReviewedAt = &now
	reg.AdminNotes = notes
	reg.Version++

	metrics.RecordTransition(string(target))
	publish(s.pub, notifier.EventRegistrationStatus, reg, now,
		notifier.TopicBroadcast, notifier.TopicSubject(reg.SubjectID))

	return reg, nil
}

// Cancel is the registrant's self-cancel: only their own approved
// registration, and only while the event has not started. Success releases
// the capacity slot and unwinds the admission bookkeeping in one
// transaction.
func (s *LifecycleService) Cancel(ctx context.Context, number string, actor domain.Actor) (domain.Registration, error) {
	reg, err := s.regs.Get(ctx, number)
	if err != nil {
		return domain.Registration{}, err
	}
	if !actor.Owns(reg) {
		return domain.Registration{}, domain.ErrRegistrationNotFound
	}
	if !domain.CanCancel(reg.Status) {
		return domain.Registration{}, domain.ErrCancellationNotAllowed
	}

	elig, err := s.events.GetEventEligibility(ctx, reg.EventID)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("cancel eligibility check: %w", err)
	}
	now := s.clock.Now()
	if !now.Before(elig.StartsAt) {
		return domain.Registration{}, domain.ErrCancellationNotAllowed
	}

	err = s.regs.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.regs.UpdateStatus(txCtx, number, reg.Version, domain.StatusUpdate{Status: domain.StatusCancelled}); err != nil {
			return err
		}
		if err := s.ledger.Release(txCtx, reg.EventID); err != nil {
			return err
		}
		if err := s.events.AdjustRegistrationTotal(txCtx, reg.EventID, -1); err != nil {
			return err
		}
		return s.events.RemoveSubjectEvent(txCtx, reg.SubjectID, reg.EventID)
	})
	if err != nil {
		return domain.Registration{}, err
	}

	reg.Status = domain.StatusCancelled
	reg.Version++

	metrics.RecordTransition(string(domain.StatusCancelled))
	publish(s.pub, notifier.EventRegistrationCancelled, reg, now,
		notifier.TopicBroadcast, notifier.TopicRoleAdmin, notifier.TopicSubject(reg.SubjectID))

	return reg, nil
}

// UpdateOwn applies the limited self-edit a registrant is allowed while
// their registration is still awaiting review.
func (s *LifecycleService) UpdateOwn(ctx context.Context, number string, actor domain.Actor, upd domain.DetailsUpdate) (domain.Registration, error) {
	reg, err := s.regs.Get(ctx, number)
	if err != nil {
		return domain.Registration{}, err
	}
	if !actor.Owns(reg) {
		return domain.Registration{}, domain.ErrRegistrationNotFound
	}
	if reg.Status != domain.StatusSubmitted {
		return domain.Registration{}, domain.ErrTransitionNotAllowed
	}

	if err := s.regs.UpdateDetails(ctx, number, reg.Version, upd); err != nil {
		return domain.Registration{}, err
	}

	if upd.ContactEmail != nil {
		reg.ContactEmail = *upd.ContactEmail
	}
	if upd.ContactPhone != nil {
		reg.ContactPhone = *upd.ContactPhone
	}
	if upd.SpecialRequirements != nil {
		reg.SpecialRequirements = *upd.SpecialRequirements
	}
	if upd.PaymentScreenshot != nil {
		reg.Payment.ScreenshotRef = *upd.PaymentScreenshot
	}
	reg.Version++

	publish(s.pub, notifier.EventRegistrationUpdated, reg, s.clock.Now(),
		notifier.TopicSubject(reg.SubjectID))

	return reg, nil
}

// Get returns a registration visible to the actor: its owner, or any
// reviewer.
func (s *LifecycleService) Get(ctx context.Context, number string, actor domain.Actor) (domain.Registration, error) {
	reg, err := s.regs.Get(ctx, number)
	if err != nil {
		return domain.Registration{}, err
	}
	if !actor.Owns(reg) && !actor.CanReview() {
		return domain.Registration{}, domain.ErrRegistrationNotFound
	}
	return reg, nil
}

// ListOwn returns the actor's registrations, newest first.
func (s *LifecycleService) ListOwn(ctx context.Context, actor domain.Actor) ([]domain.Registration, error) {
	return s.regs.ListBySubject(ctx, actor.SubjectID)
}
