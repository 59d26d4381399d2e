package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lokeshloki65/college-event/internal/clock"
	"github.com/lokeshloki65/college-event/internal/domain"
	"github.com/lokeshloki65/college-event/internal/metrics"
	"github.com/lokeshloki65/college-event/internal/notifier"
)

// RegistrationStore persists registrations. Create must enforce the
// at-most-one-non-cancelled-registration-per-(event, subject) rule at write
// time and report a violation as domain.ErrAlreadyRegistered; the duplicate
// pre-read in Submit exists only for error ordering, the store closes the
// race.
type RegistrationStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	Create(ctx context.Context, reg domain.Registration) error
	FindActive(ctx context.Context, eventID, subjectID string) (*domain.Registration, error)
	Get(ctx context.Context, number string) (domain.Registration, error)
	UpdateStatus(ctx context.Context, number string, expectedVersion int, upd domain.StatusUpdate) error
	UpdateDetails(ctx context.Context, number string, expectedVersion int, upd domain.DetailsUpdate) error
	ListBySubject(ctx context.Context, subjectID string) ([]domain.Registration, error)
}

// CapacityLedger tracks admitted counts per event. TryReserve is an atomic
// check-and-increment: it must never let two concurrent callers both succeed
// past the ceiling. A nil ceiling means unlimited.
type CapacityLedger interface {
	TryReserve(ctx context.Context, eventID string, ceiling *int) error
	Release(ctx context.Context, eventID string) error
}

// SequenceAllocator issues the next strictly-increasing sequence number for
// a calendar day. Numbers may have gaps but never duplicates.
type SequenceAllocator interface {
	Allocate(ctx context.Context, day string) (int, error)
}

// EventDirectory is the event collaborator: eligibility reads plus the two
// bookkeeping side effects admission and cancellation apply to it.
type EventDirectory interface {
	GetEventEligibility(ctx context.Context, eventID string) (domain.EventEligibility, error)
	AdjustRegistrationTotal(ctx context.Context, eventID string, delta int) error
	AddSubjectEvent(ctx context.Context, subjectID, eventID string) error
	RemoveSubjectEvent(ctx context.Context, subjectID, eventID string) error
}

// Publisher is the fan-out side channel. Implementations must not block.
type Publisher interface {
	Publish(topic string, ev notifier.Event)
}

// AdmissionService decides whether a registration attempt is accepted and
// commits it atomically with the capacity ledger and sequence allocator.
type AdmissionService struct {
	regs   RegistrationStore
	events EventDirectory
	ledger CapacityLedger
	seq    SequenceAllocator
	pub    Publisher
	clock  clock.Clock
	loc    *time.Location
	log    *zap.Logger
}

type AdmissionOption func(*AdmissionService)

// WithAdmissionLocation sets the timezone used for the daily sequence key.
func WithAdmissionLocation(loc *time.Location) AdmissionOption {
	return func(s *AdmissionService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithAdmissionLogger(log *zap.Logger) AdmissionOption {
	return func(s *AdmissionService) {
		if log != nil {
			s.log = log
		}
	}
}

func NewAdmissionService(
	regs RegistrationStore,
	events EventDirectory,
	ledger CapacityLedger,
	seq SequenceAllocator,
	pub Publisher,
	clk clock.Clock,
	opts ...AdmissionOption,
) *AdmissionService {
	svc := &AdmissionService{
		regs:   regs,
		events: events,
		ledger: ledger,
		seq:    seq,
		pub:    pub,
		clock:  clk,
		loc:    time.UTC,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type SubmitInput struct {
	EventID             string
	SubjectID           string
	Kind                domain.RegistrationKind
	TeamName            string
	TeamMembers         []domain.TeamMember
	ContactEmail        string
	ContactPhone        string
	SpecialRequirements string
	PaymentAmount       int
	PaymentReference    string
	PaymentScreenshot   string
}

// Submit validates the attempt in a fixed order (first failure wins), then
// reserves capacity, allocates an identifier, and durably stores the
// registration. Any failure after the reservation releases it again, so a
// failed submit never leaks capacity.
func (s *AdmissionService) Submit(ctx context.Context, in SubmitInput) (domain.Registration, error) {
	reg, err := s.submit(ctx, in)
	if err != nil {
		metrics.RecordAdmission(domain.Reason(err))
		return domain.Registration{}, err
	}
	metrics.RecordAdmission("admitted")
	return reg, nil
}

func (s *AdmissionService) submit(ctx context.Context, in SubmitInput) (domain.Registration, error) {
	if in.Kind != domain.KindIndividual && in.Kind != domain.KindTeam {
		return domain.Registration{}, domain.ErrInvalidKind
	}

	elig, err := s.events.GetEventEligibility(ctx, in.EventID)
	if err != nil {
		return domain.Registration{}, err
	}
	if !elig.Active {
		return domain.Registration{}, domain.ErrEventNotFound
	}
	if elig.Status != domain.EventUpcoming {
		return domain.Registration{}, domain.ErrEventNotOpen
	}

	now := s.clock.Now()
	if now.After(elig.RegistrationDeadline) {
		return domain.Registration{}, domain.ErrDeadlinePassed
	}

	existing, err := s.regs.FindActive(ctx, in.EventID, in.SubjectID)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("find existing registration: %w", err)
	}
	if existing != nil {
		return domain.Registration{}, domain.ErrAlreadyRegistered
	}

	if in.Kind == domain.KindTeam {
		if strings.TrimSpace(in.TeamName) == "" {
			return domain.Registration{}, domain.ErrTeamNameRequired
		}
		if err := checkTeamSize(len(in.TeamMembers), elig.TeamSize); err != nil {
			return domain.Registration{}, err
		}
	}

	if err := s.ledger.TryReserve(ctx, in.EventID, elig.Capacity); err != nil {
		return domain.Registration{}, err
	}
	// Every exit below this point must either commit the registration or
	// give the reservation back.

	if strings.TrimSpace(in.PaymentScreenshot) == "" {
		s.compensate(ctx, in.EventID)
		return domain.Registration{}, domain.ErrMissingPaymentProof
	}

	localNow := now.In(s.loc)
	seq, err := s.seq.Allocate(ctx, dayKey(localNow))
	if err != nil {
		s.compensate(ctx, in.EventID)
		return domain.Registration{}, err
	}

	reg := domain.Registration{
		Number:              formatRegistrationNumber(localNow, seq),
		EventID:             in.EventID,
		SubjectID:           in.SubjectID,
		Kind:                in.Kind,
		Status:              domain.StatusSubmitted,
		ContactEmail:        strings.TrimSpace(in.ContactEmail),
		ContactPhone:        strings.TrimSpace(in.ContactPhone),
		SpecialRequirements: in.SpecialRequirements,
		Payment: domain.PaymentClaim{
			Amount:        in.PaymentAmount,
			Reference:     in.PaymentReference,
			ScreenshotRef: in.PaymentScreenshot,
			Status:        domain.PaymentPending,
		},
		SubmittedAt: now,
		Version:     1,
	}
	if in.Kind == domain.KindTeam {
		reg.TeamName = strings.TrimSpace(in.TeamName)
		reg.TeamMembers = in.TeamMembers
	}

	if err := s.regs.Create(ctx, reg); err != nil {
		s.compensate(ctx, in.EventID)
		return domain.Registration{}, err
	}

	// Collaborator bookkeeping; failures here do not unwind the admission.
	if err := s.events.AdjustRegistrationTotal(ctx, in.EventID, 1); err != nil {
		s.log.Warn("adjust event registration total",
			zap.String("event_id", in.EventID), zap.Error(err))
	}
	if err := s.events.AddSubjectEvent(ctx, in.SubjectID, in.EventID); err != nil {
		s.log.Warn("add subject event",
			zap.String("subject_id", in.SubjectID), zap.Error(err))
	}

	publish(s.pub, notifier.EventRegistrationCreated, reg, now,
		notifier.TopicBroadcast, notifier.TopicRoleAdmin, notifier.TopicSubject(reg.SubjectID))

	return reg, nil
}

// compensate releases a reservation after a failed admission. It runs
// detached from ctx cancellation so a caller timeout cannot leak capacity.
func (s *AdmissionService) compensate(ctx context.Context, eventID string) {
	if err := s.ledger.Release(context.WithoutCancel(ctx), eventID); err != nil {
		s.log.Error("release capacity after failed admission",
			zap.String("event_id", eventID), zap.Error(err))
	}
}

func publish(pub Publisher, name string, reg domain.Registration, at time.Time, topics ...string) {
	ev := notifier.Event{
		Name:           name,
		RegistrationID: reg.Number,
		EventID:        reg.EventID,
		SubjectID:      reg.SubjectID,
		Status:         string(reg.Status),
		Timestamp:      at,
	}
	for _, topic := range topics {
		pub.Publish(topic, ev)
	}
}

func checkTeamSize(size int, bounds domain.TeamSizeBounds) error {
	if size == 0 {
		return domain.ErrTeamSizeOutOfBounds
	}
	if bounds.Min > 0 && size < bounds.Min {
		return domain.ErrTeamSizeOutOfBounds
	}
	if bounds.Max > 0 && size > bounds.Max {
		return domain.ErrTeamSizeOutOfBounds
	}
	return nil
}
