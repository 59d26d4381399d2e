package app

import (
	"context"
	"sync"

	"github.com/lokeshloki65/college-event/internal/domain"
	"github.com/lokeshloki65/college-event/internal/notifier"
)

// fakeRegStore enforces the same write-time guarantees the Postgres store
// does: uniqueness of (event, subject) across non-cancelled registrations
// and optimistic version checks. Mutex-guarded so concurrency tests exercise
// real races.
type fakeRegStore struct {
	mu        sync.Mutex
	regs      map[string]domain.Registration
	createErr error
}

func newFakeRegStore() *fakeRegStore {
	return &fakeRegStore{regs: make(map[string]domain.Registration)}
}

func (f *fakeRegStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeRegStore) Create(_ context.Context, reg domain.Registration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.regs {
		if existing.EventID == reg.EventID && existing.SubjectID == reg.SubjectID &&
			existing.Status != domain.StatusCancelled {
			return domain.ErrAlreadyRegistered
		}
	}
	f.regs[reg.Number] = reg
	return nil
}

func (f *fakeRegStore) FindActive(_ context.Context, eventID, subjectID string) (*domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, reg := range f.regs {
		if reg.EventID == eventID && reg.SubjectID == subjectID && reg.Status != domain.StatusCancelled {
			r := reg
			return &r, nil
		}
	}
	return nil, nil
}

func (f *fakeRegStore) Get(_ context.Context, number string) (domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reg, ok := f.regs[number]
	if !ok {
		return domain.Registration{}, domain.ErrRegistrationNotFound
	}
	return reg, nil
}

func (f *fakeRegStore) UpdateStatus(_ context.Context, number string, expectedVersion int, upd domain.StatusUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	reg, ok := f.regs[number]
	if !ok {
		return domain.ErrRegistrationNotFound
	}
	if reg.Version != expectedVersion {
		return domain.ErrTransitionConflict
	}
	reg.Status = upd.Status
	if upd.ReviewedBy != "" {
		reg.ReviewedBy = upd.ReviewedBy
		reg.ReviewedAt = upd.ReviewedAt
		reg.AdminNotes = upd.AdminNotes
	}
	reg.Version++
	f.regs[number] = reg
	return nil
}

func (f *fakeRegStore) UpdateDetails(_ context.Context, number string, expectedVersion int, upd domain.DetailsUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	reg, ok := f.regs[number]
	if !ok {
		return domain.ErrRegistrationNotFound
	}
	if reg.Version != expectedVersion {
		return domain.ErrTransitionConflict
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
	f.regs[number] = reg
	return nil
}

func (f *fakeRegStore) ListBySubject(_ context.Context, subjectID string) ([]domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Registration
	for _, reg := range f.regs {
		if reg.SubjectID == subjectID {
			out = append(out, reg)
		}
	}
	return out, nil
}

// fakeLedger implements the atomic check-and-increment contract in memory.
type fakeLedger struct {
	mu         sync.Mutex
	counts     map[string]int
	reserveErr error
	releaseErr error
	releases   int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{counts: make(map[string]int)}
}

func (f *fakeLedger) TryReserve(_ context.Context, eventID string, ceiling *int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reserveErr != nil {
		return f.reserveErr
	}
	if ceiling != nil && f.counts[eventID] >= *ceiling {
		return domain.ErrEventFull
	}
	f.counts[eventID]++
	return nil
}

func (f *fakeLedger) Release(_ context.Context, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.releaseErr != nil {
		return f.releaseErr
	}
	if f.counts[eventID] > 0 {
		f.counts[eventID]--
	}
	f.releases++
	return nil
}

func (f *fakeLedger) count(eventID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[eventID]
}

// fakeAllocator hands out per-day sequence numbers under a mutex.
type fakeAllocator struct {
	mu   sync.Mutex
	next map[string]int
	err  error
}

func newFakeAllocator() *fakeAllocator {
	return &fakeAllocator{next: make(map[string]int)}
}

func (f *fakeAllocator) Allocate(_ context.Context, day string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.next[day]++
	return f.next[day], nil
}

// fakeDirectory serves canned eligibility and records bookkeeping calls.
type fakeDirectory struct {
	mu       sync.Mutex
	events   map[string]domain.EventEligibility
	totals   map[string]int
	subjects map[string]map[string]bool
}

func newFakeDirectory(events map[string]domain.EventEligibility) *fakeDirectory {
	return &fakeDirectory{
		events:   events,
		totals:   make(map[string]int),
		subjects: make(map[string]map[string]bool),
	}
}

func (f *fakeDirectory) GetEventEligibility(_ context.Context, eventID string) (domain.EventEligibility, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	elig, ok := f.events[eventID]
	if !ok {
		return domain.EventEligibility{}, domain.ErrEventNotFound
	}
	return elig, nil
}

func (f *fakeDirectory) AdjustRegistrationTotal(_ context.Context, eventID string, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.totals[eventID] += delta
	return nil
}

func (f *fakeDirectory) AddSubjectEvent(_ context.Context, subjectID, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subjects[subjectID] == nil {
		f.subjects[subjectID] = make(map[string]bool)
	}
	f.subjects[subjectID][eventID] = true
	return nil
}

func (f *fakeDirectory) RemoveSubjectEvent(_ context.Context, subjectID, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subjects[subjectID], eventID)
	return nil
}

type published struct {
	topic string
	ev    notifier.Event
}

// fakePublisher records publishes in order.
type fakePublisher struct {
	mu     sync.Mutex
	events []published
}

func (f *fakePublisher) Publish(topic string, ev notifier.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, published{topic: topic, ev: ev})
}

func (f *fakePublisher) byName(name string) []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []published
	for _, p := range f.events {
		if p.ev.Name == name {
			out = append(out, p)
		}
	}
	return out
}

func (f *fakePublisher) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	var last string
	for _, p := range f.events {
		if p.ev.Name != last {
			out = append(out, p.ev.Name)
			last = p.ev.Name
		}
	}
	return out
}

func intPtr(v int) *int { return &v }
