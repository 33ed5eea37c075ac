package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventhub-live/eventhub/internal/model"
	"github.com/eventhub-live/eventhub/internal/pricing"
	"github.com/eventhub-live/eventhub/internal/queue"
	"github.com/eventhub-live/eventhub/internal/repository"
)

// fakeEventStore keeps events in memory and mirrors the conditional
// decrement semantics of the SQL store: mutate under a lock only when
// enough seats remain.
type fakeEventStore struct {
	mu     sync.Mutex
	events map[uint64]*model.Event
}

func newFakeEventStore(events ...*model.Event) *fakeEventStore {
	s := &fakeEventStore{events: make(map[uint64]*model.Event)}
	for _, ev := range events {
		s.events[ev.ID] = ev
	}
	return s
}

func (s *fakeEventStore) GetByID(_ context.Context, id uint64) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	if !ok {
		return nil, repository.ErrEventNotFound
	}
	cp := *ev
	cp.Tiers = append([]model.Tier(nil), ev.Tiers...)
	return &cp, nil
}

func (s *fakeEventStore) ReserveTier(_ context.Context, eventID uint64, tierName string, qty uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[eventID]
	if !ok {
		return repository.ErrEventNotFound
	}
	for i := range ev.Tiers {
		t := &ev.Tiers[i]
		if strings.EqualFold(t.Name, tierName) {
			if t.RemainingQuantity < qty {
				return &repository.CapacityError{Remaining: t.RemainingQuantity}
			}
			t.RemainingQuantity -= qty
			return nil
		}
	}
	return repository.ErrInvalidTicketType
}

func (s *fakeEventStore) ReleaseTier(_ context.Context, eventID uint64, tierName string, qty uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[eventID]
	if !ok {
		return repository.ErrEventNotFound
	}
	for i := range ev.Tiers {
		t := &ev.Tiers[i]
		if strings.EqualFold(t.Name, tierName) {
			t.RemainingQuantity += qty
			if t.RemainingQuantity > t.TotalQuantity {
				t.RemainingQuantity = t.TotalQuantity
			}
			return nil
		}
	}
	return repository.ErrInvalidTicketType
}

func (s *fakeEventStore) ReserveCapacity(_ context.Context, eventID uint64, qty uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[eventID]
	if !ok {
		return repository.ErrEventNotFound
	}
	if ev.Capacity < qty {
		return &repository.CapacityError{Remaining: ev.Capacity}
	}
	ev.Capacity -= qty
	return nil
}

func (s *fakeEventStore) ReleaseCapacity(_ context.Context, eventID uint64, qty uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[eventID]
	if !ok {
		return repository.ErrEventNotFound
	}
	ev.Capacity += qty
	return nil
}

func (s *fakeEventStore) remaining(eventID uint64, tierName string) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev := s.events[eventID]
	for i := range ev.Tiers {
		if strings.EqualFold(ev.Tiers[i].Name, tierName) {
			return ev.Tiers[i].RemainingQuantity
		}
	}
	return 0
}

func (s *fakeEventStore) capacity(eventID uint64) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events[eventID].Capacity
}

// fakeBookingStore stores bookings in memory.  TransitionStatus is a
// compare-and-swap on the status field, like the conditional UPDATE in
// the real store.
type fakeBookingStore struct {
	mu       sync.Mutex
	nextID   uint64
	bookings map[uint64]*model.Booking
	refTaken map[string]bool
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{
		nextID:   1,
		bookings: make(map[uint64]*model.Booking),
		refTaken: make(map[string]bool),
	}
}

func (s *fakeBookingStore) Create(_ context.Context, b *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refTaken[b.Ref] {
		return repository.ErrConflict
	}
	b.ID = s.nextID
	s.nextID++
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt
	cp := *b
	s.bookings[b.ID] = &cp
	s.refTaken[b.Ref] = true
	return nil
}

func (s *fakeBookingStore) GetByID(_ context.Context, id uint64) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *fakeBookingStore) GetByRef(_ context.Context, ref string) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.Ref == ref {
			cp := *b
			return &cp, nil
		}
	}
	return nil, repository.ErrBookingNotFound
}

func (s *fakeBookingStore) TransitionStatus(_ context.Context, id uint64, from, to string, paymentID *string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok || b.Status != from {
		return false, nil
	}
	b.Status = to
	if paymentID != nil {
		p := *paymentID
		b.PaymentID = &p
	}
	b.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (s *fakeBookingStore) ListActiveByEvent(_ context.Context, eventID uint64) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Booking
	for _, b := range s.bookings {
		if b.EventID == eventID && b.Status != model.BookingCancelled {
			out = append(out, *b)
		}
	}
	return out, nil
}

// fixedRates returns the same rates on every call.
type fixedRates struct{ r pricing.Rates }

func (f fixedRates) PricingRates(context.Context) (pricing.Rates, error) { return f.r, nil }

// capturePublisher records published events instead of dialing a broker.
type capturePublisher struct {
	mu        sync.Mutex
	confirmed []queue.BookingConfirmedEvent
	cancelled []queue.BookingCancelledEvent
}

func (p *capturePublisher) BookingConfirmed(_ context.Context, ev queue.BookingConfirmedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.confirmed = append(p.confirmed, ev)
	return nil
}

func (p *capturePublisher) BookingCancelled(_ context.Context, ev queue.BookingCancelledEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelled = append(p.cancelled, ev)
	return nil
}

func (p *capturePublisher) counts() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.confirmed), len(p.cancelled)
}

func tieredEvent() *model.Event {
	return &model.Event{
		ID:             1,
		OrganizerID:    10,
		Title:          "Summer Fest",
		Date:           time.Now().UTC().Add(48 * time.Hour),
		IsPublished:    true,
		BookingOpen:    true,
		ApprovalStatus: model.ApprovalApproved,
		Tiers: []model.Tier{
			{ID: 1, EventID: 1, Name: "VIP", UnitPrice: 150, TotalQuantity: 20, RemainingQuantity: 20},
			{ID: 2, EventID: 1, Name: "General", UnitPrice: 50, TotalQuantity: 100, RemainingQuantity: 100},
		},
	}
}

func flatEvent() *model.Event {
	return &model.Event{
		ID:             2,
		OrganizerID:    10,
		Title:          "Open Mic",
		Date:           time.Now().UTC().Add(24 * time.Hour),
		BasePrice:      25,
		Capacity:       10,
		IsPublished:    true,
		BookingOpen:    true,
		ApprovalStatus: model.ApprovalApproved,
	}
}

func newTestService(events ...*model.Event) (*BookingService, *fakeEventStore, *fakeBookingStore, *capturePublisher) {
	es := newFakeEventStore(events...)
	bs := newFakeBookingStore()
	pub := &capturePublisher{}
	svc := NewBookingService(es, bs, fixedRates{pricing.Rates{ConvenienceFee: 0.05, Tax: 0.18}}, pub)
	return svc, es, bs, pub
}

func TestCreateBookingHappyPath(t *testing.T) {
	svc, es, _, _ := newTestService(tieredEvent())

	b, err := svc.CreateBooking(context.Background(), 7, 1, "General", 2, nil)
	require.NoError(t, err)

	assert.Equal(t, model.BookingPending, b.Status)
	assert.Equal(t, "General", b.TierName)
	assert.Equal(t, uint32(2), b.Quantity)
	assert.Equal(t, 50.0, b.PricePerTicket)
	assert.Equal(t, 5.0, b.ConvenienceFee)  // 100 * 0.05
	assert.Equal(t, 18.9, b.Tax)            // 105 * 0.18
	assert.Equal(t, 123.9, b.TotalAmount)   // 100 + 5 + 18.90
	assert.Regexp(t, `^TKT-\d{14}-[0-9a-f]{6}$`, b.Ref)
	assert.Equal(t, uint32(98), es.remaining(1, "General"))
}

func TestCreateBookingTierNameCaseInsensitive(t *testing.T) {
	svc, _, _, _ := newTestService(tieredEvent())

	b, err := svc.CreateBooking(context.Background(), 7, 1, "vip", 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "VIP", b.TierName)
	assert.Equal(t, 150.0, b.PricePerTicket)
}

func TestCreateBookingUnknownTier(t *testing.T) {
	svc, es, _, _ := newTestService(tieredEvent())

	_, err := svc.CreateBooking(context.Background(), 7, 1, "Platinum", 1, nil)
	assert.ErrorIs(t, err, repository.ErrInvalidTicketType)
	assert.Equal(t, uint32(20), es.remaining(1, "VIP"))
}

func TestCreateBookingEventNotFound(t *testing.T) {
	svc, _, _, _ := newTestService(tieredEvent())

	_, err := svc.CreateBooking(context.Background(), 7, 99, "VIP", 1, nil)
	assert.ErrorIs(t, err, repository.ErrEventNotFound)
}

func TestCreateBookingZeroQuantity(t *testing.T) {
	svc, _, _, _ := newTestService(tieredEvent())

	_, err := svc.CreateBooking(context.Background(), 7, 1, "VIP", 0, nil)
	assert.ErrorIs(t, err, repository.ErrInvalidQuantity)
}

func TestCreateBookingInsufficientCapacity(t *testing.T) {
	svc, es, _, _ := newTestService(tieredEvent())

	_, err := svc.CreateBooking(context.Background(), 7, 1, "VIP", 21, nil)
	var capErr *repository.CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, uint32(20), capErr.Remaining)
	assert.Equal(t, uint32(20), es.remaining(1, "VIP"))
}

func TestCreateBookingClosedReasons(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*model.Event)
		reason string
	}{
		{"cancelled", func(ev *model.Event) { ev.IsCancelled = true }, repository.ClosedCancelled},
		{"unpublished", func(ev *model.Event) { ev.IsPublished = false }, repository.ClosedUnpublished},
		{"booking closed", func(ev *model.Event) { ev.BookingOpen = false }, repository.ClosedManually},
		{"date passed", func(ev *model.Event) { ev.Date = time.Now().UTC().Add(-time.Hour) }, repository.ClosedExpired},
		// Cancellation wins over every other closed reason.
		{"cancelled and unpublished", func(ev *model.Event) {
			ev.IsCancelled = true
			ev.IsPublished = false
		}, repository.ClosedCancelled},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ev := tieredEvent()
			tc.mutate(ev)
			svc, es, _, _ := newTestService(ev)

			_, err := svc.CreateBooking(context.Background(), 7, 1, "VIP", 1, nil)
			var closed *repository.ClosedError
			require.ErrorAs(t, err, &closed)
			assert.Equal(t, tc.reason, closed.Reason)
			assert.Equal(t, uint32(20), es.remaining(1, "VIP"))
		})
	}
}

func TestCreateBookingFlatCapacityFallback(t *testing.T) {
	svc, es, _, _ := newTestService(flatEvent())

	b, err := svc.CreateBooking(context.Background(), 7, 2, "", 4, nil)
	require.NoError(t, err)

	assert.Equal(t, FlatTierName, b.TierName)
	assert.Equal(t, 25.0, b.PricePerTicket)
	assert.Equal(t, uint32(6), es.capacity(2))

	// The standard label is also accepted, any case.
	_, err = svc.CreateBooking(context.Background(), 7, 2, "standard", 1, nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(5), es.capacity(2))

	// Tier names from some other event are not.
	_, err = svc.CreateBooking(context.Background(), 7, 2, "VIP", 1, nil)
	assert.ErrorIs(t, err, repository.ErrInvalidTicketType)
}

func TestCreateBookingImmediateConfirm(t *testing.T) {
	svc, _, _, pub := newTestService(tieredEvent())

	ref := "pay_12345"
	b, err := svc.CreateBooking(context.Background(), 7, 1, "VIP", 1, &ref)
	require.NoError(t, err)

	assert.Equal(t, model.BookingConfirmed, b.Status)
	require.NotNil(t, b.PaymentID)
	assert.Equal(t, "pay_12345", *b.PaymentID)

	confirmed, _ := pub.counts()
	assert.Equal(t, 1, confirmed)
}

func TestCreateBookingPriceSnapshotImmutable(t *testing.T) {
	ev := tieredEvent()
	svc, es, bs, _ := newTestService(ev)

	b, err := svc.CreateBooking(context.Background(), 7, 1, "VIP", 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 150.0, b.PricePerTicket)

	// Organizer raises the price afterwards.
	es.mu.Lock()
	es.events[1].Tiers[0].UnitPrice = 500
	es.mu.Unlock()

	stored, err := bs.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, 150.0, stored.PricePerTicket)
	assert.Equal(t, b.TotalAmount, stored.TotalAmount)

	// New bookings see the new price.
	b2, err := svc.CreateBooking(context.Background(), 7, 1, "VIP", 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 500.0, b2.PricePerTicket)
}

func TestConcurrentBookingsNeverOversell(t *testing.T) {
	ev := tieredEvent()
	ev.Tiers[0].TotalQuantity = 10
	ev.Tiers[0].RemainingQuantity = 10
	svc, es, _, _ := newTestService(ev)

	const workers = 50
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(userID uint64) {
			defer wg.Done()
			_, err := svc.CreateBooking(context.Background(), userID, 1, "VIP", 1, nil)
			results <- err
		}(uint64(i + 1))
	}
	wg.Wait()
	close(results)

	succeeded, rejected := 0, 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		var capErr *repository.CapacityError
		require.ErrorAs(t, err, &capErr, "only capacity rejections expected")
		rejected++
	}
	assert.Equal(t, 10, succeeded)
	assert.Equal(t, workers-10, rejected)
	assert.Equal(t, uint32(0), es.remaining(1, "VIP"))
}

func TestConfirmPayment(t *testing.T) {
	svc, _, _, pub := newTestService(tieredEvent())

	b, err := svc.CreateBooking(context.Background(), 7, 1, "VIP", 1, nil)
	require.NoError(t, err)
	require.Equal(t, model.BookingPending, b.Status)

	got, err := svc.ConfirmPayment(context.Background(), b.Ref, "pay_777")
	require.NoError(t, err)
	assert.Equal(t, model.BookingConfirmed, got.Status)
	require.NotNil(t, got.PaymentID)
	assert.Equal(t, "pay_777", *got.PaymentID)

	confirmed, _ := pub.counts()
	assert.Equal(t, 1, confirmed)

	// Confirming again is a no-op, not an error.
	again, err := svc.ConfirmPayment(context.Background(), b.Ref, "pay_888")
	require.NoError(t, err)
	assert.Equal(t, "pay_777", *again.PaymentID)
	confirmed, _ = pub.counts()
	assert.Equal(t, 1, confirmed)
}

func TestConfirmPaymentGeneratesReference(t *testing.T) {
	svc, _, _, _ := newTestService(tieredEvent())

	b, err := svc.CreateBooking(context.Background(), 7, 1, "VIP", 1, nil)
	require.NoError(t, err)

	got, err := svc.ConfirmPayment(context.Background(), b.Ref, "")
	require.NoError(t, err)
	require.NotNil(t, got.PaymentID)
	assert.NotEmpty(t, *got.PaymentID)
}

func TestConfirmPaymentOnCancelledBooking(t *testing.T) {
	svc, _, _, _ := newTestService(tieredEvent())

	b, err := svc.CreateBooking(context.Background(), 7, 1, "VIP", 1, nil)
	require.NoError(t, err)
	_, err = svc.CancelBooking(context.Background(), b.ID, 7, model.RoleCustomer)
	require.NoError(t, err)

	_, err = svc.ConfirmPayment(context.Background(), b.Ref, "pay_1")
	assert.ErrorIs(t, err, repository.ErrInvalidStateTransition)
}

func TestFailPayment(t *testing.T) {
	svc, es, _, pub := newTestService(tieredEvent())

	b, err := svc.CreateBooking(context.Background(), 7, 1, "VIP", 3, nil)
	require.NoError(t, err)
	require.Equal(t, uint32(17), es.remaining(1, "VIP"))

	got, err := svc.FailPayment(context.Background(), b.Ref)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, got.Status)
	assert.Equal(t, uint32(20), es.remaining(1, "VIP"))

	_, cancelled := pub.counts()
	assert.Equal(t, 1, cancelled)

	_, err = svc.FailPayment(context.Background(), b.Ref)
	assert.ErrorIs(t, err, repository.ErrAlreadyCancelled)
}

func TestCancelBookingRestoresCapacity(t *testing.T) {
	svc, es, _, _ := newTestService(tieredEvent())

	b, err := svc.CreateBooking(context.Background(), 7, 1, "General", 5, nil)
	require.NoError(t, err)
	require.Equal(t, uint32(95), es.remaining(1, "General"))

	got, err := svc.CancelBooking(context.Background(), b.ID, 7, model.RoleCustomer)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, got.Status)
	assert.Equal(t, uint32(100), es.remaining(1, "General"))

	// The second cancellation reports AlreadyCancelled and does not
	// release seats a second time.
	_, err = svc.CancelBooking(context.Background(), b.ID, 7, model.RoleCustomer)
	assert.ErrorIs(t, err, repository.ErrAlreadyCancelled)
	assert.Equal(t, uint32(100), es.remaining(1, "General"))
}

func TestCancelBookingOwnership(t *testing.T) {
	svc, _, _, _ := newTestService(tieredEvent())

	b, err := svc.CreateBooking(context.Background(), 7, 1, "VIP", 1, nil)
	require.NoError(t, err)

	_, err = svc.CancelBooking(context.Background(), b.ID, 8, model.RoleCustomer)
	assert.ErrorIs(t, err, repository.ErrForbidden)

	// Organizers may only cancel bookings on their own events.
	_, err = svc.CancelBooking(context.Background(), b.ID, 11, model.RoleOrganizer)
	assert.ErrorIs(t, err, repository.ErrForbidden)
	_, err = svc.CancelBooking(context.Background(), b.ID, 10, model.RoleOrganizer)
	assert.NoError(t, err)

	b2, err := svc.CreateBooking(context.Background(), 7, 1, "VIP", 1, nil)
	require.NoError(t, err)

	// Admins may cancel anyone's booking.
	_, err = svc.CancelBooking(context.Background(), b2.ID, 99, model.RoleAdmin)
	assert.NoError(t, err)
}

func TestCancelConfirmedBookingReleases(t *testing.T) {
	svc, es, _, _ := newTestService(tieredEvent())

	ref := "pay_1"
	b, err := svc.CreateBooking(context.Background(), 7, 1, "VIP", 2, &ref)
	require.NoError(t, err)
	require.Equal(t, model.BookingConfirmed, b.Status)
	require.Equal(t, uint32(18), es.remaining(1, "VIP"))

	_, err = svc.CancelBooking(context.Background(), b.ID, 7, model.RoleCustomer)
	require.NoError(t, err)
	assert.Equal(t, uint32(20), es.remaining(1, "VIP"))
}

func TestCancelFlatBookingRestoresCapacity(t *testing.T) {
	svc, es, _, _ := newTestService(flatEvent())

	b, err := svc.CreateBooking(context.Background(), 7, 2, "", 4, nil)
	require.NoError(t, err)
	require.Equal(t, uint32(6), es.capacity(2))

	_, err = svc.CancelBooking(context.Background(), b.ID, 7, model.RoleCustomer)
	require.NoError(t, err)
	assert.Equal(t, uint32(10), es.capacity(2))
}

func TestCancelAllForEvent(t *testing.T) {
	svc, es, _, pub := newTestService(tieredEvent())

	for i := 0; i < 3; i++ {
		_, err := svc.CreateBooking(context.Background(), uint64(i+1), 1, "General", 2, nil)
		require.NoError(t, err)
	}
	cancelledBooking, err := svc.CreateBooking(context.Background(), 9, 1, "General", 2, nil)
	require.NoError(t, err)
	_, err = svc.CancelBooking(context.Background(), cancelledBooking.ID, 9, model.RoleCustomer)
	require.NoError(t, err)
	require.Equal(t, uint32(94), es.remaining(1, "General"))

	n, err := svc.CancelAllForEvent(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, uint32(100), es.remaining(1, "General"))

	_, cancelled := pub.counts()
	assert.Equal(t, 4, cancelled) // 1 user cancel + 3 bulk
}

func TestBookingRefRegeneratedOnCollision(t *testing.T) {
	es := newFakeEventStore(tieredEvent())
	bs := newFakeBookingStore()
	pub := &capturePublisher{}
	svc := NewBookingService(es, bs, fixedRates{pricing.Rates{ConvenienceFee: 0.05, Tax: 0.18}}, pub)

	// Pin the clock so timestamps collide, then pre-take a few refs; the
	// random suffix makes an actual collision with all of them
	// astronomically unlikely, so creation still succeeds.
	fixed := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	for i := 0; i < 4; i++ {
		bs.refTaken[fmt.Sprintf("TKT-20260830120000-%06x", i)] = true
	}

	b, err := svc.CreateBooking(context.Background(), 7, 1, "VIP", 1, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(b.Ref, "TKT-20260830120000-"))
}

// errorPublisher always fails; booking flow must not care.
type errorPublisher struct{}

func (errorPublisher) BookingConfirmed(context.Context, queue.BookingConfirmedEvent) error {
	return errors.New("broker down")
}

func (errorPublisher) BookingCancelled(context.Context, queue.BookingCancelledEvent) error {
	return errors.New("broker down")
}

func TestPublisherFailureDoesNotBlockBooking(t *testing.T) {
	es := newFakeEventStore(tieredEvent())
	bs := newFakeBookingStore()
	svc := NewBookingService(es, bs, fixedRates{pricing.Rates{ConvenienceFee: 0.05, Tax: 0.18}}, errorPublisher{})

	ref := "pay_1"
	b, err := svc.CreateBooking(context.Background(), 7, 1, "VIP", 1, &ref)
	require.NoError(t, err)
	assert.Equal(t, model.BookingConfirmed, b.Status)

	_, err = svc.CancelBooking(context.Background(), b.ID, 7, model.RoleCustomer)
	assert.NoError(t, err)
}

func TestQuote(t *testing.T) {
	svc, es, _, _ := newTestService(tieredEvent())

	bd, err := svc.Quote(context.Background(), 1, "VIP", 2)
	require.NoError(t, err)
	assert.Equal(t, 300.0, bd.Subtotal)
	assert.Equal(t, 15.0, bd.ConvenienceFee)
	assert.Equal(t, 56.7, bd.Tax)
	assert.Equal(t, 371.7, bd.Total)

	// Quoting reserves nothing.
	assert.Equal(t, uint32(20), es.remaining(1, "VIP"))

	_, err = svc.Quote(context.Background(), 1, "Platinum", 1)
	assert.ErrorIs(t, err, repository.ErrInvalidTicketType)

	_, err = svc.Quote(context.Background(), 1, "VIP", 0)
	assert.ErrorIs(t, err, repository.ErrInvalidQuantity)
}
