// Package service contains the booking engine: the single code path
// through which tickets are reserved, priced, confirmed and released.
// The service talks to storage through narrow interfaces so the engine
// can be exercised without a database.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eventhub-live/eventhub/internal/model"
	"github.com/eventhub-live/eventhub/internal/pricing"
	"github.com/eventhub-live/eventhub/internal/queue"
	"github.com/eventhub-live/eventhub/internal/repository"
	"github.com/eventhub-live/eventhub/internal/utils"
)

// FlatTierName is the tier label recorded on bookings against events
// that do not define tiers.
const FlatTierName = "Standard"

// Actors recorded on cancellation events.
const (
	CancelledByUser      = "user"
	CancelledByAdmin     = "admin"
	CancelledByOrganizer = "organizer"
	CancelledByPayment   = "payment_failed"
)

// EventStore is the slice of event persistence the booking engine needs.
type EventStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Event, error)
	ReserveTier(ctx context.Context, eventID uint64, tierName string, qty uint32) error
	ReserveCapacity(ctx context.Context, eventID uint64, qty uint32) error
	ReleaseTier(ctx context.Context, eventID uint64, tierName string, qty uint32) error
	ReleaseCapacity(ctx context.Context, eventID uint64, qty uint32) error
}

// BookingStore is the slice of booking persistence the engine needs.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	GetByRef(ctx context.Context, ref string) (*model.Booking, error)
	TransitionStatus(ctx context.Context, id uint64, from, to string, paymentID *string) (bool, error)
	ListActiveByEvent(ctx context.Context, eventID uint64) ([]model.Booking, error)
}

// RateSource supplies the current platform pricing rates.
type RateSource interface {
	PricingRates(ctx context.Context) (pricing.Rates, error)
}

// EventPublisher emits booking lifecycle events to the broker.
// Publishing is best-effort; failures are logged, never propagated.
type EventPublisher interface {
	BookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
	BookingCancelled(ctx context.Context, ev queue.BookingCancelledEvent) error
}

// BookingService implements ticket booking and its lifecycle.  Seat
// accounting relies on the store's conditional updates: reservation and
// every status transition succeed for exactly one caller, so capacity
// is released exactly once no matter how requests interleave.
type BookingService struct {
	events   EventStore
	bookings BookingStore
	rates    RateSource
	pub      EventPublisher
	now      func() time.Time
}

// NewBookingService wires the booking engine to its stores and the
// broker publisher.
func NewBookingService(events EventStore, bookings BookingStore, rates RateSource, pub EventPublisher) *BookingService {
	return &BookingService{
		events:   events,
		bookings: bookings,
		rates:    rates,
		pub:      pub,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// checkBookable returns a ClosedError when the event refuses bookings.
// Reasons are checked in a fixed order so a cancelled, unpublished
// event always reports cancellation.
func checkBookable(ev *model.Event, now time.Time) error {
	switch {
	case ev.IsCancelled:
		return &repository.ClosedError{Reason: repository.ClosedCancelled}
	case !ev.IsPublished:
		return &repository.ClosedError{Reason: repository.ClosedUnpublished}
	case !ev.BookingOpen:
		return &repository.ClosedError{Reason: repository.ClosedManually}
	case !ev.Date.After(now):
		return &repository.ClosedError{Reason: repository.ClosedExpired}
	}
	return nil
}

// resolveTier maps the requested tier name onto the event's pricing.
// Tiered events match tier names case-insensitively; flat events accept
// an empty name or the standard label and price at BasePrice.
func resolveTier(ev *model.Event, tierName string) (label string, unitPrice float64, err error) {
	if ev.Tiered() {
		for i := range ev.Tiers {
			if strings.EqualFold(ev.Tiers[i].Name, tierName) {
				return ev.Tiers[i].Name, ev.Tiers[i].UnitPrice, nil
			}
		}
		return "", 0, repository.ErrInvalidTicketType
	}
	if tierName != "" && !strings.EqualFold(tierName, FlatTierName) {
		return "", 0, repository.ErrInvalidTicketType
	}
	return FlatTierName, ev.BasePrice, nil
}

// Quote prices a prospective booking without reserving anything.  The
// same preconditions apply as for booking, so a quote succeeds exactly
// when a booking attempt could (capacity aside).
func (s *BookingService) Quote(ctx context.Context, eventID uint64, tierName string, quantity uint32) (pricing.Breakdown, error) {
	if quantity < 1 {
		return pricing.Breakdown{}, repository.ErrInvalidQuantity
	}
	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return pricing.Breakdown{}, err
	}
	if err := checkBookable(ev, s.now()); err != nil {
		return pricing.Breakdown{}, err
	}
	_, unitPrice, err := resolveTier(ev, tierName)
	if err != nil {
		return pricing.Breakdown{}, err
	}
	rates, err := s.rates.PricingRates(ctx)
	if err != nil {
		return pricing.Breakdown{}, err
	}
	return pricing.ComputeBreakdown(unitPrice, quantity, rates), nil
}

// CreateBooking reserves capacity and records a booking for the user.
// The booking starts PENDING; when a payment reference accompanies the
// request the booking is created CONFIRMED directly.  On any failure
// after the seats were decremented, the reservation is released before
// the error is returned.
func (s *BookingService) CreateBooking(ctx context.Context, userID, eventID uint64, tierName string, quantity uint32, paymentRef *string) (*model.Booking, error) {
	if quantity < 1 {
		return nil, repository.ErrInvalidQuantity
	}
	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := checkBookable(ev, s.now()); err != nil {
		return nil, err
	}
	label, unitPrice, err := resolveTier(ev, tierName)
	if err != nil {
		return nil, err
	}
	rates, err := s.rates.PricingRates(ctx)
	if err != nil {
		return nil, err
	}

	// Atomic decrement; the only point where concurrent requests race.
	if ev.Tiered() {
		err = s.events.ReserveTier(ctx, ev.ID, label, quantity)
	} else {
		err = s.events.ReserveCapacity(ctx, ev.ID, quantity)
	}
	if err != nil {
		return nil, err
	}

	bd := pricing.ComputeBreakdown(unitPrice, quantity, rates)
	status := model.BookingPending
	if paymentRef != nil && *paymentRef != "" {
		status = model.BookingConfirmed
	}
	b := &model.Booking{
		UserID:         userID,
		EventID:        ev.ID,
		TierName:       label,
		Quantity:       quantity,
		PricePerTicket: unitPrice,
		ConvenienceFee: bd.ConvenienceFee,
		Tax:            bd.Tax,
		TotalAmount:    bd.Total,
		Status:         status,
		PaymentID:      paymentRef,
	}

	// Booking references are unique; on the rare collision, regenerate.
	var createErr error
	for attempt := 0; attempt < 3; attempt++ {
		b.Ref, createErr = s.newBookingRef()
		if createErr != nil {
			break
		}
		createErr = s.bookings.Create(ctx, b)
		if createErr == nil || !errors.Is(createErr, repository.ErrConflict) {
			break
		}
	}
	if createErr != nil {
		s.release(ctx, ev, label, quantity)
		return nil, createErr
	}

	if b.Status == model.BookingConfirmed {
		s.publishConfirmed(ctx, ev, b)
	}
	return b, nil
}

// ConfirmPayment moves a PENDING booking to CONFIRMED, typically from a
// payment provider webhook.  An empty payment reference gets a
// generated one so every confirmed booking carries an identifier.
// Confirming an already confirmed booking is a no-op; confirming a
// cancelled one is ErrInvalidStateTransition.
func (s *BookingService) ConfirmPayment(ctx context.Context, ref, paymentRef string) (*model.Booking, error) {
	b, err := s.bookings.GetByRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	switch b.Status {
	case model.BookingConfirmed:
		return b, nil
	case model.BookingCancelled:
		return nil, repository.ErrInvalidStateTransition
	}

	if paymentRef == "" {
		paymentRef = uuid.NewString()
	}
	ok, err := s.bookings.TransitionStatus(ctx, b.ID, model.BookingPending, model.BookingConfirmed, &paymentRef)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the race; report based on where the booking ended up.
		cur, err := s.bookings.GetByID(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		if cur.Status == model.BookingConfirmed {
			return cur, nil
		}
		return nil, repository.ErrInvalidStateTransition
	}

	b.Status = model.BookingConfirmed
	b.PaymentID = &paymentRef
	ev, err := s.events.GetByID(ctx, b.EventID)
	if err == nil {
		s.publishConfirmed(ctx, ev, b)
	}
	return b, nil
}

// FailPayment cancels a PENDING booking after a failed payment and
// releases its seats.
func (s *BookingService) FailPayment(ctx context.Context, ref string) (*model.Booking, error) {
	b, err := s.bookings.GetByRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	if b.Status != model.BookingPending {
		if b.Status == model.BookingCancelled {
			return nil, repository.ErrAlreadyCancelled
		}
		return nil, repository.ErrInvalidStateTransition
	}
	return s.cancel(ctx, b, CancelledByPayment)
}

// CancelBooking cancels a booking and releases the reserved seats.
// Permitted actors: the booking's owner, the event's organizer and
// admins.  Cancelling twice returns ErrAlreadyCancelled so the second
// caller knows nothing changed.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, actorID uint64, actorRole string) (*model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	by, err := s.cancelActor(ctx, b, actorID, actorRole)
	if err != nil {
		return nil, err
	}
	if b.Status == model.BookingCancelled {
		return nil, repository.ErrAlreadyCancelled
	}
	return s.cancel(ctx, b, by)
}

func (s *BookingService) cancelActor(ctx context.Context, b *model.Booking, actorID uint64, actorRole string) (string, error) {
	switch {
	case actorRole == model.RoleAdmin:
		return CancelledByAdmin, nil
	case b.UserID == actorID:
		return CancelledByUser, nil
	case actorRole == model.RoleOrganizer:
		ev, err := s.events.GetByID(ctx, b.EventID)
		if err != nil {
			return "", err
		}
		if ev.OrganizerID == actorID {
			return CancelledByOrganizer, nil
		}
	}
	return "", repository.ErrForbidden
}

// CancelAllForEvent cancels every active booking against an event and
// releases their seats.  Used when an organizer cancels the event
// itself.  Returns the number of bookings cancelled; bookings that
// raced into CANCELLED meanwhile are skipped, not errors.
func (s *BookingService) CancelAllForEvent(ctx context.Context, eventID uint64) (int, error) {
	active, err := s.bookings.ListActiveByEvent(ctx, eventID)
	if err != nil {
		return 0, err
	}
	cancelled := 0
	for i := range active {
		if _, err := s.cancel(ctx, &active[i], CancelledByOrganizer); err != nil {
			if errors.Is(err, repository.ErrAlreadyCancelled) {
				continue
			}
			return cancelled, err
		}
		cancelled++
	}
	return cancelled, nil
}

// cancel performs the CANCELLED transition from the booking's current
// state.  The conditional update is what guarantees the release runs at
// most once: a competing cancel loses the transition and never touches
// the seat pool.
func (s *BookingService) cancel(ctx context.Context, b *model.Booking, by string) (*model.Booking, error) {
	ok, err := s.bookings.TransitionStatus(ctx, b.ID, b.Status, model.BookingCancelled, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		cur, err := s.bookings.GetByID(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		if cur.Status == model.BookingCancelled {
			return nil, repository.ErrAlreadyCancelled
		}
		// Status changed underneath us (e.g. PENDING -> CONFIRMED);
		// retry once from the fresh state.
		ok, err = s.bookings.TransitionStatus(ctx, cur.ID, cur.Status, model.BookingCancelled, nil)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, repository.ErrAlreadyCancelled
		}
		b = cur
	}

	ev, err := s.events.GetByID(ctx, b.EventID)
	if err != nil {
		// The seats could not be restored; surface loudly, the booking
		// itself is already cancelled.
		log.Printf("booking %s cancelled but release failed: %v", b.Ref, err)
		return nil, err
	}
	s.release(ctx, ev, b.TierName, b.Quantity)

	b.Status = model.BookingCancelled
	s.publishCancelled(ctx, ev, b, by)
	return b, nil
}

// release restores seats after a cancellation or a failed creation.
func (s *BookingService) release(ctx context.Context, ev *model.Event, tierName string, qty uint32) {
	var err error
	if ev.Tiered() {
		err = s.events.ReleaseTier(ctx, ev.ID, tierName, qty)
	} else {
		err = s.events.ReleaseCapacity(ctx, ev.ID, qty)
	}
	if err != nil {
		log.Printf("release %d seat(s) for event %d tier %q failed: %v", qty, ev.ID, tierName, err)
	}
}

// newBookingRef builds a reference like TKT-20260830174501-a93f2c.
func (s *BookingService) newBookingRef() (string, error) {
	suffix, err := utils.RandomHex(3)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("TKT-%s-%s", s.now().Format("20060102150405"), suffix), nil
}

func (s *BookingService) publishConfirmed(ctx context.Context, ev *model.Event, b *model.Booking) {
	var paymentRef string
	if b.PaymentID != nil {
		paymentRef = *b.PaymentID
	}
	err := s.pub.BookingConfirmed(ctx, queue.BookingConfirmedEvent{
		BookingID:   b.ID,
		BookingRef:  b.Ref,
		UserID:      b.UserID,
		EventID:     ev.ID,
		EventTitle:  ev.Title,
		TierName:    b.TierName,
		Quantity:    b.Quantity,
		TotalAmount: b.TotalAmount,
		PaymentRef:  paymentRef,
		ConfirmedAt: s.now().Format(time.RFC3339),
	})
	if err != nil {
		log.Printf("publish booking.confirmed for %s failed: %v", b.Ref, err)
	}
}

func (s *BookingService) publishCancelled(ctx context.Context, ev *model.Event, b *model.Booking, by string) {
	err := s.pub.BookingCancelled(ctx, queue.BookingCancelledEvent{
		BookingID:   b.ID,
		BookingRef:  b.Ref,
		UserID:      b.UserID,
		EventID:     ev.ID,
		EventTitle:  ev.Title,
		TierName:    b.TierName,
		Quantity:    b.Quantity,
		TotalAmount: b.TotalAmount,
		CancelledBy: by,
		CancelledAt: s.now().Format(time.RFC3339),
	})
	if err != nil {
		log.Printf("publish booking.cancelled for %s failed: %v", b.Ref, err)
	}
}
