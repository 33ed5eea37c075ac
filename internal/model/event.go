package model

import "time"

// Approval states an event moves through before an organizer may publish
// it.  Moderation is performed by platform admins; only APPROVED events
// are visible to the public.
const (
	ApprovalPending  = "PENDING"
	ApprovalApproved = "APPROVED"
	ApprovalRejected = "REJECTED"
)

// Tier is a named ticket category within an event (e.g. "VIP").  Each
// tier carries its own unit price and seat pool.  RemainingQuantity is
// decremented on reservation and restored on cancellation; it never
// exceeds TotalQuantity and never drops below zero.
//
// Fields:
//  ID                – primary key identifier.
//  EventID           – event this tier belongs to.
//  Name              – tier name, unique within the event (case-insensitive).
//  UnitPrice         – price per ticket for this tier.
//  TotalQuantity     – total number of seats in the tier.
//  RemainingQuantity – seats still available for booking.
//  Position          – display order within the event.
type Tier struct {
	ID                uint64  `json:"id"`
	EventID           uint64  `json:"event_id"`
	Name              string  `json:"name"`
	UnitPrice         float64 `json:"unit_price"`
	TotalQuantity     uint32  `json:"total_quantity"`
	RemainingQuantity uint32  `json:"remaining_quantity"`
	Position          uint32  `json:"position"`
}

// Event represents a bookable event owned by an organizer.  Events with
// tiers track availability per tier; events without tiers fall back to a
// single flat Capacity pool priced at BasePrice.  Booking is permitted
// only when the event is published, booking is open, the event is not
// cancelled and its date has not passed.
type Event struct {
	ID             uint64    `json:"id"`
	OrganizerID    uint64    `json:"organizer_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Venue          string    `json:"venue"`
	Category       string    `json:"category"`
	Date           time.Time `json:"date"`
	BasePrice      float64   `json:"base_price"`
	Capacity       uint32    `json:"capacity"`
	IsPublished    bool      `json:"is_published"`
	BookingOpen    bool      `json:"booking_open"`
	IsCancelled    bool      `json:"is_cancelled"`
	ApprovalStatus string    `json:"approval_status"`
	Tiers          []Tier    `json:"tiers,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Tiered reports whether the event uses per-tier accounting.  Events
// without tiers use the flat Capacity counter instead; the two modes are
// never mixed for the same event.
func (e *Event) Tiered() bool { return len(e.Tiers) > 0 }
