// Package queue defines message payloads exchanged over the message
// broker and the background consumer that drains them.
package queue

// Queue names used on the broker.  Both queues are declared durable.
const (
	BookingConfirmedQueue = "booking.confirmed"
	BookingCancelledQueue = "booking.cancelled"
)

// BookingConfirmedEvent is published when a booking reaches CONFIRMED.
// It carries enough information for downstream consumers (ticket
// rendering, notification, analytics) to act without querying the
// primary database.
type BookingConfirmedEvent struct {
	BookingID   uint64  `json:"booking_id"`
	BookingRef  string  `json:"booking_ref"`
	UserID      uint64  `json:"user_id"`
	EventID     uint64  `json:"event_id"`
	EventTitle  string  `json:"event_title"`
	TierName    string  `json:"tier_name"`
	Quantity    uint32  `json:"quantity"`
	TotalAmount float64 `json:"total_amount"`
	PaymentRef  string  `json:"payment_ref,omitempty"`
	ConfirmedAt string  `json:"confirmed_at"`
}

// BookingCancelledEvent is published when a booking is cancelled, either
// by the user, the organizer, an admin or a failed payment.  CancelledBy
// records which path triggered the cancellation.
type BookingCancelledEvent struct {
	BookingID   uint64  `json:"booking_id"`
	BookingRef  string  `json:"booking_ref"`
	UserID      uint64  `json:"user_id"`
	EventID     uint64  `json:"event_id"`
	EventTitle  string  `json:"event_title"`
	TierName    string  `json:"tier_name"`
	Quantity    uint32  `json:"quantity"`
	TotalAmount float64 `json:"total_amount"`
	CancelledBy string  `json:"cancelled_by"`
	CancelledAt string  `json:"cancelled_at"`
}
