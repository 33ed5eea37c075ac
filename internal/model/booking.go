package model

import "time"

// Booking lifecycle states.  PENDING bookings hold reserved capacity
// while awaiting payment confirmation; CANCELLED is terminal.
const (
	BookingPending   = "PENDING"
	BookingConfirmed = "CONFIRMED"
	BookingCancelled = "CANCELLED"
)

// Booking records a user's reservation of one or more tickets for a
// single event tier.  The price fields are a snapshot of what was
// charged at creation time; they are never recomputed, even if the
// event's prices change later.
//
// Fields:
//  ID             – primary key identifier.
//  Ref            – human-readable unique reference (TKT-<timestamp>-<suffix>).
//  UserID         – user who made the booking.
//  EventID        – event being booked.
//  TierName       – selected tier ("Standard" for events without tiers).
//  Quantity       – number of tickets (>= 1).
//  PricePerTicket – tier unit price at booking time.
//  ConvenienceFee – platform fee included in TotalAmount.
//  Tax            – tax included in TotalAmount.
//  TotalAmount    – final payable amount, computed once and stored.
//  Status         – PENDING, CONFIRMED or CANCELLED.
//  PaymentID      – external payment reference (nullable).
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last status change.
type Booking struct {
	ID             uint64    `json:"id"`
	Ref            string    `json:"ref"`
	UserID         uint64    `json:"user_id"`
	EventID        uint64    `json:"event_id"`
	TierName       string    `json:"tier_name"`
	Quantity       uint32    `json:"quantity"`
	PricePerTicket float64   `json:"price_per_ticket"`
	ConvenienceFee float64   `json:"convenience_fee"`
	Tax            float64   `json:"tax"`
	TotalAmount    float64   `json:"total_amount"`
	Status         string    `json:"status"`
	PaymentID      *string   `json:"payment_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
