// Package repository defines error types that are reused across multiple
// repositories and by the service layer. These values allow handlers to
// distinguish between different failure scenarios: business rejections
// such as a sold-out tier are expected outcomes and are returned as
// typed errors, never treated as defects.
package repository

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEventNotFound is returned when the referenced event does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrEventNotFound = errors.New("event not found")

// ErrBookingNotFound is returned when the referenced booking does not
// exist. Handlers should translate this into an HTTP 404 response.
var ErrBookingNotFound = errors.New("booking not found")

// ErrInvalidTicketType is returned when the requested tier name does not
// match any tier of the event.
var ErrInvalidTicketType = errors.New("invalid ticket type")

// ErrInvalidQuantity is returned when a booking requests fewer than one
// ticket.
var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// ErrAlreadyCancelled is returned when cancelling a booking that is
// already cancelled. The caller must be able to distinguish "already
// done" from "succeeded", so this is never a silent success.
var ErrAlreadyCancelled = errors.New("booking already cancelled")

// ErrInvalidStateTransition is returned when a lifecycle transition is
// attempted from a state that does not permit it (e.g. confirming a
// cancelled booking).
var ErrInvalidStateTransition = errors.New("invalid state transition")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an insert or update cannot proceed due to
// conflicting state, such as a duplicate booking reference or publishing
// an event that has not been approved. Handlers should translate this
// into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned when registering with an email that is
// already taken.
var ErrEmailExists = errors.New("email already exists")

// CapacityError is returned when a tier (or a flat-capacity event) does
// not have enough remaining seats for the requested quantity. It carries
// the actual remaining count so clients can retry with a smaller
// quantity. It is a legitimate business rejection and must never be
// retried automatically.
type CapacityError struct {
	Remaining uint32
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("insufficient capacity: %d remaining", e.Remaining)
}

// Reasons an event can refuse new bookings. Kept distinct so the client
// can show an accurate message instead of a generic "cannot book".
const (
	ClosedUnpublished = "not_published"
	ClosedManually    = "booking_closed"
	ClosedCancelled   = "event_cancelled"
	ClosedExpired     = "event_date_passed"
)

// ClosedError is returned when an event does not accept bookings. The
// Reason field is one of the Closed* constants above.
type ClosedError struct {
	Reason string
}

func (e *ClosedError) Error() string {
	return "booking closed: " + e.Reason
}

// isDuplicate reports whether err is a MySQL duplicate-key violation
// (error 1062 on a UNIQUE index).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
