package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/eventhub-live/eventhub/internal/model"
)

// BookingRepo provides persistence for bookings.  Bookings are written
// once at creation; afterwards only the status and payment reference
// change, and every status change is a conditional update so concurrent
// transitions cannot both succeed.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// Create inserts a new booking.  The booking_ref column carries a
// UNIQUE index; a duplicate reference surfaces as ErrConflict so the
// caller can regenerate and retry.  The generated ID and timestamps are
// populated on the passed model.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings
               (booking_ref, user_id, event_id, tier_name, quantity,
                price_per_ticket, convenience_fee, tax, total_amount, status, payment_id)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		b.Ref, b.UserID, b.EventID, b.TierName, b.Quantity,
		b.PricePerTicket, b.ConvenienceFee, b.Tax, b.TotalAmount, b.Status, b.PaymentID,
	)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)

	// Query back timestamps set by the database.
	const sel = `SELECT created_at, updated_at FROM bookings WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, b.ID).Scan(&b.CreatedAt, &b.UpdatedAt)
}

func scanBooking(row *sql.Row) (*model.Booking, error) {
	var b model.Booking
	var paymentID sql.NullString
	err := row.Scan(
		&b.ID, &b.Ref, &b.UserID, &b.EventID, &b.TierName, &b.Quantity,
		&b.PricePerTicket, &b.ConvenienceFee, &b.Tax, &b.TotalAmount,
		&b.Status, &paymentID, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if paymentID.Valid {
		p := paymentID.String
		b.PaymentID = &p
	}
	return &b, nil
}

const bookingColumns = `id, booking_ref, user_id, event_id, tier_name, quantity,
                        price_per_ticket, convenience_fee, tax, total_amount,
                        status, payment_id, created_at, updated_at`

// GetByID returns a booking by primary key or ErrBookingNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	return scanBooking(r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
}

// GetByRef returns a booking by its human-readable reference.
func (r *BookingRepo) GetByRef(ctx context.Context, ref string) (*model.Booking, error) {
	return scanBooking(r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE booking_ref = ?`, ref))
}

// TransitionStatus moves a booking from one lifecycle state to another.
// The update is conditional on the current status, which makes it the
// linearization point for concurrent transitions: exactly one caller
// observes ok == true.  A non-nil paymentID is recorded alongside the
// transition; a nil one leaves the stored reference untouched.
func (r *BookingRepo) TransitionStatus(ctx context.Context, id uint64, from, to string, paymentID *string) (bool, error) {
	const q = `UPDATE bookings
               SET status = ?, payment_id = COALESCE(?, payment_id)
               WHERE id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, q, to, paymentID, id, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListByUser returns all bookings made by a user, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = ? ORDER BY created_at DESC`
	return r.list(ctx, q, userID)
}

// ListByEvent returns all bookings against an event, newest first.
func (r *BookingRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE event_id = ? ORDER BY created_at DESC`
	return r.list(ctx, q, eventID)
}

// ListActiveByEvent returns the non-cancelled bookings for an event.
// Used for the bulk cancellation that follows an event cancellation.
func (r *BookingRepo) ListActiveByEvent(ctx context.Context, eventID uint64) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings
               WHERE event_id = ? AND status <> 'CANCELLED' ORDER BY created_at ASC`
	return r.list(ctx, q, eventID)
}

func (r *BookingRepo) list(ctx context.Context, query string, arg interface{}) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	bookings := make([]model.Booking, 0)
	for rows.Next() {
		var b model.Booking
		var paymentID sql.NullString
		if err := rows.Scan(
			&b.ID, &b.Ref, &b.UserID, &b.EventID, &b.TierName, &b.Quantity,
			&b.PricePerTicket, &b.ConvenienceFee, &b.Tax, &b.TotalAmount,
			&b.Status, &paymentID, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if paymentID.Valid {
			p := paymentID.String
			b.PaymentID = &p
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
