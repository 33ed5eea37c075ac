package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/eventhub-live/eventhub/internal/model"
)

// EventRepo provides persistence for events and their ticket tiers.
// Tiers are stored in the event_tiers table and embedded into the
// model.Event on read.  All seat accounting goes through the Reserve*
// and Release* methods; no other code path mutates remaining counts.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions
// spanning multiple repositories.
func (r *EventRepo) DB() *sql.DB { return r.db }

// Create inserts a new event together with its tiers in one
// transaction.  Tier remaining counts start equal to their totals.  The
// generated event ID is populated on the passed model.
func (r *EventRepo) Create(ctx context.Context, ev *model.Event) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const q = `INSERT INTO events
               (organizer_id, title, description, venue, category, date, base_price, capacity,
                is_published, booking_open, is_cancelled, approval_status)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, 1, 0, ?)`
	res, err := tx.ExecContext(ctx, q,
		ev.OrganizerID, ev.Title, ev.Description, ev.Venue, ev.Category,
		ev.Date.UTC().Format("2006-01-02 15:04:05"), ev.BasePrice, ev.Capacity,
		model.ApprovalPending,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	ev.ID = uint64(id)
	ev.IsPublished = false
	ev.BookingOpen = true
	ev.IsCancelled = false
	ev.ApprovalStatus = model.ApprovalPending

	for i := range ev.Tiers {
		t := &ev.Tiers[i]
		t.EventID = ev.ID
		t.RemainingQuantity = t.TotalQuantity
		t.Position = uint32(i)
		const tq = `INSERT INTO event_tiers
                    (event_id, name, unit_price, total_quantity, remaining_quantity, position)
                    VALUES (?, ?, ?, ?, ?, ?)`
		tres, err := tx.ExecContext(ctx, tq, ev.ID, t.Name, t.UnitPrice, t.TotalQuantity, t.RemainingQuantity, t.Position)
		if err != nil {
			if isDuplicate(err) {
				return ErrConflict // duplicate tier name within the event
			}
			return err
		}
		tid, err := tres.LastInsertId()
		if err != nil {
			return err
		}
		t.ID = uint64(tid)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID loads an event and its tiers.  Returns ErrEventNotFound when
// no row exists.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	const q = `SELECT id, organizer_id, title, description, venue, category, date,
                      base_price, capacity, is_published, booking_open, is_cancelled,
                      approval_status, created_at, updated_at
               FROM events WHERE id = ?`
	var ev model.Event
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&ev.ID, &ev.OrganizerID, &ev.Title, &ev.Description, &ev.Venue, &ev.Category, &ev.Date,
		&ev.BasePrice, &ev.Capacity, &ev.IsPublished, &ev.BookingOpen, &ev.IsCancelled,
		&ev.ApprovalStatus, &ev.CreatedAt, &ev.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	tiers, err := r.tiersFor(ctx, ev.ID)
	if err != nil {
		return nil, err
	}
	ev.Tiers = tiers
	return &ev, nil
}

func (r *EventRepo) tiersFor(ctx context.Context, eventID uint64) ([]model.Tier, error) {
	const q = `SELECT id, event_id, name, unit_price, total_quantity, remaining_quantity, position
               FROM event_tiers WHERE event_id = ? ORDER BY position`
	rows, err := r.db.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tiers []model.Tier
	for rows.Next() {
		var t model.Tier
		if err := rows.Scan(&t.ID, &t.EventID, &t.Name, &t.UnitPrice, &t.TotalQuantity, &t.RemainingQuantity, &t.Position); err != nil {
			return nil, err
		}
		tiers = append(tiers, t)
	}
	return tiers, rows.Err()
}

// scanEvents reads event rows and attaches tiers with a single follow-up
// query per result set.
func (r *EventRepo) scanEvents(ctx context.Context, rows *sql.Rows) ([]model.Event, error) {
	defer rows.Close()
	events := make([]model.Event, 0)
	for rows.Next() {
		var ev model.Event
		if err := rows.Scan(
			&ev.ID, &ev.OrganizerID, &ev.Title, &ev.Description, &ev.Venue, &ev.Category, &ev.Date,
			&ev.BasePrice, &ev.Capacity, &ev.IsPublished, &ev.BookingOpen, &ev.IsCancelled,
			&ev.ApprovalStatus, &ev.CreatedAt, &ev.UpdatedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range events {
		tiers, err := r.tiersFor(ctx, events[i].ID)
		if err != nil {
			return nil, err
		}
		events[i].Tiers = tiers
	}
	return events, nil
}

// ListByOrganizer returns all events owned by the given organizer,
// newest first.
func (r *EventRepo) ListByOrganizer(ctx context.Context, organizerID uint64) ([]model.Event, error) {
	const q = `SELECT id, organizer_id, title, description, venue, category, date,
                      base_price, capacity, is_published, booking_open, is_cancelled,
                      approval_status, created_at, updated_at
               FROM events WHERE organizer_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, organizerID)
	if err != nil {
		return nil, err
	}
	return r.scanEvents(ctx, rows)
}

// ListPublic returns events visible to unauthenticated users: published,
// approved, not cancelled and not yet past their date.  Soonest first.
func (r *EventRepo) ListPublic(ctx context.Context, now time.Time) ([]model.Event, error) {
	const q = `SELECT id, organizer_id, title, description, venue, category, date,
                      base_price, capacity, is_published, booking_open, is_cancelled,
                      approval_status, created_at, updated_at
               FROM events
               WHERE is_published = 1 AND approval_status = 'APPROVED'
                 AND is_cancelled = 0 AND date >= ?
               ORDER BY date ASC`
	rows, err := r.db.QueryContext(ctx, q, now.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return nil, err
	}
	return r.scanEvents(ctx, rows)
}

// ListPendingApproval returns events awaiting moderation, oldest first.
func (r *EventRepo) ListPendingApproval(ctx context.Context) ([]model.Event, error) {
	const q = `SELECT id, organizer_id, title, description, venue, category, date,
                      base_price, capacity, is_published, booking_open, is_cancelled,
                      approval_status, created_at, updated_at
               FROM events WHERE approval_status = 'PENDING' ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	return r.scanEvents(ctx, rows)
}

// requireOwner verifies the event exists and belongs to the organizer.
// Returns ErrEventNotFound or ErrForbidden accordingly.
func (r *EventRepo) requireOwner(ctx context.Context, eventID, organizerID uint64) error {
	var actual uint64
	err := r.db.QueryRowContext(ctx, `SELECT organizer_id FROM events WHERE id = ?`, eventID).Scan(&actual)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEventNotFound
		}
		return err
	}
	if actual != organizerID {
		return ErrForbidden
	}
	return nil
}

// UpdateDetails lets the owning organizer edit descriptive fields and
// the flat-mode base price.  Tier quantities are intentionally not
// editable here; seat counts only change through Reserve*/Release*.
func (r *EventRepo) UpdateDetails(ctx context.Context, ev *model.Event, organizerID uint64) error {
	if err := r.requireOwner(ctx, ev.ID, organizerID); err != nil {
		return err
	}
	const q = `UPDATE events
               SET title = ?, description = ?, venue = ?, category = ?, date = ?, base_price = ?
               WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q,
		ev.Title, ev.Description, ev.Venue, ev.Category,
		ev.Date.UTC().Format("2006-01-02 15:04:05"), ev.BasePrice, ev.ID,
	)
	return err
}

// UpdateTierPrice changes the unit price of one tier.  Existing bookings
// keep their snapshot prices; only future bookings see the new price.
func (r *EventRepo) UpdateTierPrice(ctx context.Context, eventID, organizerID uint64, tierName string, price float64) error {
	if err := r.requireOwner(ctx, eventID, organizerID); err != nil {
		return err
	}
	const q = `UPDATE event_tiers SET unit_price = ? WHERE event_id = ? AND LOWER(name) = LOWER(?)`
	res, err := r.db.ExecContext(ctx, q, price, eventID, tierName)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInvalidTicketType
	}
	return nil
}

// SetPublished flips the publication flag.  Publishing requires the
// event to be approved and not cancelled; unpublishing has no
// precondition.  Returns ErrConflict when the approval gate fails.
func (r *EventRepo) SetPublished(ctx context.Context, eventID, organizerID uint64, published bool) error {
	if err := r.requireOwner(ctx, eventID, organizerID); err != nil {
		return err
	}
	if !published {
		_, err := r.db.ExecContext(ctx, `UPDATE events SET is_published = 0 WHERE id = ?`, eventID)
		return err
	}
	const q = `UPDATE events SET is_published = 1
               WHERE id = ? AND approval_status = 'APPROVED' AND is_cancelled = 0`
	res, err := r.db.ExecContext(ctx, q, eventID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// SetBookingOpen flips the booking_open flag for the owning organizer.
func (r *EventRepo) SetBookingOpen(ctx context.Context, eventID, organizerID uint64, open bool) error {
	if err := r.requireOwner(ctx, eventID, organizerID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `UPDATE events SET booking_open = ? WHERE id = ?`, open, eventID)
	return err
}

// MarkCancelled cancels an event and closes booking.  Bookings against
// the event are cancelled separately by the service layer.
func (r *EventRepo) MarkCancelled(ctx context.Context, eventID, organizerID uint64) error {
	if err := r.requireOwner(ctx, eventID, organizerID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE events SET is_cancelled = 1, booking_open = 0 WHERE id = ?`, eventID)
	return err
}

// SetApproval records a moderation decision.  Rejected events are also
// unpublished so they cannot linger in public listings.
func (r *EventRepo) SetApproval(ctx context.Context, eventID uint64, status string) error {
	const q = `UPDATE events
               SET approval_status = ?,
                   is_published = IF(? = 'REJECTED', 0, is_published)
               WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, status, status, eventID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEventNotFound
	}
	return nil
}

// ReserveTier atomically decrements a tier's remaining count.  The
// decrement happens only when enough seats remain; two concurrent
// requests for the last N seats cannot both succeed.  When the
// conditional update matches no row, the current remaining count is
// re-read and returned inside a CapacityError so the client can retry
// with a smaller quantity.
func (r *EventRepo) ReserveTier(ctx context.Context, eventID uint64, tierName string, qty uint32) error {
	const q = `UPDATE event_tiers
               SET remaining_quantity = remaining_quantity - ?
               WHERE event_id = ? AND LOWER(name) = LOWER(?) AND remaining_quantity >= ?`
	res, err := r.db.ExecContext(ctx, q, qty, eventID, tierName, qty)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var remaining uint32
	err = r.db.QueryRowContext(ctx,
		`SELECT remaining_quantity FROM event_tiers WHERE event_id = ? AND LOWER(name) = LOWER(?)`,
		eventID, tierName,
	).Scan(&remaining)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidTicketType
		}
		return err
	}
	return &CapacityError{Remaining: remaining}
}

// ReleaseTier restores seats to a tier's pool, capped at the tier total
// to defend against double-release bugs.
func (r *EventRepo) ReleaseTier(ctx context.Context, eventID uint64, tierName string, qty uint32) error {
	const q = `UPDATE event_tiers
               SET remaining_quantity = LEAST(total_quantity, remaining_quantity + ?)
               WHERE event_id = ? AND LOWER(name) = LOWER(?)`
	_, err := r.db.ExecContext(ctx, q, qty, eventID, tierName, qty)
	return err
}

// ReserveCapacity is the flat-mode counterpart of ReserveTier for events
// without tiers: a single conditional decrement against events.capacity.
func (r *EventRepo) ReserveCapacity(ctx context.Context, eventID uint64, qty uint32) error {
	const q = `UPDATE events SET capacity = capacity - ? WHERE id = ? AND capacity >= ?`
	res, err := r.db.ExecContext(ctx, q, qty, eventID, qty)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var remaining uint32
	err = r.db.QueryRowContext(ctx, `SELECT capacity FROM events WHERE id = ?`, eventID).Scan(&remaining)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEventNotFound
		}
		return err
	}
	return &CapacityError{Remaining: remaining}
}

// ReleaseCapacity restores seats to a flat-capacity event.  Flat mode
// stores only the remaining count, so the increment is uncapped; the
// service layer releases at most what a booking reserved.
func (r *EventRepo) ReleaseCapacity(ctx context.Context, eventID uint64, qty uint32) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE events SET capacity = capacity + ? WHERE id = ?`, qty, eventID)
	return err
}

// UnpublishExpired unpublishes every published event whose date has
// passed and returns the number of events affected.  The update is a
// pure conditional set, so overlapping sweeps are harmless: the second
// run simply matches zero rows.
func (r *EventRepo) UnpublishExpired(ctx context.Context, now time.Time) (int64, error) {
	const q = `UPDATE events SET is_published = 0 WHERE date < ? AND is_published = 1`
	res, err := r.db.ExecContext(ctx, q, now.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
