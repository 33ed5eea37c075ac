package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eventhub-live/eventhub/internal/model"
	"github.com/eventhub-live/eventhub/internal/repository"
	"github.com/eventhub-live/eventhub/internal/service"
)

// PublicHandler serves the unauthenticated browsing endpoints.  Only
// published, approved, upcoming events are exposed, with organizer IDs
// and moderation state stripped from responses.
type PublicHandler struct {
	Events  *repository.EventRepo
	Booking *service.BookingService
}

func NewPublicHandler(events *repository.EventRepo, booking *service.BookingService) *PublicHandler {
	if events == nil || booking == nil {
		panic("nil dependency passed to NewPublicHandler")
	}
	return &PublicHandler{Events: events, Booking: booking}
}

// PublicTier is a tier as exposed to unauthenticated users.
type PublicTier struct {
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Remaining uint32  `json:"remaining"`
}

// PublicEvent is an event as exposed to unauthenticated users.  For
// flat-capacity events Tiers is empty and BasePrice/Remaining describe
// the implicit standard tier.
type PublicEvent struct {
	ID          uint64       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Venue       string       `json:"venue"`
	Category    string       `json:"category"`
	Date        time.Time    `json:"date"`
	BookingOpen bool         `json:"booking_open"`
	BasePrice   float64      `json:"base_price,omitempty"`
	Remaining   uint32       `json:"remaining,omitempty"`
	Tiers       []PublicTier `json:"tiers,omitempty"`
}

func toPublicEvent(ev *model.Event) PublicEvent {
	out := PublicEvent{
		ID:          ev.ID,
		Title:       ev.Title,
		Description: ev.Description,
		Venue:       ev.Venue,
		Category:    ev.Category,
		Date:        ev.Date,
		BookingOpen: ev.BookingOpen,
	}
	if ev.Tiered() {
		out.Tiers = make([]PublicTier, 0, len(ev.Tiers))
		for _, t := range ev.Tiers {
			out.Tiers = append(out.Tiers, PublicTier{Name: t.Name, UnitPrice: t.UnitPrice, Remaining: t.RemainingQuantity})
		}
	} else {
		out.BasePrice = ev.BasePrice
		out.Remaining = ev.Capacity
	}
	return out
}

// ListEvents handles GET /v1/events: published, approved, upcoming
// events, soonest first.  The route sits behind the Redis response
// cache, so seat counts may lag by the cache TTL.
func (h *PublicHandler) ListEvents(c echo.Context) error {
	events, err := h.Events.ListPublic(c.Request().Context(), time.Now().UTC())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicEvent, 0, len(events))
	for i := range events {
		out = append(out, toPublicEvent(&events[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetEvent handles GET /v1/events/:id with per-tier availability.
// Events that are not publicly visible return 404 rather than leaking
// their existence.
func (h *PublicHandler) GetEvent(c echo.Context) error {
	eventID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ev, err := h.Events.GetByID(c.Request().Context(), eventID)
	if err != nil {
		return bookingError(c, err)
	}
	if !ev.IsPublished || ev.ApprovalStatus != model.ApprovalApproved || ev.IsCancelled {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"event": toPublicEvent(ev)})
}

// Quote handles GET /v1/events/:id/quote?tier=VIP&quantity=2.  It
// prices a prospective booking with the current platform rates without
// reserving anything; booking the same tier and quantity immediately
// after yields the same numbers.
func (h *PublicHandler) Quote(c echo.Context) error {
	eventID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	qty64, err := strconv.ParseUint(c.QueryParam("quantity"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be a positive integer"})
	}
	tier := strings.TrimSpace(c.QueryParam("tier"))

	bd, err := h.Booking.Quote(c.Request().Context(), eventID, tier, uint32(qty64))
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"quote": bd})
}
