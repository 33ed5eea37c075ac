package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eventhub-live/eventhub/internal/model"
	"github.com/eventhub-live/eventhub/internal/repository"
	"github.com/eventhub-live/eventhub/internal/service"
)

// OrganizerHandler serves the event management endpoints available to
// ORGANIZER accounts.  Ownership of the target event is enforced either
// by the repository (for writes) or explicitly here (for reads).
type OrganizerHandler struct {
	Events   *repository.EventRepo
	Bookings *repository.BookingRepo
	Booking  *service.BookingService
}

func NewOrganizerHandler(events *repository.EventRepo, bookings *repository.BookingRepo, booking *service.BookingService) *OrganizerHandler {
	if events == nil || bookings == nil || booking == nil {
		panic("nil dependency passed to NewOrganizerHandler")
	}
	return &OrganizerHandler{Events: events, Bookings: bookings, Booking: booking}
}

type tierReq struct {
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  uint32  `json:"quantity"`
}

type createEventReq struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Venue       string    `json:"venue"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
	BasePrice   float64   `json:"base_price"`
	Capacity    uint32    `json:"capacity"`
	Tiers       []tierReq `json:"tiers"`
}

// CreateEvent handles POST /v1/events.  Events are created unpublished
// and PENDING approval.  An event either defines tiers or a flat
// capacity with a base price; mixing the two is rejected.
func (h *OrganizerHandler) CreateEvent(c echo.Context) error {
	organizerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createEventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Venue = strings.TrimSpace(req.Venue)
	if req.Title == "" || req.Venue == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and venue required"})
	}
	if !req.Date.After(time.Now().UTC()) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be in the future"})
	}
	if len(req.Tiers) > 0 && req.Capacity > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide tiers or capacity, not both"})
	}
	if len(req.Tiers) == 0 && req.Capacity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide tiers or a capacity"})
	}

	ev := &model.Event{
		OrganizerID: organizerID,
		Title:       req.Title,
		Description: req.Description,
		Venue:       req.Venue,
		Category:    strings.TrimSpace(req.Category),
		Date:        req.Date.UTC(),
		BasePrice:   req.BasePrice,
		Capacity:    req.Capacity,
	}
	for _, t := range req.Tiers {
		name := strings.TrimSpace(t.Name)
		if name == "" || t.Quantity == 0 || t.UnitPrice < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "each tier needs a name, a positive quantity and a non-negative price"})
		}
		ev.Tiers = append(ev.Tiers, model.Tier{
			Name:          name,
			UnitPrice:     t.UnitPrice,
			TotalQuantity: t.Quantity,
		})
	}
	if req.BasePrice < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "base_price must be non-negative"})
	}

	if err := h.Events.Create(c.Request().Context(), ev); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "duplicate tier name"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create event failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"event": ev})
}

// ListMyEvents handles GET /v1/my-events.
func (h *OrganizerHandler) ListMyEvents(c echo.Context) error {
	organizerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	events, err := h.Events.ListByOrganizer(c.Request().Context(), organizerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": events})
}

// GetMyEvent handles GET /v1/my-events/:id with an ownership check.
func (h *OrganizerHandler) GetMyEvent(c echo.Context) error {
	organizerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ev, err := h.Events.GetByID(c.Request().Context(), eventID)
	if err != nil {
		return bookingError(c, err)
	}
	if ev.OrganizerID != organizerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, echo.Map{"event": ev})
}

type updateEventReq struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Venue       string    `json:"venue"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
	BasePrice   float64   `json:"base_price"`
}

// UpdateEvent handles PATCH /v1/events/:id.  Only descriptive fields
// and the flat base price are editable; tier quantities never change
// through this path.
func (h *OrganizerHandler) UpdateEvent(c echo.Context) error {
	organizerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req updateEventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Venue = strings.TrimSpace(req.Venue)
	if req.Title == "" || req.Venue == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and venue required"})
	}
	if !req.Date.After(time.Now().UTC()) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be in the future"})
	}
	if req.BasePrice < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "base_price must be non-negative"})
	}

	ev := &model.Event{
		ID:          eventID,
		Title:       req.Title,
		Description: req.Description,
		Venue:       req.Venue,
		Category:    strings.TrimSpace(req.Category),
		Date:        req.Date.UTC(),
		BasePrice:   req.BasePrice,
	}
	if err := h.Events.UpdateDetails(c.Request().Context(), ev, organizerID); err != nil {
		return bookingError(c, err)
	}
	updated, err := h.Events.GetByID(c.Request().Context(), eventID)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"event": updated})
}

type tierPriceReq struct {
	UnitPrice float64 `json:"unit_price"`
}

// UpdateTierPrice handles PATCH /v1/events/:id/tiers/:name.  Existing
// bookings keep their snapshot prices.
func (h *OrganizerHandler) UpdateTierPrice(c echo.Context) error {
	organizerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	tierName := strings.TrimSpace(c.Param("name"))
	if tierName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tier name"})
	}
	var req tierPriceReq
	if err := c.Bind(&req); err != nil || req.UnitPrice < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unit_price must be non-negative"})
	}
	if err := h.Events.UpdateTierPrice(c.Request().Context(), eventID, organizerID, tierName, req.UnitPrice); err != nil {
		return bookingError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Publish handles POST /v1/events/:id/publish.  Publication requires
// admin approval; attempting to publish an unapproved or cancelled
// event yields 409.
func (h *OrganizerHandler) Publish(c echo.Context) error {
	return h.setPublished(c, true)
}

// Unpublish handles POST /v1/events/:id/unpublish.
func (h *OrganizerHandler) Unpublish(c echo.Context) error {
	return h.setPublished(c, false)
}

func (h *OrganizerHandler) setPublished(c echo.Context, published bool) error {
	organizerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	if err := h.Events.SetPublished(c.Request().Context(), eventID, organizerID, published); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "event must be approved and not cancelled"})
		}
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"published": published})
}

type bookingOpenReq struct {
	Open bool `json:"open"`
}

// SetBookingOpen handles POST /v1/events/:id/booking-open, letting the
// organizer pause and resume bookings without unpublishing.
func (h *OrganizerHandler) SetBookingOpen(c echo.Context) error {
	organizerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req bookingOpenReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.Events.SetBookingOpen(c.Request().Context(), eventID, organizerID, req.Open); err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"booking_open": req.Open})
}

// CancelEvent handles POST /v1/events/:id/cancel.  The event is marked
// cancelled and every active booking against it is cancelled with its
// seats released.
func (h *OrganizerHandler) CancelEvent(c echo.Context) error {
	organizerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ctx := c.Request().Context()
	if err := h.Events.MarkCancelled(ctx, eventID, organizerID); err != nil {
		return bookingError(c, err)
	}
	cancelled, err := h.Booking.CancelAllForEvent(ctx, eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel bookings failed", "bookings_cancelled": cancelled})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings_cancelled": cancelled})
}

// ListEventBookings handles GET /v1/events/:id/bookings for the owning
// organizer.
func (h *OrganizerHandler) ListEventBookings(c echo.Context) error {
	organizerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ctx := c.Request().Context()
	ev, err := h.Events.GetByID(ctx, eventID)
	if err != nil {
		return bookingError(c, err)
	}
	if ev.OrganizerID != organizerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	bookings, err := h.Bookings.ListByEvent(ctx, eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": bookings})
}
