package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eventhub-live/eventhub/internal/model"
	"github.com/eventhub-live/eventhub/internal/repository"
	"github.com/eventhub-live/eventhub/internal/service"
)

// CustomerHandler serves booking endpoints for authenticated users.
// All seat accounting goes through the booking service; handlers only
// translate HTTP to service calls.
type CustomerHandler struct {
	Booking  *service.BookingService
	Bookings *repository.BookingRepo
}

func NewCustomerHandler(booking *service.BookingService, bookings *repository.BookingRepo) *CustomerHandler {
	if booking == nil || bookings == nil {
		panic("nil dependency passed to NewCustomerHandler")
	}
	return &CustomerHandler{Booking: booking, Bookings: bookings}
}

type createBookingReq struct {
	EventID    uint64 `json:"event_id"`
	Tier       string `json:"tier"`
	Quantity   uint32 `json:"quantity"`
	PaymentRef string `json:"payment_ref"`
}

// CreateBooking handles POST /v1/bookings.  The booking is created
// PENDING; supplying a payment_ref confirms it in the same request.
func (h *CustomerHandler) CreateBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.EventID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_id required"})
	}
	var paymentRef *string
	if ref := strings.TrimSpace(req.PaymentRef); ref != "" {
		paymentRef = &ref
	}

	b, err := h.Booking.CreateBooking(c.Request().Context(), userID, req.EventID, strings.TrimSpace(req.Tier), req.Quantity, paymentRef)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"booking": b})
}

// ListMyBookings handles GET /v1/my-bookings, newest first.
func (h *CustomerHandler) ListMyBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookings, err := h.Bookings.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": bookings})
}

// GetBooking handles GET /v1/bookings/:id.  Only the booking's owner
// and admins may read it; others get 404 to avoid confirming the ID
// exists.
func (h *CustomerHandler) GetBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.Bookings.GetByID(c.Request().Context(), bookingID)
	if err != nil {
		return bookingError(c, err)
	}
	if b.UserID != userID && getRole(c) != model.RoleAdmin {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"booking": b})
}

// CancelBooking handles POST /v1/bookings/:id/cancel.  Permitted for
// the booking's owner, the event's organizer and admins; seats are
// released exactly once.
func (h *CustomerHandler) CancelBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.Booking.CancelBooking(c.Request().Context(), bookingID, userID, getRole(c))
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"booking": b})
}
