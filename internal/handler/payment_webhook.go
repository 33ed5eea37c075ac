package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eventhub-live/eventhub/internal/service"
)

// PaymentHandler receives payment provider callbacks.  The provider
// addresses bookings by their reference, not by internal IDs.
type PaymentHandler struct {
	Booking *service.BookingService
}

func NewPaymentHandler(booking *service.BookingService) *PaymentHandler {
	if booking == nil {
		panic("nil dependency passed to NewPaymentHandler")
	}
	return &PaymentHandler{Booking: booking}
}

type paymentWebhookReq struct {
	BookingRef string `json:"booking_ref"`
	PaymentRef string `json:"payment_ref"`
	Outcome    string `json:"outcome"` // "succeeded" | "failed"
}

// Webhook handles POST /v1/payments/webhook.  A succeeded outcome
// confirms the booking; a failed one cancels it and releases the seats.
// Repeated deliveries of a succeeded outcome are acknowledged without
// change, so the provider can retry safely.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	var req paymentWebhookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.BookingRef = strings.TrimSpace(req.BookingRef)
	if req.BookingRef == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking_ref required"})
	}

	ctx := c.Request().Context()
	switch strings.ToLower(strings.TrimSpace(req.Outcome)) {
	case "succeeded":
		b, err := h.Booking.ConfirmPayment(ctx, req.BookingRef, strings.TrimSpace(req.PaymentRef))
		if err != nil {
			return bookingError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"booking": b})
	case "failed":
		b, err := h.Booking.FailPayment(ctx, req.BookingRef)
		if err != nil {
			return bookingError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"booking": b})
	}
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "outcome must be succeeded or failed"})
}
