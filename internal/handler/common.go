// Package handler exposes the HTTP surface: auth, organizer event
// management, admin moderation, public browsing and customer bookings.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/eventhub-live/eventhub/internal/repository"
)

// getUserID extracts the authenticated user's ID placed in the context
// by the JWT middleware.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// getRole returns the role claim stored by the JWT middleware.
func getRole(c echo.Context) string {
	role, _ := c.Get("role").(string)
	return role
}

// bookingError translates service and repository errors into HTTP
// responses.  Business rejections map to 4xx with a machine-readable
// error code; anything unrecognized is a 500.
func bookingError(c echo.Context, err error) error {
	var capErr *repository.CapacityError
	var closed *repository.ClosedError
	switch {
	case errors.Is(err, repository.ErrEventNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	case errors.Is(err, repository.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.As(err, &closed):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking_closed", "reason": closed.Reason})
	case errors.As(err, &capErr):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "insufficient_capacity", "remaining": capErr.Remaining})
	case errors.Is(err, repository.ErrInvalidTicketType):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket type"})
	case errors.Is(err, repository.ErrInvalidQuantity):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be at least 1"})
	case errors.Is(err, repository.ErrAlreadyCancelled):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking already cancelled"})
	case errors.Is(err, repository.ErrInvalidStateTransition):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid state transition"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// parseID parses a numeric path parameter, rejecting zero.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
