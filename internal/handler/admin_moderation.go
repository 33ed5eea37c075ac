package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eventhub-live/eventhub/internal/model"
	"github.com/eventhub-live/eventhub/internal/pricing"
	"github.com/eventhub-live/eventhub/internal/repository"
)

// AdminHandler serves the moderation and platform-settings endpoints
// available to ADMIN accounts.
type AdminHandler struct {
	Events   *repository.EventRepo
	Settings *repository.SettingsRepo
}

func NewAdminHandler(events *repository.EventRepo, settings *repository.SettingsRepo) *AdminHandler {
	if events == nil || settings == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{Events: events, Settings: settings}
}

// ListPending handles GET /v1/admin/events/pending, oldest first.
func (h *AdminHandler) ListPending(c echo.Context) error {
	events, err := h.Events.ListPendingApproval(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": events})
}

// Approve handles POST /v1/admin/events/:id/approve.
func (h *AdminHandler) Approve(c echo.Context) error {
	return h.moderate(c, model.ApprovalApproved)
}

// Reject handles POST /v1/admin/events/:id/reject.  A rejected event is
// also unpublished.
func (h *AdminHandler) Reject(c echo.Context) error {
	return h.moderate(c, model.ApprovalRejected)
}

func (h *AdminHandler) moderate(c echo.Context, status string) error {
	eventID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	if err := h.Events.SetApproval(c.Request().Context(), eventID, status); err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"approval_status": status})
}

// GetPricingRates handles GET /v1/admin/settings/pricing.
func (h *AdminHandler) GetPricingRates(c echo.Context) error {
	rates, err := h.Settings.PricingRates(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, rates)
}

// UpdatePricingRates handles PUT /v1/admin/settings/pricing.  New rates
// apply to bookings created after the change; existing bookings keep
// their snapshots.
func (h *AdminHandler) UpdatePricingRates(c echo.Context) error {
	var rates pricing.Rates
	if err := c.Bind(&rates); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if rates.ConvenienceFee < 0 || rates.Tax < 0 || rates.ConvenienceFee > 1 || rates.Tax > 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rates must be fractions between 0 and 1"})
	}
	if err := h.Settings.UpdatePricingRates(c.Request().Context(), rates); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save settings failed"})
	}
	return c.JSON(http.StatusOK, rates)
}
