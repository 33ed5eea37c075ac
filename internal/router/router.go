// Package router maps HTTP routes onto handlers and attaches the
// middleware each group needs.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/eventhub-live/eventhub/internal/handler"
	"github.com/eventhub-live/eventhub/internal/middleware"
	"github.com/eventhub-live/eventhub/internal/model"
)

// RegisterRoutes registers routes that need no authentication and no
// other middleware.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints.  Register,
// login, refresh and logout are reachable without a session; /v1/me
// requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout validates the bearer or refresh token itself, so it stays
	// outside the JWT middleware.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated browse and quote
// endpoints.  The cache middleware serves repeated reads from Redis;
// quotes hit the live rates and are not cached.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache echo.MiddlewareFunc) {
	e.GET("/v1/events", p.ListEvents, cache)
	e.GET("/v1/events/:id", p.GetEvent, cache)
	e.GET("/v1/events/:id/quote", p.Quote)
}

// RegisterOrganizer registers event management endpoints under /v1,
// restricted to ORGANIZER accounts.
func RegisterOrganizer(e *echo.Echo, o *handler.OrganizerHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleOrganizer),
	)

	g.POST("/events", o.CreateEvent)
	g.GET("/my-events", o.ListMyEvents)
	g.GET("/my-events/:id", o.GetMyEvent)
	g.PATCH("/events/:id", o.UpdateEvent)
	g.PATCH("/events/:id/tiers/:name", o.UpdateTierPrice)
	g.POST("/events/:id/publish", o.Publish)
	g.POST("/events/:id/unpublish", o.Unpublish)
	g.POST("/events/:id/booking-open", o.SetBookingOpen)
	g.POST("/events/:id/cancel", o.CancelEvent)
	g.GET("/events/:id/bookings", o.ListEventBookings)
}

// RegisterAdmin registers moderation and settings endpoints under
// /v1/admin, restricted to ADMIN accounts.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	g.GET("/events/pending", a.ListPending)
	g.POST("/events/:id/approve", a.Approve)
	g.POST("/events/:id/reject", a.Reject)
	g.GET("/settings/pricing", a.GetPricingRates)
	g.PUT("/settings/pricing", a.UpdatePricingRates)
}

// RegisterCustomer registers booking endpoints under /v1.  Any
// authenticated role may book; cancellation permissions are enforced in
// the booking service.  The rate limiter protects the write paths from
// booking storms.
func RegisterCustomer(e *echo.Echo, h *handler.CustomerHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	g.POST("/bookings", h.CreateBooking, limiter)
	g.GET("/my-bookings", h.ListMyBookings)
	g.GET("/bookings/:id", h.GetBooking)
	g.POST("/bookings/:id/cancel", h.CancelBooking, limiter)
}

// RegisterPayments registers the payment provider webhook.  The
// endpoint is unauthenticated but rate limited.
func RegisterPayments(e *echo.Echo, p *handler.PaymentHandler, limiter echo.MiddlewareFunc) {
	e.POST("/v1/payments/webhook", p.Webhook, limiter)
}
