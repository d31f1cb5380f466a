package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/tavolo/seating/internal/handler"
	"github.com/tavolo/seating/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// The availability view is deliberately public: guests browse open
// windows before they hold a token of any kind.
func RegisterRoutes(e *echo.Echo, avail *handler.AvailabilityHandler) {
	e.GET("/healthz", handler.Health)
	e.GET("/v1/availability", avail.Get)
}

// RegisterBooking registers the allocation endpoint.  Both roles may
// book; the handler decides which booking types each role may record.
func RegisterBooking(e *echo.Echo, r *handler.ReservationHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(handler.RoleOnline, handler.RoleStaff),
	)
	g.POST("/periods/:id/reservations", r.Allocate)
}

// RegisterStaff registers the reservation lifecycle endpoints used at
// the host stand: inspection, cancellation and meal timestamps.
func RegisterStaff(e *echo.Echo, r *handler.ReservationHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(handler.RoleStaff),
	)
	g.GET("/reservations", r.List)
	g.GET("/reservations/:id", r.Get)
	g.DELETE("/reservations/:id", r.Cancel)
	g.PATCH("/reservations/:id/meal-times", r.SetMealTimes)
}

// RegisterAdmin registers the STAFF-only topology and schedule
// management endpoints under /v1/admin.
func RegisterAdmin(e *echo.Echo, seats *handler.AdminSeatHandler, periods *handler.AdminPeriodHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(handler.RoleStaff),
	)
	g.POST("/seats", seats.CreateSeat)
	g.POST("/seats/bulk", seats.CreateSeatsBulk)
	g.GET("/seats", seats.ListSeats)
	g.GET("/seats/:id", seats.GetSeat)
	g.DELETE("/seats/:id", seats.DeleteSeat)
	g.POST("/seats/:id/siblings", seats.AddSibling)
	g.DELETE("/seats/:id/siblings/:sibling_id", seats.RemoveSibling)
	g.PATCH("/seat-periods/:id/online", seats.SetOnlineBookable)

	g.POST("/periods", periods.CreateTemplate)
	g.GET("/periods", periods.ListTemplates)
	g.POST("/periods/:id/materialize", periods.Materialize)
	g.GET("/periods/:id/concrete", periods.ListConcrete)
	g.GET("/concrete-periods/:id/seat-periods", periods.ListSeatPeriods)
}

// RegisterDev registers the local-only token mint.  Callers outside
// dev environments never see this route.
func RegisterDev(e *echo.Echo, t *handler.TokenHandler) {
	e.POST("/v1/dev/tokens", t.Issue)
}
