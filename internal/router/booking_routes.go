package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-booking/internal/handler"
)

// RegisterBookings mounts the caller-scoped booking and review routes.  Any
// authenticated role may use them; handlers only ever touch the caller's own
// rows.
func RegisterBookings(e *echo.Echo, b *handler.BookingHandler, r *handler.ReviewHandler, jwtSecret string, l Limits) {
	g := e.Group("/v1", signedIn(jwtSecret, l)...)

	g.POST("/bookings", b.Create)
	g.GET("/bookings/history", b.History)
	g.GET("/bookings/:id/confirmation", b.Confirmation)
	g.POST("/bookings/:id/cancel", b.Cancel)

	g.POST("/reviews", r.Create)
	g.DELETE("/reviews/:id", r.Delete)
}
