package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-booking/internal/handler"
	"github.com/iliyamo/travel-booking/internal/middleware"
	"github.com/iliyamo/travel-booking/internal/model"
)

// AdminHandlers are the catalogue handlers mounted under /v1/admin.
type AdminHandlers struct {
	Cities    *handler.CRUDHandler[model.City]
	Hotels    *handler.CRUDHandler[model.Hotel]
	Rooms     *handler.CRUDHandler[model.Room]
	RoomTypes *handler.CRUDHandler[model.RoomType]
	Discounts *handler.CRUDHandler[model.Discount]
	Reviews   *handler.ReviewHandler
}

// RegisterAdmin mounts the Admin-only routes.  Successful writes purge the
// response cache when l.Purge is set.
func RegisterAdmin(e *echo.Echo, h AdminHandlers, jwtSecret string, l Limits) {
	mw := []echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	}
	mw = append(mw, l.rate()...)
	if l.Purge != nil {
		mw = append(mw, l.Purge)
	}
	g := e.Group("/v1/admin", mw...)

	h.Cities.Register(g.Group("/cities"))
	h.Hotels.Register(g.Group("/hotels"))
	h.Rooms.Register(g.Group("/rooms"))
	h.RoomTypes.Register(g.Group("/roomtypes"))
	h.Discounts.Register(g.Group("/discounts"))

	g.DELETE("/reviews/:id", h.Reviews.AdminDelete)
	g.GET("/reviews/user/:userId", h.Reviews.ByUser)
}
