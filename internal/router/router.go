// Package router mounts the HTTP routes.  Public routes, routes for any
// signed-in user and admin routes each get their own Register function.
package router

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-booking/internal/handler"
	"github.com/iliyamo/travel-booking/internal/middleware"
	"github.com/iliyamo/travel-booking/internal/model"
)

// Limits holds the per-request middleware shared by all /v1 groups.  A nil
// field is skipped.
type Limits struct {
	RateLimit echo.MiddlewareFunc // applied after JWTAuth so keys include the user
	Cache     echo.MiddlewareFunc // public catalogue reads only
	Purge     echo.MiddlewareFunc // admin writes
}

func (l Limits) rate() []echo.MiddlewareFunc {
	if l.RateLimit == nil {
		return nil
	}
	return []echo.MiddlewareFunc{l.RateLimit}
}

func (l Limits) cached() []echo.MiddlewareFunc {
	if l.Cache == nil {
		return nil
	}
	return []echo.MiddlewareFunc{l.Cache}
}

// ErrorHandler renders errors that escape the handlers (unknown routes,
// recovered panics, bad methods) with the same {"error": ...} body the
// handlers use.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code, msg := http.StatusInternalServerError, "internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, echo.Map{"error": msg})
}

// RegisterRoutes registers the health check.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth mounts /v1/auth and the signed-in /v1/me and logout routes.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, l Limits) {
	g := e.Group("/v1/auth", l.rate()...)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)

	auth := e.Group("/v1", signedIn(jwtSecret, l)...)
	auth.GET("/me", a.Me)
	auth.POST("/auth/logout", a.Logout)
}

// RegisterPublic mounts the anonymous catalogue and review reads.
func RegisterPublic(e *echo.Echo, h *handler.HotelHandler, r *handler.ReviewHandler, l Limits) {
	g := e.Group("/v1", l.rate()...)
	g.GET("/hotels", h.List, l.cached()...)
	g.GET("/cities", h.Cities, l.cached()...)
	g.GET("/hotels/:id", h.Get)
	g.GET("/hotels/:id/rooms", h.Rooms)
	g.GET("/reviews/hotel/:hotelId", r.ByHotel)
}

// signedIn is the chain for routes open to any authenticated role.
func signedIn(jwtSecret string, l Limits) []echo.MiddlewareFunc {
	return append([]echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleUser, model.RoleAdmin),
	}, l.rate()...)
}
