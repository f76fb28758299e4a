package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/travel-booking/internal/logger"
)

// RequireRole lets the request through only when the role stored by JWTAuth
// is one of roles.  Everyone else gets 403.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if role := Role(c); !allowed[role] {
				logger.Debug("role rejected", zap.String("role", role), zap.String("path", c.Path()),
					zap.String("user", userKey(c)))
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
