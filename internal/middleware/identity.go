package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// Keys under which JWTAuth stores the caller's identity in the Echo
// context.
const (
	CtxUserID = "user_id" // uint64
	CtxRole   = "role"    // string
	CtxEmail  = "email"   // string
)

// UserID returns the authenticated user id, or false for anonymous
// requests.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(CtxUserID).(uint64)
	return id, ok && id != 0
}

// Role returns the authenticated role or "".
func Role(c echo.Context) string {
	r, _ := c.Get(CtxRole).(string)
	return r
}

// Email returns the authenticated email or "".
func Email(c echo.Context) string {
	e, _ := c.Get(CtxEmail).(string)
	return e
}

// userKey renders the caller for rate-limit keys and logs.
func userKey(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
