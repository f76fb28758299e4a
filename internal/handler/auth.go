package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-booking/internal/middleware"
	"github.com/iliyamo/travel-booking/internal/service"
)

// AuthAPI is the part of service.AuthService the handlers call.
type AuthAPI interface {
	Register(ctx context.Context, name, email, password string) (*service.UserView, error)
	Login(ctx context.Context, email, password string) (*service.Session, error)
	Refresh(ctx context.Context, raw string) (*service.Session, error)
	Logout(ctx context.Context, userID uint64) error
}

// AuthHandler serves registration, login and token rotation.
type AuthHandler struct {
	Svc AuthAPI
}

func NewAuthHandler(svc AuthAPI) *AuthHandler { return &AuthHandler{Svc: svc} }

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type authResp struct {
	User    service.UserView `json:"user"`
	Access  tokenPart        `json:"access"`
	Refresh tokenPart        `json:"refresh"`
}

func sessionResp(s *service.Session) authResp {
	return authResp{
		User:    s.User,
		Access:  tokenPart{Token: s.Access.Token, Expires: s.Access.Exp},
		Refresh: tokenPart{Token: s.Refresh.Raw, Expires: s.Refresh.Exp},
	}
}

// Register creates a User account.  It does not log the caller in.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Svc.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "email and password are required")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, sessionResp(s))
}

// Refresh exchanges a refresh token for a new pair.  The old refresh token
// stops working.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return badRequest(c, "refresh_token required")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Svc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, sessionResp(s))
}

// Logout revokes all refresh tokens of the caller.
func (h *AuthHandler) Logout(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Svc.Logout(ctx, uid); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me echoes the identity carried by the access token.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":    uid,
		"email": middleware.Email(c),
		"role":  middleware.Role(c),
	})
}
