package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-booking/internal/middleware"
	"github.com/iliyamo/travel-booking/internal/service"
)

type BookingAPI interface {
	Book(ctx context.Context, userID, roomID uint64, checkIn, checkOut time.Time) (*service.BookingResult, error)
	GetHistory(ctx context.Context, userID uint64) ([]service.BookingResult, error)
	GetConfirmation(ctx context.Context, userID, bookingID uint64) (*service.BookingResult, error)
	Cancel(ctx context.Context, userID, bookingID uint64) (*service.BookingResult, error)
}

// BookingHandler serves the caller's own bookings.
type BookingHandler struct {
	Svc BookingAPI
}

func NewBookingHandler(svc BookingAPI) *BookingHandler { return &BookingHandler{Svc: svc} }

type bookReq struct {
	RoomID   uint64 `json:"room_id"`
	CheckIn  string `json:"check_in_date"`
	CheckOut string `json:"check_out_date"`
}

// parseDay accepts 2006-01-02 or a full RFC 3339 timestamp.
func parseDay(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// Create books a room and returns the booking with its transaction id.
func (h *BookingHandler) Create(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	var req bookReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.RoomID == 0 {
		return badRequest(c, "room_id is required")
	}
	in, ok1 := parseDay(req.CheckIn)
	out, ok2 := parseDay(req.CheckOut)
	if !ok1 || !ok2 {
		return badRequest(c, "check_in_date and check_out_date must be YYYY-MM-DD")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	res, err := h.Svc.Book(ctx, uid, req.RoomID, in, out)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *BookingHandler) History(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Svc.GetHistory(ctx, uid)
	if err != nil {
		return writeError(c, err)
	}
	if list == nil {
		list = []service.BookingResult{}
	}
	return c.JSON(http.StatusOK, list)
}

func (h *BookingHandler) Confirmation(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid booking id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	res, err := h.Svc.GetConfirmation(ctx, uid, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Cancel releases the room and returns the cancelled booking.  Payments are
// kept.
func (h *BookingHandler) Cancel(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid booking id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	res, err := h.Svc.Cancel(ctx, uid, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
