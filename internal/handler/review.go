package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-booking/internal/middleware"
	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/service"
)

type ReviewAPI interface {
	LeaveReview(ctx context.Context, userID, hotelID uint64, rating int, comment string) (*model.Review, error)
	ListByHotel(ctx context.Context, hotelID uint64) ([]service.ReviewView, error)
	ListByUser(ctx context.Context, userID uint64) ([]service.ReviewView, error)
	Delete(ctx context.Context, userID, reviewID uint64) error
	AdminDelete(ctx context.Context, adminID, reviewID uint64) error
}

type ReviewHandler struct {
	Svc ReviewAPI
}

func NewReviewHandler(svc ReviewAPI) *ReviewHandler { return &ReviewHandler{Svc: svc} }

type reviewReq struct {
	HotelID uint64 `json:"hotel_id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type reviewResp struct {
	ID        uint64    `json:"id"`
	HotelID   uint64    `json:"hotel_id"`
	UserID    uint64    `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *ReviewHandler) Create(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	var req reviewReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.HotelID == 0 {
		return badRequest(c, "hotel_id is required")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	r, err := h.Svc.LeaveReview(ctx, uid, req.HotelID, req.Rating, req.Comment)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, reviewResp{
		ID: r.ID, HotelID: r.HotelID, UserID: r.UserID,
		Rating: r.Rating, Comment: r.Comment, CreatedAt: r.CreatedAt,
	})
}

// ByHotel lists the active reviews of a hotel, newest first.  Public.
func (h *ReviewHandler) ByHotel(c echo.Context) error {
	id, ok := pathID(c, "hotelId")
	if !ok {
		return badRequest(c, "invalid hotel id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	return reviewList(c, func() ([]service.ReviewView, error) { return h.Svc.ListByHotel(ctx, id) })
}

// ByUser lists every review a user wrote, deleted ones included.  Admin only.
func (h *ReviewHandler) ByUser(c echo.Context) error {
	id, ok := pathID(c, "userId")
	if !ok {
		return badRequest(c, "invalid user id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	return reviewList(c, func() ([]service.ReviewView, error) { return h.Svc.ListByUser(ctx, id) })
}

func reviewList(c echo.Context, load func() ([]service.ReviewView, error)) error {
	list, err := load()
	if err != nil {
		return writeError(c, err)
	}
	if list == nil {
		list = []service.ReviewView{}
	}
	return c.JSON(http.StatusOK, list)
}

// Delete lets an author remove their own review within 24 hours.
func (h *ReviewHandler) Delete(c echo.Context) error {
	return h.remove(c, h.Svc.Delete)
}

// AdminDelete removes any active review.
func (h *ReviewHandler) AdminDelete(c echo.Context) error {
	return h.remove(c, h.Svc.AdminDelete)
}

func (h *ReviewHandler) remove(c echo.Context, del func(context.Context, uint64, uint64) error) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid review id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := del(ctx, uid, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "review deleted"})
}
