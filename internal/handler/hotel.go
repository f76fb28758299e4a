package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/repository"
)

type HotelAPI interface {
	List(ctx context.Context, q repository.HotelFilter) ([]model.Hotel, error)
	Get(ctx context.Context, id uint64) (*model.HotelWithRooms, error)
	AvailableRooms(ctx context.Context, hotelID uint64) ([]model.RoomDetail, error)
	ListCities(ctx context.Context) ([]model.City, error)
}

// HotelHandler serves the public catalogue.  No route here needs a token.
type HotelHandler struct {
	Svc HotelAPI
}

func NewHotelHandler(svc HotelAPI) *HotelHandler { return &HotelHandler{Svc: svc} }

// List handles GET /v1/hotels?city=&stars=.
func (h *HotelHandler) List(c echo.Context) error {
	q := repository.HotelFilter{City: strings.TrimSpace(c.QueryParam("city"))}
	if s := c.QueryParam("stars"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return badRequest(c, "stars must be a number")
		}
		q.Stars = n
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.Svc.List(ctx, q)
	if err != nil {
		return writeError(c, err)
	}
	if list == nil {
		list = []model.Hotel{}
	}
	return c.JSON(http.StatusOK, list)
}

func (h *HotelHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid hotel id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	hw, err := h.Svc.Get(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	if hw.Rooms == nil {
		hw.Rooms = []model.RoomDetail{}
	}
	return c.JSON(http.StatusOK, hw)
}

// Rooms lists only the rooms that are currently available.
func (h *HotelHandler) Rooms(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid hotel id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	rooms, err := h.Svc.AvailableRooms(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	if rooms == nil {
		rooms = []model.RoomDetail{}
	}
	return c.JSON(http.StatusOK, rooms)
}

func (h *HotelHandler) Cities(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	cities, err := h.Svc.ListCities(ctx)
	if err != nil {
		return writeError(c, err)
	}
	if cities == nil {
		cities = []model.City{}
	}
	return c.JSON(http.StatusOK, cities)
}
