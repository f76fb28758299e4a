package handler

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/travel-booking/internal/middleware"
	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/repository"
	"github.com/iliyamo/travel-booking/internal/service"
)

// do runs one request through e with an optional JSON body.
func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// asUser returns an Echo whose requests carry uid and role as JWTAuth
// would set them.
func asUser(uid uint64, role string) *echo.Echo {
	e := echo.New()
	if uid > 0 {
		e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				c.Set(middleware.CtxUserID, uid)
				c.Set(middleware.CtxRole, role)
				c.Set(middleware.CtxEmail, "caller@example.com")
				return next(c)
			}
		})
	}
	return e
}

var errBoom = errors.New("boom")

type mockBookings struct{ mock.Mock }

func (m *mockBookings) Book(ctx context.Context, userID, roomID uint64, in, out time.Time) (*service.BookingResult, error) {
	args := m.Called(ctx, userID, roomID, in, out)
	r, _ := args.Get(0).(*service.BookingResult)
	return r, args.Error(1)
}

func (m *mockBookings) GetHistory(ctx context.Context, userID uint64) ([]service.BookingResult, error) {
	args := m.Called(ctx, userID)
	r, _ := args.Get(0).([]service.BookingResult)
	return r, args.Error(1)
}

func (m *mockBookings) GetConfirmation(ctx context.Context, userID, bookingID uint64) (*service.BookingResult, error) {
	args := m.Called(ctx, userID, bookingID)
	r, _ := args.Get(0).(*service.BookingResult)
	return r, args.Error(1)
}

func (m *mockBookings) Cancel(ctx context.Context, userID, bookingID uint64) (*service.BookingResult, error) {
	args := m.Called(ctx, userID, bookingID)
	r, _ := args.Get(0).(*service.BookingResult)
	return r, args.Error(1)
}

type mockReviews struct{ mock.Mock }

func (m *mockReviews) LeaveReview(ctx context.Context, userID, hotelID uint64, rating int, comment string) (*model.Review, error) {
	args := m.Called(ctx, userID, hotelID, rating, comment)
	r, _ := args.Get(0).(*model.Review)
	return r, args.Error(1)
}

func (m *mockReviews) ListByHotel(ctx context.Context, hotelID uint64) ([]service.ReviewView, error) {
	args := m.Called(ctx, hotelID)
	r, _ := args.Get(0).([]service.ReviewView)
	return r, args.Error(1)
}

func (m *mockReviews) ListByUser(ctx context.Context, userID uint64) ([]service.ReviewView, error) {
	args := m.Called(ctx, userID)
	r, _ := args.Get(0).([]service.ReviewView)
	return r, args.Error(1)
}

func (m *mockReviews) Delete(ctx context.Context, userID, reviewID uint64) error {
	return m.Called(ctx, userID, reviewID).Error(0)
}

func (m *mockReviews) AdminDelete(ctx context.Context, adminID, reviewID uint64) error {
	return m.Called(ctx, adminID, reviewID).Error(0)
}

type mockHotels struct{ mock.Mock }

func (m *mockHotels) List(ctx context.Context, q repository.HotelFilter) ([]model.Hotel, error) {
	args := m.Called(ctx, q)
	r, _ := args.Get(0).([]model.Hotel)
	return r, args.Error(1)
}

func (m *mockHotels) Get(ctx context.Context, id uint64) (*model.HotelWithRooms, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*model.HotelWithRooms)
	return r, args.Error(1)
}

func (m *mockHotels) AvailableRooms(ctx context.Context, hotelID uint64) ([]model.RoomDetail, error) {
	args := m.Called(ctx, hotelID)
	r, _ := args.Get(0).([]model.RoomDetail)
	return r, args.Error(1)
}

func (m *mockHotels) ListCities(ctx context.Context) ([]model.City, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).([]model.City)
	return r, args.Error(1)
}

type mockAuth struct{ mock.Mock }

func (m *mockAuth) Register(ctx context.Context, name, email, password string) (*service.UserView, error) {
	args := m.Called(ctx, name, email, password)
	r, _ := args.Get(0).(*service.UserView)
	return r, args.Error(1)
}

func (m *mockAuth) Login(ctx context.Context, email, password string) (*service.Session, error) {
	args := m.Called(ctx, email, password)
	r, _ := args.Get(0).(*service.Session)
	return r, args.Error(1)
}

func (m *mockAuth) Refresh(ctx context.Context, raw string) (*service.Session, error) {
	args := m.Called(ctx, raw)
	r, _ := args.Get(0).(*service.Session)
	return r, args.Error(1)
}

func (m *mockAuth) Logout(ctx context.Context, userID uint64) error {
	return m.Called(ctx, userID).Error(0)
}

type mockCatalog[T any] struct{ mock.Mock }

func (m *mockCatalog[T]) List(ctx context.Context) ([]T, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).([]T)
	return r, args.Error(1)
}

func (m *mockCatalog[T]) Get(ctx context.Context, id uint64) (*T, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*T)
	return r, args.Error(1)
}

func (m *mockCatalog[T]) Create(ctx context.Context, v *T) (*T, error) {
	args := m.Called(ctx, v)
	r, _ := args.Get(0).(*T)
	return r, args.Error(1)
}

func (m *mockCatalog[T]) Update(ctx context.Context, id uint64, v *T) (*T, error) {
	args := m.Called(ctx, id, v)
	r, _ := args.Get(0).(*T)
	return r, args.Error(1)
}

func (m *mockCatalog[T]) Delete(ctx context.Context, id uint64) (*T, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*T)
	return r, args.Error(1)
}
