package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/repository"
	"github.com/iliyamo/travel-booking/internal/service"
	"github.com/iliyamo/travel-booking/internal/utils"
)

func TestWriteErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		code int
		body string
	}{
		{service.ErrInvalidDateRange, http.StatusBadRequest, service.ErrInvalidDateRange.Error()},
		{service.ErrBookingNotFound, http.StatusNotFound, service.ErrBookingNotFound.Error()},
		{service.ErrRoomNotAvailable, http.StatusConflict, service.ErrRoomNotAvailable.Error()},
		{service.ErrTooLate, http.StatusConflict, service.ErrTooLate.Error()},
		{service.ErrInvalidCredentials, http.StatusUnauthorized, service.ErrInvalidCredentials.Error()},
		{fmt.Errorf("wrapped: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, ""},
		{errBoom, http.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		e := echo.New()
		e.GET("/x", func(c echo.Context) error { return writeError(c, tc.err) })
		rec := do(e, http.MethodGet, "/x", "")
		assert.Equal(t, tc.code, rec.Code, tc.err.Error())
		if tc.body != "" {
			assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, tc.body), rec.Body.String())
		}
	}
}

func bookingServer(m *mockBookings, uid uint64) *echo.Echo {
	e := asUser(uid, model.RoleUser)
	h := NewBookingHandler(m)
	e.POST("/v1/bookings", h.Create)
	e.GET("/v1/bookings/history", h.History)
	e.GET("/v1/bookings/:id/confirmation", h.Confirmation)
	e.POST("/v1/bookings/:id/cancel", h.Cancel)
	return e
}

func TestBookingCreate(t *testing.T) {
	in := time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)
	out := time.Date(2030, 5, 4, 0, 0, 0, 0, time.UTC)

	m := new(mockBookings)
	m.On("Book", mock.Anything, uint64(7), uint64(3), in, out).Return(&service.BookingResult{
		ID: 11, Hotel: "Eiffel Grand", Room: "R101", TotalPrice: decimal.RequireFromString("306.00"),
		Status: model.BookingConfirmed, CheckInDate: "2030-05-01", CheckOutDate: "2030-05-04",
		TransactionID: "TRX-abcdef12",
	}, nil).Once()

	rec := do(bookingServer(m, 7), http.MethodPost, "/v1/bookings",
		`{"room_id":3,"check_in_date":"2030-05-01","check_out_date":"2030-05-04"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"transaction_id":"TRX-abcdef12"`)
	assert.Contains(t, rec.Body.String(), `"total_price":"306"`)
	m.AssertExpectations(t)
}

func TestBookingCreateRejects(t *testing.T) {
	m := new(mockBookings)
	m.On("Book", mock.Anything, uint64(7), uint64(3), mock.Anything, mock.Anything).
		Return(nil, service.ErrRoomNotAvailable).Once()
	e := bookingServer(m, 7)

	rec := do(e, http.MethodPost, "/v1/bookings", `{"room_id":3,"check_in_date":"01/05/2030","check_out_date":"2030-05-04"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPost, "/v1/bookings", `{"check_in_date":"2030-05-01","check_out_date":"2030-05-04"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPost, "/v1/bookings", `{"room_id":3,"check_in_date":"2030-05-01","check_out_date":"2030-05-04"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(bookingServer(m, 0), http.MethodPost, "/v1/bookings", `{"room_id":3}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	m.AssertExpectations(t)
}

func TestBookingReads(t *testing.T) {
	m := new(mockBookings)
	m.On("GetHistory", mock.Anything, uint64(7)).Return(nil, nil).Once()
	m.On("GetConfirmation", mock.Anything, uint64(7), uint64(99)).Return(nil, service.ErrBookingNotFound).Once()
	m.On("Cancel", mock.Anything, uint64(7), uint64(5)).Return(&service.BookingResult{
		ID: 5, Hotel: "Tokyo Zen", Room: "R301", Status: model.BookingCancelled,
		CheckInDate: "2030-05-01", CheckOutDate: "2030-05-02",
	}, nil).Once()
	m.On("Cancel", mock.Anything, uint64(7), uint64(6)).Return(nil, service.ErrAlreadyCancelled).Once()
	e := bookingServer(m, 7)

	rec := do(e, http.MethodGet, "/v1/bookings/history", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/v1/bookings/99/confirmation", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/v1/bookings/abc/confirmation", "").Code)
	rec = do(e, http.MethodPost, "/v1/bookings/5/cancel", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":5`)
	assert.Contains(t, rec.Body.String(), `"status":"`+model.BookingCancelled+`"`)
	assert.Contains(t, rec.Body.String(), `"hotel":"Tokyo Zen"`)
	assert.Contains(t, rec.Body.String(), `"room":"R301"`)
	assert.Equal(t, http.StatusConflict, do(e, http.MethodPost, "/v1/bookings/6/cancel", "").Code)
	m.AssertExpectations(t)
}

func TestHotelList(t *testing.T) {
	m := new(mockHotels)
	m.On("List", mock.Anything, repository.HotelFilter{City: "paris", Stars: 5}).
		Return([]model.Hotel{{ID: 1, Name: "Eiffel Grand", StarRate: 5, CityName: "Paris"}}, nil).Once()
	m.On("List", mock.Anything, repository.HotelFilter{Stars: 9}).
		Return(nil, fmt.Errorf("%w: stars must be between 1 and 5", service.ErrValidation)).Once()
	m.On("Get", mock.Anything, uint64(4)).Return(nil, service.ErrHotelNotFound).Once()
	m.On("AvailableRooms", mock.Anything, uint64(1)).Return(nil, nil).Once()
	m.On("ListCities", mock.Anything).Return([]model.City{{ID: 1, Name: "Paris"}}, nil).Once()

	e := echo.New()
	h := NewHotelHandler(m)
	e.GET("/v1/hotels", h.List)
	e.GET("/v1/hotels/:id", h.Get)
	e.GET("/v1/hotels/:id/rooms", h.Rooms)
	e.GET("/v1/cities", h.Cities)

	rec := do(e, http.MethodGet, "/v1/hotels?city=paris&stars=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Eiffel Grand"`)

	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/v1/hotels?stars=five", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/v1/hotels?stars=9", "").Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/v1/hotels/4", "").Code)

	rec = do(e, http.MethodGet, "/v1/hotels/1/rooms", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/v1/cities", "").Code)
	m.AssertExpectations(t)
}

func TestReviewRoutes(t *testing.T) {
	created := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	m := new(mockReviews)
	m.On("LeaveReview", mock.Anything, uint64(7), uint64(2), 5, "great").
		Return(&model.Review{ID: 1, UserID: 7, HotelID: 2, Rating: 5, Comment: "great", CreatedAt: created}, nil).Once()
	m.On("LeaveReview", mock.Anything, uint64(7), uint64(2), 4, "again").Return(nil, service.ErrAlreadyReviewed).Once()
	m.On("ListByHotel", mock.Anything, uint64(2)).Return([]service.ReviewView{{ID: 1, Rating: 5}}, nil).Once()
	m.On("Delete", mock.Anything, uint64(7), uint64(1)).Return(service.ErrTooLate).Once()
	m.On("AdminDelete", mock.Anything, uint64(7), uint64(1)).Return(nil).Once()
	m.On("ListByUser", mock.Anything, uint64(3)).Return(nil, nil).Once()

	e := asUser(7, model.RoleAdmin)
	h := NewReviewHandler(m)
	e.POST("/v1/reviews", h.Create)
	e.GET("/v1/reviews/hotel/:hotelId", h.ByHotel)
	e.DELETE("/v1/reviews/:id", h.Delete)
	e.DELETE("/v1/admin/reviews/:id", h.AdminDelete)
	e.GET("/v1/admin/reviews/user/:userId", h.ByUser)

	rec := do(e, http.MethodPost, "/v1/reviews", `{"hotel_id":2,"rating":5,"comment":"great"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":1,"hotel_id":2,"user_id":7,"rating":5,"comment":"great","created_at":"2030-01-02T03:04:05Z"}`,
		rec.Body.String())

	assert.Equal(t, http.StatusConflict, do(e, http.MethodPost, "/v1/reviews", `{"hotel_id":2,"rating":4,"comment":"again"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodPost, "/v1/reviews", `{"rating":4}`).Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/v1/reviews/hotel/2", "").Code)
	assert.Equal(t, http.StatusConflict, do(e, http.MethodDelete, "/v1/reviews/1", "").Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodDelete, "/v1/admin/reviews/1", "").Code)

	rec = do(e, http.MethodGet, "/v1/admin/reviews/user/3", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	m.AssertExpectations(t)
}

func TestCRUDHandler(t *testing.T) {
	m := new(mockCatalog[model.City])
	paris := &model.City{ID: 1, Name: "Paris", Country: "France", PostOffice: "75000"}
	m.On("Create", mock.Anything, &model.City{Name: "Paris", Country: "France", PostOffice: "75000"}).Return(paris, nil).Once()
	m.On("Update", mock.Anything, uint64(1), &model.City{Name: "Lyon"}).Return(&model.City{ID: 1, Name: "Lyon"}, nil).Once()
	m.On("Delete", mock.Anything, uint64(1)).Return(paris, nil).Once()
	m.On("Delete", mock.Anything, uint64(2)).Return(nil, service.ErrInUse).Once()
	m.On("Get", mock.Anything, uint64(3)).Return(nil, service.ErrCityNotFound).Once()
	m.On("List", mock.Anything).Return(nil, nil).Once()

	e := echo.New()
	NewCRUDHandler[model.City](m).Register(e.Group("/v1/admin/cities"))

	rec := do(e, http.MethodPost, "/v1/admin/cities", `{"name":"Paris","country":"France","post_office":"75000"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":1`)

	rec = do(e, http.MethodPut, "/v1/admin/cities/1", `{"name":"Lyon"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Lyon"`)

	rec = do(e, http.MethodDelete, "/v1/admin/cities/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Paris"`)

	assert.Equal(t, http.StatusConflict, do(e, http.MethodDelete, "/v1/admin/cities/2", "").Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/v1/admin/cities/3", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/v1/admin/cities/0", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodPost, "/v1/admin/cities", `{"name":`).Code)

	rec = do(e, http.MethodGet, "/v1/admin/cities", "")
	assert.JSONEq(t, `[]`, rec.Body.String())
	m.AssertExpectations(t)
}

func TestRoomCreateDefaultsAvailable(t *testing.T) {
	room := func(number string, available bool) any {
		return mock.MatchedBy(func(r *model.Room) bool {
			return r.RoomNumber == number && r.IsAvailable == available &&
				r.PricePerNight.Equal(decimal.NewFromInt(100)) && r.HotelID == 1
		})
	}
	m := new(mockCatalog[model.Room])
	m.On("Create", mock.Anything, room("R1", true)).Return(&model.Room{ID: 1, RoomNumber: "R1", IsAvailable: true}, nil).Once()
	m.On("Create", mock.Anything, room("R2", false)).Return(&model.Room{ID: 2, RoomNumber: "R2"}, nil).Once()
	m.On("Update", mock.Anything, uint64(1), room("R1", true)).Return(&model.Room{ID: 1, RoomNumber: "R1", IsAvailable: true}, nil).Once()

	e := echo.New()
	NewCRUDHandler[model.Room](m).Register(e.Group("/v1/admin/rooms"))

	rec := do(e, http.MethodPost, "/v1/admin/rooms", `{"room_number":"R1","adults":2,"price_per_night":"100","hotel_id":1}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"is_available":true`)

	rec = do(e, http.MethodPost, "/v1/admin/rooms", `{"room_number":"R2","adults":2,"price_per_night":"100","hotel_id":1,"is_available":false}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"is_available":false`)

	rec = do(e, http.MethodPut, "/v1/admin/rooms/1", `{"room_number":"R1","adults":2,"price_per_night":"100","hotel_id":1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	m.AssertExpectations(t)
}

func TestAuthHandler(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	sess := &service.Session{
		User:    service.UserView{ID: 7, Name: "Ana", Email: "ana@example.com", Role: model.RoleUser},
		Access:  utils.AccessToken{Token: "acc", Exp: exp},
		Refresh: utils.RefreshToken{Raw: "ref", Exp: exp},
	}
	m := new(mockAuth)
	m.On("Register", mock.Anything, "Ana", "ana@example.com", "secret1").
		Return(&sess.User, nil).Once()
	m.On("Register", mock.Anything, "Ana", "ana@example.com", "secret1").
		Return(nil, service.ErrEmailExists).Once()
	m.On("Login", mock.Anything, "ana@example.com", "secret1").Return(sess, nil).Once()
	m.On("Login", mock.Anything, "ana@example.com", "nope").Return(nil, service.ErrInvalidCredentials).Once()
	m.On("Refresh", mock.Anything, "ref").Return(sess, nil).Once()
	m.On("Logout", mock.Anything, uint64(7)).Return(nil).Once()

	e := asUser(7, model.RoleUser)
	h := NewAuthHandler(m)
	e.POST("/register", h.Register)
	e.POST("/login", h.Login)
	e.POST("/refresh", h.Refresh)
	e.POST("/logout", h.Logout)
	e.GET("/me", h.Me)

	reg := `{"name":"Ana","email":"ana@example.com","password":"secret1"}`
	rec := do(e, http.MethodPost, "/register", reg)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":7,"name":"Ana","email":"ana@example.com","role":"User"}`, rec.Body.String())
	assert.Equal(t, http.StatusConflict, do(e, http.MethodPost, "/register", reg).Code)

	rec = do(e, http.MethodPost, "/login", `{"email":"ana@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"access":{"token":"acc"`)
	assert.Contains(t, rec.Body.String(), `"refresh":{"token":"ref"`)

	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodPost, "/login", `{"email":"ana@example.com","password":"nope"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodPost, "/login", `{"email":""}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodPost, "/refresh", `{}`).Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodPost, "/refresh", `{"refresh_token":"ref"}`).Code)
	assert.Equal(t, http.StatusNoContent, do(e, http.MethodPost, "/logout", "").Code)

	rec = do(e, http.MethodGet, "/me", "")
	assert.JSONEq(t, `{"id":7,"email":"caller@example.com","role":"User"}`, rec.Body.String())
	m.AssertExpectations(t)
}

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	e := echo.New()
	e.GET("/up", Health(pinger{}))
	e.GET("/down", Health(pinger{err: errors.New("refused")}))
	e.GET("/bare", Health(nil))

	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/up", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(e, http.MethodGet, "/down", "").Code)
	assert.Equal(t, "ok", do(e, http.MethodGet, "/bare", "").Body.String())
}
