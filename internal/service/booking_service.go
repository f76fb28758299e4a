package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iliyamo/travel-booking/internal/logger"
	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/queue"
	"github.com/iliyamo/travel-booking/internal/repository"
	"github.com/iliyamo/travel-booking/internal/utils"
)

const dateLayout = "2006-01-02"

// BookingStore is the persistence the booking workflow needs.
// *repository.BookingRepo satisfies it.
type BookingStore interface {
	InTx(ctx context.Context, fn func(tx repository.BookingTx) error) error
	ListByUser(ctx context.Context, userID uint64) ([]model.BookingDetail, error)
	GetForUser(ctx context.Context, userID, bookingID uint64) (*model.BookingDetail, error)
}

// BookingEvents receives booking state changes after they are committed.
type BookingEvents interface {
	BookingConfirmed(ctx context.Context, ev queue.BookingEvent) error
	BookingCancelled(ctx context.Context, ev queue.BookingEvent) error
}

// BookingResult is the enriched view of a booking returned to clients.
type BookingResult struct {
	ID                 uint64          `json:"id"`
	Hotel              string          `json:"hotel"`
	Room               string          `json:"room"`
	RoomType           string          `json:"room_type"`
	Discount           *string         `json:"discount"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	TotalPrice         decimal.Decimal `json:"total_price"`
	Status             string          `json:"status"`
	CheckInDate        string          `json:"check_in_date"`
	CheckOutDate       string          `json:"check_out_date"`
	TransactionID      string          `json:"transaction_id,omitempty"`
}

func resultFromDetail(bd model.BookingDetail) BookingResult {
	return BookingResult{
		ID:                 bd.ID,
		Hotel:              bd.HotelName,
		Room:               bd.RoomNumber,
		RoomType:           bd.RoomTypeName,
		Discount:           bd.DiscountName,
		DiscountPercentage: bd.DiscountPercentage,
		TotalPrice:         bd.TotalPrice,
		Status:             bd.Status,
		CheckInDate:        bd.CheckInDate.Format(dateLayout),
		CheckOutDate:       bd.CheckOutDate.Format(dateLayout),
	}
}

// BookingService implements booking, history, confirmation and
// cancellation.
type BookingService struct {
	store  BookingStore
	events BookingEvents // nil disables publishing

	now   func() time.Time
	txnID func() string
}

func NewBookingService(store BookingStore, events BookingEvents) *BookingService {
	return &BookingService{
		store:  store,
		events: events,
		now:    func() time.Time { return time.Now().UTC() },
		txnID:  utils.NewTransactionID,
	}
}

// Book reserves roomID for the given dates.  The availability check, the
// flag flip and the booking and payment inserts happen in one transaction;
// on any failure nothing is written.
func (s *BookingService) Book(ctx context.Context, userID, roomID uint64, checkIn, checkOut time.Time) (*BookingResult, error) {
	nights := Nights(checkIn, checkOut)
	if nights <= 0 {
		return nil, ErrInvalidDateRange
	}

	var (
		room    *model.RoomDetail
		booking model.Booking
		payment model.Payment
	)
	err := s.store.InTx(ctx, func(tx repository.BookingTx) error {
		var err error
		room, err = tx.LockRoom(ctx, roomID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoomNotAvailable
		}
		if err != nil {
			return err
		}
		if !room.IsAvailable {
			return ErrRoomNotAvailable
		}

		pct := decimal.Zero
		if room.DiscountPercentage != nil {
			pct = *room.DiscountPercentage
		}
		now := s.now()
		booking = model.Booking{
			UserID:       userID,
			RoomID:       roomID,
			CheckInDate:  DateOnly(checkIn),
			CheckOutDate: DateOnly(checkOut),
			TotalPrice:   TotalPrice(nights, room.PricePerNight, pct),
			Status:       model.BookingConfirmed,
			CreatedAt:    now,
		}

		if err := tx.ReserveRoom(ctx, roomID); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrRoomNotAvailable
			}
			return err
		}
		if err := tx.InsertBooking(ctx, &booking); err != nil {
			return err
		}
		payment = model.Payment{
			BookingID:     booking.ID,
			Amount:        booking.TotalPrice,
			Status:        model.PaymentPaid,
			Method:        model.PaymentMethodCash,
			TransactionID: s.txnID(),
			CreatedAt:     now,
		}
		return tx.InsertPayment(ctx, &payment)
	})
	if err != nil {
		return nil, err
	}

	detail := model.BookingDetail{
		Booking:      booking,
		HotelName:    room.HotelName,
		RoomNumber:   room.RoomNumber,
		RoomTypeName: room.RoomTypeName,
		DiscountName: room.DiscountName,
	}
	if room.DiscountPercentage != nil {
		detail.DiscountPercentage = *room.DiscountPercentage
	}
	logger.Info("booking confirmed",
		zap.Uint64("booking_id", booking.ID), zap.Uint64("user_id", userID),
		zap.Uint64("room_id", roomID), zap.String("total", booking.TotalPrice.StringFixed(2)),
		zap.String("transaction_id", payment.TransactionID))
	s.publish(ctx, queue.BookingConfirmedQueue, detail)

	res := resultFromDetail(detail)
	res.TransactionID = payment.TransactionID
	return &res, nil
}

// GetHistory lists the user's bookings, latest check-in first.
func (s *BookingService) GetHistory(ctx context.Context, userID uint64) ([]BookingResult, error) {
	rows, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]BookingResult, 0, len(rows))
	for _, bd := range rows {
		out = append(out, resultFromDetail(bd))
	}
	return out, nil
}

// GetConfirmation returns one booking.  Bookings of other users are
// reported as not found.
func (s *BookingService) GetConfirmation(ctx context.Context, userID, bookingID uint64) (*BookingResult, error) {
	bd, err := s.store.GetForUser(ctx, userID, bookingID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	res := resultFromDetail(*bd)
	return &res, nil
}

// Cancel marks the booking cancelled, makes its room bookable again and
// returns the updated booking.  The payment row is left as is.
func (s *BookingService) Cancel(ctx context.Context, userID, bookingID uint64) (*BookingResult, error) {
	var booking *model.Booking
	err := s.store.InTx(ctx, func(tx repository.BookingTx) error {
		var err error
		booking, err = tx.LockBooking(ctx, userID, bookingID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrBookingNotFound
		}
		if err != nil {
			return err
		}
		if booking.IsCancelled() {
			return ErrAlreadyCancelled
		}
		if err := tx.SetBookingStatus(ctx, booking.ID, model.BookingCancelled); err != nil {
			return err
		}
		return tx.ReleaseRoom(ctx, booking.RoomID)
	})
	if err != nil {
		return nil, err
	}
	booking.Status = model.BookingCancelled
	logger.Info("booking cancelled",
		zap.Uint64("booking_id", booking.ID), zap.Uint64("user_id", userID), zap.Uint64("room_id", booking.RoomID))

	// the cancel is committed; a failed re-read only loses the joined names
	detail := model.BookingDetail{Booking: *booking}
	if bd, err := s.store.GetForUser(ctx, userID, bookingID); err == nil {
		detail = *bd
	} else {
		logger.Warn("reload cancelled booking", zap.Uint64("booking_id", booking.ID), zap.Error(err))
	}
	s.publish(ctx, queue.BookingCancelledQueue, detail)

	res := resultFromDetail(detail)
	return &res, nil
}

// publish sends the event on a context detached from the request so a
// client disconnect does not drop it.  Failures are logged only.
func (s *BookingService) publish(ctx context.Context, q string, bd model.BookingDetail) {
	if s.events == nil {
		return
	}
	ev := queue.BookingEvent{
		BookingID:  bd.ID,
		UserID:     bd.UserID,
		RoomID:     bd.RoomID,
		HotelName:  bd.HotelName,
		RoomNumber: bd.RoomNumber,
		CheckIn:    bd.CheckInDate.Format(dateLayout),
		CheckOut:   bd.CheckOutDate.Format(dateLayout),
		TotalPrice: bd.TotalPrice.StringFixed(2),
		Status:     bd.Status,
		OccurredAt: s.now().Format(time.RFC3339),
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()

	var err error
	if q == queue.BookingCancelledQueue {
		err = s.events.BookingCancelled(pctx, ev)
	} else {
		err = s.events.BookingConfirmed(pctx, ev)
	}
	if err != nil {
		logger.Warn("publish booking event failed", zap.String("queue", q),
			zap.Uint64("booking_id", bd.ID), zap.Error(err))
	}
}
