package service

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/queue"
	"github.com/iliyamo/travel-booking/internal/repository"
)

// memBookingStore is an in-memory BookingStore.  InTx works on a copy of
// the state and swaps it in only on success, which gives the same
// all-or-nothing behaviour as the SQL transaction.
type memBookingStore struct {
	mu       sync.Mutex
	rooms    map[uint64]model.RoomDetail
	bookings map[uint64]model.Booking
	payments []model.Payment
	nextID   uint64

	failPayment error // injected into InsertPayment
}

func newMemBookingStore(rooms ...model.RoomDetail) *memBookingStore {
	s := &memBookingStore{rooms: map[uint64]model.RoomDetail{}, bookings: map[uint64]model.Booking{}}
	for _, r := range rooms {
		s.rooms[r.ID] = r
	}
	return s
}

func (s *memBookingStore) InTx(ctx context.Context, fn func(tx repository.BookingTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		store:    s,
		rooms:    map[uint64]model.RoomDetail{},
		bookings: map[uint64]model.Booking{},
		payments: append([]model.Payment(nil), s.payments...),
		nextID:   s.nextID,
	}
	for k, v := range s.rooms {
		tx.rooms[k] = v
	}
	for k, v := range s.bookings {
		tx.bookings[k] = v
	}
	if err := fn(tx); err != nil {
		return err
	}
	s.rooms, s.bookings, s.payments, s.nextID = tx.rooms, tx.bookings, tx.payments, tx.nextID
	return nil
}

func (s *memBookingStore) detail(b model.Booking) model.BookingDetail {
	r := s.rooms[b.RoomID]
	bd := model.BookingDetail{Booking: b, HotelName: r.HotelName, RoomNumber: r.RoomNumber,
		RoomTypeName: r.RoomTypeName, DiscountName: r.DiscountName}
	if r.DiscountPercentage != nil {
		bd.DiscountPercentage = *r.DiscountPercentage
	}
	return bd
}

func (s *memBookingStore) ListByUser(_ context.Context, userID uint64) ([]model.BookingDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.BookingDetail{}
	for _, b := range s.bookings {
		if b.UserID == userID {
			out = append(out, s.detail(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CheckInDate.Equal(out[j].CheckInDate) {
			return out[i].CheckInDate.After(out[j].CheckInDate)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *memBookingStore) GetForUser(_ context.Context, userID, bookingID uint64) (*model.BookingDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[bookingID]
	if !ok || b.UserID != userID {
		return nil, repository.ErrNotFound
	}
	bd := s.detail(b)
	return &bd, nil
}

type memTx struct {
	store    *memBookingStore
	rooms    map[uint64]model.RoomDetail
	bookings map[uint64]model.Booking
	payments []model.Payment
	nextID   uint64
}

func (t *memTx) LockRoom(_ context.Context, roomID uint64) (*model.RoomDetail, error) {
	r, ok := t.rooms[roomID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (t *memTx) ReserveRoom(_ context.Context, roomID uint64) error {
	r, ok := t.rooms[roomID]
	if !ok || !r.IsAvailable {
		return repository.ErrConflict
	}
	r.IsAvailable = false
	t.rooms[roomID] = r
	return nil
}

func (t *memTx) ReleaseRoom(_ context.Context, roomID uint64) error {
	r := t.rooms[roomID]
	r.IsAvailable = true
	t.rooms[roomID] = r
	return nil
}

func (t *memTx) InsertBooking(_ context.Context, b *model.Booking) error {
	t.nextID++
	b.ID = t.nextID
	t.bookings[b.ID] = *b
	return nil
}

func (t *memTx) InsertPayment(_ context.Context, p *model.Payment) error {
	if t.store.failPayment != nil {
		return t.store.failPayment
	}
	p.ID = uint64(len(t.payments) + 1)
	t.payments = append(t.payments, *p)
	return nil
}

func (t *memTx) LockBooking(_ context.Context, userID, bookingID uint64) (*model.Booking, error) {
	b, ok := t.bookings[bookingID]
	if !ok || b.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (t *memTx) SetBookingStatus(_ context.Context, bookingID uint64, status string) error {
	b := t.bookings[bookingID]
	b.Status = status
	t.bookings[bookingID] = b
	return nil
}

type recordedEvents struct {
	mu        sync.Mutex
	confirmed []queue.BookingEvent
	cancelled []queue.BookingEvent
	err       error
}

func (r *recordedEvents) BookingConfirmed(_ context.Context, ev queue.BookingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.confirmed = append(r.confirmed, ev)
	return r.err
}

func (r *recordedEvents) BookingCancelled(_ context.Context, ev queue.BookingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelled = append(r.cancelled, ev)
	return r.err
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }
