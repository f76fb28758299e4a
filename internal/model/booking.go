package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Booking status values stored in bookings.status.
const (
	BookingPending   = "Pending"
	BookingConfirmed = "Confirmed"
	BookingCancelled = "Cancelled"
)

// Payment status values stored in payments.status.
const (
	PaymentPending  = "Pending"
	PaymentPaid     = "Paid"
	PaymentFailed   = "Failed"
	PaymentRefunded = "Refunded"
)

// PaymentMethodCash is the placeholder method recorded for every payment.
const PaymentMethodCash = "Cash"

// Booking mirrors the `bookings` table. A booking references a room but
// does not own it. It is never physically deleted; cancellation is a
// status change.
//
// Fields:
//  ID           – primary key identifier.
//  UserID       – owner of the booking.
//  RoomID       – booked room.
//  CheckInDate  – first night (date only).
//  CheckOutDate – departure day (date only).
//  TotalPrice   – price after discount, fixed at booking time.
//  Status       – BookingConfirmed or BookingCancelled in practice.
//  CreatedAt    – creation timestamp.
type Booking struct {
	ID           uint64          // bookings.id
	UserID       uint64          // bookings.user_id
	RoomID       uint64          // bookings.room_id
	CheckInDate  time.Time       // bookings.check_in_date
	CheckOutDate time.Time       // bookings.check_out_date
	TotalPrice   decimal.Decimal // bookings.total_price
	Status       string          // bookings.status
	CreatedAt    time.Time       // bookings.created_at
}

// IsCancelled reports whether the booking reached its terminal state.
func (b Booking) IsCancelled() bool { return b.Status == BookingCancelled }

// Payment mirrors the `payments` table. One payment is written per booking
// and it is not updated afterwards.
type Payment struct {
	ID            uint64          // payments.id
	BookingID     uint64          // payments.booking_id
	Amount        decimal.Decimal // payments.amount
	Status        string          // payments.status
	Method        string          // payments.method
	TransactionID string          // payments.transaction_id
	CreatedAt     time.Time       // payments.created_at
}

// BookingDetail is a booking joined with the display names of its hotel,
// room, room type and discount. Repositories return it for every read.
type BookingDetail struct {
	Booking
	HotelName          string
	RoomNumber         string
	RoomTypeName       string
	DiscountName       *string
	DiscountPercentage decimal.Decimal
}
