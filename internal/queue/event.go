// Package queue carries domain events over RabbitMQ.  Events are JSON,
// persistent and published to the default exchange with the queue name as
// routing key.
package queue

// Queue names.  Every queue is durable.
const (
	BookingConfirmedQueue = "booking.confirmed"
	BookingCancelledQueue = "booking.cancelled"
	UserRegisteredQueue   = "user.registered"
)

// Queues lists every queue the service declares.
var Queues = []string{BookingConfirmedQueue, BookingCancelledQueue, UserRegisteredQueue}

// BookingEvent is published after a booking is confirmed or cancelled.  It
// carries enough to log the change without querying the database.
type BookingEvent struct {
	BookingID  uint64 `json:"booking_id"`
	UserID     uint64 `json:"user_id"`
	RoomID     uint64 `json:"room_id"`
	HotelName  string `json:"hotel"`
	RoomNumber string `json:"room"`
	CheckIn    string `json:"check_in_date"`  // YYYY-MM-DD
	CheckOut   string `json:"check_out_date"` // YYYY-MM-DD
	TotalPrice string `json:"total_price"`    // decimal string, e.g. "180.00"
	Status     string `json:"status"`
	OccurredAt string `json:"occurred_at"` // RFC3339, UTC
}

// UserRegisteredEvent triggers the welcome mail.
type UserRegisteredEvent struct {
	UserID       uint64 `json:"user_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	RegisteredAt string `json:"registered_at"`
}
