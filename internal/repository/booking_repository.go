package repository

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/travel-booking/internal/model"
)

// BookingTx is the set of statements the booking workflow runs inside one
// database transaction.  Implementations must not commit on their own.
type BookingTx interface {
	// LockRoom reads the joined room row and holds a write lock on it until
	// the transaction ends.  A missing room yields ErrNotFound.
	LockRoom(ctx context.Context, roomID uint64) (*model.RoomDetail, error)
	// ReserveRoom clears the availability flag only if it is still set.
	// ErrConflict means another transaction got there first.
	ReserveRoom(ctx context.Context, roomID uint64) error
	// ReleaseRoom sets the availability flag.
	ReleaseRoom(ctx context.Context, roomID uint64) error
	InsertBooking(ctx context.Context, b *model.Booking) error
	InsertPayment(ctx context.Context, p *model.Payment) error
	// LockBooking locks a booking owned by userID.  Bookings of other users
	// are reported as ErrNotFound.
	LockBooking(ctx context.Context, userID, bookingID uint64) (*model.Booking, error)
	SetBookingStatus(ctx context.Context, bookingID uint64, status string) error
}

// BookingRepo persists bookings and their payments.
type BookingRepo struct {
	db *sql.DB
}

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// InTx runs fn inside a transaction.  The transaction commits only when fn
// returns nil; any error or panic rolls back every statement.
func (r *BookingRepo) InTx(ctx context.Context, fn func(tx BookingTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(&bookingTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

const bookingDetailSelect = `SELECT b.id, b.user_id, b.room_id, b.check_in_date, b.check_out_date,
	       b.total_price, b.status, b.created_at,
	       h.name, r.room_number, COALESCE(rt.name, ''), d.name, COALESCE(d.percentage, 0)
	FROM bookings b
	JOIN rooms r            ON r.id = b.room_id
	JOIN hotels h           ON h.id = r.hotel_id
	LEFT JOIN room_types rt ON rt.id = r.room_type_id
	LEFT JOIN discounts d   ON d.id = r.discount_id`

func scanBookingDetail(s scanner) (model.BookingDetail, error) {
	var (
		bd       model.BookingDetail
		discName sql.NullString
		pct      decimal.Decimal
	)
	err := s.Scan(&bd.ID, &bd.UserID, &bd.RoomID, &bd.CheckInDate, &bd.CheckOutDate,
		&bd.TotalPrice, &bd.Status, &bd.CreatedAt,
		&bd.HotelName, &bd.RoomNumber, &bd.RoomTypeName, &discName, &pct)
	if err != nil {
		return bd, err
	}
	if discName.Valid {
		bd.DiscountName = &discName.String
	}
	bd.DiscountPercentage = pct
	return bd, nil
}

// ListByUser returns the user's bookings, latest check-in first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.BookingDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		bookingDetailSelect+" WHERE b.user_id = ? ORDER BY b.check_in_date DESC, b.id DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.BookingDetail{}
	for rows.Next() {
		bd, err := scanBookingDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, bd)
	}
	return out, rows.Err()
}

// GetForUser returns ErrNotFound when the booking is missing or belongs to
// someone else.
func (r *BookingRepo) GetForUser(ctx context.Context, userID, bookingID uint64) (*model.BookingDetail, error) {
	bd, err := scanBookingDetail(r.db.QueryRowContext(ctx,
		bookingDetailSelect+" WHERE b.id = ? AND b.user_id = ?", bookingID, userID))
	if err != nil {
		return nil, translate(err)
	}
	return &bd, nil
}

type bookingTx struct {
	tx *sql.Tx
}

func (t *bookingTx) LockRoom(ctx context.Context, roomID uint64) (*model.RoomDetail, error) {
	// OF r keeps the lock on the room row instead of the joined hotel.
	rd, err := scanRoomDetail(t.tx.QueryRowContext(ctx,
		roomDetailSelect+" WHERE r.id = ? FOR UPDATE OF r", roomID))
	if err != nil {
		return nil, translate(err)
	}
	return &rd, nil
}

func (t *bookingTx) ReserveRoom(ctx context.Context, roomID uint64) error {
	err := expectOne(t.tx.ExecContext(ctx,
		"UPDATE rooms SET is_available = 0 WHERE id = ? AND is_available = 1", roomID))
	if err == ErrNotFound {
		return ErrConflict
	}
	return err
}

func (t *bookingTx) ReleaseRoom(ctx context.Context, roomID uint64) error {
	_, err := t.tx.ExecContext(ctx, "UPDATE rooms SET is_available = 1 WHERE id = ?", roomID)
	return err
}

func (t *bookingTx) InsertBooking(ctx context.Context, b *model.Booking) error {
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO bookings (user_id, room_id, check_in_date, check_out_date, total_price, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.UserID, b.RoomID, b.CheckInDate, b.CheckOutDate, b.TotalPrice, b.Status, b.CreatedAt)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

func (t *bookingTx) InsertPayment(ctx context.Context, p *model.Payment) error {
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO payments (booking_id, amount, status, method, transaction_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.BookingID, p.Amount, p.Status, p.Method, p.TransactionID, p.CreatedAt)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

func (t *bookingTx) LockBooking(ctx context.Context, userID, bookingID uint64) (*model.Booking, error) {
	var b model.Booking
	err := t.tx.QueryRowContext(ctx,
		`SELECT id, user_id, room_id, check_in_date, check_out_date, total_price, status, created_at
		 FROM bookings WHERE id = ? AND user_id = ? FOR UPDATE`, bookingID, userID).
		Scan(&b.ID, &b.UserID, &b.RoomID, &b.CheckInDate, &b.CheckOutDate, &b.TotalPrice, &b.Status, &b.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (t *bookingTx) SetBookingStatus(ctx context.Context, bookingID uint64, status string) error {
	_, err := t.tx.ExecContext(ctx, "UPDATE bookings SET status = ? WHERE id = ?", status, bookingID)
	return err
}
