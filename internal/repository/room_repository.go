package repository

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/travel-booking/internal/model"
)

// RoomRepo manages rooms and the joined room views used by browsing and
// booking.
type RoomRepo struct {
	db *sql.DB
}

func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

const roomCols = "id, room_number, adults, children, price_per_night, is_available, hotel_id, room_type_id, discount_id"

// roomDetailSelect joins a room with its hotel, optional room type and
// optional discount.  Callers append WHERE/ORDER clauses.
const roomDetailSelect = `SELECT r.id, r.room_number, r.adults, r.children, r.price_per_night,
	       r.is_available, r.hotel_id, r.room_type_id, r.discount_id,
	       h.name, COALESCE(rt.name, ''), d.name, d.percentage
	FROM rooms r
	JOIN hotels h           ON h.id = r.hotel_id
	LEFT JOIN room_types rt ON rt.id = r.room_type_id
	LEFT JOIN discounts d   ON d.id = r.discount_id`

type scanner interface{ Scan(...any) error }

func scanRoom(s scanner) (model.Room, error) {
	var (
		rm           model.Room
		typeID, disc sql.NullInt64
	)
	err := s.Scan(&rm.ID, &rm.RoomNumber, &rm.Adults, &rm.Children, &rm.PricePerNight,
		&rm.IsAvailable, &rm.HotelID, &typeID, &disc)
	rm.RoomTypeID = nullID(typeID)
	rm.DiscountID = nullID(disc)
	return rm, err
}

func scanRoomDetail(s scanner) (model.RoomDetail, error) {
	var (
		rd           model.RoomDetail
		typeID, disc sql.NullInt64
		discName     sql.NullString
		pct          decimal.NullDecimal
	)
	err := s.Scan(&rd.ID, &rd.RoomNumber, &rd.Adults, &rd.Children, &rd.PricePerNight,
		&rd.IsAvailable, &rd.HotelID, &typeID, &disc,
		&rd.HotelName, &rd.RoomTypeName, &discName, &pct)
	if err != nil {
		return rd, err
	}
	rd.RoomTypeID = nullID(typeID)
	rd.DiscountID = nullID(disc)
	if discName.Valid {
		rd.DiscountName = &discName.String
	}
	if pct.Valid {
		rd.DiscountPercentage = &pct.Decimal
	}
	return rd, nil
}

func nullID(n sql.NullInt64) *uint64 {
	if !n.Valid {
		return nil
	}
	id := uint64(n.Int64)
	return &id
}

func idArg(id *uint64) any {
	if id == nil {
		return nil
	}
	return *id
}

// List returns every room ordered by hotel then room number.
func (r *RoomRepo) List(ctx context.Context) ([]model.Room, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+roomCols+" FROM rooms ORDER BY hotel_id, room_number")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Room{}
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	rm, err := scanRoom(r.db.QueryRowContext(ctx, "SELECT "+roomCols+" FROM rooms WHERE id = ?", id))
	if err != nil {
		return nil, translate(err)
	}
	return &rm, nil
}

// ListByHotel returns the joined view of a hotel's rooms.  With
// onlyAvailable set, rooms whose availability flag is cleared are skipped.
func (r *RoomRepo) ListByHotel(ctx context.Context, hotelID uint64, onlyAvailable bool) ([]model.RoomDetail, error) {
	q := roomDetailSelect + " WHERE r.hotel_id = ?"
	if onlyAvailable {
		q += " AND r.is_available = 1"
	}
	q += " ORDER BY r.room_number, r.id"

	rows, err := r.db.QueryContext(ctx, q, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.RoomDetail{}
	for rows.Next() {
		rd, err := scanRoomDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rd)
	}
	return out, rows.Err()
}

func (r *RoomRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	return exists(ctx, r.db, "rooms", id)
}

func (r *RoomRepo) Create(ctx context.Context, rm *model.Room) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO rooms (room_number, adults, children, price_per_night, is_available, hotel_id, room_type_id, discount_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rm.RoomNumber, rm.Adults, rm.Children, rm.PricePerNight, rm.IsAvailable,
		rm.HotelID, idArg(rm.RoomTypeID), idArg(rm.DiscountID))
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rm.ID = uint64(id)
	return nil
}

func (r *RoomRepo) Update(ctx context.Context, rm *model.Room) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE rooms SET room_number = ?, adults = ?, children = ?, price_per_night = ?,
		        is_available = ?, hotel_id = ?, room_type_id = ?, discount_id = ?
		 WHERE id = ?`,
		rm.RoomNumber, rm.Adults, rm.Children, rm.PricePerNight, rm.IsAvailable,
		rm.HotelID, idArg(rm.RoomTypeID), idArg(rm.DiscountID), rm.ID)
	return translate(err)
}

// Delete fails with ErrInUse once the room has bookings.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	return expectOne(r.db.ExecContext(ctx, "DELETE FROM rooms WHERE id = ?", id))
}
