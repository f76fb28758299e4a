package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/travel-booking/internal/model"
)

// HotelFilter narrows the public hotel listing.  Zero values mean "any".
type HotelFilter struct {
	City  string // case-insensitive substring of the city name
	Stars int    // exact star rating
}

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// HotelRepo manages hotels.  Reads always join the city name.
type HotelRepo struct {
	db *sql.DB
}

func NewHotelRepo(db *sql.DB) *HotelRepo { return &HotelRepo{db: db} }

const hotelSelect = `SELECT h.id, h.name, h.star_rate, h.location, h.owner, h.city_id, c.name
	FROM hotels h
	JOIN cities c ON c.id = h.city_id`

func scanHotel(s scanner) (model.Hotel, error) {
	var h model.Hotel
	err := s.Scan(&h.ID, &h.Name, &h.StarRate, &h.Location, &h.Owner, &h.CityID, &h.CityName)
	return h, err
}

// List returns every hotel.
func (r *HotelRepo) List(ctx context.Context) ([]model.Hotel, error) {
	return r.Search(ctx, HotelFilter{})
}

// Search returns hotels matching f ordered by name.
func (r *HotelRepo) Search(ctx context.Context, f HotelFilter) ([]model.Hotel, error) {
	where := []string{}
	args := []any{}
	if city := strings.TrimSpace(f.City); city != "" {
		where = append(where, "LOWER(c.name) LIKE ? ESCAPE '!'")
		args = append(args, "%"+likeEscaper.Replace(strings.ToLower(city))+"%")
	}
	if f.Stars > 0 {
		where = append(where, "h.star_rate = ?")
		args = append(args, f.Stars)
	}
	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	rows, err := r.db.QueryContext(ctx, hotelSelect+" WHERE "+cond+" ORDER BY h.name, h.id", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Hotel{}
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// GetByID returns ErrNotFound when the hotel does not exist.
func (r *HotelRepo) GetByID(ctx context.Context, id uint64) (*model.Hotel, error) {
	h, err := scanHotel(r.db.QueryRowContext(ctx, hotelSelect+" WHERE h.id = ?", id))
	if err != nil {
		return nil, translate(err)
	}
	return &h, nil
}

func (r *HotelRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	return exists(ctx, r.db, "hotels", id)
}

func (r *HotelRepo) Create(ctx context.Context, h *model.Hotel) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO hotels (name, star_rate, location, owner, city_id) VALUES (?, ?, ?, ?, ?)",
		h.Name, h.StarRate, h.Location, h.Owner, h.CityID)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)
	return nil
}

func (r *HotelRepo) Update(ctx context.Context, h *model.Hotel) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE hotels SET name = ?, star_rate = ?, location = ?, owner = ?, city_id = ? WHERE id = ?",
		h.Name, h.StarRate, h.Location, h.Owner, h.CityID, h.ID)
	return translate(err)
}

// Delete fails with ErrInUse while rooms or reviews still reference the hotel.
func (r *HotelRepo) Delete(ctx context.Context, id uint64) error {
	return expectOne(r.db.ExecContext(ctx, "DELETE FROM hotels WHERE id = ?", id))
}
