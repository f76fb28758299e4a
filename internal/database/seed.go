package database

import (
	"context"
	"database/sql"
	"fmt"
)

type seedHotel struct {
	name, owner, location string
	stars, city           int
}

var (
	seedCities = [][3]string{
		{"Paris", "France", "75000"},
		{"Tokyo", "Japan", "100-0001"},
		{"New York", "USA", "10001"},
	}
	seedHotels = []seedHotel{
		{"Eiffel Grand", "Pierre", "Near Eiffel Tower", 5, 0},
		{"Parisian Budget", "Claire", "Montmartre", 3, 0},
		{"Tokyo Zen", "Yuki", "Shinjuku", 4, 1},
		{"Sakura Stay", "Hiro", "Asakusa", 2, 1},
		{"Manhattan View", "Jake", "Times Square", 5, 2},
		{"NY Budget Inn", "Sara", "Harlem", 2, 2},
	}
)

// Seed inserts demo cities, hotels and two rooms per hotel. It does nothing
// when at least one city already exists.
func Seed(ctx context.Context, db *sql.DB) (err error) {
	var n int
	if err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cities").Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	cityIDs := make([]int64, 0, len(seedCities))
	for _, c := range seedCities {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO cities (name, country, post_office) VALUES (?, ?, ?)", c[0], c[1], c[2])
		if err != nil {
			return fmt.Errorf("seed city %s: %w", c[0], err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		cityIDs = append(cityIDs, id)
	}
	for _, h := range seedHotels {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO hotels (name, star_rate, location, owner, city_id) VALUES (?, ?, ?, ?, ?)",
			h.name, h.stars, h.location, h.owner, cityIDs[h.city])
		if err != nil {
			return fmt.Errorf("seed hotel %s: %w", h.name, err)
		}
		hotelID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		// two rooms per hotel: a double and a family room
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO rooms (room_number, adults, children, price_per_night, is_available, hotel_id)
			 VALUES (?, 2, 1, '120.00', 1, ?), (?, 3, 2, '180.00', 1, ?)`,
			fmt.Sprintf("R%d01", hotelID), hotelID, fmt.Sprintf("R%d02", hotelID), hotelID); err != nil {
			return fmt.Errorf("seed rooms for %s: %w", h.name, err)
		}
	}
	return tx.Commit()
}
