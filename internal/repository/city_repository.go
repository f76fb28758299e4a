package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/travel-booking/internal/model"
)

// CityRepo encapsulates queries against the cities table.
type CityRepo struct {
	db *sql.DB
}

func NewCityRepo(db *sql.DB) *CityRepo { return &CityRepo{db: db} }

// List returns all cities ordered by name.
func (r *CityRepo) List(ctx context.Context) ([]model.City, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, country, post_office FROM cities ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.City{}
	for rows.Next() {
		var c model.City
		if err := rows.Scan(&c.ID, &c.Name, &c.Country, &c.PostOffice); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetByID returns ErrNotFound when the city does not exist.
func (r *CityRepo) GetByID(ctx context.Context, id uint64) (*model.City, error) {
	var c model.City
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, country, post_office FROM cities WHERE id = ?", id).
		Scan(&c.ID, &c.Name, &c.Country, &c.PostOffice)
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *CityRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	return exists(ctx, r.db, "cities", id)
}

// Create inserts c and populates its ID.
func (r *CityRepo) Create(ctx context.Context, c *model.City) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO cities (name, country, post_office) VALUES (?, ?, ?)",
		c.Name, c.Country, c.PostOffice)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// Update overwrites every column.  MySQL reports zero affected rows when the
// values are unchanged, so existence is checked by the caller first.
func (r *CityRepo) Update(ctx context.Context, c *model.City) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE cities SET name = ?, country = ?, post_office = ? WHERE id = ?",
		c.Name, c.Country, c.PostOffice, c.ID)
	return translate(err)
}

// Delete removes the city.  Hotels still pointing at it yield ErrInUse.
func (r *CityRepo) Delete(ctx context.Context, id uint64) error {
	return expectOne(r.db.ExecContext(ctx, "DELETE FROM cities WHERE id = ?", id))
}
