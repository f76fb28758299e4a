package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/travel-booking/internal/model"
)

// DiscountRepo manages the discounts table.  The validity window is stored
// as given; nothing here interprets it.
type DiscountRepo struct {
	db *sql.DB
}

func NewDiscountRepo(db *sql.DB) *DiscountRepo { return &DiscountRepo{db: db} }

const discountCols = "id, name, code, percentage, start_date, end_date"

func scanDiscount(s scanner) (model.Discount, error) {
	var d model.Discount
	err := s.Scan(&d.ID, &d.Name, &d.Code, &d.Percentage, &d.StartDate, &d.EndDate)
	return d, err
}

func (r *DiscountRepo) List(ctx context.Context) ([]model.Discount, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+discountCols+" FROM discounts ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Discount{}
	for rows.Next() {
		d, err := scanDiscount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DiscountRepo) GetByID(ctx context.Context, id uint64) (*model.Discount, error) {
	d, err := scanDiscount(r.db.QueryRowContext(ctx,
		"SELECT "+discountCols+" FROM discounts WHERE id = ?", id))
	if err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *DiscountRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	return exists(ctx, r.db, "discounts", id)
}

func (r *DiscountRepo) Create(ctx context.Context, d *model.Discount) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO discounts (name, code, percentage, start_date, end_date) VALUES (?, ?, ?, ?, ?)",
		d.Name, d.Code, d.Percentage, d.StartDate, d.EndDate)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = uint64(id)
	return nil
}

func (r *DiscountRepo) Update(ctx context.Context, d *model.Discount) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE discounts SET name = ?, code = ?, percentage = ?, start_date = ?, end_date = ? WHERE id = ?",
		d.Name, d.Code, d.Percentage, d.StartDate, d.EndDate, d.ID)
	return translate(err)
}

// Delete fails with ErrInUse while rooms still link the discount.
func (r *DiscountRepo) Delete(ctx context.Context, id uint64) error {
	return expectOne(r.db.ExecContext(ctx, "DELETE FROM discounts WHERE id = ?", id))
}
