package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/travel-booking/internal/model"
)

// ReviewRepo manages hotel reviews.  Rows are never removed; deletion sets
// is_deleted together with the audit columns.
type ReviewRepo struct {
	db *sql.DB
}

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

const reviewDetailSelect = `SELECT rv.id, rv.user_id, rv.hotel_id, rv.rating, rv.comment, rv.created_at,
	       rv.is_deleted, rv.deleted_at, rv.deleted_by, h.name, u.name
	FROM reviews rv
	JOIN hotels h ON h.id = rv.hotel_id
	JOIN users u  ON u.id = rv.user_id`

func scanReviewDetail(s scanner) (model.ReviewDetail, error) {
	var (
		rd        model.ReviewDetail
		deletedAt sql.NullTime
		deletedBy sql.NullString
	)
	err := s.Scan(&rd.ID, &rd.UserID, &rd.HotelID, &rd.Rating, &rd.Comment, &rd.CreatedAt,
		&rd.IsDeleted, &deletedAt, &deletedBy, &rd.HotelName, &rd.UserName)
	if err != nil {
		return rd, err
	}
	if deletedAt.Valid {
		rd.DeletedAt = &deletedAt.Time
	}
	if deletedBy.Valid {
		d, err := model.ParseDeleter(deletedBy.String)
		if err != nil {
			return rd, err
		}
		rd.DeletedBy = &d
	}
	return rd, nil
}

// HasActive reports whether userID has a non-deleted review of hotelID.
func (r *ReviewRepo) HasActive(ctx context.Context, userID, hotelID uint64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reviews WHERE user_id = ? AND hotel_id = ? AND is_deleted = 0",
		userID, hotelID).Scan(&n)
	return n > 0, err
}

// Create inserts rv and populates its ID.
func (r *ReviewRepo) Create(ctx context.Context, rv *model.Review) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO reviews (user_id, hotel_id, rating, comment, created_at, is_deleted) VALUES (?, ?, ?, ?, ?, 0)",
		rv.UserID, rv.HotelID, rv.Rating, rv.Comment, rv.CreatedAt)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rv.ID = uint64(id)
	return nil
}

// GetByID returns the review whether or not it is deleted.
func (r *ReviewRepo) GetByID(ctx context.Context, id uint64) (*model.ReviewDetail, error) {
	rd, err := scanReviewDetail(r.db.QueryRowContext(ctx, reviewDetailSelect+" WHERE rv.id = ?", id))
	if err != nil {
		return nil, translate(err)
	}
	return &rd, nil
}

// SoftDelete stamps the review as deleted.  A review that is missing or
// already deleted yields ErrNotFound.
func (r *ReviewRepo) SoftDelete(ctx context.Context, id uint64, at time.Time, by model.Deleter) error {
	return expectOne(r.db.ExecContext(ctx,
		`UPDATE reviews SET is_deleted = 1, deleted_at = ?, deleted_by = ?, deleted_by_admin_id = ?
		 WHERE id = ? AND is_deleted = 0`,
		at, by.String(), idArg(by.AdminID()), id))
}

// ListByHotel returns the visible reviews of a hotel, newest first.
func (r *ReviewRepo) ListByHotel(ctx context.Context, hotelID uint64) ([]model.ReviewDetail, error) {
	return r.list(ctx, reviewDetailSelect+
		" WHERE rv.hotel_id = ? AND rv.is_deleted = 0 ORDER BY rv.created_at DESC, rv.id DESC", hotelID)
}

// ListByUser returns all reviews written by a user, deleted ones included.
func (r *ReviewRepo) ListByUser(ctx context.Context, userID uint64) ([]model.ReviewDetail, error) {
	return r.list(ctx, reviewDetailSelect+
		" WHERE rv.user_id = ? ORDER BY rv.created_at DESC, rv.id DESC", userID)
}

func (r *ReviewRepo) list(ctx context.Context, q string, args ...any) ([]model.ReviewDetail, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.ReviewDetail{}
	for rows.Next() {
		rd, err := scanReviewDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rd)
	}
	return out, rows.Err()
}
