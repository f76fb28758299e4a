package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/travel-booking/internal/model"
)

type RoomTypeRepo struct {
	db *sql.DB
}

func NewRoomTypeRepo(db *sql.DB) *RoomTypeRepo { return &RoomTypeRepo{db: db} }

func (r *RoomTypeRepo) List(ctx context.Context) ([]model.RoomType, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, description FROM room_types ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.RoomType{}
	for rows.Next() {
		var t model.RoomType
		if err := rows.Scan(&t.ID, &t.Name, &t.Description); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *RoomTypeRepo) GetByID(ctx context.Context, id uint64) (*model.RoomType, error) {
	var t model.RoomType
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, description FROM room_types WHERE id = ?", id).
		Scan(&t.ID, &t.Name, &t.Description)
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *RoomTypeRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	return exists(ctx, r.db, "room_types", id)
}

func (r *RoomTypeRepo) Create(ctx context.Context, t *model.RoomType) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO room_types (name, description) VALUES (?, ?)", t.Name, t.Description)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

func (r *RoomTypeRepo) Update(ctx context.Context, t *model.RoomType) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE room_types SET name = ?, description = ? WHERE id = ?", t.Name, t.Description, t.ID)
	return translate(err)
}

func (r *RoomTypeRepo) Delete(ctx context.Context, id uint64) error {
	return expectOne(r.db.ExecContext(ctx, "DELETE FROM room_types WHERE id = ?", id))
}
