package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iliyamo/travel-booking/internal/logger"
	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/repository"
)

// CRUDStore is the shape shared by the catalogue repositories.
type CRUDStore[T any] interface {
	List(ctx context.Context) ([]T, error)
	GetByID(ctx context.Context, id uint64) (*T, error)
	Exists(ctx context.Context, id uint64) (bool, error)
	Create(ctx context.Context, v *T) error
	Update(ctx context.Context, v *T) error
	Delete(ctx context.Context, id uint64) error
}

// Catalog runs existence-checked CRUD for one entity type.
type Catalog[T any] struct {
	name     string
	store    CRUDStore[T]
	notFound error
	setID    func(*T, uint64)
	validate func(context.Context, *T) error
}

func (c *Catalog[T]) List(ctx context.Context) ([]T, error) {
	return c.store.List(ctx)
}

func (c *Catalog[T]) Get(ctx context.Context, id uint64) (*T, error) {
	v, err := c.store.GetByID(ctx, id)
	if err != nil {
		return nil, c.mapErr(err)
	}
	return v, nil
}

func (c *Catalog[T]) Create(ctx context.Context, v *T) (*T, error) {
	c.setID(v, 0)
	if err := c.validate(ctx, v); err != nil {
		return nil, err
	}
	if err := c.store.Create(ctx, v); err != nil {
		return nil, c.mapErr(err)
	}
	logger.Info("catalog entry created", zap.String("entity", c.name))
	return v, nil
}

// Update replaces the entity stored under id with v.
func (c *Catalog[T]) Update(ctx context.Context, id uint64, v *T) (*T, error) {
	ok, err := c.store.Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, c.notFound
	}
	c.setID(v, id)
	if err := c.validate(ctx, v); err != nil {
		return nil, err
	}
	if err := c.store.Update(ctx, v); err != nil {
		return nil, c.mapErr(err)
	}
	return c.Get(ctx, id)
}

// Delete removes the entity and returns what was stored.  It fails with
// ErrInUse while other rows reference the entity.
func (c *Catalog[T]) Delete(ctx context.Context, id uint64) (*T, error) {
	v, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.store.Delete(ctx, id); err != nil {
		return nil, c.mapErr(err)
	}
	logger.Info("catalog entry deleted", zap.String("entity", c.name), zap.Uint64("id", id))
	return v, nil
}

func (c *Catalog[T]) mapErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.notFound
	case errors.Is(err, repository.ErrInUse):
		return fmt.Errorf("%w: %s is still referenced", ErrInUse, c.name)
	case errors.Is(err, repository.ErrBadReference):
		return ErrInvalidReference
	case errors.Is(err, repository.ErrDuplicate):
		return fmt.Errorf("%w: %s already exists", ErrConflict, c.name)
	}
	return err
}

// AdminService groups the catalogue administration operations.
type AdminService struct {
	Cities    *Catalog[model.City]
	Hotels    *Catalog[model.Hotel]
	Rooms     *Catalog[model.Room]
	RoomTypes *Catalog[model.RoomType]
	Discounts *Catalog[model.Discount]
}

func NewAdminService(
	cities CRUDStore[model.City],
	hotels CRUDStore[model.Hotel],
	rooms CRUDStore[model.Room],
	roomTypes CRUDStore[model.RoomType],
	discounts CRUDStore[model.Discount],
) *AdminService {
	return &AdminService{
		Cities: &Catalog[model.City]{
			name: "city", store: cities, notFound: ErrCityNotFound,
			setID:    func(v *model.City, id uint64) { v.ID = id },
			validate: validateCity,
		},
		Hotels: &Catalog[model.Hotel]{
			name: "hotel", store: hotels, notFound: ErrHotelNotFound,
			setID: func(v *model.Hotel, id uint64) { v.ID = id },
			validate: func(ctx context.Context, h *model.Hotel) error {
				if err := validateHotel(h); err != nil {
					return err
				}
				return mustExist(ctx, cities, h.CityID, "city")
			},
		},
		Rooms: &Catalog[model.Room]{
			name: "room", store: rooms, notFound: ErrRoomNotFound,
			setID: func(v *model.Room, id uint64) { v.ID = id },
			validate: func(ctx context.Context, r *model.Room) error {
				if err := validateRoom(r); err != nil {
					return err
				}
				if err := mustExist(ctx, hotels, r.HotelID, "hotel"); err != nil {
					return err
				}
				if r.RoomTypeID != nil {
					if err := mustExist(ctx, roomTypes, *r.RoomTypeID, "room type"); err != nil {
						return err
					}
				}
				if r.DiscountID != nil {
					return mustExist(ctx, discounts, *r.DiscountID, "discount")
				}
				return nil
			},
		},
		RoomTypes: &Catalog[model.RoomType]{
			name: "room type", store: roomTypes, notFound: ErrRoomTypeNotFound,
			setID:    func(v *model.RoomType, id uint64) { v.ID = id },
			validate: validateRoomType,
		},
		Discounts: &Catalog[model.Discount]{
			name: "discount", store: discounts, notFound: ErrDiscountNotFound,
			setID:    func(v *model.Discount, id uint64) { v.ID = id },
			validate: validateDiscount,
		},
	}
}

type existsChecker interface {
	Exists(ctx context.Context, id uint64) (bool, error)
}

func mustExist(ctx context.Context, c existsChecker, id uint64, what string) error {
	ok, err := c.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s %d does not exist", ErrInvalidReference, what, id)
	}
	return nil
}

func validateCity(_ context.Context, c *model.City) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return invalid("name is required")
	}
	return nil
}

func validateHotel(h *model.Hotel) error {
	h.Name = strings.TrimSpace(h.Name)
	if h.Name == "" {
		return invalid("name is required")
	}
	if h.StarRate < 1 || h.StarRate > 5 {
		return invalid("star_rate must be between 1 and 5")
	}
	if h.CityID == 0 {
		return invalid("city_id is required")
	}
	return nil
}

func validateRoom(r *model.Room) error {
	r.RoomNumber = strings.TrimSpace(r.RoomNumber)
	switch {
	case r.RoomNumber == "":
		return invalid("room_number is required")
	case r.Adults < 1:
		return invalid("adults must be at least 1")
	case r.Children < 0:
		return invalid("children cannot be negative")
	case !r.PricePerNight.IsPositive():
		return invalid("price_per_night must be positive")
	case r.HotelID == 0:
		return invalid("hotel_id is required")
	}
	return nil
}

func validateRoomType(_ context.Context, t *model.RoomType) error {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return invalid("name is required")
	}
	return nil
}

func validateDiscount(_ context.Context, d *model.Discount) error {
	d.Name = strings.TrimSpace(d.Name)
	switch {
	case d.Name == "":
		return invalid("name is required")
	case d.Percentage.IsNegative() || d.Percentage.GreaterThan(decimal.NewFromInt(100)):
		return invalid("percentage must be between 0 and 100")
	case d.EndDate.Before(d.StartDate):
		return invalid("end_date must not be before start_date")
	}
	return nil
}
