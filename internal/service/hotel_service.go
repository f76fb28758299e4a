package service

import (
	"context"
	"errors"

	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/repository"
)

// HotelReader is the read side of the hotel repository.
type HotelReader interface {
	Search(ctx context.Context, f repository.HotelFilter) ([]model.Hotel, error)
	GetByID(ctx context.Context, id uint64) (*model.Hotel, error)
	Exists(ctx context.Context, id uint64) (bool, error)
}

// RoomLister lists the joined rooms of a hotel.
type RoomLister interface {
	ListByHotel(ctx context.Context, hotelID uint64, onlyAvailable bool) ([]model.RoomDetail, error)
}

// CityLister lists cities.
type CityLister interface {
	List(ctx context.Context) ([]model.City, error)
}

// HotelService serves the public catalogue.
type HotelService struct {
	hotels HotelReader
	rooms  RoomLister
	cities CityLister
}

func NewHotelService(hotels HotelReader, rooms RoomLister, cities CityLister) *HotelService {
	return &HotelService{hotels: hotels, rooms: rooms, cities: cities}
}

// List filters hotels by city name substring and exact star rating.
func (s *HotelService) List(ctx context.Context, q repository.HotelFilter) ([]model.Hotel, error) {
	if q.Stars < 0 || q.Stars > 5 {
		return nil, invalid("stars must be between 1 and 5")
	}
	return s.hotels.Search(ctx, q)
}

// Get returns a hotel with every room, available or not.
func (s *HotelService) Get(ctx context.Context, id uint64) (*model.HotelWithRooms, error) {
	h, err := s.hotels.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrHotelNotFound
	}
	if err != nil {
		return nil, err
	}
	rooms, err := s.rooms.ListByHotel(ctx, id, false)
	if err != nil {
		return nil, err
	}
	return &model.HotelWithRooms{Hotel: *h, Rooms: rooms}, nil
}

// AvailableRooms lists the rooms of a hotel that can be booked now.
func (s *HotelService) AvailableRooms(ctx context.Context, hotelID uint64) ([]model.RoomDetail, error) {
	ok, err := s.hotels.Exists(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrHotelNotFound
	}
	return s.rooms.ListByHotel(ctx, hotelID, true)
}

func (s *HotelService) ListCities(ctx context.Context) ([]model.City, error) {
	return s.cities.List(ctx)
}
