package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// City groups hotels geographically. Rows live in the `cities` table.
type City struct {
	ID         uint64 `json:"id"`          // cities.id
	Name       string `json:"name"`        // cities.name
	Country    string `json:"country"`     // cities.country
	PostOffice string `json:"post_office"` // cities.post_office
}

// Hotel is a property located in a city. A hotel owns its rooms.
//
// Fields:
//  ID       – primary key identifier.
//  Name     – hotel name.
//  StarRate – star rating, typically 1..5.
//  Location – free-form address or landmark.
//  Owner    – display name of the proprietor.
//  CityID   – city the hotel belongs to.
//  CityName – populated by joined reads only.
type Hotel struct {
	ID       uint64 `json:"id"`                  // hotels.id
	Name     string `json:"name"`                // hotels.name
	StarRate int    `json:"star_rate"`           // hotels.star_rate
	Location string `json:"location"`            // hotels.location
	Owner    string `json:"owner"`               // hotels.owner
	CityID   uint64 `json:"city_id"`             // hotels.city_id
	CityName string `json:"city_name,omitempty"` // cities.name (joined)
}

// RoomType is a named category of rooms such as Standard, Deluxe or Suite.
type RoomType struct {
	ID          uint64 `json:"id"`          // room_types.id
	Name        string `json:"name"`        // room_types.name
	Description string `json:"description"` // room_types.description
}

// Discount is a percentage reduction that can be linked to rooms. The
// validity window is stored but not enforced when a room is booked.
type Discount struct {
	ID         uint64          `json:"id"`         // discounts.id
	Name       string          `json:"name"`       // discounts.name
	Code       string          `json:"code"`       // discounts.code
	Percentage decimal.Decimal `json:"percentage"` // discounts.percentage, 15 means 15% off
	StartDate  time.Time       `json:"start_date"` // discounts.start_date
	EndDate    time.Time       `json:"end_date"`   // discounts.end_date
}

// Room is a bookable unit of a hotel. IsAvailable is the only admission
// control for bookings: a confirmed booking clears it and a cancellation
// sets it again.
type Room struct {
	ID            uint64          `json:"id"`                     // rooms.id
	RoomNumber    string          `json:"room_number"`            // rooms.room_number
	Adults        int             `json:"adults"`                 // rooms.adults
	Children      int             `json:"children"`               // rooms.children
	PricePerNight decimal.Decimal `json:"price_per_night"`        // rooms.price_per_night
	IsAvailable   bool            `json:"is_available"`           // rooms.is_available
	HotelID       uint64          `json:"hotel_id"`               // rooms.hotel_id
	RoomTypeID    *uint64         `json:"room_type_id,omitempty"` // rooms.room_type_id (nullable)
	DiscountID    *uint64         `json:"discount_id,omitempty"`  // rooms.discount_id (nullable)
}

// ApplyDefaults sets the values a room gets when a request leaves them out.
// New rooms are bookable, matching the column default.
func (r *Room) ApplyDefaults() { r.IsAvailable = true }

// RoomDetail is a room joined with the display names of its hotel, room
// type and discount. It is what the booking workflow prices against.
type RoomDetail struct {
	Room
	HotelName          string           `json:"hotel"`
	RoomTypeName       string           `json:"room_type"`
	DiscountName       *string          `json:"discount,omitempty"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage,omitempty"`
}

// HotelWithRooms is the public detail view of a hotel.
type HotelWithRooms struct {
	Hotel
	Rooms []RoomDetail `json:"rooms"`
}
