// Package service holds the business rules.  Every error a service returns
// to a handler either wraps one of the category errors below or is an
// unexpected failure.
package service

import (
	"errors"
	"fmt"
)

// Categories.  Handlers map these to HTTP status codes.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

// Booking.
var (
	ErrInvalidDateRange = fmt.Errorf("%w: check-out date must be after check-in date", ErrValidation)
	ErrRoomNotAvailable = fmt.Errorf("%w: room is not available", ErrConflict)
	ErrBookingNotFound  = fmt.Errorf("%w: booking not found", ErrNotFound)
	ErrAlreadyCancelled = fmt.Errorf("%w: booking is already cancelled", ErrConflict)
)

// Reviews.
var (
	ErrHotelNotFound   = fmt.Errorf("%w: hotel not found", ErrNotFound)
	ErrAlreadyReviewed = fmt.Errorf("%w: you have already reviewed this hotel", ErrConflict)
	ErrReviewNotFound  = fmt.Errorf("%w: review not found", ErrNotFound)
	ErrTooLate         = fmt.Errorf("%w: reviews can only be deleted within 24 hours", ErrConflict)
	ErrInvalidRating   = fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
)

// Catalog administration.
var (
	ErrCityNotFound     = fmt.Errorf("%w: city not found", ErrNotFound)
	ErrRoomNotFound     = fmt.Errorf("%w: room not found", ErrNotFound)
	ErrRoomTypeNotFound = fmt.Errorf("%w: room type not found", ErrNotFound)
	ErrDiscountNotFound = fmt.Errorf("%w: discount not found", ErrNotFound)
	ErrInvalidReference = fmt.Errorf("%w: referenced entity does not exist", ErrValidation)
	ErrInUse            = fmt.Errorf("%w: entity is still referenced", ErrConflict)
)

// Identity.
var (
	ErrEmailExists        = fmt.Errorf("%w: email already exists", ErrConflict)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	ErrInvalidRefresh     = fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
)

// invalid builds an ad-hoc validation error.
func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}
