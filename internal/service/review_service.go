package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/travel-booking/internal/logger"
	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/repository"
)

// ReviewDeleteWindow is how long an author may delete their own review.
const ReviewDeleteWindow = 24 * time.Hour

// ReviewStore is satisfied by *repository.ReviewRepo.
type ReviewStore interface {
	HasActive(ctx context.Context, userID, hotelID uint64) (bool, error)
	Create(ctx context.Context, rv *model.Review) error
	GetByID(ctx context.Context, id uint64) (*model.ReviewDetail, error)
	SoftDelete(ctx context.Context, id uint64, at time.Time, by model.Deleter) error
	ListByHotel(ctx context.Context, hotelID uint64) ([]model.ReviewDetail, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.ReviewDetail, error)
}

// HotelChecker reports whether a hotel exists.
type HotelChecker interface {
	Exists(ctx context.Context, id uint64) (bool, error)
}

// ReviewView is the client-facing review.  Audit fields are only shown
// on admin listings.
type ReviewView struct {
	ID        uint64     `json:"id"`
	UserID    uint64     `json:"user_id"`
	User      string     `json:"user"`
	HotelID   uint64     `json:"hotel_id"`
	Hotel     string     `json:"hotel"`
	Rating    int        `json:"rating"`
	Comment   string     `json:"comment"`
	CreatedAt time.Time  `json:"created_at"`
	IsDeleted bool       `json:"is_deleted,omitempty"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	DeletedBy string     `json:"deleted_by,omitempty"`
}

func reviewView(rd model.ReviewDetail) ReviewView {
	v := ReviewView{
		ID: rd.ID, UserID: rd.UserID, User: rd.UserName,
		HotelID: rd.HotelID, Hotel: rd.HotelName,
		Rating: rd.Rating, Comment: rd.Comment, CreatedAt: rd.CreatedAt,
		IsDeleted: rd.IsDeleted, DeletedAt: rd.DeletedAt,
	}
	if rd.DeletedBy != nil {
		v.DeletedBy = rd.DeletedBy.String()
	}
	return v
}

type ReviewService struct {
	reviews ReviewStore
	hotels  HotelChecker
	now     func() time.Time
}

func NewReviewService(reviews ReviewStore, hotels HotelChecker) *ReviewService {
	return &ReviewService{reviews: reviews, hotels: hotels, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock replaces the time source.
func (s *ReviewService) WithClock(now func() time.Time) *ReviewService {
	s.now = now
	return s
}

// LeaveReview stores a new review.  A user may hold one active review per
// hotel; deleting it allows a new one.
func (s *ReviewService) LeaveReview(ctx context.Context, userID, hotelID uint64, rating int, comment string) (*model.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}
	ok, err := s.hotels.Exists(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrHotelNotFound
	}
	dup, err := s.reviews.HasActive(ctx, userID, hotelID)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, ErrAlreadyReviewed
	}

	rv := &model.Review{
		UserID:    userID,
		HotelID:   hotelID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
		CreatedAt: s.stamp(),
	}
	if err := s.reviews.Create(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}

// ListByHotel returns the visible reviews of a hotel, newest first.
func (s *ReviewService) ListByHotel(ctx context.Context, hotelID uint64) ([]ReviewView, error) {
	return s.list(s.reviews.ListByHotel(ctx, hotelID))
}

// ListByUser returns every review a user wrote, deleted ones included.
func (s *ReviewService) ListByUser(ctx context.Context, userID uint64) ([]ReviewView, error) {
	return s.list(s.reviews.ListByUser(ctx, userID))
}

func (s *ReviewService) list(rows []model.ReviewDetail, err error) ([]ReviewView, error) {
	if err != nil {
		return nil, err
	}
	out := make([]ReviewView, 0, len(rows))
	for _, rd := range rows {
		out = append(out, reviewView(rd))
	}
	return out, nil
}

// Delete lets an author remove their own review within ReviewDeleteWindow
// of posting it.  Reviews that are missing, owned by someone else or
// already deleted are all reported as not found.
func (s *ReviewService) Delete(ctx context.Context, userID, reviewID uint64) error {
	rv, err := s.reviews.GetByID(ctx, reviewID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrReviewNotFound
	}
	if err != nil {
		return err
	}
	if rv.UserID != userID || rv.IsDeleted {
		return ErrReviewNotFound
	}
	now := s.stamp()
	if now.Sub(rv.CreatedAt) > ReviewDeleteWindow {
		return ErrTooLate
	}
	return s.softDelete(ctx, reviewID, now, model.DeletedByUser(userID))
}

// AdminDelete removes any active review regardless of age.
func (s *ReviewService) AdminDelete(ctx context.Context, adminID, reviewID uint64) error {
	rv, err := s.reviews.GetByID(ctx, reviewID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrReviewNotFound
	}
	if err != nil {
		return err
	}
	if rv.IsDeleted {
		return ErrReviewNotFound
	}
	return s.softDelete(ctx, reviewID, s.stamp(), model.DeletedByAdmin(adminID))
}

// stamp is the clock at the precision of a DATETIME column, so the window
// check sees the same created_at the database keeps.
func (s *ReviewService) stamp() time.Time { return s.now().Truncate(time.Second) }

func (s *ReviewService) softDelete(ctx context.Context, id uint64, at time.Time, by model.Deleter) error {
	err := s.reviews.SoftDelete(ctx, id, at, by)
	if errors.Is(err, repository.ErrNotFound) {
		// deleted concurrently
		return ErrReviewNotFound
	}
	if err != nil {
		return err
	}
	logger.Info("review deleted", zap.Uint64("review_id", id), zap.String("deleted_by", by.String()))
	return nil
}
