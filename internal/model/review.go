package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DeleterKind tells who soft-deleted a review.
type DeleterKind uint8

const (
	DeleterUser DeleterKind = iota + 1
	DeleterAdmin
)

// Deleter identifies the actor that soft-deleted a review. Exactly one kind
// is set; the admin id column is derived from it.
type Deleter struct {
	Kind DeleterKind
	ID   uint64
}

// DeletedByUser builds the owner variant.
func DeletedByUser(id uint64) Deleter { return Deleter{Kind: DeleterUser, ID: id} }

// DeletedByAdmin builds the admin variant.
func DeletedByAdmin(id uint64) Deleter { return Deleter{Kind: DeleterAdmin, ID: id} }

// String renders the value stored in reviews.deleted_by ("User:7", "Admin:2").
func (d Deleter) String() string {
	switch d.Kind {
	case DeleterUser:
		return "User:" + strconv.FormatUint(d.ID, 10)
	case DeleterAdmin:
		return "Admin:" + strconv.FormatUint(d.ID, 10)
	}
	return ""
}

// AdminID returns the id to store in reviews.deleted_by_admin_id, or nil
// when the review was removed by its author.
func (d Deleter) AdminID() *uint64 {
	if d.Kind != DeleterAdmin {
		return nil
	}
	id := d.ID
	return &id
}

var errBadDeleter = errors.New("malformed deleted_by value")

// ParseDeleter is the inverse of Deleter.String.
func ParseDeleter(s string) (Deleter, error) {
	kind, raw, ok := strings.Cut(s, ":")
	if !ok {
		return Deleter{}, fmt.Errorf("%w: %q", errBadDeleter, s)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return Deleter{}, fmt.Errorf("%w: %q", errBadDeleter, s)
	}
	switch kind {
	case "User":
		return DeletedByUser(id), nil
	case "Admin":
		return DeletedByAdmin(id), nil
	}
	return Deleter{}, fmt.Errorf("%w: %q", errBadDeleter, s)
}

// Review mirrors the `reviews` table. Reviews are soft-deleted only.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – author.
//  HotelID   – reviewed hotel.
//  Rating    – 1..5.
//  Comment   – free text.
//  CreatedAt – creation timestamp (UTC).
//  IsDeleted – soft-delete flag.
//  DeletedAt – when the review was removed (nil while active).
//  DeletedBy – who removed it (nil while active).
type Review struct {
	ID        uint64     // reviews.id
	UserID    uint64     // reviews.user_id
	HotelID   uint64     // reviews.hotel_id
	Rating    int        // reviews.rating
	Comment   string     // reviews.comment
	CreatedAt time.Time  // reviews.created_at
	IsDeleted bool       // reviews.is_deleted
	DeletedAt *time.Time // reviews.deleted_at
	DeletedBy *Deleter   // reviews.deleted_by + reviews.deleted_by_admin_id
}

// ReviewDetail is a review joined with the hotel name and the author name.
type ReviewDetail struct {
	Review
	HotelName string
	UserName  string
}
