// Package review models the one-review-per-user-per-cafe aggregate.
package review

import (
	"context"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cafecrawl/backend/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

const (
	// MaxCafeIDLength bounds the cafe identifier
	MaxCafeIDLength = 128
	// MaxBlurbLength bounds the blurb, counted in characters after NFC normalization
	MaxBlurbLength = 2000
	// MaxPhotoURLLength bounds the photo URL
	MaxPhotoURLLength = 2048
)

// Review is a user's rating of a cafe. There is exactly one live review per
// (UserID, CafeID); later submissions revise it in place.
type Review struct {
	ID        uuid.UUID
	UserID    string
	CafeID    string
	Rating    Rating
	Blurb     *string
	PhotoURL  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Content is the user-editable part of a review.
type Content struct {
	Rating   Rating
	Blurb    *string
	PhotoURL *string
}

// NewContent normalizes and validates the optional text fields of a review.
// Empty strings are treated as absent.
func NewContent(rating Rating, blurb, photoURL *string) (Content, error) {
	c := Content{Rating: rating}

	if blurb != nil {
		b := norm.NFC.String(strings.TrimSpace(*blurb))
		if utf8.RuneCountInString(b) > MaxBlurbLength {
			return Content{}, shared.NewValidationError("blurb must be at most %d characters", MaxBlurbLength)
		}
		if b != "" {
			c.Blurb = &b
		}
	}

	if photoURL != nil {
		p := strings.TrimSpace(*photoURL)
		if p != "" {
			if err := validatePhotoURL(p); err != nil {
				return Content{}, err
			}
			c.PhotoURL = &p
		}
	}

	return c, nil
}

// NewReview creates the first review of a cafe by a user.
func NewReview(userID, cafeID string, content Content) (*Review, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, shared.NewValidationError("user_id is required")
	}
	cafeID, err := NormalizeCafeID(cafeID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Review{
		ID:        uuid.New(),
		UserID:    userID,
		CafeID:    cafeID,
		Rating:    content.Rating,
		Blurb:     content.Blurb,
		PhotoURL:  content.PhotoURL,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Revise replaces rating, blurb and photo. ID and CreatedAt are kept.
func (r *Review) Revise(content Content) {
	r.Rating = content.Rating
	r.Blurb = content.Blurb
	r.PhotoURL = content.PhotoURL
	r.UpdatedAt = time.Now().UTC()
}

// NormalizeCafeID trims and validates a cafe identifier.
func NormalizeCafeID(cafeID string) (string, error) {
	cafeID = strings.TrimSpace(cafeID)
	if cafeID == "" {
		return "", shared.NewValidationError("cafe_id is required")
	}
	if len(cafeID) > MaxCafeIDLength {
		return "", shared.NewValidationError("cafe_id must be at most %d characters", MaxCafeIDLength)
	}
	return cafeID, nil
}

func validatePhotoURL(raw string) error {
	if len(raw) > MaxPhotoURLLength {
		return shared.NewValidationError("photo_url must be at most %d characters", MaxPhotoURLLength)
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return shared.NewValidationError("photo_url must be an absolute http(s) URL")
	}
	return nil
}

// ReviewRepository stores reviews.
//
// Create returns shared.ErrAlreadyExists (possibly wrapped) when a review for
// the same (UserID, CafeID) already exists. FindByUserAndCafe returns
// shared.ErrNotFound when there is none.
type ReviewRepository interface {
	FindByUserAndCafe(ctx context.Context, userID, cafeID string) (*Review, error)
	Create(ctx context.Context, review *Review) error
	Update(ctx context.Context, review *Review) error
	CountCreatedSince(ctx context.Context, userID string, since time.Time) (int64, error)
	EarliestCreatedSince(ctx context.Context, userID string, since time.Time) (*time.Time, error)
}
