package models

import (
	"fmt"
	"time"

	"github.com/cafecrawl/backend/internal/domain/review"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReviewModel is the persistence model for the Review aggregate.
type ReviewModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID    string          `gorm:"type:varchar(128);not null;uniqueIndex:uq_reviews_user_cafe,priority:1;index:idx_reviews_user_created,priority:1"`
	CafeID    string          `gorm:"type:varchar(128);not null;uniqueIndex:uq_reviews_user_cafe,priority:2"`
	Rating    decimal.Decimal `gorm:"type:numeric(2,1);not null"`
	Blurb     *string         `gorm:"type:text"`
	PhotoURL  *string         `gorm:"type:varchar(2048)"`
	CreatedAt time.Time       `gorm:"not null;index:idx_reviews_user_created,priority:2"`
	UpdatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReviewModel) TableName() string {
	return "reviews"
}

// ToDomain converts the persistence model to a domain Review.
// It fails if the stored rating is outside the rating domain.
func (m *ReviewModel) ToDomain() (*review.Review, error) {
	rating, err := review.NewRating(m.Rating)
	if err != nil {
		return nil, fmt.Errorf("review %s has invalid stored rating %s: %w", m.ID, m.Rating, err)
	}
	return &review.Review{
		ID:        m.ID,
		UserID:    m.UserID,
		CafeID:    m.CafeID,
		Rating:    rating,
		Blurb:     m.Blurb,
		PhotoURL:  m.PhotoURL,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}, nil
}

// FromDomain populates the persistence model from a domain Review.
func (m *ReviewModel) FromDomain(r *review.Review) {
	m.ID = r.ID
	m.UserID = r.UserID
	m.CafeID = r.CafeID
	m.Rating = r.Rating.Decimal()
	m.Blurb = r.Blurb
	m.PhotoURL = r.PhotoURL
	m.CreatedAt = r.CreatedAt.UTC()
	m.UpdatedAt = r.UpdatedAt.UTC()
}

// ReviewModelFromDomain creates a new persistence model from a domain Review.
func ReviewModelFromDomain(r *review.Review) *ReviewModel {
	m := &ReviewModel{}
	m.FromDomain(r)
	return m
}
