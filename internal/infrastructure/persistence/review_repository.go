package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cafecrawl/backend/internal/domain/review"
	"github.com/cafecrawl/backend/internal/domain/shared"
	"github.com/cafecrawl/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormReviewRepository implements review.ReviewRepository using GORM
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GormReviewRepository
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// FindByUserAndCafe returns the caller's review of a cafe
func (r *GormReviewRepository) FindByUserAndCafe(ctx context.Context, userID, cafeID string) (*review.Review, error) {
	var model models.ReviewModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND cafe_id = ?", userID, cafeID).
		Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("find review of %s by %s: %w", cafeID, userID, err)
	}
	return model.ToDomain()
}

// Create inserts a new review. A second review for the same (user, cafe)
// yields shared.ErrAlreadyExists.
func (r *GormReviewRepository) Create(ctx context.Context, rv *review.Review) error {
	model := models.ReviewModelFromDomain(rv)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return fmt.Errorf("create review of %s by %s: %w", rv.CafeID, rv.UserID, err)
	}
	return nil
}

// Update writes the editable columns of an existing review. created_at is
// never touched. A review that no longer exists yields shared.ErrNotFound.
func (r *GormReviewRepository) Update(ctx context.Context, rv *review.Review) error {
	model := models.ReviewModelFromDomain(rv)
	result := r.db.WithContext(ctx).
		Model(&models.ReviewModel{}).
		Where("id = ? AND user_id = ?", model.ID, model.UserID).
		Updates(map[string]any{
			"rating":     model.Rating,
			"blurb":      model.Blurb,
			"photo_url":  model.PhotoURL,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("update review %s: %w", rv.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountCreatedSince counts reviews the user created at or after since
func (r *GormReviewRepository) CountCreatedSince(ctx context.Context, userID string, since time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ReviewModel{}).
		Where("user_id = ? AND created_at >= ?", userID, since.UTC()).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count reviews by %s: %w", userID, err)
	}
	return count, nil
}

// EarliestCreatedSince returns the creation time of the user's oldest review
// at or after since, or nil if there is none
func (r *GormReviewRepository) EarliestCreatedSince(ctx context.Context, userID string, since time.Time) (*time.Time, error) {
	var model models.ReviewModel
	err := r.db.WithContext(ctx).
		Select("created_at").
		Where("user_id = ? AND created_at >= ?", userID, since.UTC()).
		Order("created_at ASC").
		Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find earliest review by %s: %w", userID, err)
	}
	earliest := model.CreatedAt
	return &earliest, nil
}

var _ review.ReviewRepository = (*GormReviewRepository)(nil)
