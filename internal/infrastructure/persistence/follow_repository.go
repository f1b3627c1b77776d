package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/cafecrawl/backend/internal/domain/shared"
	"github.com/cafecrawl/backend/internal/domain/social"
	"github.com/cafecrawl/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormFollowRepository implements social.FollowRepository using GORM
type GormFollowRepository struct {
	db *gorm.DB
}

// NewGormFollowRepository creates a new GormFollowRepository
func NewGormFollowRepository(db *gorm.DB) *GormFollowRepository {
	return &GormFollowRepository{db: db}
}

// Insert stores a new edge. An existing edge yields shared.ErrAlreadyExists.
func (r *GormFollowRepository) Insert(ctx context.Context, edge *social.FollowEdge) error {
	model := models.FollowModelFromDomain(edge)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return fmt.Errorf("insert follow %s -> %s: %w", edge.FollowerID, edge.FolloweeID, err)
	}
	return nil
}

// Delete removes the edge if present and reports whether a row went away
func (r *GormFollowRepository) Delete(ctx context.Context, followerID, followeeID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&models.FollowModel{})
	if result.Error != nil {
		return false, fmt.Errorf("delete follow %s -> %s: %w", followerID, followeeID, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Exists reports whether follower currently follows followee
func (r *GormFollowRepository) Exists(ctx context.Context, followerID, followeeID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.FollowModel{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check follow %s -> %s: %w", followerID, followeeID, err)
	}
	return count > 0, nil
}

var _ social.FollowRepository = (*GormFollowRepository)(nil)
