package models

import (
	"time"

	"github.com/cafecrawl/backend/internal/domain/social"
)

// FollowModel is the persistence model for a follow edge.
// (follower_id, followee_id) is the composite primary key.
type FollowModel struct {
	FollowerID string    `gorm:"type:varchar(128);primaryKey"`
	FolloweeID string    `gorm:"type:varchar(128);primaryKey;index"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (FollowModel) TableName() string {
	return "follows"
}

// ToDomain converts the persistence model to a domain FollowEdge.
func (m *FollowModel) ToDomain() *social.FollowEdge {
	return &social.FollowEdge{
		FollowerID: m.FollowerID,
		FolloweeID: m.FolloweeID,
		CreatedAt:  m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain FollowEdge.
func (m *FollowModel) FromDomain(e *social.FollowEdge) {
	m.FollowerID = e.FollowerID
	m.FolloweeID = e.FolloweeID
	m.CreatedAt = e.CreatedAt.UTC()
}

// FollowModelFromDomain creates a new persistence model from a domain FollowEdge.
func FollowModelFromDomain(e *social.FollowEdge) *FollowModel {
	m := &FollowModel{}
	m.FromDomain(e)
	return m
}
