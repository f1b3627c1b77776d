// Package social holds the directed follow relation between users.
package social

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cafecrawl/backend/internal/domain/shared"
)

// MaxUserIDLength bounds both ends of a follow edge, in characters
const MaxUserIDLength = 128

// FollowAction is the mutation requested on a follow edge
type FollowAction string

const (
	ActionFollow   FollowAction = "follow"
	ActionUnfollow FollowAction = "unfollow"
)

// ParseFollowAction parses the wire value of an action strictly.
func ParseFollowAction(s string) (FollowAction, error) {
	switch FollowAction(s) {
	case ActionFollow, ActionUnfollow:
		return FollowAction(s), nil
	default:
		return "", shared.NewValidationError("action must be one of: follow, unfollow")
	}
}

// FollowEdge is the directed relation "follower observes followee".
// The ordered pair is the natural key.
type FollowEdge struct {
	FollowerID string
	FolloweeID string
	CreatedAt  time.Time
}

// NewFollowEdge validates and builds an edge from follower to followee.
func NewFollowEdge(followerID, followeeID string) (*FollowEdge, error) {
	followerID = strings.TrimSpace(followerID)
	followeeID = strings.TrimSpace(followeeID)

	if followerID == "" {
		return nil, shared.NewValidationError("follower_id is required")
	}
	if followeeID == "" {
		return nil, shared.NewValidationError("followee_id is required")
	}
	if utf8.RuneCountInString(followerID) > MaxUserIDLength {
		return nil, shared.NewValidationError("follower_id must be at most %d characters", MaxUserIDLength)
	}
	if utf8.RuneCountInString(followeeID) > MaxUserIDLength {
		return nil, shared.NewValidationError("followee_id must be at most %d characters", MaxUserIDLength)
	}
	if followerID == followeeID {
		return nil, shared.ErrSelfReference
	}

	return &FollowEdge{
		FollowerID: followerID,
		FolloweeID: followeeID,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// FollowRepository stores follow edges.
//
// Insert returns shared.ErrAlreadyExists (possibly wrapped) when the edge is
// already present. Delete of a missing edge is not an error; the boolean
// reports whether a row was removed.
type FollowRepository interface {
	Insert(ctx context.Context, edge *FollowEdge) error
	Delete(ctx context.Context, followerID, followeeID string) (bool, error)
	Exists(ctx context.Context, followerID, followeeID string) (bool, error)
}
