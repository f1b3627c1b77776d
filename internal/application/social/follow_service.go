package social

import (
	"context"
	"errors"
	"fmt"

	"github.com/cafecrawl/backend/internal/domain/identity"
	"github.com/cafecrawl/backend/internal/domain/shared"
	"github.com/cafecrawl/backend/internal/domain/social"
	"go.uber.org/zap"
)

// FollowCommand is the validated input of a follow mutation
type FollowCommand struct {
	Action     string
	FolloweeID string
}

// FollowMetrics records follow mutations
type FollowMetrics interface {
	RecordFollowMutation(ctx context.Context, action social.FollowAction, changed bool)
}

type noopFollowMetrics struct{}

func (noopFollowMetrics) RecordFollowMutation(context.Context, social.FollowAction, bool) {}

// FollowService applies follow and unfollow mutations
type FollowService struct {
	repo    social.FollowRepository
	metrics FollowMetrics
	logger  *zap.Logger
}

// FollowServiceOption configures a FollowService
type FollowServiceOption func(*FollowService)

// WithFollowMetrics sets the metrics recorder
func WithFollowMetrics(m FollowMetrics) FollowServiceOption {
	return func(s *FollowService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewFollowService creates a new FollowService
func NewFollowService(repo social.FollowRepository, logger *zap.Logger, opts ...FollowServiceOption) *FollowService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &FollowService{
		repo:    repo,
		metrics: noopFollowMetrics{},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MutateFollow inserts or deletes the edge (caller, cmd.FolloweeID).
//
// Following an already-followed user succeeds without a change, as does
// unfollowing a user that is not followed. Exactly one store mutation is
// attempted per call.
func (s *FollowService) MutateFollow(ctx context.Context, caller *identity.Caller, cmd FollowCommand) error {
	if caller == nil {
		return shared.ErrUnauthorized
	}

	action, err := social.ParseFollowAction(cmd.Action)
	if err != nil {
		return err
	}

	edge, err := social.NewFollowEdge(caller.ID, cmd.FolloweeID)
	if err != nil {
		return err
	}

	switch action {
	case social.ActionFollow:
		err = s.repo.Insert(ctx, edge)
		if errors.Is(err, shared.ErrAlreadyExists) {
			s.logger.Debug("Follow edge already exists",
				zap.String("follower_id", edge.FollowerID),
				zap.String("followee_id", edge.FolloweeID),
			)
			s.metrics.RecordFollowMutation(ctx, action, false)
			return nil
		}
		if err != nil {
			return fmt.Errorf("insert follow edge: %w", err)
		}
		s.metrics.RecordFollowMutation(ctx, action, true)

	case social.ActionUnfollow:
		removed, err := s.repo.Delete(ctx, edge.FollowerID, edge.FolloweeID)
		if err != nil {
			return fmt.Errorf("delete follow edge: %w", err)
		}
		s.metrics.RecordFollowMutation(ctx, action, removed)
	}

	return nil
}
