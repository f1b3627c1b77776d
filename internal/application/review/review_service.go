package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/cafecrawl/backend/internal/domain/identity"
	"github.com/cafecrawl/backend/internal/domain/review"
	"github.com/cafecrawl/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Submission outcomes reported to metrics
const (
	OutcomeCreated     = "created"
	OutcomeUpdated     = "updated"
	OutcomeRateLimited = "rate_limited"
	OutcomeConflict    = "conflict"
	OutcomeRejected    = "rejected"
)

// SubmitReviewCommand is the input of a review submission
type SubmitReviewCommand struct {
	CafeID   string
	Rating   *float64
	Blurb    *string
	PhotoURL *string
}

// SubmitReviewResult is the stored review and whether it was created or revised
type SubmitReviewResult struct {
	Review  *review.Review
	Created bool
}

// PhotoVerifier checks that a referenced photo has been uploaded.
// It returns a validation DomainError when the photo is missing and nil for
// URLs it does not manage.
type PhotoVerifier interface {
	VerifyPhoto(ctx context.Context, photoURL string) error
}

// ReviewMetrics records review submissions
type ReviewMetrics interface {
	RecordReviewSubmission(ctx context.Context, outcome string)
}

type noopReviewMetrics struct{}

func (noopReviewMetrics) RecordReviewSubmission(context.Context, string) {}

// ReviewService creates or revises a caller's review of a cafe
type ReviewService struct {
	repo     review.ReviewRepository
	limiter  *RateLimiter
	verifier PhotoVerifier
	metrics  ReviewMetrics
	logger   *zap.Logger
}

// ReviewServiceOption configures a ReviewService
type ReviewServiceOption func(*ReviewService)

// WithPhotoVerifier enables photo existence checks
func WithPhotoVerifier(v PhotoVerifier) ReviewServiceOption {
	return func(s *ReviewService) {
		s.verifier = v
	}
}

// WithReviewMetrics sets the metrics recorder
func WithReviewMetrics(m ReviewMetrics) ReviewServiceOption {
	return func(s *ReviewService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewReviewService creates a new ReviewService
func NewReviewService(repo review.ReviewRepository, limiter *RateLimiter, logger *zap.Logger, opts ...ReviewServiceOption) *ReviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limiter == nil {
		limiter = NewRateLimiter(repo, RateLimitConfig{})
	}
	s := &ReviewService{
		repo:    repo,
		limiter: limiter,
		metrics: noopReviewMetrics{},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitReview creates the caller's review of cmd.CafeID, or revises it in
// place when one exists. A lost insert race is resolved by re-reading the
// winning row once and revising it; if that fails too the caller gets a
// conflict error.
func (s *ReviewService) SubmitReview(ctx context.Context, caller *identity.Caller, cmd SubmitReviewCommand) (*SubmitReviewResult, error) {
	if caller == nil {
		return nil, shared.ErrUnauthorized
	}

	content, cafeID, err := s.validate(cmd)
	if err != nil {
		s.metrics.RecordReviewSubmission(ctx, OutcomeRejected)
		return nil, err
	}

	decision, err := s.limiter.Check(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		s.logger.Info("Review rate limit exceeded",
			zap.String("user_id", caller.ID),
			zap.Int64("count", decision.Count),
			zap.Int("limit", decision.Limit),
			zap.Duration("retry_after", decision.RetryAfter),
		)
		s.metrics.RecordReviewSubmission(ctx, OutcomeRateLimited)
		return nil, &RateLimitError{Decision: decision}
	}

	if content.PhotoURL != nil && s.verifier != nil {
		if err := s.verifier.VerifyPhoto(ctx, *content.PhotoURL); err != nil {
			s.metrics.RecordReviewSubmission(ctx, OutcomeRejected)
			return nil, err
		}
	}

	existing, err := s.repo.FindByUserAndCafe(ctx, caller.ID, cafeID)
	switch {
	case err == nil:
		return s.revise(ctx, existing, content)
	case !errors.Is(err, shared.ErrNotFound):
		return nil, fmt.Errorf("find review: %w", err)
	}

	created, err := review.NewReview(caller.ID, cafeID, content)
	if err != nil {
		return nil, err
	}

	err = s.repo.Create(ctx, created)
	if err == nil {
		s.metrics.RecordReviewSubmission(ctx, OutcomeCreated)
		return &SubmitReviewResult{Review: created, Created: true}, nil
	}
	if !errors.Is(err, shared.ErrAlreadyExists) {
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.logger.Info("Concurrent review insert detected, retrying as update",
		zap.String("user_id", caller.ID),
		zap.String("cafe_id", cafeID),
	)

	existing, err = s.repo.FindByUserAndCafe(ctx, caller.ID, cafeID)
	if errors.Is(err, shared.ErrNotFound) {
		s.metrics.RecordReviewSubmission(ctx, OutcomeConflict)
		return nil, shared.ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("find review after conflict: %w", err)
	}
	return s.revise(ctx, existing, content)
}

func (s *ReviewService) revise(ctx context.Context, existing *review.Review, content review.Content) (*SubmitReviewResult, error) {
	existing.Revise(content)

	err := s.repo.Update(ctx, existing)
	if errors.Is(err, shared.ErrNotFound) {
		s.metrics.RecordReviewSubmission(ctx, OutcomeConflict)
		return nil, shared.ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}

	s.metrics.RecordReviewSubmission(ctx, OutcomeUpdated)
	return &SubmitReviewResult{Review: existing, Created: false}, nil
}

func (s *ReviewService) validate(cmd SubmitReviewCommand) (review.Content, string, error) {
	cafeID, err := review.NormalizeCafeID(cmd.CafeID)
	if err != nil {
		return review.Content{}, "", err
	}
	if cmd.Rating == nil {
		return review.Content{}, "", shared.NewValidationError("rating is required")
	}
	rating, err := review.NewRatingFromFloat(*cmd.Rating)
	if err != nil {
		return review.Content{}, "", err
	}
	content, err := review.NewContent(rating, cmd.Blurb, cmd.PhotoURL)
	if err != nil {
		return review.Content{}, "", err
	}
	return content, cafeID, nil
}
