package review

import (
	"context"
	"fmt"
	"time"

	"github.com/cafecrawl/backend/internal/domain/review"
	"github.com/cafecrawl/backend/internal/domain/shared"
)

const (
	// DefaultReviewLimit is the number of new reviews allowed per window
	DefaultReviewLimit = 10
	// DefaultReviewWindow is the trailing window the limit applies to
	DefaultReviewWindow = time.Hour
)

// RateLimitConfig configures the review rate limiter
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
}

// RateDecision is the outcome of a rate limit check
type RateDecision struct {
	Allowed    bool
	Count      int64
	Limit      int
	Window     time.Duration
	RetryAfter time.Duration
}

// RateLimitError is returned when a caller has exhausted the review budget.
// It unwraps to shared.ErrRateLimitExceeded.
type RateLimitError struct {
	Decision RateDecision
}

// Error implements the error interface
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("Rate limit exceeded: at most %d new reviews per %s",
		e.Decision.Limit, windowPhrase(e.Decision.Window))
}

// windowPhrase renders a window as "hour", "30 minutes" or "90s".
// A zero window reads as the default.
func windowPhrase(window time.Duration) string {
	if window <= 0 {
		window = DefaultReviewWindow
	}
	switch {
	case window == time.Hour:
		return "hour"
	case window == time.Minute:
		return "minute"
	case window%time.Hour == 0:
		return fmt.Sprintf("%d hours", int64(window/time.Hour))
	case window%time.Minute == 0:
		return fmt.Sprintf("%d minutes", int64(window/time.Minute))
	default:
		return window.String()
	}
}

// Unwrap exposes the domain error for status mapping
func (e *RateLimitError) Unwrap() error {
	return shared.ErrRateLimitExceeded
}

// RateLimiter enforces a trailing-window limit on new reviews.
// The count is recomputed from stored created_at timestamps on every call and
// no counter state is kept in process, so any number of instances agree.
type RateLimiter struct {
	repo   review.ReviewRepository
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewRateLimiter creates a RateLimiter. Zero values fall back to the defaults.
func NewRateLimiter(repo review.ReviewRepository, cfg RateLimitConfig) *RateLimiter {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultReviewLimit
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultReviewWindow
	}
	return &RateLimiter{
		repo:   repo,
		limit:  cfg.Limit,
		window: cfg.Window,
		now:    time.Now,
	}
}

// Check counts the caller's reviews created in the trailing window.
func (l *RateLimiter) Check(ctx context.Context, userID string) (RateDecision, error) {
	now := l.now().UTC()
	since := now.Add(-l.window)

	count, err := l.repo.CountCreatedSince(ctx, userID, since)
	if err != nil {
		return RateDecision{}, fmt.Errorf("count recent reviews: %w", err)
	}

	decision := RateDecision{
		Allowed: count < int64(l.limit),
		Count:   count,
		Limit:   l.limit,
		Window:  l.window,
	}
	if decision.Allowed {
		return decision, nil
	}

	// Budget frees up when the oldest counted review leaves the window.
	decision.RetryAfter = l.window
	earliest, err := l.repo.EarliestCreatedSince(ctx, userID, since)
	if err != nil {
		return RateDecision{}, fmt.Errorf("find earliest recent review: %w", err)
	}
	if earliest != nil {
		decision.RetryAfter = earliest.Add(l.window).Sub(now)
	}
	if decision.RetryAfter < time.Second {
		decision.RetryAfter = time.Second
	}

	return decision, nil
}

// Limit returns the configured limit
func (l *RateLimiter) Limit() int {
	return l.limit
}

// Window returns the configured window
func (l *RateLimiter) Window() time.Duration {
	return l.window
}
