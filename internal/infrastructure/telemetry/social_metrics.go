package telemetry

import (
	"context"
	"time"

	reviewapp "github.com/cafecrawl/backend/internal/application/review"
	socialapp "github.com/cafecrawl/backend/internal/application/social"
	"github.com/cafecrawl/backend/internal/domain/social"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope of the service's own metrics
const MeterName = "github.com/cafecrawl/backend"

// SocialMetrics counts follow mutations and review submissions, and records
// mutation request latency.
type SocialMetrics struct {
	followMutations   *Counter
	reviewSubmissions *Counter
	rateLimited       *Counter
	requestDuration   *Histogram
}

var (
	_ socialapp.FollowMetrics = (*SocialMetrics)(nil)
	_ reviewapp.ReviewMetrics = (*SocialMetrics)(nil)
)

// NewSocialMetrics creates the instruments on meter
func NewSocialMetrics(meter metric.Meter) (*SocialMetrics, error) {
	followMutations, err := NewCounter(meter, "follow_mutations_total",
		"Follow and unfollow requests applied", "{request}")
	if err != nil {
		return nil, err
	}
	reviewSubmissions, err := NewCounter(meter, "review_submissions_total",
		"Review submissions by outcome", "{request}")
	if err != nil {
		return nil, err
	}
	rateLimited, err := NewCounter(meter, "review_rate_limited_total",
		"Review submissions rejected by the hourly limit", "{request}")
	if err != nil {
		return nil, err
	}
	requestDuration, err := NewHistogram(meter, HistogramOpts{
		Name:        "mutation_request_duration_seconds",
		Description: "Latency of mutation API requests",
		Unit:        "s",
		Boundaries:  []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	})
	if err != nil {
		return nil, err
	}

	return &SocialMetrics{
		followMutations:   followMutations,
		reviewSubmissions: reviewSubmissions,
		rateLimited:       rateLimited,
		requestDuration:   requestDuration,
	}, nil
}

// RecordFollowMutation implements socialapp.FollowMetrics
func (m *SocialMetrics) RecordFollowMutation(ctx context.Context, action social.FollowAction, changed bool) {
	m.followMutations.Inc(ctx, AttrAction.String(string(action)), AttrChanged.Bool(changed))
}

// RecordReviewSubmission implements reviewapp.ReviewMetrics
func (m *SocialMetrics) RecordReviewSubmission(ctx context.Context, outcome string) {
	m.reviewSubmissions.Inc(ctx, AttrOutcome.String(outcome))
	if outcome == reviewapp.OutcomeRateLimited {
		m.rateLimited.Inc(ctx)
	}
}

// RecordRequest records the latency of one HTTP request
func (m *SocialMetrics) RecordRequest(ctx context.Context, method, route string, status int, d time.Duration) {
	m.requestDuration.RecordDuration(ctx, d,
		AttrHTTPMethod.String(method),
		AttrHTTPRoute.String(route),
		AttrHTTPStatusCode.Int(status),
	)
}
