package telemetry

import (
	"context"
	"testing"
	"time"

	reviewapp "github.com/cafecrawl/backend/internal/application/review"
	"github.com/cafecrawl/backend/internal/domain/social"
	"github.com/cafecrawl/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
)

func newTestSocialMetrics(t *testing.T) (*SocialMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := NewSocialMetrics(provider.Meter(MeterName))
	require.NoError(t, err)
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumWhere(t *testing.T, agg metricdata.Aggregation, key attribute.Key, value string) int64 {
	t.Helper()
	sum, ok := agg.(metricdata.Sum[int64])
	require.True(t, ok, "expected int64 sum, got %T", agg)

	var total int64
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(key); ok && v.Emit() == value {
			total += dp.Value
		}
	}
	return total
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	logger := zaptest.NewLogger(t)

	for _, cfg := range []config.TelemetryConfig{
		{Enabled: false, MetricsEnabled: true},
		{Enabled: true, MetricsEnabled: false},
	} {
		mp, err := NewMeterProvider(context.Background(), cfg, logger)
		require.NoError(t, err)
		assert.False(t, mp.IsEnabled())
		assert.NotNil(t, mp.Meter("test"))
		assert.NoError(t, mp.Shutdown(context.Background()))
	}
}

func TestSocialMetrics_RecordFollowMutation(t *testing.T) {
	m, reader := newTestSocialMetrics(t)
	ctx := context.Background()

	m.RecordFollowMutation(ctx, social.ActionFollow, true)
	m.RecordFollowMutation(ctx, social.ActionFollow, false)
	m.RecordFollowMutation(ctx, social.ActionUnfollow, true)

	data := collect(t, reader)
	agg := data["follow_mutations_total"]
	require.NotNil(t, agg)
	assert.Equal(t, int64(2), sumWhere(t, agg, AttrAction, "follow"))
	assert.Equal(t, int64(1), sumWhere(t, agg, AttrAction, "unfollow"))
	assert.Equal(t, int64(2), sumWhere(t, agg, AttrChanged, "true"))
}

func TestSocialMetrics_RecordReviewSubmission(t *testing.T) {
	m, reader := newTestSocialMetrics(t)
	ctx := context.Background()

	m.RecordReviewSubmission(ctx, reviewapp.OutcomeCreated)
	m.RecordReviewSubmission(ctx, reviewapp.OutcomeUpdated)
	m.RecordReviewSubmission(ctx, reviewapp.OutcomeRateLimited)
	m.RecordReviewSubmission(ctx, reviewapp.OutcomeRateLimited)

	data := collect(t, reader)
	submissions := data["review_submissions_total"]
	require.NotNil(t, submissions)
	assert.Equal(t, int64(1), sumWhere(t, submissions, AttrOutcome, reviewapp.OutcomeCreated))
	assert.Equal(t, int64(1), sumWhere(t, submissions, AttrOutcome, reviewapp.OutcomeUpdated))
	assert.Equal(t, int64(2), sumWhere(t, submissions, AttrOutcome, reviewapp.OutcomeRateLimited))

	limited, ok := data["review_rate_limited_total"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, limited.DataPoints, 1)
	assert.Equal(t, int64(2), limited.DataPoints[0].Value)
}

func TestSocialMetrics_RecordRequest(t *testing.T) {
	m, reader := newTestSocialMetrics(t)

	m.RecordRequest(context.Background(), "POST", "/api/follows", 200, 30*time.Millisecond)

	hist, ok := collect(t, reader)["mutation_request_duration_seconds"].(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)

	dp := hist.DataPoints[0]
	assert.Equal(t, uint64(1), dp.Count)
	assert.InDelta(t, 0.03, dp.Sum, 0.0001)
	route, _ := dp.Attributes.Value(AttrHTTPRoute)
	assert.Equal(t, "/api/follows", route.AsString())
	status, _ := dp.Attributes.Value(AttrHTTPStatusCode)
	assert.Equal(t, int64(200), status.AsInt64())
}
