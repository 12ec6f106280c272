package observability

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	otellog "go.opentelemetry.io/otel/log"
)

func TestInitMetrics_NoopProvider(t *testing.T) {
	metrics, err := InitMetrics()
	require.NoError(t, err)
	require.NotNil(t, metrics)

	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordRequestMetric(ctx, metrics, "GET", "/api/businesses", 200, 5*time.Millisecond)
		RecordPostFilterDrop(ctx, metrics, "open_now", 3)
		RecordGeocodeFailure(ctx, metrics, "no_results")
		RecordRatingRecompute(ctx, metrics, "ok", 1)
	})
}

func TestRecorders_NilMetrics(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordRequestMetric(ctx, nil, "GET", "/", 200, time.Millisecond)
		RecordDBMetric(ctx, nil, "select", time.Millisecond)
		RecordCacheHit(ctx, nil, "business")
		RecordCacheMiss(ctx, nil, "business")
		RecordPostFilterDrop(ctx, nil, "distance", 1)
		RecordSearchSyncFailure(ctx, nil, "updated")
	})
}

func TestSeverityOf(t *testing.T) {
	assert.Equal(t, otellog.SeverityWarn, severityOf(zerolog.WarnLevel))
	assert.Equal(t, otellog.SeverityError, severityOf(zerolog.ErrorLevel))
	assert.Equal(t, otellog.SeverityInfo, severityOf(zerolog.InfoLevel))
}

func TestLoggerFromContext_WithoutSpan(t *testing.T) {
	logger := LoggerFromContext(context.Background())
	require.NotNil(t, logger)
}
