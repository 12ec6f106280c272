//go:build integration

package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizfinder/discovery/internal/adapters/cache"
	"github.com/bizfinder/discovery/internal/adapters/providers/geolocation"
)

func TestGoogleProviderRedisCaching(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	redisClient := maybeTestRedisClient(t)
	if redisClient == nil {
		t.Skip("Redis not available for integration test")
	}
	defer redisClient.Close()

	ctx := context.Background()
	require.NoError(t, redisClient.Client().FlushDB(ctx).Err())

	var geocodeCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&geocodeCalls, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "status": "OK",
  "results": [{
    "formatted_address": "Lagos, Nigeria",
    "geometry": { "location": { "lat": 6.5244, "lng": 3.3792 } }
  }]
}`))
	}))
	defer server.Close()

	provider := geolocation.NewGoogleGeolocationProvider("test-key", cache.NewRedisAdapter(redisClient), geolocation.GoogleOptions{
		BaseURL: server.URL,
	})

	first, err := provider.Lookup(ctx, "Lagos, Nigeria")
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.InDelta(t, 6.5244, first[0].Latitude, 1e-9)

	second, err := provider.Lookup(ctx, "Lagos, Nigeria")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&geocodeCalls))
}
