package geolocation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bizfinder/discovery/internal/domain/providers"
	"github.com/bizfinder/discovery/internal/infrastructure/observability"
	"github.com/bizfinder/discovery/pkg/geo"
)

const (
	googleGeocodeURL       = "https://maps.googleapis.com/maps/api/geocode/json"
	defaultGeocodeCacheTTL = 60 * 60 * 24 * 30
	defaultHTTPTimeout     = 8 * time.Second
	geocodeCachePrefix     = "geo:v1:lookup:"
)

// GoogleOptions tunes the Google provider. Zero values fall back to defaults.
type GoogleOptions struct {
	BaseURL           string
	HTTPClient        *http.Client
	Timeout           time.Duration
	RequestsPerSecond float64
}

// GoogleGeolocationProvider implements the GeolocationProvider using the Google Geocoding API.
type GoogleGeolocationProvider struct {
	apiKey     string
	httpClient *http.Client
	cache      providers.CacheProvider
	baseURL    string
	limiter    *rate.Limiter
}

// NewGoogleGeolocationProvider creates a new Google geolocation provider. cache may be nil.
func NewGoogleGeolocationProvider(apiKey string, cache providers.CacheProvider, opts GoogleOptions) *GoogleGeolocationProvider {
	baseURL := strings.TrimSpace(opts.BaseURL)
	if baseURL == "" {
		baseURL = googleGeocodeURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultHTTPTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	return &GoogleGeolocationProvider{
		apiKey:     apiKey,
		httpClient: httpClient,
		cache:      cache,
		baseURL:    baseURL,
		limiter:    limiter,
	}
}

// Lookup resolves address to candidate coordinates, best match first.
func (g *GoogleGeolocationProvider) Lookup(ctx context.Context, address string) ([]geo.Coordinates, error) {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return nil, fmt.Errorf("address is required")
	}

	cacheKey := geocodeCachePrefix + hashKey(strings.ToLower(trimmed))
	if cached, ok := g.fromCache(ctx, cacheKey); ok {
		return cached, nil
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("geocode rate limit wait: %w", err)
		}
	}

	resp, err := g.doGeocodeRequest(ctx, url.Values{"address": []string{trimmed}})
	if err != nil {
		return nil, err
	}

	results := make([]geo.Coordinates, 0, len(resp.Results))
	for _, r := range resp.Results {
		coords := geo.Coordinates{Latitude: r.Geometry.Location.Lat, Longitude: r.Geometry.Location.Lng}
		if coords.Validate() != nil {
			continue
		}
		results = append(results, coords)
	}

	if len(results) > 0 && g.cache != nil {
		if payload, err := json.Marshal(results); err == nil {
			if err := g.cache.Set(ctx, cacheKey, payload, defaultGeocodeCacheTTL); err != nil {
				observability.LoggerFromContext(ctx).Debug().Err(err).Msg("geocode cache write failed")
			}
		}
	}

	return results, nil
}

func (g *GoogleGeolocationProvider) fromCache(ctx context.Context, key string) ([]geo.Coordinates, bool) {
	if g.cache == nil {
		return nil, false
	}
	cached, err := g.cache.Get(ctx, key)
	if err != nil || len(cached) == 0 {
		return nil, false
	}
	var coords []geo.Coordinates
	if err := json.Unmarshal(cached, &coords); err != nil || len(coords) == 0 {
		return nil, false
	}
	return coords, true
}

func (g *GoogleGeolocationProvider) doGeocodeRequest(ctx context.Context, params url.Values) (*googleGeocodeResponse, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("google maps api key is required")
	}

	params.Set("key", g.apiKey)
	reqURL := fmt.Sprintf("%s?%s", g.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocode request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("geocode request returned status %d", resp.StatusCode)
	}

	var payload googleGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode geocode response: %w", err)
	}

	switch payload.Status {
	case "OK":
		return &payload, nil
	case "ZERO_RESULTS":
		return &googleGeocodeResponse{Status: payload.Status}, nil
	}
	if payload.ErrorMessage != "" {
		return nil, fmt.Errorf("geocode request failed: %s - %s", payload.Status, payload.ErrorMessage)
	}
	return nil, fmt.Errorf("geocode request failed: %s", payload.Status)
}

func hashKey(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

type googleGeocodeResponse struct {
	Status       string                `json:"status"`
	ErrorMessage string                `json:"error_message,omitempty"`
	Results      []googleGeocodeResult `json:"results"`
}

type googleGeocodeResult struct {
	FormattedAddress string         `json:"formatted_address"`
	Geometry         googleGeometry `json:"geometry"`
}

type googleGeometry struct {
	Location googleLocation `json:"location"`
}

type googleLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
