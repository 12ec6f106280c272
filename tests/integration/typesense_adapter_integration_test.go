//go:build integration

package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizfinder/discovery/internal/adapters/search"
	"github.com/bizfinder/discovery/internal/application/services"
	"github.com/bizfinder/discovery/internal/domain/entities"
	"github.com/bizfinder/discovery/internal/infrastructure/clients/typesense"
	"github.com/bizfinder/discovery/pkg/config"
	"github.com/bizfinder/discovery/pkg/geo"
)

func TestTypesenseAdapter(t *testing.T) {
	if os.Getenv("TEST_TYPESENSE_URL") == "" {
		t.Skip("Skipping integration test: TEST_TYPESENSE_URL not set")
	}

	cfg := &config.TypesenseConfig{
		Enabled: true,
		URL:     os.Getenv("TEST_TYPESENSE_URL"),
		APIKey:  getEnv("TEST_TYPESENSE_API_KEY", "xyz"),
	}

	ctx := context.Background()

	client, err := typesense.NewClient(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, client.ResetSchema(ctx))

	adapter := search.NewTypesenseAdapter(client)

	maxPrice := 10.0
	business := &entities.Business{
		ID:             "test-business-ts-1",
		OwnerID:        "owner-ts",
		Name:           "Typesense Coffee Bar",
		Categories:     []string{"Cafe"},
		Address:        entities.Address{Line1: "1 Awolowo Road", City: "Lagos", Country: "Nigeria"},
		PaymentOptions: []entities.PaymentOption{entities.PaymentOptionCash},
		PriceIndicator: "$",
		MaxPrice:       &maxPrice,
		Wifi:           true,
		Status:         entities.BusinessStatusActive,
		Rating:         4.9,
		ReviewCount:    50,
		Version:        1,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
	business.SetLocation(geo.Coordinates{Latitude: 6.4474, Longitude: 3.4144})

	require.NoError(t, adapter.Index(ctx, business))

	// Allow Typesense to index
	time.Sleep(1 * time.Second)

	query, err := services.TranslateCriteria(services.DiscoveryCriteria{
		Category: "cafe",
		Features: []services.Feature{services.FeatureWifi},
		Price:    "$$",
	})
	require.NoError(t, err)

	result, err := adapter.Query(ctx, query)
	require.NoError(t, err)
	require.NotEmpty(t, result.Businesses)
	assert.Equal(t, business.ID, result.Businesses[0].ID)
	assert.Equal(t, business.Name, result.Businesses[0].Name)
	assert.Equal(t, 1, result.Total)

	require.NoError(t, adapter.Delete(ctx, business.ID))
}
