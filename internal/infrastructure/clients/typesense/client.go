package typesense

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/typesense/typesense-go/v2/typesense"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/bizfinder/discovery/pkg/config"
	"github.com/bizfinder/discovery/pkg/retry"
)

const (
	BusinessesCollection = "businesses"
)

// Client represents a Typesense client
type Client struct {
	client *typesense.Client
}

// NewClient creates a new Typesense client with exponential backoff retry
func NewClient(ctx context.Context, cfg *config.TypesenseConfig) (*Client, error) {
	client := typesense.NewClient(
		typesense.WithServer(cfg.URL),
		typesense.WithAPIKey(cfg.APIKey),
		typesense.WithConnectionTimeout(5*time.Second),
	)

	err := retry.DoWithLog(ctx, retry.DefaultConfig(), "Typesense",
		func() error {
			healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			_, err := client.Health(healthCtx, 2*time.Second)
			return err
		},
		func(attempt int, err error, nextDelay time.Duration) {
			log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", nextDelay).
				Msg("Typesense connection attempt failed")
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Typesense after retries: %w", err)
	}

	log.Info().Str("url", cfg.URL).Msg("connected to Typesense")
	return &Client{client: client}, nil
}

// Client returns the underlying Typesense client
func (c *Client) Client() *typesense.Client {
	return c.client
}

// BusinessSchema is the search document layout for a business listing.
func BusinessSchema() *api.CollectionSchema {
	return &api.CollectionSchema{
		Name: BusinessesCollection,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "name", Type: "string", Sort: pointer.True()},
			{Name: "about", Type: "string", Optional: pointer.True()},
			{Name: "categories", Type: "string[]", Facet: pointer.True()},
			{Name: "services", Type: "string[]", Optional: pointer.True()},
			{Name: "address", Type: "string", Optional: pointer.True()},
			{Name: "city", Type: "string", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "state", Type: "string", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "country", Type: "string", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "payment_options", Type: "string[]", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "max_price", Type: "float", Optional: pointer.True()},
			{Name: "on_site_parking", Type: "bool"},
			{Name: "garage_parking", Type: "bool"},
			{Name: "wifi", Type: "bool"},
			{Name: "status", Type: "string", Facet: pointer.True()},
			{Name: "rating", Type: "float"},
			{Name: "review_count", Type: "int32"},
			{Name: "location", Type: "geopoint", Optional: pointer.True()},
			{Name: "created_at", Type: "int64"},
			{Name: "updated_at", Type: "int64"},
		},
		DefaultSortingField: pointer.String("created_at"),
	}
}

// InitSchema ensures the businesses collection exists
func (c *Client) InitSchema(ctx context.Context) error {
	collections, err := c.client.Collections().Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve collections: %w", err)
	}

	for _, col := range collections {
		if col.Name == BusinessesCollection {
			log.Debug().Str("collection", BusinessesCollection).Msg("Typesense collection already exists")
			return nil
		}
	}

	if _, err := c.client.Collections().Create(ctx, BusinessSchema()); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Info().Str("collection", BusinessesCollection).Msg("created Typesense collection")
	return nil
}

// ResetSchema drops the businesses collection and creates it again
func (c *Client) ResetSchema(ctx context.Context) error {
	if _, err := c.client.Collection(BusinessesCollection).Delete(ctx); err != nil {
		log.Warn().Err(err).Str("collection", BusinessesCollection).Msg("drop before reset failed, continuing")
	}
	return c.InitSchema(ctx)
}
