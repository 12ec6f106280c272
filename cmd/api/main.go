package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bizfinder/discovery/internal/adapters/cache"
	"github.com/bizfinder/discovery/internal/adapters/database"
	"github.com/bizfinder/discovery/internal/adapters/events"
	"github.com/bizfinder/discovery/internal/adapters/providers/geolocation"
	"github.com/bizfinder/discovery/internal/adapters/search"
	"github.com/bizfinder/discovery/internal/api/handlers"
	"github.com/bizfinder/discovery/internal/api/middleware"
	"github.com/bizfinder/discovery/internal/api/routes"
	"github.com/bizfinder/discovery/internal/application/services"
	"github.com/bizfinder/discovery/internal/domain/providers"
	"github.com/bizfinder/discovery/internal/domain/repositories"
	"github.com/bizfinder/discovery/internal/infrastructure/clients/postgres"
	"github.com/bizfinder/discovery/internal/infrastructure/clients/redis"
	"github.com/bizfinder/discovery/internal/infrastructure/clients/typesense"
	"github.com/bizfinder/discovery/internal/infrastructure/observability"
	"github.com/bizfinder/discovery/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Environment)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			observability.EnableLogExport()
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(shutdownCtx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	// Redis backs the cache and the event bus; the service runs without both.
	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, running without cache and events")
		} else {
			defer redisClient.Close()
			cacheProvider = cache.NewRedisAdapter(redisClient)
			eventBus = events.NewRedisEventBus(redisClient)
		}
	}

	var searchAdapter *search.TypesenseAdapter
	if cfg.Typesense.Enabled {
		typesenseClient, err := typesense.NewClient(ctx, &cfg.Typesense)
		if err != nil {
			log.Warn().Err(err).Msg("Typesense unavailable, discovery will query PostgreSQL")
		} else {
			searchAdapter = search.NewTypesenseAdapter(typesenseClient)
			if err := searchAdapter.InitSchema(ctx); err != nil {
				log.Warn().Err(err).Msg("failed to init Typesense schema")
			}
		}
	}

	baseBusinessAdapter := database.NewBusinessAdapter(pgClient)
	var businessRepo repositories.BusinessRepository = baseBusinessAdapter
	var cachedBusinessAdapter *database.CachedBusinessAdapter
	if cacheProvider != nil {
		cachedBusinessAdapter = database.NewCachedBusinessAdapter(baseBusinessAdapter, cacheProvider, metrics)
		businessRepo = cachedBusinessAdapter
	}
	hoursRepo := database.NewBusinessHoursAdapter(pgClient)
	reviewRepo := database.NewReviewAdapter(pgClient)

	var queryRepo repositories.BusinessQueryRepository = baseBusinessAdapter
	if searchAdapter != nil {
		queryRepo = search.NewFallbackQueryRepository(searchAdapter, baseBusinessAdapter)
	}

	geocoder := newGeocoder(cfg, cacheProvider)

	translator := services.NewQueryTranslator(cfg.Discovery.DefaultLimit, cfg.Discovery.MaxLimit)
	discoveryService := services.NewDiscoveryService(queryRepo, hoursRepo, translator, metrics)
	businessService := services.NewBusinessService(businessRepo, hoursRepo, geocoder, eventBus, metrics)
	aggregator := services.NewRatingAggregator(businessRepo, reviewRepo, eventBus, metrics)
	reviewService := services.NewReviewService(businessRepo, reviewRepo, aggregator)

	// The sync subscriber reads PostgreSQL directly so it never indexes a stale cached copy.
	var syncService *services.SearchSyncService
	if eventBus != nil {
		var invalidator services.BusinessCacheInvalidator
		if cachedBusinessAdapter != nil {
			invalidator = cachedBusinessAdapter
		}
		var searchRepo repositories.BusinessSearchRepository
		if searchAdapter != nil {
			searchRepo = searchAdapter
		}
		syncService = services.NewSearchSyncService(baseBusinessAdapter, searchRepo, invalidator, eventBus, metrics)
		if err := syncService.Start(); err != nil {
			log.Warn().Err(err).Msg("failed to start search sync")
			syncService = nil
		}
	}

	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil && cfg.Server.ResponseCache {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider, nil, metrics)
	}

	router := routes.NewRouter(
		handlers.NewBusinessHandler(discoveryService, businessService),
		handlers.NewReviewHandler(reviewService),
		cacheMiddleware,
		cfg.Server.AllowedOrigins,
		metrics,
	)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	if syncService != nil {
		syncService.Stop()
	}
	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("error closing event bus")
		}
	}

	log.Info().Msg("server stopped")
}

func newGeocoder(cfg *config.Config, cacheProvider providers.CacheProvider) providers.GeolocationProvider {
	switch cfg.Geolocation.Provider {
	case "google":
		if cfg.Geolocation.APIKey == "" {
			log.Warn().Msg("GEOLOCATION_API_KEY is not set, using mock geolocation provider")
			return geolocation.NewMockGeolocationProvider()
		}
		return geolocation.NewGoogleGeolocationProvider(cfg.Geolocation.APIKey, cacheProvider, geolocation.GoogleOptions{
			Timeout:           cfg.Geolocation.Timeout,
			RequestsPerSecond: cfg.Geolocation.RequestsPerSecond,
		})
	case "none":
		return nil
	default:
		return geolocation.NewMockGeolocationProvider()
	}
}
