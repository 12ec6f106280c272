package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bizfinder/discovery/internal/adapters/database"
	"github.com/bizfinder/discovery/internal/adapters/search"
	"github.com/bizfinder/discovery/internal/application/services"
	"github.com/bizfinder/discovery/internal/infrastructure/clients/postgres"
	"github.com/bizfinder/discovery/internal/infrastructure/clients/typesense"
	"github.com/bizfinder/discovery/internal/infrastructure/observability"
	"github.com/bizfinder/discovery/pkg/config"
)

func main() {
	var reset bool
	var intervalFlag string
	flag.BoolVar(&reset, "reset", false, "drop and recreate the Typesense collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	observability.InitLogger("business-indexer", os.Getenv("APP_ENV"))

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	if intervalValue != "" {
		var err error
		interval, err = time.ParseDuration(intervalValue)
		if err != nil {
			log.Fatal().Err(err).Str("interval", intervalValue).Msg("invalid interval")
		}
		if interval <= 0 {
			log.Fatal().Str("interval", intervalValue).Msg("interval must be greater than zero")
		}
	}

	if strings.EqualFold(os.Getenv("RESET_TYPESENSE"), "true") {
		reset = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, reset); err != nil {
			log.Error().Err(err).Msg("reindex failed")
		}

		if interval <= 0 {
			break
		}

		reset = false
		log.Info().Dur("next_run_in", interval).Msg("reindex complete")

		select {
		case <-ctx.Done():
			log.Info().Msg("reindexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, reset bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pgClient.Close()

	tsClient, err := typesense.NewClient(ctx, &cfg.Typesense)
	if err != nil {
		return fmt.Errorf("connect typesense: %w", err)
	}

	if reset {
		log.Warn().Msg("resetting Typesense businesses collection")
		err = tsClient.ResetSchema(ctx)
	} else {
		err = tsClient.InitSchema(ctx)
	}
	if err != nil {
		return fmt.Errorf("prepare schema: %w", err)
	}

	reindexer := services.NewReindexService(database.NewBusinessAdapter(pgClient), search.NewTypesenseAdapter(tsClient))
	start := time.Now()
	indexed, failed, err := reindexer.ReindexAll(ctx)
	if err != nil {
		return err
	}

	log.Info().
		Int("indexed", indexed).
		Int("failed", failed).
		Dur("took", time.Since(start)).
		Msg("businesses indexed")
	return nil
}
