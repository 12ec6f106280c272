package main

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bizfinder/discovery/internal/adapters/database"
	"github.com/bizfinder/discovery/internal/adapters/providers/geolocation"
	"github.com/bizfinder/discovery/internal/application/services"
	"github.com/bizfinder/discovery/internal/domain/entities"
	"github.com/bizfinder/discovery/internal/infrastructure/clients/postgres"
	"github.com/bizfinder/discovery/internal/infrastructure/observability"
	"github.com/bizfinder/discovery/pkg/config"
)

type seedBusiness struct {
	input   services.BusinessInput
	hours   []*entities.BusinessHours
	ratings []float64
}

func weekdayHours(open, close string, weekend bool) []*entities.BusinessHours {
	hours := make([]*entities.BusinessHours, 0, len(entities.Weekdays))
	for _, day := range entities.Weekdays {
		if (day == entities.Saturday || day == entities.Sunday) && !weekend {
			hours = append(hours, &entities.BusinessHours{Day: day, IsClosed: true})
			continue
		}
		hours = append(hours, &entities.BusinessHours{Day: day, OpenTime: open, CloseTime: close})
	}
	return hours
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	observability.InitLogger("business-seed", cfg.Environment)

	ctx := context.Background()

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pgClient.Close()

	if os.Getenv("RESET_DB") == "true" {
		log.Warn().Msg("RESET_DB=true detected, truncating tables before seeding")
		if _, err := pgClient.DB().ExecContext(ctx, `TRUNCATE TABLE reviews, business_hours, businesses CASCADE`); err != nil {
			log.Fatal().Err(err).Msg("failed to reset tables")
		}
	}

	businessRepo := database.NewBusinessAdapter(pgClient)
	reviewRepo := database.NewReviewAdapter(pgClient)
	businessService := services.NewBusinessService(
		businessRepo,
		database.NewBusinessHoursAdapter(pgClient),
		geolocation.NewMockGeolocationProvider(),
		nil,
		nil,
	)
	reviewService := services.NewReviewService(
		businessRepo,
		reviewRepo,
		services.NewRatingAggregator(businessRepo, reviewRepo, nil, nil),
	)

	owner := uuid.NewString()
	seeds := []seedBusiness{
		{
			input: services.BusinessInput{
				Name:           "Mama Put Kitchen",
				About:          "Home style jollof, amala and pepper soup",
				Categories:     []string{"Restaurant", "Nigerian"},
				Services:       []string{"dine-in", "takeaway"},
				Address:        entities.Address{Line1: "14 Adeola Odeku St", City: "Lagos", State: "Lagos", Country: "Nigeria"},
				Phone:          "0803 123 4567",
				PaymentOptions: []entities.PaymentOption{entities.PaymentOptionCash, entities.PaymentOptionBankTransfer},
				PriceIndicator: "$",
				OnSiteParking:  true,
			},
			hours:   weekdayHours("08:00", "22:00", true),
			ratings: []float64{5, 4, 4},
		},
		{
			input: services.BusinessInput{
				Name:           "Sharp Cuts Barbershop",
				About:          "Fades, beard trims and kids cuts",
				Categories:     []string{"Barber"},
				Services:       []string{"haircut", "shave"},
				Address:        entities.Address{Line1: "5 Allen Avenue", City: "Ikeja, Lagos", State: "Lagos", Country: "Nigeria"},
				PaymentOptions: []entities.PaymentOption{entities.PaymentOptionCash},
				PriceIndicator: "$$",
				Wifi:           true,
			},
			hours:   weekdayHours("09:00", "19:00", true),
			ratings: []float64{4, 3},
		},
		{
			input: services.BusinessInput{
				Name:           "Capital Tech Repairs",
				About:          "Phone and laptop repairs while you wait",
				Categories:     []string{"Electronics", "Repair"},
				Services:       []string{"screen replacement", "battery replacement"},
				Address:        entities.Address{Line1: "Plot 12 Aminu Kano Crescent", City: "Abuja", State: "FCT", Country: "Nigeria"},
				PaymentOptions: []entities.PaymentOption{entities.PaymentOptionBankTransfer},
				PriceIndicator: "$$$",
				GarageParking:  true,
				Wifi:           true,
			},
			hours:   weekdayHours("10:00", "18:00", false),
			ratings: []float64{5},
		},
		{
			input: services.BusinessInput{
				Name:           "Garden City Suya",
				About:          "Late night suya spot",
				Categories:     []string{"Restaurant", "Grill"},
				Address:        entities.Address{Line1: "Aba Road", City: "Port Harcourt", State: "Rivers", Country: "Nigeria"},
				PaymentOptions: []entities.PaymentOption{entities.PaymentOptionCash},
				PriceIndicator: "$",
			},
			hours: weekdayHours("18:00", "02:00", true),
		},
	}

	created := 0
	for _, seed := range seeds {
		seed.input.OwnerID = owner
		business, err := businessService.Create(ctx, seed.input)
		if err != nil {
			log.Error().Err(err).Str("name", seed.input.Name).Msg("failed to create business")
			continue
		}
		created++

		if _, err := businessService.SetHours(ctx, business.ID, seed.hours); err != nil {
			log.Error().Err(err).Str("business_id", business.ID).Msg("failed to set hours")
		}

		for _, rating := range seed.ratings {
			input := services.ReviewInput{AuthorID: uuid.NewString(), Rating: rating, Text: "Seeded review"}
			if _, err := reviewService.Create(ctx, business.ID, input); err != nil {
				log.Error().Err(err).Str("business_id", business.ID).Msg("failed to create review")
			}
		}
	}

	log.Info().Int("businesses", created).Msg("seeding completed")
}
