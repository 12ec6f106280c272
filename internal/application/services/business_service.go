package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/bizfinder/discovery/internal/domain/entities"
	"github.com/bizfinder/discovery/internal/domain/providers"
	"github.com/bizfinder/discovery/internal/domain/repositories"
	"github.com/bizfinder/discovery/internal/infrastructure/observability"
	apperrors "github.com/bizfinder/discovery/pkg/errors"
)

// BusinessInput carries the owner-editable fields of a new business
type BusinessInput struct {
	OwnerID        string                   `json:"owner_id"`
	Name           string                   `json:"name"`
	About          string                   `json:"about"`
	Categories     []string                 `json:"categories"`
	Services       []string                 `json:"services"`
	Address        entities.Address         `json:"address"`
	Phone          string                   `json:"phone"`
	PaymentOptions []entities.PaymentOption `json:"payment_options"`
	PriceIndicator string                   `json:"price_indicator"`
	OnSiteParking  bool                     `json:"on_site_parking"`
	GarageParking  bool                     `json:"garage_parking"`
	Wifi           bool                     `json:"wifi"`
}

// BusinessPatch is a partial update. Nil fields are left unchanged.
type BusinessPatch struct {
	Name           *string                  `json:"name,omitempty"`
	About          *string                  `json:"about,omitempty"`
	Categories     []string                 `json:"categories,omitempty"`
	Services       []string                 `json:"services,omitempty"`
	Address        *entities.Address        `json:"address,omitempty"`
	Phone          *string                  `json:"phone,omitempty"`
	PaymentOptions []entities.PaymentOption `json:"payment_options,omitempty"`
	PriceIndicator *string                  `json:"price_indicator,omitempty"`
	OnSiteParking  *bool                    `json:"on_site_parking,omitempty"`
	GarageParking  *bool                    `json:"garage_parking,omitempty"`
	Wifi           *bool                    `json:"wifi,omitempty"`
}

// BusinessService handles the lifecycle of business listings
type BusinessService struct {
	repo        repositories.BusinessRepository
	hoursRepo   repositories.BusinessHoursRepository
	geocoder    providers.GeolocationProvider
	eventBus    providers.EventBus
	metrics     *observability.Metrics
	phoneRegion string
	now         func() time.Time
}

// NewBusinessService creates a new business service. geocoder and eventBus may be nil.
func NewBusinessService(
	repo repositories.BusinessRepository,
	hoursRepo repositories.BusinessHoursRepository,
	geocoder providers.GeolocationProvider,
	eventBus providers.EventBus,
	metrics *observability.Metrics,
) *BusinessService {
	return &BusinessService{
		repo:        repo,
		hoursRepo:   hoursRepo,
		geocoder:    geocoder,
		eventBus:    eventBus,
		metrics:     metrics,
		phoneRegion: DefaultPhoneRegion,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithPhoneRegion sets the region used for numbers without a country code
func (s *BusinessService) WithPhoneRegion(region string) *BusinessService {
	s.phoneRegion = region
	return s
}

// Create registers a new active business. Geocoding is attempted once and its
// failure leaves the business without coordinates.
func (s *BusinessService) Create(ctx context.Context, input BusinessInput) (*entities.Business, error) {
	ctx, span := observability.StartSpan(ctx, "BusinessService.Create")
	defer span.End()

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required")
	}
	if err := validatePaymentOptions(input.PaymentOptions); err != nil {
		return nil, err
	}

	phone, err := NormalizePhone(input.Phone, s.phoneRegion)
	if err != nil {
		return nil, validationError(err)
	}
	maxPrice, err := priceCeilingOf(input.PriceIndicator)
	if err != nil {
		return nil, err
	}

	now := s.now()
	business := &entities.Business{
		ID:             uuid.NewString(),
		OwnerID:        input.OwnerID,
		Name:           name,
		About:          strings.TrimSpace(input.About),
		Categories:     cleanList(input.Categories),
		Services:       cleanList(input.Services),
		Address:        input.Address,
		Phone:          phone,
		PaymentOptions: input.PaymentOptions,
		PriceIndicator: strings.TrimSpace(input.PriceIndicator),
		MaxPrice:       maxPrice,
		OnSiteParking:  input.OnSiteParking,
		GarageParking:  input.GarageParking,
		Wifi:           input.Wifi,
		Status:         entities.BusinessStatusActive,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.geocode(ctx, business)

	if err := s.repo.Create(ctx, business); err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	observability.SetSpanAttributes(span, attribute.String("business.id", business.ID))

	s.publish(ctx, business.ID, entities.BusinessEventCreated, nil)
	return business, nil
}

// GetByID retrieves a business by ID
func (s *BusinessService) GetByID(ctx context.Context, id string) (*entities.Business, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies a partial patch. A changed address is geocoded again.
func (s *BusinessService) Update(ctx context.Context, id string, patch BusinessPatch) (*entities.Business, error) {
	ctx, span := observability.StartSpan(ctx, "BusinessService.Update")
	defer span.End()

	business, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changed := map[string]interface{}{}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name must not be empty")
		}
		business.Name = name
		changed["name"] = name
	}
	if patch.About != nil {
		business.About = strings.TrimSpace(*patch.About)
		changed["about"] = business.About
	}
	if patch.Categories != nil {
		business.Categories = cleanList(patch.Categories)
		changed["categories"] = business.Categories
	}
	if patch.Services != nil {
		business.Services = cleanList(patch.Services)
		changed["services"] = business.Services
	}
	if patch.Phone != nil {
		phone, err := NormalizePhone(*patch.Phone, s.phoneRegion)
		if err != nil {
			return nil, validationError(err)
		}
		business.Phone = phone
		changed["phone"] = phone
	}
	if patch.PaymentOptions != nil {
		if err := validatePaymentOptions(patch.PaymentOptions); err != nil {
			return nil, err
		}
		business.PaymentOptions = patch.PaymentOptions
		changed["payment_options"] = patch.PaymentOptions
	}
	if patch.PriceIndicator != nil {
		maxPrice, err := priceCeilingOf(*patch.PriceIndicator)
		if err != nil {
			return nil, err
		}
		business.PriceIndicator = strings.TrimSpace(*patch.PriceIndicator)
		business.MaxPrice = maxPrice
		changed["price_indicator"] = business.PriceIndicator
	}
	if patch.OnSiteParking != nil {
		business.OnSiteParking = *patch.OnSiteParking
		changed["on_site_parking"] = business.OnSiteParking
	}
	if patch.GarageParking != nil {
		business.GarageParking = *patch.GarageParking
		changed["garage_parking"] = business.GarageParking
	}
	if patch.Wifi != nil {
		business.Wifi = *patch.Wifi
		changed["wifi"] = business.Wifi
	}
	if patch.Address != nil && *patch.Address != business.Address {
		business.Address = *patch.Address
		business.Coordinates = nil
		s.geocode(ctx, business)
		changed["address"] = business.Address.FullText()
	}

	if len(changed) == 0 {
		return business, nil
	}

	business.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, business); err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	s.publish(ctx, business.ID, entities.BusinessEventUpdated, changed)
	return business, nil
}

// SetHours replaces the weekly schedule of a business
func (s *BusinessService) SetHours(ctx context.Context, businessID string, hours []*entities.BusinessHours) ([]*entities.BusinessHours, error) {
	if _, err := s.repo.GetByID(ctx, businessID); err != nil {
		return nil, err
	}

	seen := make(map[entities.Weekday]bool, len(hours))
	normalized := make([]*entities.BusinessHours, 0, len(hours))
	for _, h := range hours {
		if h == nil {
			continue
		}
		day, err := entities.ParseWeekday(string(h.Day))
		if err != nil {
			return nil, validationError(err)
		}
		if seen[day] {
			return nil, apperrors.NewValidationErrorf("duplicate hours for %s", day)
		}
		seen[day] = true

		record := &entities.BusinessHours{BusinessID: businessID, Day: day, IsClosed: h.IsClosed}
		if !h.IsClosed {
			if _, err := ParseClock(h.OpenTime); err != nil {
				return nil, apperrors.NewValidationErrorf("%s open time: %v", day, err)
			}
			if _, err := ParseClock(h.CloseTime); err != nil {
				return nil, apperrors.NewValidationErrorf("%s close time: %v", day, err)
			}
			record.OpenTime = strings.TrimSpace(h.OpenTime)
			record.CloseTime = strings.TrimSpace(h.CloseTime)
		}
		normalized = append(normalized, record)
	}

	if err := s.hoursRepo.ReplaceForBusiness(ctx, businessID, normalized); err != nil {
		return nil, err
	}

	s.publish(ctx, businessID, entities.BusinessEventHoursUpdated, map[string]interface{}{"days": len(normalized)})
	return normalized, nil
}

// GetHours returns the weekly schedule of a business
func (s *BusinessService) GetHours(ctx context.Context, businessID string) ([]*entities.BusinessHours, error) {
	if _, err := s.repo.GetByID(ctx, businessID); err != nil {
		return nil, err
	}
	return s.hoursRepo.ListByBusiness(ctx, businessID)
}

// Disable hides a business from discovery. Businesses are never hard-deleted.
func (s *BusinessService) Disable(ctx context.Context, id string) (*entities.Business, error) {
	business, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if business.Status == entities.BusinessStatusDisabled {
		return business, nil
	}

	business.Status = entities.BusinessStatusDisabled
	business.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, business); err != nil {
		return nil, err
	}

	s.publish(ctx, id, entities.BusinessEventDisabled, map[string]interface{}{"status": string(business.Status)})
	return business, nil
}

// geocode stores the first geocoder result on business. Any failure is logged
// and leaves the coordinates empty.
func (s *BusinessService) geocode(ctx context.Context, business *entities.Business) {
	if s.geocoder == nil {
		return
	}
	address := business.Address.FullText()
	if address == "" {
		return
	}

	logger := observability.LoggerFromContext(ctx)
	results, err := s.geocoder.Lookup(ctx, address)
	switch {
	case err != nil:
		observability.RecordGeocodeFailure(ctx, s.metrics, "error")
		logger.Warn().Err(err).Str("business_id", business.ID).Str("address", address).Msg("geocoding failed, saving without coordinates")
		return
	case len(results) == 0:
		observability.RecordGeocodeFailure(ctx, s.metrics, "zero_results")
		logger.Warn().Str("business_id", business.ID).Str("address", address).Msg("address not found by geocoder, saving without coordinates")
		return
	}

	if err := results[0].Validate(); err != nil {
		observability.RecordGeocodeFailure(ctx, s.metrics, "invalid")
		logger.Warn().Err(err).Str("business_id", business.ID).Msg("geocoder returned invalid coordinates")
		return
	}
	business.SetLocation(results[0])
}

func (s *BusinessService) publish(ctx context.Context, businessID string, eventType entities.BusinessEventType, changed map[string]interface{}) {
	if s.eventBus == nil {
		return
	}
	event := entities.NewBusinessEvent(businessID, eventType, changed)
	if err := s.eventBus.Publish(ctx, providers.EventChannelBusinessUpdates, event); err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Str("business_id", businessID).
			Str("event_type", string(eventType)).
			Msg("failed to publish business event")
	}
}

func validatePaymentOptions(options []entities.PaymentOption) error {
	for _, o := range options {
		if !o.Valid() {
			return apperrors.NewValidationErrorf("unknown payment option %q", o)
		}
	}
	return nil
}

func priceCeilingOf(indicator string) (*float64, error) {
	if strings.TrimSpace(indicator) == "" {
		return nil, nil
	}
	ceiling, err := ParsePriceCeiling(indicator)
	if err != nil {
		return nil, validationError(err)
	}
	return &ceiling, nil
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
