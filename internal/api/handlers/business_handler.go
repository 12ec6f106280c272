package handlers

import (
	"context"
	"net/http"

	"github.com/bizfinder/discovery/internal/application/services"
	"github.com/bizfinder/discovery/internal/domain/entities"
)

// DiscoveryService lists and locates businesses
type DiscoveryService interface {
	ListBusinesses(ctx context.Context, criteria services.DiscoveryCriteria) (*services.DiscoveryResult, error)
	GetNearbyBusinesses(ctx context.Context, lat, lon, distanceKm float64, limit int) ([]services.NearbyBusiness, error)
}

// BusinessService manages business listings
type BusinessService interface {
	Create(ctx context.Context, input services.BusinessInput) (*entities.Business, error)
	GetByID(ctx context.Context, id string) (*entities.Business, error)
	Update(ctx context.Context, id string, patch services.BusinessPatch) (*entities.Business, error)
	SetHours(ctx context.Context, businessID string, hours []*entities.BusinessHours) ([]*entities.BusinessHours, error)
	GetHours(ctx context.Context, businessID string) ([]*entities.BusinessHours, error)
	Disable(ctx context.Context, id string) (*entities.Business, error)
}

// BusinessHandler handles business-related HTTP requests
type BusinessHandler struct {
	discovery  DiscoveryService
	businesses BusinessService
}

// NewBusinessHandler creates a new business handler
func NewBusinessHandler(discovery DiscoveryService, businesses BusinessService) *BusinessHandler {
	return &BusinessHandler{
		discovery:  discovery,
		businesses: businesses,
	}
}

// ListBusinesses handles GET /api/businesses
func (h *BusinessHandler) ListBusinesses(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseDiscoveryCriteria(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	result, err := h.discovery.ListBusinesses(r.Context(), criteria)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func parseDiscoveryCriteria(r *http.Request) (services.DiscoveryCriteria, error) {
	q := newQueryParams(r)

	criteria := services.DiscoveryCriteria{
		Category:      q.str("category"),
		Query:         q.str("query"),
		Location:      q.str("location"),
		Price:         q.str("price"),
		OpenNow:       q.boolean("openNow"),
		UserLatitude:  q.float("userLatitude"),
		UserLongitude: q.float("userLongitude"),
		MaxDistanceKm: q.float("maxDistanceKm"),
		SortBy:        q.str("sortBy"),
		SortDirection: q.str("sortDirection"),
		Limit:         q.integer("limit"),
		Offset:        q.integer("offset"),
		ExactTotal:    q.boolean("exactTotal"),
	}
	if q.err != nil {
		return services.DiscoveryCriteria{}, q.err
	}

	for _, raw := range q.list("features") {
		feature, err := services.ParseFeature(raw)
		if err != nil {
			return services.DiscoveryCriteria{}, err
		}
		criteria.Features = append(criteria.Features, feature)
	}
	return criteria, nil
}

// GetNearbyBusinesses handles GET /api/businesses/nearby
func (h *BusinessHandler) GetNearbyBusinesses(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	lat := q.float("lat")
	lon := q.float("lon")
	distanceKm := q.float("distanceKm")
	limit := q.integer("limit")
	if q.err != nil {
		respondWithAppError(w, r, q.err)
		return
	}
	if lat == nil || lon == nil {
		respondWithError(w, http.StatusBadRequest, "lat and lon are required")
		return
	}

	distance := 0.0
	if distanceKm != nil {
		distance = *distanceKm
	}

	nearby, err := h.discovery.GetNearbyBusinesses(r.Context(), *lat, *lon, distance, limit)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"businesses": nearby,
		"count":      len(nearby),
	})
}

// GetBusiness handles GET /api/businesses/{id}
func (h *BusinessHandler) GetBusiness(w http.ResponseWriter, r *http.Request) {
	business, err := h.businesses.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, business)
}

// CreateBusiness handles POST /api/businesses
func (h *BusinessHandler) CreateBusiness(w http.ResponseWriter, r *http.Request) {
	var input services.BusinessInput
	if err := decodeJSON(r, &input); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	business, err := h.businesses.Create(r.Context(), input)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, business)
}

// UpdateBusiness handles PATCH /api/businesses/{id}
func (h *BusinessHandler) UpdateBusiness(w http.ResponseWriter, r *http.Request) {
	var patch services.BusinessPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	business, err := h.businesses.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, business)
}

type hoursRequest struct {
	Hours []*entities.BusinessHours `json:"hours"`
}

// SetHours handles PUT /api/businesses/{id}/hours
func (h *BusinessHandler) SetHours(w http.ResponseWriter, r *http.Request) {
	var req hoursRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	hours, err := h.businesses.SetHours(r.Context(), r.PathValue("id"), req.Hours)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"hours": hours})
}

// GetHours handles GET /api/businesses/{id}/hours
func (h *BusinessHandler) GetHours(w http.ResponseWriter, r *http.Request) {
	hours, err := h.businesses.GetHours(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"hours": hours})
}

// DisableBusiness handles POST /api/businesses/{id}/disable
func (h *BusinessHandler) DisableBusiness(w http.ResponseWriter, r *http.Request) {
	business, err := h.businesses.Disable(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, business)
}
