package routes

import (
	"net/http"

	"github.com/bizfinder/discovery/internal/api/handlers"
	"github.com/bizfinder/discovery/internal/api/middleware"
	"github.com/bizfinder/discovery/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	businessHandler *handlers.BusinessHandler
	reviewHandler   *handlers.ReviewHandler

	cacheMiddleware *middleware.CacheMiddleware
	allowedOrigins  []string
	metrics         *observability.Metrics
}

// NewRouter creates a new router. cacheMiddleware may be nil.
func NewRouter(
	businessHandler *handlers.BusinessHandler,
	reviewHandler *handlers.ReviewHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		businessHandler: businessHandler,
		reviewHandler:   reviewHandler,
		cacheMiddleware: cacheMiddleware,
		allowedOrigins:  allowedOrigins,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Discovery
	r.mux.HandleFunc("GET /api/businesses", r.businessHandler.ListBusinesses)
	r.mux.HandleFunc("GET /api/businesses/nearby", r.businessHandler.GetNearbyBusinesses)

	// Business lifecycle
	r.mux.HandleFunc("POST /api/businesses", r.businessHandler.CreateBusiness)
	r.mux.HandleFunc("GET /api/businesses/{id}", r.businessHandler.GetBusiness)
	r.mux.HandleFunc("PATCH /api/businesses/{id}", r.businessHandler.UpdateBusiness)
	r.mux.HandleFunc("POST /api/businesses/{id}/disable", r.businessHandler.DisableBusiness)
	r.mux.HandleFunc("GET /api/businesses/{id}/hours", r.businessHandler.GetHours)
	r.mux.HandleFunc("PUT /api/businesses/{id}/hours", r.businessHandler.SetHours)

	// Reviews
	r.mux.HandleFunc("GET /api/businesses/{id}/reviews", r.reviewHandler.ListReviews)
	r.mux.HandleFunc("POST /api/businesses/{id}/reviews", r.reviewHandler.CreateReview)
	r.mux.HandleFunc("PATCH /api/reviews/{id}", r.reviewHandler.UpdateReview)
	r.mux.HandleFunc("DELETE /api/reviews/{id}", r.reviewHandler.DeleteReview)

	// Middleware is applied inside out; CORS wraps everything so cached
	// responses carry its headers too.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.ResponseOptimization(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
