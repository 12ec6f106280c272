package routes_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bizfinder/discovery/internal/api/handlers"
	"github.com/bizfinder/discovery/internal/api/routes"
)

func TestRouter_Health(t *testing.T) {
	router := routes.NewRouter(handlers.NewBusinessHandler(nil, nil), handlers.NewReviewHandler(nil), nil, nil, nil)
	handler := router.SetupRoutes()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestRouter_UnknownMethodAndPath(t *testing.T) {
	router := routes.NewRouter(handlers.NewBusinessHandler(nil, nil), handlers.NewReviewHandler(nil), nil, nil, nil)
	handler := router.SetupRoutes()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/businesses/b1", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
