package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/typesense/typesense-go/v2/typesense"

	"github.com/bizfinder/discovery/internal/domain/entities"
	"github.com/bizfinder/discovery/internal/domain/repositories"
	tsclient "github.com/bizfinder/discovery/internal/infrastructure/clients/typesense"
	apperrors "github.com/bizfinder/discovery/pkg/errors"
)

// TypesenseAdapter keeps active businesses in a Typesense collection and
// answers discovery queries from it.
type TypesenseAdapter struct {
	client     *tsclient.Client
	collection string
}

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client, collection: tsclient.BusinessesCollection}
}

// InitSchema ensures the collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	return a.client.InitSchema(ctx)
}

// Index upserts a business document
func (a *TypesenseAdapter) Index(ctx context.Context, business *entities.Business) error {
	_, err := a.client.Client().Collection(a.collection).Documents().Upsert(ctx, BusinessDocument(business))
	if err != nil {
		return apperrors.NewExternalError(fmt.Sprintf("failed to index business %s", business.ID), err)
	}
	return nil
}

// Delete removes a business from the index. A missing document is not an error.
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(a.collection).Document(id).Delete(ctx)
	if err != nil {
		var httpErr *typesense.HTTPError
		if errors.As(err, &httpErr) && httpErr.Status == http.StatusNotFound {
			return nil
		}
		return apperrors.NewExternalError(fmt.Sprintf("failed to delete business %s from index", id), err)
	}
	return nil
}

// Query runs a translated discovery query against the collection
func (a *TypesenseAdapter) Query(ctx context.Context, q repositories.BusinessQuery) (*repositories.QueryResult, error) {
	params, window, err := RenderSearchParams(q)
	if errors.Is(err, ErrUnsupportedByEngine) {
		return nil, apperrors.NewExternalError("search engine cannot answer query", err)
	}
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	result, err := a.client.Client().Collection(a.collection).Documents().Search(ctx, params)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to search businesses", err)
	}

	total := 0
	if result.Found != nil {
		total = *result.Found
	}

	businesses := make([]*entities.Business, 0, q.Limit)
	if result.Hits != nil {
		for _, hit := range *result.Hits {
			if hit.Document == nil {
				continue
			}
			businesses = append(businesses, BusinessFromDocument(*hit.Document))
		}
	}

	return &repositories.QueryResult{Businesses: window.apply(businesses), Total: total}, nil
}
