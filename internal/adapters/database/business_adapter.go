package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"

	"github.com/bizfinder/discovery/internal/domain/entities"
	"github.com/bizfinder/discovery/internal/domain/repositories"
	"github.com/bizfinder/discovery/internal/infrastructure/clients/postgres"
	apperrors "github.com/bizfinder/discovery/pkg/errors"
)

const businessesTable = "businesses"

var businessColumns = []interface{}{
	"id", "owner_id", "name", "about", "categories", "services",
	"address_line1", "address_line2", "city", "state", "country", "postal_code",
	"phone", "payment_options", "price_indicator", "max_price",
	"on_site_parking", "garage_parking", "wifi", "status", "coordinates",
	"rating", "review_count", "version", "created_at", "updated_at",
}

// BusinessAdapter implements the BusinessRepository interface
type BusinessAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewBusinessAdapter creates a new business adapter
func NewBusinessAdapter(client *postgres.Client) *BusinessAdapter {
	return &BusinessAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBusiness(row rowScanner) (*entities.Business, error) {
	b := &entities.Business{}
	var (
		about, line2, postalCode, phone, priceIndicator, coordinates sql.NullString
		maxPrice                                                     sql.NullFloat64
		paymentOptions                                               []string
		status                                                       string
	)

	err := row.Scan(
		&b.ID,
		&b.OwnerID,
		&b.Name,
		&about,
		pq.Array(&b.Categories),
		pq.Array(&b.Services),
		&b.Address.Line1,
		&line2,
		&b.Address.City,
		&b.Address.State,
		&b.Address.Country,
		&postalCode,
		&phone,
		pq.Array(&paymentOptions),
		&priceIndicator,
		&maxPrice,
		&b.OnSiteParking,
		&b.GarageParking,
		&b.Wifi,
		&status,
		&coordinates,
		&b.Rating,
		&b.ReviewCount,
		&b.Version,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.About = about.String
	b.Address.Line2 = line2.String
	b.Address.PostalCode = postalCode.String
	b.Phone = phone.String
	b.PriceIndicator = priceIndicator.String
	b.Status = entities.BusinessStatus(status)
	if maxPrice.Valid {
		v := maxPrice.Float64
		b.MaxPrice = &v
	}
	if coordinates.Valid {
		v := coordinates.String
		b.Coordinates = &v
	}
	b.PaymentOptions = make([]entities.PaymentOption, 0, len(paymentOptions))
	for _, p := range paymentOptions {
		b.PaymentOptions = append(b.PaymentOptions, entities.PaymentOption(p))
	}

	return b, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func paymentStrings(options []entities.PaymentOption) []string {
	out := make([]string, 0, len(options))
	for _, p := range options {
		out = append(out, string(p))
	}
	return out
}

// editableRecord holds the columns owners may change
func editableRecord(b *entities.Business) goqu.Record {
	return goqu.Record{
		"name":            b.Name,
		"about":           nullString(b.About),
		"categories":      pq.Array(b.Categories),
		"services":        pq.Array(b.Services),
		"address_line1":   b.Address.Line1,
		"address_line2":   nullString(b.Address.Line2),
		"city":            b.Address.City,
		"state":           b.Address.State,
		"country":         b.Address.Country,
		"postal_code":     nullString(b.Address.PostalCode),
		"phone":           nullString(b.Phone),
		"payment_options": pq.Array(paymentStrings(b.PaymentOptions)),
		"price_indicator": nullString(b.PriceIndicator),
		"max_price":       nullFloat(b.MaxPrice),
		"on_site_parking": b.OnSiteParking,
		"garage_parking":  b.GarageParking,
		"wifi":            b.Wifi,
		"status":          string(b.Status),
		"coordinates":     nullStringPtr(b.Coordinates),
	}
}

// Create creates a new business
func (a *BusinessAdapter) Create(ctx context.Context, business *entities.Business) error {
	record := editableRecord(business)
	record["id"] = business.ID
	record["owner_id"] = business.OwnerID
	record["rating"] = business.Rating
	record["review_count"] = business.ReviewCount
	record["version"] = business.Version
	record["created_at"] = business.CreatedAt
	record["updated_at"] = business.UpdatedAt

	query, args, err := a.db.Insert(businessesTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create business", err)
	}
	return nil
}

// GetByID retrieves a business by ID regardless of status
func (a *BusinessAdapter) GetByID(ctx context.Context, id string) (*entities.Business, error) {
	query, args, err := a.db.Select(businessColumns...).
		From(businessesTable).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	business, err := scanBusiness(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("business with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get business", err)
	}
	return business, nil
}

// Update writes owner-editable columns and bumps the version
func (a *BusinessAdapter) Update(ctx context.Context, business *entities.Business) error {
	business.UpdatedAt = time.Now().UTC()

	record := editableRecord(business)
	record["updated_at"] = business.UpdatedAt
	record["version"] = goqu.L("version + 1")

	query, args, err := a.db.Update(businessesTable).
		Set(record).
		Where(goqu.Ex{"id": business.ID}).
		Returning("version").
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	var version int64
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NewNotFoundError(fmt.Sprintf("business with id %s not found", business.ID))
	}
	if err != nil {
		return apperrors.NewInternalError("failed to update business", err)
	}

	business.Version = version
	return nil
}

// UpdateRatingAggregate writes the aggregate when the stored version still matches
func (a *BusinessAdapter) UpdateRatingAggregate(ctx context.Context, id string, aggregate entities.RatingAggregate, expectedVersion int64) error {
	query, args, err := a.db.Update(businessesTable).
		Set(goqu.Record{
			"rating":       aggregate.Rating,
			"review_count": aggregate.ReviewCount,
			"updated_at":   time.Now().UTC(),
			"version":      goqu.L("version + 1"),
		}).
		Where(goqu.Ex{"id": id, "version": expectedVersion}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update rating aggregate", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewConflictError(fmt.Sprintf("business %s changed since version %d", id, expectedVersion))
	}
	return nil
}

// Query returns a page of businesses matching q and the total before pagination
func (a *BusinessAdapter) Query(ctx context.Context, q repositories.BusinessQuery) (*repositories.QueryResult, error) {
	where, err := predicateExpressions(q.Predicates)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	order, err := orderExpressions(q.Sort)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	filtered := a.db.From(businessesTable).Where(where...)

	countSQL, countArgs, err := filtered.Select(goqu.COUNT("*")).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build count query", err)
	}

	var total int
	if err := a.client.DB().QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, apperrors.NewInternalError("failed to count businesses", err)
	}

	page := filtered.Select(businessColumns...).Order(order...)
	if q.Limit > 0 {
		page = page.Limit(uint(q.Limit))
	}
	if q.Offset > 0 {
		page = page.Offset(uint(q.Offset))
	}

	pageSQL, pageArgs, err := page.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build page query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, pageSQL, pageArgs...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query businesses", err)
	}
	defer rows.Close()

	businesses := make([]*entities.Business, 0, q.Limit)
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan business", err)
		}
		businesses = append(businesses, b)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate businesses", err)
	}

	return &repositories.QueryResult{Businesses: businesses, Total: total}, nil
}
