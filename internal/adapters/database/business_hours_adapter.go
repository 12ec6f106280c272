package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/bizfinder/discovery/internal/domain/entities"
	"github.com/bizfinder/discovery/internal/infrastructure/clients/postgres"
	apperrors "github.com/bizfinder/discovery/pkg/errors"
)

const businessHoursTable = "business_hours"

var businessHoursColumns = []interface{}{
	"id", "business_id", "day", "open_time", "close_time", "is_closed", "created_at", "updated_at",
}

// BusinessHoursAdapter implements the BusinessHoursRepository interface
type BusinessHoursAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewBusinessHoursAdapter creates a new business hours adapter
func NewBusinessHoursAdapter(client *postgres.Client) *BusinessHoursAdapter {
	return &BusinessHoursAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// ReplaceForBusiness deletes the current schedule and inserts hours in one transaction
func (a *BusinessHoursAdapter) ReplaceForBusiness(ctx context.Context, businessID string, hours []*entities.BusinessHours) error {
	tx, err := a.client.DB().BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	deleteSQL, deleteArgs, err := a.db.Delete(businessHoursTable).
		Where(goqu.Ex{"business_id": businessID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}
	if _, err := tx.ExecContext(ctx, deleteSQL, deleteArgs...); err != nil {
		return apperrors.NewInternalError("failed to clear business hours", err)
	}

	if len(hours) > 0 {
		now := time.Now().UTC()
		rows := make([]interface{}, 0, len(hours))
		for _, h := range hours {
			if h.ID == "" {
				h.ID = uuid.NewString()
			}
			h.BusinessID = businessID
			if h.CreatedAt.IsZero() {
				h.CreatedAt = now
			}
			h.UpdatedAt = now
			rows = append(rows, goqu.Record{
				"id":          h.ID,
				"business_id": h.BusinessID,
				"day":         string(h.Day),
				"open_time":   nullString(h.OpenTime),
				"close_time":  nullString(h.CloseTime),
				"is_closed":   h.IsClosed,
				"created_at":  h.CreatedAt,
				"updated_at":  h.UpdatedAt,
			})
		}

		insertSQL, insertArgs, err := a.db.Insert(businessHoursTable).Rows(rows...).ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build insert query", err)
		}
		if _, err := tx.ExecContext(ctx, insertSQL, insertArgs...); err != nil {
			return apperrors.NewInternalError("failed to insert business hours", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit business hours", err)
	}
	return nil
}

// ListByBusiness returns the schedule records of one business
func (a *BusinessHoursAdapter) ListByBusiness(ctx context.Context, businessID string) ([]*entities.BusinessHours, error) {
	byBusiness, err := a.ListByBusinessIDs(ctx, []string{businessID})
	if err != nil {
		return nil, err
	}
	return byBusiness[businessID], nil
}

// ListByBusinessIDs returns schedule records keyed by business id
func (a *BusinessHoursAdapter) ListByBusinessIDs(ctx context.Context, businessIDs []string) (map[string][]*entities.BusinessHours, error) {
	result := make(map[string][]*entities.BusinessHours, len(businessIDs))
	if len(businessIDs) == 0 {
		return result, nil
	}

	query, args, err := a.db.Select(businessHoursColumns...).
		From(businessHoursTable).
		Where(goqu.Ex{"business_id": businessIDs}).
		Order(goqu.I("business_id").Asc(), goqu.I("day").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list business hours", err)
	}
	defer rows.Close()

	for rows.Next() {
		h := &entities.BusinessHours{}
		var day string
		var openTime, closeTime sql.NullString
		if err := rows.Scan(&h.ID, &h.BusinessID, &day, &openTime, &closeTime, &h.IsClosed, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, apperrors.NewInternalError("failed to scan business hours", err)
		}
		h.Day = entities.Weekday(day)
		h.OpenTime = openTime.String
		h.CloseTime = closeTime.String
		result[h.BusinessID] = append(result[h.BusinessID], h)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate business hours", err)
	}

	return result, nil
}
