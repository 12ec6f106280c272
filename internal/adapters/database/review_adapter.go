package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/bizfinder/discovery/internal/domain/entities"
	"github.com/bizfinder/discovery/internal/domain/repositories"
	"github.com/bizfinder/discovery/internal/infrastructure/clients/postgres"
	apperrors "github.com/bizfinder/discovery/pkg/errors"
)

const reviewsTable = "reviews"

var reviewColumns = []interface{}{
	"id", "business_id", "author_id", "rating", "text", "parent_review_id", "created_at", "updated_at",
}

// ReviewAdapter implements the ReviewRepository interface
type ReviewAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewReviewAdapter creates a new review adapter
func NewReviewAdapter(client *postgres.Client) *ReviewAdapter {
	return &ReviewAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

func scanReview(row rowScanner) (*entities.Review, error) {
	r := &entities.Review{}
	var text, parentID sql.NullString
	if err := row.Scan(&r.ID, &r.BusinessID, &r.AuthorID, &r.Rating, &text, &parentID, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.Text = text.String
	if parentID.Valid {
		v := parentID.String
		r.ParentReviewID = &v
	}
	return r, nil
}

// Create creates a new review
func (a *ReviewAdapter) Create(ctx context.Context, review *entities.Review) error {
	query, args, err := a.db.Insert(reviewsTable).Rows(goqu.Record{
		"id":               review.ID,
		"business_id":      review.BusinessID,
		"author_id":        review.AuthorID,
		"rating":           review.Rating,
		"text":             nullString(review.Text),
		"parent_review_id": nullStringPtr(review.ParentReviewID),
		"created_at":       review.CreatedAt,
		"updated_at":       review.UpdatedAt,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create review", err)
	}
	return nil
}

// GetByID retrieves a review by ID
func (a *ReviewAdapter) GetByID(ctx context.Context, id string) (*entities.Review, error) {
	query, args, err := a.db.Select(reviewColumns...).
		From(reviewsTable).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	review, err := scanReview(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("review with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get review", err)
	}
	return review, nil
}

// Update writes rating and text
func (a *ReviewAdapter) Update(ctx context.Context, review *entities.Review) error {
	review.UpdatedAt = time.Now().UTC()

	query, args, err := a.db.Update(reviewsTable).
		Set(goqu.Record{
			"rating":     review.Rating,
			"text":       nullString(review.Text),
			"updated_at": review.UpdatedAt,
		}).
		Where(goqu.Ex{"id": review.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	return a.execAffectingOne(ctx, query, args, "update", review.ID)
}

// Delete removes a review and its replies
func (a *ReviewAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete(reviewsTable).
		Where(goqu.Or(
			goqu.Ex{"id": id},
			goqu.Ex{"parent_review_id": id},
		)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	return a.execAffectingOne(ctx, query, args, "delete", id)
}

func (a *ReviewAdapter) execAffectingOne(ctx context.Context, query string, args []interface{}, op, id string) error {
	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError(fmt.Sprintf("failed to %s review", op), err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("review with id %s not found", id))
	}
	return nil
}

// ListByBusiness lists reviews newest first. A zero limit returns every match.
func (a *ReviewAdapter) ListByBusiness(ctx context.Context, businessID string, filter repositories.ReviewFilter) ([]*entities.Review, error) {
	ds := a.db.Select(reviewColumns...).
		From(reviewsTable).
		Where(goqu.Ex{"business_id": businessID})

	if filter.TopLevelOnly {
		ds = ds.Where(goqu.Ex{"parent_review_id": nil})
	}

	ds = ds.Order(goqu.I("created_at").Desc(), goqu.I("id").Asc())

	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list reviews", err)
	}
	defer rows.Close()

	reviews := make([]*entities.Review, 0)
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan review", err)
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate reviews", err)
	}

	return reviews, nil
}
