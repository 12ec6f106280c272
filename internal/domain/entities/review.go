package entities

import "time"

// Review is a customer review of a business. Replies reference a parent review
// and carry no weight in the rating aggregate.
type Review struct {
	ID             string    `json:"id" db:"id"`
	BusinessID     string    `json:"business_id" db:"business_id"`
	AuthorID       string    `json:"author_id" db:"author_id"`
	Rating         float64   `json:"rating" db:"rating"`
	Text           string    `json:"text" db:"text"`
	ParentReviewID *string   `json:"parent_review_id,omitempty" db:"parent_review_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// IsReply reports whether the review answers another review.
func (r *Review) IsReply() bool {
	return r.ParentReviewID != nil && *r.ParentReviewID != ""
}

// RatingAggregate is the cached mean rating and review count of a business.
type RatingAggregate struct {
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
}
