package store

import (
	"context"

	"candle-shop/models"

	"github.com/jmoiron/sqlx"
)

// Reviews reads storefront testimonials
type Reviews struct {
	db *sqlx.DB
}

// NewReviews creates the review reader on db
func NewReviews(db *sqlx.DB) *Reviews {
	return &Reviews{db: db}
}

// Latest returns the newest limit reviews
func (r *Reviews) Latest(ctx context.Context, limit int) ([]models.Review, error) {
	reviews := []models.Review{}
	err := r.db.SelectContext(ctx, &reviews,
		`SELECT id, user_name, content, rating, created_at FROM reviews ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, storageErr("select reviews", err)
	}
	return reviews, nil
}
