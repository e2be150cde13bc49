package controllers

import (
	"context"
	"net/http"

	"candle-shop/models"
)

const latestReviews = 3

// ReviewStore reads the storefront testimonials
type ReviewStore interface {
	Latest(ctx context.Context, limit int) ([]models.Review, error)
}

// ReviewController serves the storefront testimonials
type ReviewController struct {
	Reviews ReviewStore
}

// NewReviewController creates a new ReviewController
func NewReviewController(reviews ReviewStore) *ReviewController {
	return &ReviewController{Reviews: reviews}
}

// GetReviews returns the newest reviews
func (rc *ReviewController) GetReviews(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	reviews, err := rc.Reviews.Latest(ctx, latestReviews)
	if err != nil {
		writeStoreError(w, r, err, "Reviews not found")
		return
	}
	writeJSON(w, reviews)
}
