package controllers

import (
	"context"
	"errors"
	"net/http"

	"candle-shop/metrics"
	"candle-shop/middleware"
	"candle-shop/models"
	"candle-shop/store"

	"github.com/sirupsen/logrus"
)

// FeedbackStore is the feedback gate the feedback handlers need
type FeedbackStore interface {
	Submit(ctx context.Context, accountID, orderID int64, rating int, message string) (models.OrderFeedback, error)
	Get(ctx context.Context, accountID, orderID int64) (*models.OrderFeedback, error)
}

// FeedbackController handles feedback on delivered orders
type FeedbackController struct {
	Feedback FeedbackStore
}

// NewFeedbackController creates a new FeedbackController
func NewFeedbackController(feedback FeedbackStore) *FeedbackController {
	return &FeedbackController{Feedback: feedback}
}

func feedbackResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, store.ErrNotFound):
		return "not_found"
	case errors.Is(err, store.ErrInvalidState):
		return "not_delivered"
	case errors.Is(err, store.ErrConflict):
		return "duplicate"
	case errors.Is(err, store.ErrInvalidInput):
		return "invalid"
	default:
		return "failed"
	}
}

// SubmitFeedback records the caller's single feedback for a delivered order
func (fc *FeedbackController) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	orderID, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid order ID", http.StatusBadRequest)
		return
	}

	var input struct {
		Rating  int    `json:"rating"`
		Message string `json:"message"`
	}
	if err := decodeJSON(w, r, &input); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	fb, err := fc.Feedback.Submit(ctx, id.AccountID, orderID, input.Rating, input.Message)
	metrics.RecordFeedback(feedbackResult(err))
	if err != nil {
		writeStoreError(w, r, err, "Order not found or access denied.")
		return
	}

	middleware.Logger(r.Context()).WithFields(logrus.Fields{
		"account_id": id.AccountID,
		"order_id":   orderID,
		"rating":     fb.Rating,
	}).Info("feedback submitted")
	writeJSON(w, fb)
}

// GetFeedback returns the feedback on an owned order, or null when none was left
func (fc *FeedbackController) GetFeedback(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	orderID, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid order ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	fb, err := fc.Feedback.Get(ctx, id.AccountID, orderID)
	if err != nil {
		writeStoreError(w, r, err, "Order not found.")
		return
	}
	writeJSON(w, fb)
}
