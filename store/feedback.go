package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"candle-shop/models"

	"github.com/jmoiron/sqlx"
)

// Feedback gates order feedback: delivered orders only, at most one per order
type Feedback struct {
	db *sqlx.DB
}

// NewFeedback creates the feedback gate on db
func NewFeedback(db *sqlx.DB) *Feedback {
	return &Feedback{db: db}
}

// Submit records feedback for an order the account placed. The order row is
// locked while its status is checked, and the insert only happens when no
// feedback row exists for the order (order_id is unique).
func (f *Feedback) Submit(ctx context.Context, accountID, orderID int64, rating int, message string) (models.OrderFeedback, error) {
	if rating < models.MinRating || rating > models.MaxRating {
		return models.OrderFeedback{}, fmt.Errorf("%w: rating must be between %d and %d",
			ErrInvalidInput, models.MinRating, models.MaxRating)
	}

	fb := models.OrderFeedback{
		OrderID: orderID,
		UserID:  accountID,
		Rating:  rating,
		Message: strings.TrimSpace(message),
	}

	err := withTx(ctx, f.db, func(tx *sqlx.Tx) error {
		var status models.OrderStatus
		err := tx.GetContext(ctx, &status,
			`SELECT status FROM orders WHERE id = $1 AND user_id = $2 FOR UPDATE`, orderID, accountID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		if err != nil {
			return storageErr("lock order", err)
		}
		if !status.AcceptsFeedback() {
			return fmt.Errorf("%w: feedback can only be submitted for delivered orders", ErrInvalidState)
		}

		err = tx.QueryRowxContext(ctx, `
			INSERT INTO order_feedbacks (order_id, user_id, rating, message)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (order_id) DO NOTHING
			RETURNING id, created_at
		`, fb.OrderID, fb.UserID, fb.Rating, fb.Message).Scan(&fb.ID, &fb.CreatedAt)
		if errors.Is(err, sql.ErrNoRows) || isUniqueViolation(err) {
			return fmt.Errorf("%w: feedback already submitted for this order", ErrConflict)
		}
		if err != nil {
			return storageErr("insert feedback", err)
		}
		return nil
	})
	if err != nil {
		return models.OrderFeedback{}, err
	}
	return fb, nil
}

// Get returns the feedback left on an owned order, or nil when there is none yet
func (f *Feedback) Get(ctx context.Context, accountID, orderID int64) (*models.OrderFeedback, error) {
	var owned bool
	err := f.db.GetContext(ctx, &owned,
		`SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1 AND user_id = $2)`, orderID, accountID)
	if err != nil {
		return nil, storageErr("check order owner", err)
	}
	if !owned {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}

	var fb models.OrderFeedback
	err = f.db.GetContext(ctx, &fb, `SELECT `+feedbackColumns+` FROM order_feedbacks WHERE order_id = $1`, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("select feedback", err)
	}
	return &fb, nil
}
