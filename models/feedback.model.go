package models

import "time"

// Rating bounds accepted for order feedback
const (
	MinRating = 1
	MaxRating = 5
)

// OrderFeedback is the single review a customer may leave on a delivered order
type OrderFeedback struct {
	ID        int64     `db:"id" json:"id"`
	OrderID   int64     `db:"order_id" json:"order_id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Rating    int       `db:"rating" json:"rating"`
	Message   string    `db:"message" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"date"`
}
