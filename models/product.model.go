package models

import "github.com/shopspring/decimal"

// Product represents a catalog entry
type Product struct {
	ID          int64           `db:"id" json:"id"`
	Name        string          `db:"name" json:"name" validate:"required,max=200"`
	Description *string         `db:"description" json:"description,omitempty"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Image       *string         `db:"image" json:"image,omitempty"`
	Category    *string         `db:"category" json:"category,omitempty"`
	Rating      decimal.Decimal `db:"rating" json:"rating"`
}
