package models

import (
	"github.com/shopspring/decimal"
)

// MaxLineQuantity caps the quantity of a single cart line
const MaxLineQuantity = 10000

// CartLine is one line of the cart snapshot sent at checkout
type CartLine struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Subtotal returns price times quantity
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// PlaceOrderInput carries a checkout request: the cart snapshot, the
// declared total and the shipping details to copy onto the order.
type PlaceOrderInput struct {
	Items         []CartLine       `json:"items"`
	Total         decimal.Decimal  `json:"total"`
	PaymentMethod string           `json:"payment_method"`
	Shipping      ShippingSnapshot `json:"shipping"`
}

// QuoteLine is a cart line priced from the catalog
type QuoteLine struct {
	CartLine
	Name     string          `json:"name"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CartQuote is a cart priced at current catalog prices
type CartQuote struct {
	Lines []QuoteLine     `json:"lines"`
	Total decimal.Decimal `json:"total"`
}
