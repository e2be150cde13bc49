package controllers

import (
	"context"
	"net/http"

	"candle-shop/models"
)

// CartPricer prices a cart at current catalog prices
type CartPricer interface {
	Quote(ctx context.Context, lines []models.CartLine) (models.CartQuote, error)
}

// CartController prices carts held by the client. Checkout must declare the
// total returned here.
type CartController struct {
	Pricer CartPricer
}

// NewCartController creates a new CartController
func NewCartController(pricer CartPricer) *CartController {
	return &CartController{Pricer: pricer}
}

// QuoteCart prices the posted cart lines
func (cc *CartController) QuoteCart(w http.ResponseWriter, r *http.Request) {
	var cart struct {
		Items []models.CartLine `json:"items"`
	}
	if err := decodeJSON(w, r, &cart); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	quote, err := cc.Pricer.Quote(ctx, cart.Items)
	if err != nil {
		writeStoreError(w, r, err, "Product not found")
		return
	}
	writeJSON(w, quote)
}
