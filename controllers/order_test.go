package controllers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"candle-shop/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cartBody = `{
	"items": [{"product_id": 1, "quantity": 1, "price": "45.00"}],
	"total": "45.00",
	"payment_method": "cod",
	"shipping": {"name": "Ann", "address": "1 Wax St", "city": "Lund", "zip": "22100", "phone": "555"}
}`

func placeOrder(t *testing.T, s *shop, account int64) int64 {
	t.Helper()
	rec := s.do("POST", "/orders", cartBody, account)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		OrderID int64 `json:"order_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotZero(t, body.OrderID)
	return body.OrderID
}

func TestCreateOrder(t *testing.T) {
	s := newShop(t)
	u := s.accounts.add(models.User{Name: "Ann", Email: "ann@shop.test"})

	id := placeOrder(t, s, u.ID)

	rec := s.do("GET", "/orders/"+itoa(id), "", u.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	var order models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, models.StatusPending, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "45.00", order.Items[0].Price.StringFixed(2))
	assert.Equal(t, "Lund", order.City)
	assert.Equal(t, "cod", order.PaymentMethod)

	require.Eventually(t, func() bool {
		placed, _ := s.notifier.counts()
		return placed == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, "ann@shop.test", s.notifier.placed[0])
}

func TestCreateOrderRejected(t *testing.T) {
	s := newShop(t)

	assert.Equal(t, http.StatusUnauthorized, s.do("POST", "/orders", cartBody, 0).Code)
	assert.Equal(t, http.StatusBadRequest, s.do("POST", "/orders", `{"items":`, 1).Code)

	rec := s.do("POST", "/orders", `{"items":[],"total":"0"}`, 1)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "cart is empty")
}

func TestCreateOrderStorageFailure(t *testing.T) {
	s := newShop(t)
	s.ledger.err = errDriver

	rec := s.do("POST", "/orders", cartBody, 1)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "order_id")
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestGetOrderOwnership(t *testing.T) {
	s := newShop(t)
	a := s.accounts.add(models.User{Name: "A", Email: "a@shop.test"})
	b := s.accounts.add(models.User{Name: "B", Email: "b@shop.test"})
	id := placeOrder(t, s, a.ID)

	rec := s.do("GET", "/orders/"+itoa(id), "", b.ID)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Amber")

	assert.Equal(t, http.StatusNotFound, s.do("GET", "/orders/999", "", a.ID).Code)
	assert.Equal(t, http.StatusBadRequest, s.do("GET", "/orders/abc", "", a.ID).Code)
}

func TestGetOrdersNewestFirst(t *testing.T) {
	s := newShop(t)
	a := s.accounts.add(models.User{Name: "A", Email: "a@shop.test"})
	first := placeOrder(t, s, a.ID)
	second := placeOrder(t, s, a.ID)
	placeOrder(t, s, 42)

	rec := s.do("GET", "/orders/mine", "", a.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	var orders []models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	require.Len(t, orders, 2)
	assert.Equal(t, second, orders[0].ID)
	assert.Equal(t, first, orders[1].ID)
}

func TestGetOrdersStorageFailure(t *testing.T) {
	s := newShop(t)
	s.ledger.err = errDriver
	assert.Equal(t, http.StatusInternalServerError, s.do("GET", "/orders/mine", "", 1).Code)
}
