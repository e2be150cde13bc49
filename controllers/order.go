// controllers/order.go
package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"candle-shop/metrics"
	"candle-shop/middleware"
	"candle-shop/models"
	"candle-shop/store"

	"github.com/sirupsen/logrus"
)

const notifyTimeout = 15 * time.Second

// OrderStore is the order ledger as seen by the buyer facing handlers
type OrderStore interface {
	PlaceOrder(ctx context.Context, accountID int64, in models.PlaceOrderInput) (models.Order, error)
	ListOrders(ctx context.Context, accountID int64) ([]models.Order, error)
	GetOrder(ctx context.Context, accountID, orderID int64) (models.Order, error)
}

// AccountLookup resolves the contact details of an account
type AccountLookup interface {
	GetAccount(ctx context.Context, id int64) (models.User, error)
}

// OrderNotifier sends the order emails
type OrderNotifier interface {
	SendOrderConfirmationEmail(toEmail, name string, order models.Order) error
	SendStatusUpdateEmail(change models.StatusChange) error
}

// OrderController handles order-related requests
type OrderController struct {
	Orders   OrderStore
	Accounts AccountLookup
	Notifier OrderNotifier
}

// NewOrderController creates a new OrderController
func NewOrderController(orders OrderStore, accounts AccountLookup, notifier OrderNotifier) *OrderController {
	return &OrderController{Orders: orders, Accounts: accounts, Notifier: notifier}
}

// notify sends an email off the request path. Failures are only logged.
func notify(log logrus.FieldLogger, kind string, send func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		err := send(ctx)
		metrics.RecordEmail(kind, err)
		if err != nil {
			log.WithError(err).WithField("email", kind).Warn("failed to send email")
		}
	}()
}

// CreateOrder places an order from the posted cart snapshot
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	var input models.PlaceOrderInput
	if err := decodeJSON(w, r, &input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	log := middleware.Logger(r.Context()).WithField("account_id", id.AccountID)

	ctx, cancel := requestContext(r)
	defer cancel()
	order, err := oc.Orders.PlaceOrder(ctx, id.AccountID, input)
	if err != nil {
		if errors.Is(err, store.ErrInvalidInput) {
			metrics.RecordOrderPlaced("rejected")
		} else {
			metrics.RecordOrderPlaced("failed")
		}
		writeStoreError(w, r, err, "Order not found")
		return
	}
	metrics.RecordOrderPlaced("ok")

	log = log.WithField("order_id", order.ID)
	log.WithFields(logrus.Fields{
		"items": len(order.Items),
		"total": order.Total.StringFixed(2),
	}).Info("order placed")

	notify(log, "order_placed", func(ctx context.Context) error {
		user, err := oc.Accounts.GetAccount(ctx, order.UserID)
		if err != nil {
			return err
		}
		return oc.Notifier.SendOrderConfirmationEmail(user.Email, user.Name, order)
	})

	writeJSON(w, map[string]interface{}{
		"order_id": order.ID,
		"total":    order.Total,
		"status":   order.Status,
		"message":  "Order placed successfully",
	})
}

// GetOrders lists the caller's orders, newest first
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	orders, err := oc.Orders.ListOrders(ctx, id.AccountID)
	if err != nil {
		writeStoreError(w, r, err, "Orders not found")
		return
	}
	writeJSON(w, orders)
}

// GetOrder returns one of the caller's orders. Orders of other accounts are 404.
func (oc *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
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
	order, err := oc.Orders.GetOrder(ctx, id.AccountID, orderID)
	if err != nil {
		writeStoreError(w, r, err, "Order not found")
		return
	}
	writeJSON(w, order)
}
