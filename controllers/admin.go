package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"candle-shop/metrics"
	"candle-shop/middleware"
	"candle-shop/models"

	"github.com/sirupsen/logrus"
)

// AdminOrderStore is the order ledger as seen by the admin console
type AdminOrderStore interface {
	UpdateStatus(ctx context.Context, orderID int64, status models.OrderStatus) (models.StatusChange, bool, error)
	ListAllOrders(ctx context.Context) ([]models.Order, error)
	Stats(ctx context.Context) (models.OrderStats, error)
}

// AdminController handles the admin order console
type AdminController struct {
	Orders   AdminOrderStore
	Notifier OrderNotifier
}

// NewAdminController creates a new AdminController
func NewAdminController(orders AdminOrderStore, notifier OrderNotifier) *AdminController {
	return &AdminController{Orders: orders, Notifier: notifier}
}

// GetAllOrders lists every order, newest first
func (ac *AdminController) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	orders, err := ac.Orders.ListAllOrders(ctx)
	if err != nil {
		writeStoreError(w, r, err, "Orders not found")
		return
	}
	writeJSON(w, orders)
}

// GetStats returns revenue, order count and the per status breakdown
func (ac *AdminController) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	stats, err := ac.Orders.Stats(ctx)
	if err != nil {
		writeStoreError(w, r, err, "Stats not found")
		return
	}
	writeJSON(w, stats)
}

// decodeStatus accepts either a bare JSON string or {"status": "..."}
func decodeStatus(w http.ResponseWriter, r *http.Request) (string, error) {
	var raw json.RawMessage
	if err := decodeJSON(w, r, &raw); err != nil {
		return "", err
	}
	var status string
	if err := json.Unmarshal(raw, &status); err == nil {
		return status, nil
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", err
	}
	return body.Status, nil
}

// UpdateOrderStatus overwrites an order's status and emails the buyer
func (ac *AdminController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid order ID", http.StatusBadRequest)
		return
	}
	raw, err := decodeStatus(w, r)
	if err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	status, err := models.ParseOrderStatus(raw)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	change, found, err := ac.Orders.UpdateStatus(ctx, orderID, status)
	if err != nil {
		writeStoreError(w, r, err, "Order not found")
		return
	}
	if !found {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}
	metrics.RecordStatusUpdate(string(change.Status))

	log := middleware.Logger(r.Context()).WithFields(logrus.Fields{
		"order_id": change.OrderID,
		"status":   change.Status,
	})
	log.Info("order status updated")

	notify(log, "status_update", func(context.Context) error {
		return ac.Notifier.SendStatusUpdateEmail(change)
	})

	writeJSON(w, map[string]interface{}{
		"id":     change.OrderID,
		"status": change.Status,
	})
}
