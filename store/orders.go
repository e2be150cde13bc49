package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"candle-shop/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, user_id, total, status, payment_method,
	shipping_name, shipping_address, shipping_city, shipping_zip, shipping_phone, created_at`

const itemColumns = `id, order_id, product_id, product_name, quantity, price`

const feedbackColumns = `id, order_id, user_id, rating, message, created_at`

// Orders is the order ledger. An order and its items are written in one
// transaction; readers never observe a header without its lines.
type Orders struct {
	db      *sqlx.DB
	catalog *Catalog
}

// NewOrders creates an order ledger pricing lines from catalog
func NewOrders(db *sqlx.DB, catalog *Catalog) *Orders {
	return &Orders{db: db, catalog: catalog}
}

func checkQuantity(i, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("%w: line %d: quantity must be at least 1", ErrInvalidInput, i+1)
	}
	if quantity > models.MaxLineQuantity {
		return fmt.Errorf("%w: line %d: quantity must be at most %d", ErrInvalidInput, i+1, models.MaxLineQuantity)
	}
	return nil
}

func validateCart(in models.PlaceOrderInput) error {
	if len(in.Items) == 0 {
		return fmt.Errorf("%w: cart is empty", ErrInvalidInput)
	}
	for i, line := range in.Items {
		if err := checkQuantity(i, line.Quantity); err != nil {
			return err
		}
		if line.Price.IsNegative() {
			return fmt.Errorf("%w: line %d: negative price", ErrInvalidInput, i+1)
		}
	}
	if in.Total.IsNegative() {
		return fmt.Errorf("%w: negative total", ErrInvalidInput)
	}
	return nil
}

func productIDs(lines []models.CartLine) []int64 {
	seen := make(map[int64]bool, len(lines))
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		if !seen[line.ProductID] {
			seen[line.ProductID] = true
			ids = append(ids, line.ProductID)
		}
	}
	return ids
}

// PlaceOrder records an order with status Pending and one item per cart
// line. Unit prices and product names are copied from the catalog inside the
// transaction; a cart whose prices or total disagree with the catalog is
// rejected. Either every row is committed or none is.
func (o *Orders) PlaceOrder(ctx context.Context, accountID int64, in models.PlaceOrderInput) (models.Order, error) {
	if err := validateCart(in); err != nil {
		return models.Order{}, err
	}

	order := models.Order{
		UserID:           accountID,
		Status:           models.StatusPending,
		PaymentMethod:    models.NormalizePaymentMethod(in.PaymentMethod),
		ShippingSnapshot: in.Shipping,
		Items:            make([]models.OrderItem, 0, len(in.Items)),
	}

	err := withTx(ctx, o.db, func(tx *sqlx.Tx) error {
		products, err := o.catalog.snapshot(ctx, tx, productIDs(in.Items), true)
		if err != nil {
			return err
		}

		total := decimal.Zero
		for i, line := range in.Items {
			p, ok := products[line.ProductID]
			if !ok {
				return fmt.Errorf("%w: line %d: product %d does not exist", ErrInvalidInput, i+1, line.ProductID)
			}
			if !line.Price.Equal(p.Price) {
				return fmt.Errorf("%w: line %d: price of %s changed to %s", ErrInvalidInput, i+1, p.Name, p.Price.StringFixed(2))
			}
			total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}
		if !in.Total.Equal(total) {
			return fmt.Errorf("%w: declared total %s does not match %s", ErrInvalidInput,
				in.Total.StringFixed(2), total.StringFixed(2))
		}
		order.Total = total

		err = tx.QueryRowxContext(ctx, `
			INSERT INTO orders (user_id, total, status, payment_method,
				shipping_name, shipping_address, shipping_city, shipping_zip, shipping_phone)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id, created_at
		`, order.UserID, order.Total, order.Status, order.PaymentMethod,
			order.Name, order.Address, order.City, order.Zip, order.Phone).Scan(&order.ID, &order.CreatedAt)
		if err != nil {
			return storageErr("insert order", err)
		}

		for _, line := range in.Items {
			p := products[line.ProductID]
			item := models.OrderItem{
				OrderID:     order.ID,
				ProductID:   line.ProductID,
				ProductName: p.Name,
				Quantity:    line.Quantity,
				Price:       p.Price,
			}
			err := tx.QueryRowxContext(ctx, `
				INSERT INTO order_items (order_id, product_id, product_name, quantity, price)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING id
			`, item.OrderID, item.ProductID, item.ProductName, item.Quantity, item.Price).Scan(&item.ID)
			if err != nil {
				return storageErr("insert order item", err)
			}
			order.Items = append(order.Items, item)
		}
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}
	return order, nil
}

// ListOrders returns the account's orders, newest first, with items and feedback
func (o *Orders) ListOrders(ctx context.Context, accountID int64) ([]models.Order, error) {
	orders := []models.Order{}
	err := o.db.SelectContext(ctx, &orders,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, accountID)
	if err != nil {
		return nil, storageErr("select orders", err)
	}
	if err := o.attach(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder returns one order owned by the account. Orders of other accounts
// are reported as ErrNotFound.
func (o *Orders) GetOrder(ctx context.Context, accountID, orderID int64) (models.Order, error) {
	var order models.Order
	err := o.db.GetContext(ctx, &order,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND user_id = $2`, orderID, accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Order{}, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	if err != nil {
		return models.Order{}, storageErr("select order", err)
	}
	orders := []models.Order{order}
	if err := o.attach(ctx, orders); err != nil {
		return models.Order{}, err
	}
	return orders[0], nil
}

// attach loads items and feedback for orders in two queries
func (o *Orders) attach(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		index[orders[i].ID] = i
		orders[i].Items = []models.OrderItem{}
		orders[i].Feedback = nil
	}

	var items []models.OrderItem
	err := o.db.SelectContext(ctx, &items,
		`SELECT `+itemColumns+` FROM order_items WHERE order_id = ANY($1) ORDER BY id`, pq.Array(ids))
	if err != nil {
		return storageErr("select order items", err)
	}
	for _, item := range items {
		i := index[item.OrderID]
		orders[i].Items = append(orders[i].Items, item)
	}

	var feedback []models.OrderFeedback
	err = o.db.SelectContext(ctx, &feedback,
		`SELECT `+feedbackColumns+` FROM order_feedbacks WHERE order_id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return storageErr("select order feedback", err)
	}
	for i := range feedback {
		orders[index[feedback[i].OrderID]].Feedback = &feedback[i]
	}
	return nil
}

// UpdateStatus overwrites the status of an order. Any status may follow any
// other. The returned bool is false when no such order exists.
func (o *Orders) UpdateStatus(ctx context.Context, orderID int64, status models.OrderStatus) (models.StatusChange, bool, error) {
	var change models.StatusChange
	err := o.db.GetContext(ctx, &change, `
		UPDATE orders o SET status = $1
		FROM users u
		WHERE o.id = $2 AND u.id = o.user_id
		RETURNING o.id, o.status, u.email, u.name
	`, status, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.StatusChange{}, false, nil
	}
	if err != nil {
		return models.StatusChange{}, false, storageErr("update order status", err)
	}
	return change, true, nil
}

// ListAllOrders returns every order, newest first, for the admin console
func (o *Orders) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	err := o.db.SelectContext(ctx, &orders, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, storageErr("select all orders", err)
	}
	if err := o.attach(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Stats returns revenue, order count and a per status breakdown
func (o *Orders) Stats(ctx context.Context) (models.OrderStats, error) {
	var totals struct {
		Revenue decimal.Decimal `db:"total_revenue"`
		Count   int             `db:"total_orders"`
	}
	err := o.db.GetContext(ctx, &totals,
		`SELECT COALESCE(SUM(total), 0) AS total_revenue, COUNT(*) AS total_orders FROM orders`)
	if err != nil {
		return models.OrderStats{}, storageErr("order totals", err)
	}

	breakdown := []models.StatusCount{}
	err = o.db.SelectContext(ctx, &breakdown,
		`SELECT status, COUNT(*) AS count FROM orders GROUP BY status ORDER BY status`)
	if err != nil {
		return models.OrderStats{}, storageErr("order status breakdown", err)
	}

	return models.OrderStats{
		TotalRevenue:    totals.Revenue,
		TotalOrders:     totals.Count,
		StatusBreakdown: breakdown,
	}, nil
}
