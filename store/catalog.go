package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"candle-shop/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const productColumns = `id, name, description, price, image, category, rating`

// Catalog reads product records
type Catalog struct {
	db *sqlx.DB
}

// NewCatalog creates a catalog store on db
func NewCatalog(db *sqlx.DB) *Catalog {
	return &Catalog{db: db}
}

// ListProducts returns the whole catalog ordered by id
func (c *Catalog) ListProducts(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	if err := c.db.SelectContext(ctx, &products, `SELECT `+productColumns+` FROM products ORDER BY id`); err != nil {
		return nil, storageErr("select products", err)
	}
	return products, nil
}

// GetProduct loads one product
func (c *Catalog) GetProduct(ctx context.Context, id int64) (models.Product, error) {
	var product models.Product
	err := c.db.GetContext(ctx, &product, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	if err != nil {
		return models.Product{}, storageErr("select product", err)
	}
	return product, nil
}

func validateProduct(p models.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product name is required", ErrInvalidInput)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: negative price", ErrInvalidInput)
	}
	return nil
}

// CreateProduct adds a catalog entry
func (c *Catalog) CreateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	if err := validateProduct(p); err != nil {
		return models.Product{}, err
	}
	err := c.db.QueryRowxContext(ctx, `
		INSERT INTO products (name, description, price, image, category, rating)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, strings.TrimSpace(p.Name), p.Description, p.Price, p.Image, p.Category, p.Rating).Scan(&p.ID)
	if err != nil {
		return models.Product{}, storageErr("insert product", err)
	}
	p.Name = strings.TrimSpace(p.Name)
	return p, nil
}

// UpdateProduct replaces a catalog entry. Placed orders keep the name and
// price they were created with.
func (c *Catalog) UpdateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	if err := validateProduct(p); err != nil {
		return models.Product{}, err
	}
	p.Name = strings.TrimSpace(p.Name)
	res, err := c.db.ExecContext(ctx, `
		UPDATE products
		SET name = $1, description = $2, price = $3, image = $4, category = $5, rating = $6
		WHERE id = $7
	`, p.Name, p.Description, p.Price, p.Image, p.Category, p.Rating, p.ID)
	if err != nil {
		return models.Product{}, storageErr("update product", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return models.Product{}, storageErr("update product", err)
	} else if n == 0 {
		return models.Product{}, fmt.Errorf("%w: product %d", ErrNotFound, p.ID)
	}
	return p, nil
}

// DeleteProduct removes a catalog entry that no order references
func (c *Catalog) DeleteProduct(ctx context.Context, id int64) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: product %d is referenced by orders", ErrConflict, id)
	}
	if err != nil {
		return storageErr("delete product", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return storageErr("delete product", err)
	} else if n == 0 {
		return fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	return nil
}

type priceSnapshot struct {
	ID    int64           `db:"id"`
	Name  string          `db:"name"`
	Price decimal.Decimal `db:"price"`
}

// snapshot reads name and price for ids. With lock set the rows are share
// locked so prices cannot move until q's transaction ends.
func (c *Catalog) snapshot(ctx context.Context, q sqlx.QueryerContext, ids []int64, lock bool) (map[int64]models.Product, error) {
	query := `SELECT id, name, price FROM products WHERE id = ANY($1)`
	if lock {
		query += ` FOR SHARE`
	}
	var rows []priceSnapshot
	if err := sqlx.SelectContext(ctx, q, &rows, query, pq.Array(ids)); err != nil {
		return nil, storageErr("snapshot prices", err)
	}
	out := make(map[int64]models.Product, len(rows))
	for _, row := range rows {
		out[row.ID] = models.Product{ID: row.ID, Name: row.Name, Price: row.Price}
	}
	return out, nil
}

// Quote prices a cart at current catalog prices. The returned total is the
// one PlaceOrder expects to be declared.
func (c *Catalog) Quote(ctx context.Context, lines []models.CartLine) (models.CartQuote, error) {
	if len(lines) == 0 {
		return models.CartQuote{}, fmt.Errorf("%w: cart is empty", ErrInvalidInput)
	}
	for i, line := range lines {
		if err := checkQuantity(i, line.Quantity); err != nil {
			return models.CartQuote{}, err
		}
	}

	products, err := c.snapshot(ctx, c.db, productIDs(lines), false)
	if err != nil {
		return models.CartQuote{}, err
	}

	quote := models.CartQuote{Lines: make([]models.QuoteLine, 0, len(lines)), Total: decimal.Zero}
	for i, line := range lines {
		p, ok := products[line.ProductID]
		if !ok {
			return models.CartQuote{}, fmt.Errorf("%w: line %d: product %d does not exist", ErrInvalidInput, i+1, line.ProductID)
		}
		priced := models.CartLine{ProductID: line.ProductID, Quantity: line.Quantity, Price: p.Price}
		quote.Lines = append(quote.Lines, models.QuoteLine{
			CartLine: priced,
			Name:     p.Name,
			Subtotal: priced.Subtotal(),
		})
		quote.Total = quote.Total.Add(priced.Subtotal())
	}
	return quote, nil
}
