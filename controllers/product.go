package controllers

import (
	"context"
	"errors"
	"net/http"

	"candle-shop/middleware"
	"candle-shop/models"
	"candle-shop/store"
)

// ProductStore is the catalog persistence behind the product handlers
type ProductStore interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id int64) (models.Product, error)
	CreateProduct(ctx context.Context, p models.Product) (models.Product, error)
	UpdateProduct(ctx context.Context, p models.Product) (models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// ProductController handles product-related requests
type ProductController struct {
	Products ProductStore
}

// NewProductController creates a new ProductController
func NewProductController(products ProductStore) *ProductController {
	return &ProductController{Products: products}
}

// CreateProduct handles adding a new product (Admin only)
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := decodeJSON(w, r, &product); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(product); err != nil {
		http.Error(w, validationMessage(err), http.StatusBadRequest)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	created, err := pc.Products.CreateProduct(ctx, product)
	if err != nil {
		writeStoreError(w, r, err, "Product not found")
		return
	}

	middleware.Logger(r.Context()).WithField("product_id", created.ID).Info("product created")
	writeJSONStatus(w, http.StatusCreated, created)
}

// GetProducts retrieves all products
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	products, err := pc.Products.ListProducts(ctx)
	if err != nil {
		writeStoreError(w, r, err, "Products not found")
		return
	}
	writeJSON(w, products)
}

// GetProductByID retrieves a single product
func (pc *ProductController) GetProductByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	product, err := pc.Products.GetProduct(ctx, id)
	if err != nil {
		writeStoreError(w, r, err, "Product not found")
		return
	}
	writeJSON(w, product)
}

// UpdateProduct replaces a product (Admin only)
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	var product models.Product
	if err := decodeJSON(w, r, &product); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(product); err != nil {
		http.Error(w, validationMessage(err), http.StatusBadRequest)
		return
	}
	product.ID = id

	ctx, cancel := requestContext(r)
	defer cancel()
	updated, err := pc.Products.UpdateProduct(ctx, product)
	if err != nil {
		writeStoreError(w, r, err, "Product not found")
		return
	}
	writeJSON(w, updated)
}

// DeleteProduct removes a product (Admin only)
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	err := pc.Products.DeleteProduct(ctx, id)
	if errors.Is(err, store.ErrConflict) {
		http.Error(w, clientMessage(err), http.StatusConflict)
		return
	}
	if err != nil {
		writeStoreError(w, r, err, "Product not found")
		return
	}

	middleware.Logger(r.Context()).WithField("product_id", id).Info("product deleted")
	writeJSON(w, "Product deleted successfully")
}
