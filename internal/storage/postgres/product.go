package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront-api/internal/domain/product"
)

const (
	productColumns = `id, name, price, category`

	listProductsSQL = `SELECT ` + productColumns + ` FROM products ORDER BY id`

	listProductsByCategorySQL = `SELECT ` + productColumns + ` FROM products WHERE category = $1 ORDER BY id`

	getProductByIDSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	createProductSQL = `INSERT INTO products (name, price, category) VALUES ($1, $2, $3) RETURNING id`

	deleteProductSQL = `DELETE FROM products WHERE id = $1 RETURNING ` + productColumns

	orderProductsProductIDFkey = "order_products_product_id_fkey"
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns catalog products ordered by ID, optionally filtered by
// category.
func (r *ProductRepository) List(ctx context.Context, category string) ([]product.Product, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if category == "" {
		rows, err = r.pool.Query(ctx, listProductsSQL)
	} else {
		rows, err = r.pool.Query(ctx, listProductsByCategorySQL, category)
	}
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get product %d", id)
	}
	return collectProduct(rows, id)
}

// Create inserts p and stores the generated ID on it.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	if err := r.pool.QueryRow(ctx, createProductSQL, p.Name, p.Price, p.Category).Scan(&p.ID); err != nil {
		return errors.Wrapf(err, "create product %q", p.Name)
	}
	return nil
}

// Delete removes a product and returns it as it was.
func (r *ProductRepository) Delete(ctx context.Context, id int64) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, deleteProductSQL, id)
	if constraintViolation(err, codeForeignKeyViolation, orderProductsProductIDFkey) {
		return nil, product.ErrInUse
	}
	if err != nil {
		return nil, errors.Wrapf(err, "delete product %d", id)
	}
	return collectProduct(rows, id)
}

func collectProduct(rows pgx.Rows, id int64) (*product.Product, error) {
	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, product.ErrNotFound
	}
	if constraintViolation(err, codeForeignKeyViolation, orderProductsProductIDFkey) {
		return nil, product.ErrInUse
	}
	if err != nil {
		return nil, errors.Wrapf(err, "product %d", id)
	}
	return &p, nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Category)
	return p, err
}
