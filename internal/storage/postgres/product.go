package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/solodko/storefront/internal/domain/product"
)

const (
	productColumns = `id, name, description, price, image, additional_images, category_id, in_stock, created_at, details`

	listProductsSQL = `SELECT ` + productColumns + `
		FROM products ORDER BY created_at DESC`

	listProductsByCategorySQL = `SELECT ` + productColumns + `
		FROM products WHERE category_id = $1 ORDER BY created_at DESC`

	getProductByIDSQL = `SELECT ` + productColumns + `
		FROM products WHERE id = $1`

	listProductIDsSQL = `SELECT id FROM products ORDER BY id`

	insertProductSQL = `INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	updateProductSQL = `UPDATE products
		SET name = $2, description = $3, price = $4, image = $5,
		    additional_images = $6, category_id = $7, in_stock = $8, details = $9
		WHERE id = $1`

	upsertProductSQL = insertProductSQL + `
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			image = EXCLUDED.image,
			additional_images = EXCLUDED.additional_images,
			category_id = EXCLUDED.category_id,
			in_stock = EXCLUDED.in_stock,
			details = EXCLUDED.details`

	deleteProductSQL = `DELETE FROM products WHERE id = $1`
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

// List returns all products ordered by creation time, newest first.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// ListByCategory returns products of one category, newest first.
func (r *ProductRepository) ListByCategory(ctx context.Context, categoryID string) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsByCategorySQL, categoryID)
	if err != nil {
		return nil, fmt.Errorf("listing products for category %q: %w", categoryID, err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &p, nil
}

// ListIDs returns the identifiers of all stored products.
func (r *ProductRepository) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, listProductIDsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing product ids: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	return r.exec(ctx, insertProductSQL, p, "creating")
}

// Update rewrites every mutable field of an existing product.
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	details, err := marshalDetails(p.Details)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, updateProductSQL,
		p.ID, p.Name, p.Description, p.Price, p.Image,
		p.AdditionalImages, p.CategoryID, p.InStock, details,
	)
	if err != nil {
		return fmt.Errorf("updating product %q: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// Upsert inserts the product or rewrites it when the id already exists.
func (r *ProductRepository) Upsert(ctx context.Context, p *product.Product) error {
	return r.exec(ctx, upsertProductSQL, p, "upserting")
}

// Delete removes a product row. Deleting an absent product is a no-op.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, deleteProductSQL, id); err != nil {
		return fmt.Errorf("deleting product %q: %w", id, err)
	}
	return nil
}

func (r *ProductRepository) exec(ctx context.Context, sql string, p *product.Product, verb string) error {
	details, err := marshalDetails(p.Details)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, sql,
		p.ID, p.Name, p.Description, p.Price, p.Image,
		p.AdditionalImages, p.CategoryID, p.InStock, p.CreatedAt, details,
	)
	if err != nil {
		return fmt.Errorf("%s product %q: %w", verb, p.ID, err)
	}
	return nil
}

func marshalDetails(d *product.Details) ([]byte, error) {
	if d == nil {
		return nil, nil
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshaling product details: %w", err)
	}
	return raw, nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var (
		p       product.Product
		price   decimal.Decimal
		details []byte
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &price, &p.Image,
		&p.AdditionalImages, &p.CategoryID, &p.InStock, &p.CreatedAt, &details,
	)
	if err != nil {
		return p, err
	}
	p.Price = price
	if len(details) > 0 {
		p.Details = &product.Details{}
		if err := json.Unmarshal(details, p.Details); err != nil {
			return p, fmt.Errorf("unmarshaling details for product %q: %w", p.ID, err)
		}
	}
	return p, nil
}

// isForeignKeyViolation reports whether err is a PostgreSQL foreign key
// constraint violation (SQLSTATE 23503).
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
