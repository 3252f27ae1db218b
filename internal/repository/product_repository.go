package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"inventory-orders/internal/database"
	"inventory-orders/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrProductInUse      = errors.New("product is referenced by existing orders")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// pgForeignKeyViolation is the SQLSTATE raised when a referenced row is deleted
const pgForeignKeyViolation = "23503"

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, fields domain.ProductFields) (*domain.Product, error)
	Update(ctx context.Context, id int64, fields domain.ProductFields) (*domain.Product, error)
	Delete(ctx context.Context, id int64) (*domain.Product, error)
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, offset, limit int) ([]*domain.Product, error)
	DecrementStock(ctx context.Context, id int64, quantity int) (remaining int, err error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

func scanProduct(row interface{ Scan(...interface{}) error }) (*domain.Product, error) {
	product := &domain.Product{}
	var description sql.NullString
	err := row.Scan(
		&product.ID,
		&product.Name,
		&description,
		&product.Price,
		&product.Quantity,
	)
	if err != nil {
		return nil, err
	}
	if description.Valid {
		product.Description = &description.String
	}
	return product, nil
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// Create inserts a new product and returns it with its generated id
func (r *productRepository) Create(ctx context.Context, fields domain.ProductFields) (*domain.Product, error) {
	query := `
		INSERT INTO products (name, description, price, quantity)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, description, price, quantity
	`

	product, err := scanProduct(database.Conn(ctx, r.db).QueryRowContext(
		ctx,
		query,
		fields.Name,
		nullableString(fields.Description),
		fields.Price,
		fields.Quantity,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// Update replaces every writable field of an existing product
func (r *productRepository) Update(ctx context.Context, id int64, fields domain.ProductFields) (*domain.Product, error) {
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, quantity = $5
		WHERE id = $1
		RETURNING id, name, description, price, quantity
	`

	product, err := scanProduct(database.Conn(ctx, r.db).QueryRowContext(
		ctx,
		query,
		id,
		fields.Name,
		nullableString(fields.Description),
		fields.Price,
		fields.Quantity,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}

// Delete removes a product and returns the removed row
func (r *productRepository) Delete(ctx context.Context, id int64) (*domain.Product, error) {
	query := `
		DELETE FROM products
		WHERE id = $1
		RETURNING id, name, description, price, quantity
	`

	product, err := scanProduct(database.Conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return nil, ErrProductInUse
		}
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}

	return product, nil
}

// FindByID retrieves a product by ID
func (r *productRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `
		SELECT id, name, description, price, quantity
		FROM products
		WHERE id = $1
	`

	product, err := scanProduct(database.Conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// List retrieves a page of products ordered by id
func (r *productRepository) List(ctx context.Context, offset, limit int) ([]*domain.Product, error) {
	query := `
		SELECT id, name, description, price, quantity
		FROM products
		ORDER BY id ASC
		LIMIT $1 OFFSET $2
	`

	rows, err := database.Conn(ctx, r.db).QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// DecrementStock subtracts quantity from a product's stock only when enough
// is available. The conditional update locks the row until the surrounding
// transaction ends, so concurrent decrements cannot overdraw the stock.
func (r *productRepository) DecrementStock(ctx context.Context, id int64, quantity int) (int, error) {
	query := `
		UPDATE products
		SET quantity = quantity - $2
		WHERE id = $1 AND quantity >= $2
		RETURNING quantity
	`

	var remaining int
	err := database.Conn(ctx, r.db).QueryRowContext(ctx, query, id, quantity).Scan(&remaining)
	if err == nil {
		return remaining, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to decrement stock: %w", err)
	}

	// Nothing updated: either the product is gone or stock is short.
	product, err := r.FindByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return product.Quantity, ErrInsufficientStock
}
