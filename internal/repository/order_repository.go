package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"inventory-orders/internal/database"
	"inventory-orders/internal/domain"
)

var (
	ErrOrderNotFound = errors.New("order not found")
)

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	Create(ctx context.Context, status domain.OrderStatus) (*domain.Order, error)
	CreateItem(ctx context.Context, orderID int64, item domain.ItemRequest) (*domain.OrderItem, error)
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context, offset, limit int) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create inserts an order header. Items are added with CreateItem.
func (r *orderRepository) Create(ctx context.Context, status domain.OrderStatus) (*domain.Order, error) {
	query := `
		INSERT INTO orders (status)
		VALUES ($1)
		RETURNING id, created_at, status
	`

	order := &domain.Order{Items: []domain.OrderItem{}}
	err := database.Conn(ctx, r.db).QueryRowContext(ctx, query, string(status)).Scan(
		&order.ID,
		&order.CreatedAt,
		&order.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	return order, nil
}

// CreateItem inserts one line of an order
func (r *orderRepository) CreateItem(ctx context.Context, orderID int64, item domain.ItemRequest) (*domain.OrderItem, error) {
	query := `
		INSERT INTO order_items (order_id, product_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id, order_id, product_id, quantity
	`

	orderItem := &domain.OrderItem{}
	err := database.Conn(ctx, r.db).QueryRowContext(ctx, query, orderID, item.ProductID, item.Quantity).Scan(
		&orderItem.ID,
		&orderItem.OrderID,
		&orderItem.ProductID,
		&orderItem.Quantity,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create order item: %w", err)
	}

	return orderItem, nil
}

// FindByID retrieves an order together with its items
func (r *orderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `
		SELECT id, created_at, status
		FROM orders
		WHERE id = $1
	`

	order := &domain.Order{}
	err := database.Conn(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.CreatedAt,
		&order.Status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}

	if err := r.attachItems(ctx, []*domain.Order{order}); err != nil {
		return nil, err
	}

	return order, nil
}

// List retrieves a page of orders ordered by id, each with its items.
// Items for the whole page are fetched in a single query.
func (r *orderRepository) List(ctx context.Context, offset, limit int) ([]*domain.Order, error) {
	query := `
		SELECT id, created_at, status
		FROM orders
		ORDER BY id ASC
		LIMIT $1 OFFSET $2
	`

	rows, err := database.Conn(ctx, r.db).QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order := &domain.Order{}
		if err := rows.Scan(&order.ID, &order.CreatedAt, &order.Status); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepository) attachItems(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int64, len(orders))
	byID := make(map[int64]*domain.Order, len(orders))
	for i, order := range orders {
		order.Items = []domain.OrderItem{}
		ids[i] = order.ID
		byID[order.ID] = order
	}

	query := `
		SELECT id, order_id, product_id, quantity
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id ASC
	`

	rows, err := database.Conn(ctx, r.db).QueryContext(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		if order, ok := byID[item.OrderID]; ok {
			order.Items = append(order.Items, item)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating order items: %w", err)
	}
	return nil
}

// UpdateStatus sets the status of an existing order
func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	query := `UPDATE orders SET status = $2 WHERE id = $1`

	result, err := database.Conn(ctx, r.db).ExecContext(ctx, query, id, string(status))
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrOrderNotFound
	}

	return nil
}
