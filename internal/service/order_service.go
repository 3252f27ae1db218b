package service

import (
	"context"
	"errors"
	"fmt"

	"inventory-orders/internal/domain"
	"inventory-orders/internal/metrics"
	"inventory-orders/internal/repository"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "inventory-orders/service"

// TxRunner runs fn inside a single database transaction
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// OrderService defines the interface for order operations
type OrderService interface {
	Create(ctx context.Context, status domain.OrderStatus, items []domain.ItemRequest) (*domain.Order, error)
	Get(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context, offset, limit int) ([]*domain.Order, error)
	SetStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	tx          TxRunner
	metrics     *metrics.Metrics
	logger      *zap.Logger
	tracer      trace.Tracer
}

// NewOrderService creates a new instance of OrderService. m may be nil.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	tx TxRunner,
	m *metrics.Metrics,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		tx:          tx,
		metrics:     m,
		logger:      logger,
		tracer:      otel.Tracer(tracerName),
	}
}

// Create records an order and takes its items out of stock. The order row,
// every stock decrement and every item row are written in one transaction:
// if any line cannot be reserved nothing is persisted.
func (s *orderService) Create(ctx context.Context, status domain.OrderStatus, items []domain.ItemRequest) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.create", trace.WithAttributes(
		attribute.String("order.status", status.String()),
		attribute.Int("order.items", len(items)),
	))
	defer span.End()

	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidItem
		}
	}

	var orderID int64
	var units int
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		units = 0
		order, err := s.orderRepo.Create(ctx, status)
		if err != nil {
			return err
		}
		orderID = order.ID

		for _, item := range items {
			if err := s.reserve(ctx, item); err != nil {
				return err
			}
			if _, err := s.orderRepo.CreateItem(ctx, order.ID, item); err != nil {
				return err
			}
			units += item.Quantity
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "order rejected")

		var stockErr *InsufficientStockError
		if errors.As(err, &stockErr) {
			s.metrics.OrderRejected(metrics.ReasonInsufficientStock)
			s.logger.Info("Order rejected",
				zap.Int64("product_id", stockErr.ProductID),
				zap.Int("requested", stockErr.Requested),
				zap.Int("available", stockErr.Available),
			)
			return nil, err
		}

		s.metrics.OrderRejected(metrics.ReasonError)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.metrics.OrderCreated(units)
	span.SetAttributes(attribute.Int64("order.id", orderID))
	span.SetStatus(codes.Ok, "order created")
	s.logger.Info("Order created",
		zap.Int64("order_id", orderID),
		zap.Int("items", len(items)),
		zap.Int("units", units),
	)

	return s.orderRepo.FindByID(ctx, orderID)
}

// reserve takes item.Quantity units of the product out of stock. A missing
// product counts as having nothing available.
func (s *orderService) reserve(ctx context.Context, item domain.ItemRequest) error {
	ctx, span := s.tracer.Start(ctx, "stock.reserve", trace.WithAttributes(
		attribute.Int64("product.id", item.ProductID),
		attribute.Int("stock.requested", item.Quantity),
	))
	defer span.End()

	remaining, err := s.productRepo.DecrementStock(ctx, item.ProductID, item.Quantity)
	switch {
	case err == nil:
		span.SetAttributes(attribute.Int("stock.remaining", remaining))
		return nil
	case errors.Is(err, repository.ErrInsufficientStock):
		err = &InsufficientStockError{ProductID: item.ProductID, Requested: item.Quantity, Available: remaining}
	case errors.Is(err, repository.ErrProductNotFound):
		err = &InsufficientStockError{ProductID: item.ProductID, Requested: item.Quantity}
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, "stock not reserved")
	return err
}

func (s *orderService) Get(ctx context.Context, id int64) (*domain.Order, error) {
	return s.orderRepo.FindByID(ctx, id)
}

// List returns a page of orders with their items. An empty page is reported
// as ErrNoOrders.
func (s *orderService) List(ctx context.Context, offset, limit int) ([]*domain.Order, error) {
	orders, err := s.orderRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, ErrNoOrders
	}
	return orders, nil
}

// SetStatus moves an order to any valid status, regardless of its current one
func (s *orderService) SetStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	s.logger.Info("Order status changed",
		zap.Int64("order_id", id),
		zap.String("status", status.String()),
	)
	return s.orderRepo.FindByID(ctx, id)
}
