package service

import (
	"context"

	"inventory-orders/internal/domain"
	"inventory-orders/internal/repository"

	"go.uber.org/zap"
)

// ProductService defines the interface for product catalog operations
type ProductService interface {
	Get(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, offset, limit int) ([]*domain.Product, error)
	Create(ctx context.Context, fields domain.ProductFields) (*domain.Product, error)
	Update(ctx context.Context, id int64, fields domain.ProductFields) (*domain.Product, error)
	Delete(ctx context.Context, id int64) (*domain.Product, error)
}

type productService struct {
	productRepo repository.ProductRepository
	logger      *zap.Logger
}

// NewProductService creates a new instance of ProductService
func NewProductService(productRepo repository.ProductRepository, logger *zap.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		logger:      logger,
	}
}

func (s *productService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

// List returns a page of products. An empty page is reported as ErrNoProducts.
func (s *productService) List(ctx context.Context, offset, limit int) ([]*domain.Product, error) {
	products, err := s.productRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrNoProducts
	}
	return products, nil
}

func (s *productService) Create(ctx context.Context, fields domain.ProductFields) (*domain.Product, error) {
	product, err := s.productRepo.Create(ctx, fields)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Product created",
		zap.Int64("product_id", product.ID),
		zap.Int("quantity", product.Quantity),
	)
	return product, nil
}

// Update replaces every writable field of the product
func (s *productService) Update(ctx context.Context, id int64, fields domain.ProductFields) (*domain.Product, error) {
	product, err := s.productRepo.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Product updated",
		zap.Int64("product_id", product.ID),
		zap.Int("quantity", product.Quantity),
	)
	return product, nil
}

// Delete removes the product and returns it as it was before removal
func (s *productService) Delete(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.productRepo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Product deleted", zap.Int64("product_id", product.ID))
	return product, nil
}
