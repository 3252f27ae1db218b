package service

import (
	"context"
	"sort"
	"time"

	"inventory-orders/internal/domain"
	"inventory-orders/internal/repository"
)

// memStore backs the mock repositories so the mock transaction can roll
// back products and orders together
type memStore struct {
	products map[int64]domain.Product
	orders   map[int64]domain.Order
	nextID   int64
}

func newMemStore() *memStore {
	return &memStore{
		products: make(map[int64]domain.Product),
		orders:   make(map[int64]domain.Order),
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) snapshot() *memStore {
	c := &memStore{
		products: make(map[int64]domain.Product, len(s.products)),
		orders:   make(map[int64]domain.Order, len(s.orders)),
		nextID:   s.nextID,
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.orders {
		v.Items = append([]domain.OrderItem{}, v.Items...)
		c.orders[k] = v
	}
	return c
}

func (s *memStore) restore(from *memStore) {
	s.products = from.products
	s.orders = from.orders
	s.nextID = from.nextID
}

// Mock transaction: rolls the store back when fn fails
type mockTx struct {
	store     *memStore
	calls     int
	rollbacks int
}

func (m *mockTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	saved := m.store.snapshot()
	if err := fn(ctx); err != nil {
		m.rollbacks++
		m.store.restore(saved)
		return err
	}
	return nil
}

func applyFields(p *domain.Product, f domain.ProductFields) {
	p.Name = f.Name
	p.Description = f.Description
	p.Price = f.Price
	p.Quantity = f.Quantity
}

type mockProductRepository struct {
	store *memStore
}

func (m *mockProductRepository) Create(ctx context.Context, fields domain.ProductFields) (*domain.Product, error) {
	p := domain.Product{ID: m.store.id()}
	applyFields(&p, fields)
	m.store.products[p.ID] = p
	return &p, nil
}

func (m *mockProductRepository) Update(ctx context.Context, id int64, fields domain.ProductFields) (*domain.Product, error) {
	p, ok := m.store.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	applyFields(&p, fields)
	m.store.products[id] = p
	return &p, nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id int64) (*domain.Product, error) {
	p, ok := m.store.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	for _, o := range m.store.orders {
		for _, item := range o.Items {
			if item.ProductID == id {
				return nil, repository.ErrProductInUse
			}
		}
	}
	delete(m.store.products, id)
	return &p, nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	p, ok := m.store.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return &p, nil
}

func (m *mockProductRepository) List(ctx context.Context, offset, limit int) ([]*domain.Product, error) {
	ids := make([]int64, 0, len(m.store.products))
	for id := range m.store.products {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	products := []*domain.Product{}
	for _, id := range page(ids, offset, limit) {
		p := m.store.products[id]
		products = append(products, &p)
	}
	return products, nil
}

func (m *mockProductRepository) DecrementStock(ctx context.Context, id int64, quantity int) (int, error) {
	p, ok := m.store.products[id]
	if !ok {
		return 0, repository.ErrProductNotFound
	}
	if p.Quantity < quantity {
		return p.Quantity, repository.ErrInsufficientStock
	}
	p.Quantity -= quantity
	m.store.products[id] = p
	return p.Quantity, nil
}

type mockOrderRepository struct {
	store *memStore
	// lose makes FindByID miss, as if the order vanished after commit
	lose bool
}

func (m *mockOrderRepository) Create(ctx context.Context, status domain.OrderStatus) (*domain.Order, error) {
	o := domain.Order{ID: m.store.id(), CreatedAt: time.Now(), Status: status, Items: []domain.OrderItem{}}
	m.store.orders[o.ID] = o
	return &o, nil
}

func (m *mockOrderRepository) CreateItem(ctx context.Context, orderID int64, item domain.ItemRequest) (*domain.OrderItem, error) {
	o, ok := m.store.orders[orderID]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	oi := domain.OrderItem{ID: m.store.id(), OrderID: orderID, ProductID: item.ProductID, Quantity: item.Quantity}
	o.Items = append(o.Items, oi)
	m.store.orders[orderID] = o
	return &oi, nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	o, ok := m.store.orders[id]
	if !ok || m.lose {
		return nil, repository.ErrOrderNotFound
	}
	return &o, nil
}

func (m *mockOrderRepository) List(ctx context.Context, offset, limit int) ([]*domain.Order, error) {
	ids := make([]int64, 0, len(m.store.orders))
	for id := range m.store.orders {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	orders := []*domain.Order{}
	for _, id := range page(ids, offset, limit) {
		o := m.store.orders[id]
		orders = append(orders, &o)
	}
	return orders, nil
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	o, ok := m.store.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	o.Status = status
	m.store.orders[id] = o
	return nil
}

func page(ids []int64, offset, limit int) []int64 {
	if offset >= len(ids) {
		return nil
	}
	end := offset + limit
	if end > len(ids) {
		end = len(ids)
	}
	return ids[offset:end]
}
