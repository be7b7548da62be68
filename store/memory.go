package store

import (
	"context"
	"sort"
	"sync"

	"storefront/model"
)

// MemoryStore is an in-process Store used when no database is configured
// and in tests. Indexes mirror the Postgres ones: by id, by order number and
// by customer email.
type MemoryStore struct {
	mu       sync.RWMutex
	orders   map[string]*OrderRow
	byNumber map[string]string
	seq      map[string]int
	next     int
	products map[string]ProductRow
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders:   make(map[string]*OrderRow),
		byNumber: make(map[string]string),
		seq:      make(map[string]int),
		products: make(map[string]ProductRow),
	}
}

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) InsertOrder(_ context.Context, o OrderRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.byNumber[o.OrderNumber]; taken {
		return wrap("insert order", ErrDuplicateOrderNumber, nil)
	}
	row := cloneOrder(o)
	m.orders[o.ID] = &row
	m.byNumber[o.OrderNumber] = o.ID
	m.seq[o.ID] = m.next
	m.next++
	return nil
}

func (m *MemoryStore) UpdateOrderStatus(_ context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return wrap("update order status", ErrNotFound, nil)
	}
	o.Status = status
	return nil
}

func (m *MemoryStore) GetOrder(_ context.Context, id string) (OrderRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return OrderRow{}, wrap("get order", ErrNotFound, nil)
	}
	return cloneOrder(*o), nil
}

func (m *MemoryStore) GetOrderByNumber(_ context.Context, orderNumber string) (OrderRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byNumber[orderNumber]
	if !ok {
		return OrderRow{}, wrap("get order by number", ErrNotFound, nil)
	}
	return cloneOrder(*m.orders[id]), nil
}

func (m *MemoryStore) ListOrdersByEmail(_ context.Context, email string) ([]OrderRow, error) {
	return m.listOrders(func(o *OrderRow) bool { return o.CustomerEmail == email }), nil
}

func (m *MemoryStore) ListOrders(_ context.Context) ([]OrderRow, error) {
	return m.listOrders(func(*OrderRow) bool { return true }), nil
}

// listOrders returns matches newest first; insertion order breaks ties.
func (m *MemoryStore) listOrders(match func(*OrderRow) bool) []OrderRow {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []OrderRow{}
	for _, o := range m.orders {
		if match(o) {
			out = append(out, cloneOrder(*o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return m.seq[out[i].ID] > m.seq[out[j].ID]
	})
	return out
}

func (m *MemoryStore) CreateProduct(_ context.Context, p ProductRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.products[p.ID]; exists {
		return wrap("create product", ErrDuplicateProduct, nil)
	}
	m.products[p.ID] = cloneProduct(p)
	return nil
}

func (m *MemoryStore) ListProducts(_ context.Context) ([]ProductRow, error) {
	return m.listProducts(func(ProductRow) bool { return true }), nil
}

func (m *MemoryStore) ListProductsByCategory(_ context.Context, category string) ([]ProductRow, error) {
	return m.listProducts(func(p ProductRow) bool { return p.Category == category }), nil
}

func (m *MemoryStore) GetProduct(_ context.Context, id string) (ProductRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return ProductRow{}, wrap("get product", ErrNotFound, nil)
	}
	return cloneProduct(p), nil
}

func (m *MemoryStore) listProducts(match func(ProductRow) bool) []ProductRow {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []ProductRow{}
	for _, p := range m.products {
		if match(p) {
			out = append(out, cloneProduct(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func cloneOrder(o OrderRow) OrderRow {
	o.Items = append([]model.CartItem(nil), o.Items...)
	return o
}

func cloneProduct(p ProductRow) ProductRow {
	p.Gallery = append([]string(nil), p.Gallery...)
	p.Includes = append([]model.IncludedItem(nil), p.Includes...)
	return p
}
