package store

import "context"

// OrderStore persists orders. Orders are inserted once and afterwards only
// their status changes; nothing here deletes them.
type OrderStore interface {
	InsertOrder(ctx context.Context, o OrderRow) error
	UpdateOrderStatus(ctx context.Context, id, status string) error
	GetOrder(ctx context.Context, id string) (OrderRow, error)
	GetOrderByNumber(ctx context.Context, orderNumber string) (OrderRow, error)
	// ListOrdersByEmail and ListOrders return newest first.
	ListOrdersByEmail(ctx context.Context, email string) ([]OrderRow, error)
	ListOrders(ctx context.Context) ([]OrderRow, error)
}

// ProductStore is the read-mostly catalog.
type ProductStore interface {
	CreateProduct(ctx context.Context, p ProductRow) error
	ListProducts(ctx context.Context) ([]ProductRow, error)
	ListProductsByCategory(ctx context.Context, category string) ([]ProductRow, error)
	GetProduct(ctx context.Context, id string) (ProductRow, error)
}

type Store interface {
	OrderStore
	ProductStore

	Close() error
}
