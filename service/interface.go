package service

import (
	"context"

	"storefront/model"
)

// OrderService places orders and looks them up. Lookups never fail: a
// missing record and an unreachable store both come back as nil or empty.
type OrderService interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (CreateOrderResult, error)
	UpdateStatus(ctx context.Context, orderID, status string) error
	GetByOrderNumber(ctx context.Context, orderNumber string) *model.Order
	GetByEmail(ctx context.Context, email string) []model.Order
	GetByID(ctx context.Context, orderID string) *model.Order
	GetAll(ctx context.Context) []model.Order
}

type CatalogService interface {
	CreateProduct(ctx context.Context, p model.Product) error
	ListProducts(ctx context.Context) ([]model.Product, error)
	ListByCategory(ctx context.Context, category string) ([]model.Product, error)
	GetProduct(ctx context.Context, id string) (model.Product, error)
}
