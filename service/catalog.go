package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/logging"
	"storefront/model"
	"storefront/store"
)

// ErrInvalidProduct is returned by CreateProduct for a product that fails
// validation.
var ErrInvalidProduct = errors.New("invalid product")

// Catalog implements CatalogService on a store.ProductStore.
type Catalog struct {
	store  store.ProductStore
	logger logging.Logger
}

func NewCatalog(s store.ProductStore, logger logging.Logger) *Catalog {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Catalog{store: s, logger: logger.With(map[string]interface{}{"component": "catalog"})}
}

func (c *Catalog) CreateProduct(ctx context.Context, p model.Product) error {
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	if p.ID == "" {
		return fmt.Errorf("%w: id required", ErrInvalidProduct)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: name required", ErrInvalidProduct)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: price must be >= 0", ErrInvalidProduct)
	}
	for _, inc := range p.Includes {
		if inc.Quantity < 1 || strings.TrimSpace(inc.Item) == "" {
			return fmt.Errorf("%w: bad includes entry %+v", ErrInvalidProduct, inc)
		}
	}
	if err := c.store.CreateProduct(ctx, store.ProductRowFromModel(p)); err != nil {
		return err
	}
	c.logger.Info("Product created", map[string]interface{}{"product_id": p.ID, "category": p.Category})
	return nil
}

func (c *Catalog) ListProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := c.store.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return productsFromRows(rows), nil
}

func (c *Catalog) ListByCategory(ctx context.Context, category string) ([]model.Product, error) {
	rows, err := c.store.ListProductsByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	return productsFromRows(rows), nil
}

func (c *Catalog) GetProduct(ctx context.Context, id string) (model.Product, error) {
	row, err := c.store.GetProduct(ctx, id)
	if err != nil {
		return model.Product{}, err
	}
	return row.Model(), nil
}

func productsFromRows(rows []store.ProductRow) []model.Product {
	out := make([]model.Product, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Model())
	}
	return out
}
