package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"

	"storefront/model"
)

//go:embed catalog.json
var catalogJSON []byte

// Catalog returns the bundled product catalog.
func Catalog() ([]model.Product, error) {
	var products []model.Product
	if err := json.Unmarshal(catalogJSON, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Seed inserts every bundled product that is not in ps yet and returns how
// many were added.
func Seed(ctx context.Context, ps ProductStore) (int, error) {
	products, err := Catalog()
	if err != nil {
		return 0, err
	}
	added := 0
	for _, p := range products {
		err := ps.CreateProduct(ctx, ProductRowFromModel(p))
		if errors.Is(err, ErrDuplicateProduct) {
			continue
		}
		if err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

// ProductRowFromModel and ProductRow.Model convert between the API type and
// the row; empty description and features map to NULL.
func ProductRowFromModel(p model.Product) ProductRow {
	return ProductRow{
		ID:          p.ID,
		Name:        p.Name,
		ShortName:   p.ShortName,
		Description: sql.NullString{String: p.Description, Valid: p.Description != ""},
		Price:       p.Price,
		Category:    p.Category,
		Image:       p.Image,
		Gallery:     p.Gallery,
		Features:    sql.NullString{String: p.Features, Valid: p.Features != ""},
		Includes:    p.Includes,
		New:         p.New,
	}
}

func (r ProductRow) Model() model.Product {
	gallery := r.Gallery
	if gallery == nil {
		gallery = []string{}
	}
	includes := r.Includes
	if includes == nil {
		includes = []model.IncludedItem{}
	}
	return model.Product{
		ID:          r.ID,
		Name:        r.Name,
		ShortName:   r.ShortName,
		Description: r.Description.String,
		Price:       r.Price,
		Category:    r.Category,
		Image:       r.Image,
		Gallery:     gallery,
		Features:    r.Features.String,
		Includes:    includes,
		New:         r.New,
	}
}
