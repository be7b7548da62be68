package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"storefront/model"
	"storefront/service"
	"storefront/store"
)

// CreateProduct handles POST /products
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var p model.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	err := h.catalog.CreateProduct(r.Context(), p)
	switch {
	case errors.Is(err, service.ErrInvalidProduct):
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, store.ErrDuplicateProduct):
		writeErr(w, http.StatusConflict, "product already exists")
		return
	case err != nil:
		writeErr(w, storeErrStatus(err), "failed to create product")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": p.ID})
}

// ListProducts handles GET /products/list and GET /products/list?category=...
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	var (
		ps  []model.Product
		err error
	)
	if category := r.URL.Query().Get("category"); category != "" {
		ps, err = h.catalog.ListByCategory(r.Context(), category)
	} else {
		ps, err = h.catalog.ListProducts(r.Context())
	}
	if err != nil {
		writeErr(w, storeErrStatus(err), "failed to list products")
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

// GetProduct handles GET /products/{id}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.GetProduct(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "product not found")
			return
		}
		writeErr(w, storeErrStatus(err), "failed to load product")
		return
	}
	writeJSON(w, http.StatusOK, p)
}
