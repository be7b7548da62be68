package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"storefront/cart"
	"storefront/store"
)

// ListCart handles GET /cart/list?session_id=...
func (h *Handler) ListCart(w http.ResponseWriter, r *http.Request) {
	session := r.URL.Query().Get("session_id")
	if session == "" {
		writeErr(w, http.StatusBadRequest, "session_id required")
		return
	}
	items, err := h.carts.Items(r.Context(), session)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "failed to load cart")
		return
	}
	writeJSON(w, http.StatusOK, cartBody(session, items))
}

// AddToCart handles POST /cart/add
// body: { "session_id": "...", "product_id": "xx59", "quantity": 2 }
// Name, price and image are taken from the catalog at the time of adding.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req cartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.SessionID == "" {
		writeErr(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if req.Quantity <= 0 {
		writeErr(w, http.StatusBadRequest, "quantity must be > 0")
		return
	}
	p, err := h.catalog.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "product not found")
			return
		}
		writeErr(w, storeErrStatus(err), "failed to load product")
		return
	}
	items, err := h.carts.Add(r.Context(), req.SessionID, p.CartItem(req.Quantity))
	if err != nil {
		h.cartErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cartBody(req.SessionID, items))
}

// UpdateCart handles POST /cart/update
// body: { "session_id": "...", "product_id": "xx59", "quantity": 0 }
// A quantity of zero or less removes the line.
func (h *Handler) UpdateCart(w http.ResponseWriter, r *http.Request) {
	var req cartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	items, err := h.carts.SetQuantity(r.Context(), req.SessionID, req.ProductID, req.Quantity)
	if err != nil {
		h.cartErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cartBody(req.SessionID, items))
}

// RemoveFromCart handles POST /cart/remove
// body: { "session_id": "...", "product_id": "xx59" }
func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	var req cartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	items, err := h.carts.Remove(r.Context(), req.SessionID, req.ProductID)
	if err != nil {
		h.cartErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cartBody(req.SessionID, items))
}

// ClearCart handles POST /cart/clear
// body: { "session_id": "..." }
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	var req cartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.carts.Clear(r.Context(), req.SessionID); err != nil {
		h.cartErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cartBody(req.SessionID, nil))
}

func (h *Handler) cartErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrNoSession), errors.Is(err, cart.ErrInvalidItem):
		writeErr(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, cart.ErrItemNotInCart):
		writeErr(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("Cart storage failed", map[string]interface{}{"error": err})
		writeErr(w, http.StatusInternalServerError, "cart unavailable")
	}
}
