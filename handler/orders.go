package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"storefront/checkout"
	"storefront/model"
	"storefront/service"
	"storefront/store"
)

// Checkout handles POST /checkout/order
// body: { "session_id": "...", "form": { "name": "...", "email": "...", ... } }
// Responds 422 with per-field errors, 400 for an empty cart, and 201 with the
// order snapshot on success. The cart is emptied once the order is stored.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.SessionID == "" {
		writeErr(w, http.StatusBadRequest, "session_id required")
		return
	}

	form := req.Form
	if strings.TrimSpace(form.PaymentMethod) == "" {
		form.PaymentMethod = string(model.PaymentEMoney)
	}
	errs := checkout.Validate(form)
	if !model.PaymentMethod(form.PaymentMethod).Valid() {
		errs[checkout.FieldPaymentMethod] = checkout.ReasonWrongFormat
	}
	if !errs.Valid() {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  "validation failed",
			"errors": errs,
		})
		return
	}

	items, err := h.carts.Items(r.Context(), req.SessionID)
	if err != nil {
		h.cartErr(w, err)
		return
	}
	if len(items) == 0 {
		writeErr(w, http.StatusBadRequest, "cart is empty")
		return
	}

	totals := checkout.ComputeTotals(items)
	orderReq := service.CreateOrderRequest{
		CustomerName:    strings.TrimSpace(form.Name),
		CustomerEmail:   strings.TrimSpace(form.Email),
		CustomerPhone:   strings.TrimSpace(form.Phone),
		ShippingAddress: form.ShippingAddress(),
		PaymentMethod:   model.PaymentMethod(form.PaymentMethod),
		Items:           items,
		Subtotal:        totals.Subtotal,
		Shipping:        totals.Shipping,
		VAT:             totals.VAT,
		GrandTotal:      totals.GrandTotal,
	}
	res, err := h.orders.CreateOrder(r.Context(), orderReq)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, service.ErrCreateOrder.Error())
		return
	}

	if err := h.carts.Clear(r.Context(), req.SessionID); err != nil {
		h.logger.Warn("Failed to clear cart after checkout", map[string]interface{}{
			"session_id":   req.SessionID,
			"order_number": res.OrderNumber,
			"error":        err,
		})
	}

	order := model.Order{
		OrderNumber:     res.OrderNumber,
		CustomerName:    orderReq.CustomerName,
		CustomerEmail:   orderReq.CustomerEmail,
		ShippingAddress: orderReq.ShippingAddress,
		Items:           orderReq.Items,
		Subtotal:        orderReq.Subtotal,
		Shipping:        orderReq.Shipping,
		VAT:             orderReq.VAT,
		GrandTotal:      orderReq.GrandTotal,
	}
	writeJSON(w, http.StatusCreated, checkoutResp{
		OrderID:     res.OrderID,
		OrderNumber: res.OrderNumber,
		Order:       order.Snapshot(),
	})
}

// CreateOrder handles POST /orders with totals already computed by the caller.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req service.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if len(req.Items) == 0 {
		writeErr(w, http.StatusBadRequest, "items required")
		return
	}
	if !req.PaymentMethod.Valid() {
		writeErr(w, http.StatusBadRequest, "paymentMethod must be e-money or cash")
		return
	}
	res, err := h.orders.CreateOrder(r.Context(), req)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, service.ErrCreateOrder.Error())
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// ListOrders handles GET /orders and GET /orders?email=...
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	if email := r.URL.Query().Get("email"); email != "" {
		writeJSON(w, http.StatusOK, h.orders.GetByEmail(r.Context(), email))
		return
	}
	writeJSON(w, http.StatusOK, h.orders.GetAll(r.Context()))
}

// GetOrder handles GET /orders/{id}
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o := h.orders.GetByID(r.Context(), mux.Vars(r)["id"])
	if o == nil {
		writeErr(w, http.StatusNotFound, "order not found")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// GetOrderByNumber handles GET /orders/number/{orderNumber}
func (h *Handler) GetOrderByNumber(w http.ResponseWriter, r *http.Request) {
	o := h.orders.GetByOrderNumber(r.Context(), mux.Vars(r)["orderNumber"])
	if o == nil {
		writeErr(w, http.StatusNotFound, "order not found")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// UpdateOrderStatus handles PATCH /orders/{id}/status
// body: { "status": "shipped" }
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Status) == "" {
		writeErr(w, http.StatusBadRequest, "status required")
		return
	}
	id := mux.Vars(r)["id"]
	if err := h.orders.UpdateStatus(r.Context(), id, req.Status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "order not found")
			return
		}
		writeErr(w, storeErrStatus(err), service.ErrUpdateStatus.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": req.Status})
}
