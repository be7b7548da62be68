package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"storefront/cart"
	"storefront/checkout"
	"storefront/logging"
	"storefront/model"
	"storefront/service"
	"storefront/store"
)

// Handler is the HTTP layer over the order and catalog services and the
// cart store.
type Handler struct {
	orders  service.OrderService
	catalog service.CatalogService
	carts   *cart.Store
	logger  logging.Logger
}

// NewHandler returns a Handler instance
func NewHandler(orders service.OrderService, catalog service.CatalogService, carts *cart.Store, logger logging.Logger) *Handler {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Handler{
		orders:  orders,
		catalog: catalog,
		carts:   carts,
		logger:  logger.With(map[string]interface{}{"component": "http"}),
	}
}

// RegisterRoutes registers all routes on the provided router
func (h *Handler) RegisterRoutes(r *mux.Router) {
	// Products
	r.HandleFunc("/products", h.CreateProduct).Methods("POST")
	r.HandleFunc("/products/list", h.ListProducts).Methods("GET")
	r.HandleFunc("/products/{id}", h.GetProduct).Methods("GET")

	// Cart
	r.HandleFunc("/cart/list", h.ListCart).Methods("GET")
	r.HandleFunc("/cart/add", h.AddToCart).Methods("POST")
	r.HandleFunc("/cart/update", h.UpdateCart).Methods("POST")
	r.HandleFunc("/cart/remove", h.RemoveFromCart).Methods("POST")
	r.HandleFunc("/cart/clear", h.ClearCart).Methods("POST")

	// Checkout
	r.HandleFunc("/checkout/order", h.Checkout).Methods("POST")

	// Orders
	r.HandleFunc("/orders", h.CreateOrder).Methods("POST")
	r.HandleFunc("/orders", h.ListOrders).Methods("GET")
	r.HandleFunc("/orders/number/{orderNumber}", h.GetOrderByNumber).Methods("GET")
	r.HandleFunc("/orders/{id}", h.GetOrder).Methods("GET")
	r.HandleFunc("/orders/{id}/status", h.UpdateOrderStatus).Methods("PATCH")

	r.HandleFunc("/healthz", h.Health).Methods("GET")
}

// --- request / response shapes ---
type cartReq struct {
	SessionID string `json:"session_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity,omitempty"`
}

type cartResp struct {
	SessionID string           `json:"session_id"`
	Items     []model.CartItem `json:"items"`
	Count     int              `json:"count"`
	Total     float64          `json:"total"`
}

type checkoutReq struct {
	SessionID string        `json:"session_id"`
	Form      checkout.Form `json:"form"`
}

type checkoutResp struct {
	OrderID     string              `json:"orderId"`
	OrderNumber string              `json:"orderNumber"`
	Order       model.OrderSnapshot `json:"order"`
}

type statusReq struct {
	Status string `json:"status"`
}

// --- helpers ---
func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// storeErrStatus maps storage failures to a status code.
func storeErrStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, cart.ErrItemNotInCart):
		return http.StatusNotFound
	case errors.Is(err, store.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func cartBody(session string, items []model.CartItem) cartResp {
	if items == nil {
		items = []model.CartItem{}
	}
	return cartResp{SessionID: session, Items: items, Count: cart.Count(items), Total: cart.Total(items)}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
