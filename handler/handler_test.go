package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"storefront/cart"
	"storefront/checkout"
	"storefront/model"
	"storefront/queue"
	"storefront/service"
	"storefront/store"
)

type testEnv struct {
	router *mux.Router
	queue  *queue.MemoryQueue
	carts  *cart.Store
	orders *service.Orders
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	ms := store.NewMemoryStore()
	if _, err := store.Seed(context.Background(), ms); err != nil {
		t.Fatalf("seed: %v", err)
	}
	q := queue.NewMemoryQueue(16)
	env := &testEnv{
		router: mux.NewRouter(),
		queue:  q,
		carts:  cart.NewStore(cart.NewMemoryStorage()),
		orders: service.NewOrders(ms, q, nil),
	}
	NewHandler(env.orders, service.NewCatalog(ms, nil), env.carts, nil).RegisterRoutes(env.router)
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func validForm() checkout.Form {
	return checkout.Form{
		Name:          "Alexei Ward",
		Email:         "alexei@mail.com",
		Phone:         "+1 202-555-0136",
		Address:       "1137 Williams Avenue",
		ZipCode:       "10001",
		City:          "New York",
		Country:       "United States",
		PaymentMethod: "e-money",
		EMoneyNumber:  "238521993",
		EMoneyPin:     "6891",
	}
}

func TestProducts(t *testing.T) {
	env := newEnv(t)

	rec := env.do(t, "GET", "/products/list?category=earphones", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var ps []model.Product
	decode(t, rec, &ps)
	if len(ps) != 1 || ps[0].ID != "yx1" {
		t.Fatalf("unexpected products: %+v", ps)
	}

	if rec := env.do(t, "GET", "/products/zx9", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := env.do(t, "GET", "/products/nope", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec = env.do(t, "POST", "/products", model.Product{ID: "zx3", Name: "ZX3 SPEAKER", Price: 999, Category: "speakers"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := env.do(t, "POST", "/products", model.Product{ID: "zx3", Name: "ZX3 SPEAKER"}); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if rec := env.do(t, "POST", "/products", model.Product{ID: "bad", Price: 1}); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCartFlow(t *testing.T) {
	env := newEnv(t)

	var events int
	unsubscribe := env.carts.Subscribe(func(cart.Event) { events++ })
	defer unsubscribe()

	add := func(id string, qty int) cartResp {
		rec := env.do(t, "POST", "/cart/add", cartReq{SessionID: "s1", ProductID: id, Quantity: qty})
		if rec.Code != http.StatusOK {
			t.Fatalf("add %s: %d %s", id, rec.Code, rec.Body.String())
		}
		var body cartResp
		decode(t, rec, &body)
		return body
	}
	add("xx59", 1)
	body := add("xx59", 2)
	if len(body.Items) != 1 || body.Items[0].Quantity != 3 || body.Items[0].Price != 899 {
		t.Fatalf("expected merged line, got %+v", body.Items)
	}
	body = add("yx1", 1)
	if body.Count != 4 || body.Total != 3*899+599 {
		t.Fatalf("unexpected count/total: %d %v", body.Count, body.Total)
	}

	rec := env.do(t, "POST", "/cart/update", cartReq{SessionID: "s1", ProductID: "xx59", Quantity: 0})
	decode(t, rec, &body)
	if len(body.Items) != 1 || body.Items[0].ProductID != "yx1" {
		t.Fatalf("update to 0 should remove, got %+v", body.Items)
	}

	if rec := env.do(t, "POST", "/cart/remove", cartReq{SessionID: "s1", ProductID: "xx59"}); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 removing absent item, got %d", rec.Code)
	}
	if rec := env.do(t, "POST", "/cart/add", cartReq{SessionID: "s1", ProductID: "ghost", Quantity: 1}); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown product, got %d", rec.Code)
	}
	if rec := env.do(t, "POST", "/cart/add", cartReq{SessionID: "s1", ProductID: "yx1"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for zero quantity, got %d", rec.Code)
	}

	if rec := env.do(t, "POST", "/cart/clear", cartReq{SessionID: "s1"}); rec.Code != http.StatusOK {
		t.Fatalf("clear: %d", rec.Code)
	}
	rec = env.do(t, "GET", "/cart/list?session_id=s1", nil)
	decode(t, rec, &body)
	if len(body.Items) != 0 || body.Count != 0 {
		t.Fatalf("expected empty cart, got %+v", body)
	}
	if rec := env.do(t, "GET", "/cart/list", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without session, got %d", rec.Code)
	}
	if events != 5 {
		t.Fatalf("expected 5 change events, got %d", events)
	}
}

func TestCheckout(t *testing.T) {
	env := newEnv(t)

	// empty cart
	rec := env.do(t, "POST", "/checkout/order", checkoutReq{SessionID: "s1", Form: validForm()})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty cart, got %d", rec.Code)
	}

	env.do(t, "POST", "/cart/add", cartReq{SessionID: "s1", ProductID: "xx99-mark-ii", Quantity: 1})
	env.do(t, "POST", "/cart/add", cartReq{SessionID: "s1", ProductID: "yx1", Quantity: 2})

	// invalid form
	bad := validForm()
	bad.Email = "not-an-email"
	bad.EMoneyPin = ""
	rec = env.do(t, "POST", "/checkout/order", checkoutReq{SessionID: "s1", Form: bad})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	var verr struct {
		Errors map[string]string `json:"errors"`
	}
	decode(t, rec, &verr)
	if verr.Errors["email"] != "Wrong format" || verr.Errors["eMoneyPin"] != "Required" || len(verr.Errors) != 2 {
		t.Fatalf("unexpected field errors: %v", verr.Errors)
	}

	rec = env.do(t, "POST", "/checkout/order", checkoutReq{SessionID: "s1", Form: validForm()})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp checkoutResp
	decode(t, rec, &resp)
	if !service.OrderNumberPattern.MatchString(resp.OrderNumber) {
		t.Fatalf("bad order number %q", resp.OrderNumber)
	}
	o := resp.Order
	if o.Subtotal != 2999+2*599 || o.Shipping != 50 || o.VAT != 839 || o.GrandTotal != o.Subtotal+o.Shipping {
		t.Fatalf("unexpected totals: %+v", o)
	}

	// cart emptied, confirmation queued
	var c cartResp
	decode(t, env.do(t, "GET", "/cart/list?session_id=s1", nil), &c)
	if len(c.Items) != 0 {
		t.Fatalf("cart not cleared: %+v", c.Items)
	}
	task, err := env.queue.Dequeue(context.Background(), time.Second)
	if err != nil || task == nil || task.Type != service.TaskOrderConfirmation {
		t.Fatalf("expected confirmation task, got %v %v", task, err)
	}

	rec = env.do(t, "GET", "/orders/number/"+resp.OrderNumber, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var stored model.Order
	decode(t, rec, &stored)
	if stored.Status != model.StatusPending || stored.ID != resp.OrderID || stored.PaymentMethod != model.PaymentEMoney {
		t.Fatalf("unexpected stored order: %+v", stored)
	}
}

func TestCheckoutRejectsUnknownPaymentMethod(t *testing.T) {
	env := newEnv(t)
	env.do(t, "POST", "/cart/add", cartReq{SessionID: "s1", ProductID: "zx7", Quantity: 1})

	f := validForm()
	f.PaymentMethod = "bitcoin"
	rec := env.do(t, "POST", "/checkout/order", checkoutReq{SessionID: "s1", Form: f})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestCheckoutBlankPaymentMethodRequiresEMoneyDetails(t *testing.T) {
	env := newEnv(t)
	env.do(t, "POST", "/cart/add", cartReq{SessionID: "s1", ProductID: "zx7", Quantity: 1})

	f := validForm()
	f.PaymentMethod = ""
	f.EMoneyNumber = ""
	f.EMoneyPin = ""
	rec := env.do(t, "POST", "/checkout/order", checkoutReq{SessionID: "s1", Form: f})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	var verr struct {
		Errors map[string]string `json:"errors"`
	}
	decode(t, rec, &verr)
	if verr.Errors["eMoneyNumber"] != "Required" || verr.Errors["eMoneyPin"] != "Required" || len(verr.Errors) != 2 {
		t.Fatalf("unexpected field errors: %v", verr.Errors)
	}

	var c cartResp
	decode(t, env.do(t, "GET", "/cart/list?session_id=s1", nil), &c)
	if len(c.Items) != 1 {
		t.Fatalf("cart should be untouched, got %+v", c.Items)
	}
}

func TestOrdersEndpoints(t *testing.T) {
	env := newEnv(t)

	req := service.CreateOrderRequest{
		CustomerName:  "Sam Lee",
		CustomerEmail: "sam@mail.com",
		PaymentMethod: model.PaymentCash,
		Items:         []model.CartItem{{ProductID: "zx7", Name: "ZX7 SPEAKER", ShortName: "ZX7", Price: 3500, Quantity: 1}},
		Subtotal:      3500, Shipping: 50, VAT: 700, GrandTotal: 3550,
	}
	rec := env.do(t, "POST", "/orders", req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var res service.CreateOrderResult
	decode(t, rec, &res)

	empty := req
	empty.Items = nil
	if rec := env.do(t, "POST", "/orders", empty); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for no items, got %d", rec.Code)
	}

	var list []model.Order
	decode(t, env.do(t, "GET", "/orders?email=sam@mail.com", nil), &list)
	if len(list) != 1 || list[0].OrderNumber != res.OrderNumber {
		t.Fatalf("unexpected list: %+v", list)
	}
	decode(t, env.do(t, "GET", "/orders?email=nobody@mail.com", nil), &list)
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %+v", list)
	}

	if rec := env.do(t, "GET", "/orders/"+res.OrderID, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := env.do(t, "GET", "/orders/number/ORD-NOPE-AAAAA", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec = env.do(t, "PATCH", "/orders/"+res.OrderID+"/status", statusReq{Status: "delivered"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := env.orders.GetByID(context.Background(), res.OrderID); got == nil || got.Status != "delivered" {
		t.Fatalf("status not updated: %+v", got)
	}
	if rec := env.do(t, "PATCH", "/orders/missing/status", statusReq{Status: "x"}); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec := env.do(t, "PATCH", "/orders/"+res.OrderID+"/status", statusReq{}); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	if rec := env.do(t, "GET", "/healthz", nil); rec.Code != http.StatusOK {
		t.Fatalf("healthz: %d", rec.Code)
	}
}
