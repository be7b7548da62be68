package model

import "time"

// StatusPending is the status every order starts with.
const StatusPending = "pending"

// PaymentMethod is how the customer pays at checkout.
type PaymentMethod string

const (
	PaymentEMoney PaymentMethod = "e-money"
	PaymentCash   PaymentMethod = "cash"
)

// Valid reports whether m is one of the accepted payment methods.
func (m PaymentMethod) Valid() bool {
	return m == PaymentEMoney || m == PaymentCash
}

// CartItem is a line item: a product reference plus the price and quantity
// captured when it was added to the cart.
type CartItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	ShortName string  `json:"shortName"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image"`
}

// LineTotal is price times quantity.
func (c CartItem) LineTotal() float64 {
	return c.Price * float64(c.Quantity)
}

type ShippingAddress struct {
	Address string `json:"address"`
	ZipCode string `json:"zipCode"`
	City    string `json:"city"`
	Country string `json:"country"`
}

type Order struct {
	ID              string          `json:"id"`
	OrderNumber     string          `json:"orderNumber"`
	CustomerName    string          `json:"customerName"`
	CustomerEmail   string          `json:"customerEmail"`
	CustomerPhone   string          `json:"customerPhone"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	Items           []CartItem      `json:"items"`
	Subtotal        float64         `json:"subtotal"`
	Shipping        float64         `json:"shipping"`
	VAT             float64         `json:"vat"`
	GrandTotal      float64         `json:"grandTotal"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// OrderSnapshot is an immutable copy of what the confirmation email shows.
// It is captured at submission time so later status changes never reach it.
type OrderSnapshot struct {
	OrderNumber     string          `json:"orderNumber"`
	CustomerName    string          `json:"customerName"`
	CustomerEmail   string          `json:"customerEmail"`
	Items           []CartItem      `json:"items"`
	Subtotal        float64         `json:"subtotal"`
	Shipping        float64         `json:"shipping"`
	VAT             float64         `json:"vat"`
	GrandTotal      float64         `json:"grandTotal"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
}

// Snapshot copies the order, including its item slice.
func (o Order) Snapshot() OrderSnapshot {
	items := make([]CartItem, len(o.Items))
	copy(items, o.Items)
	return OrderSnapshot{
		OrderNumber:     o.OrderNumber,
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		Items:           items,
		Subtotal:        o.Subtotal,
		Shipping:        o.Shipping,
		VAT:             o.VAT,
		GrandTotal:      o.GrandTotal,
		ShippingAddress: o.ShippingAddress,
	}
}
