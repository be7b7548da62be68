package checkout

import (
	"github.com/shopspring/decimal"

	"storefront/model"
)

// ShippingFee is the flat shipping charge added to every order.
const ShippingFee = 50

var vatRate = decimal.NewFromFloat(0.2)

// Totals are the monetary figures shown at checkout. VAT is informational:
// it is already included in Subtotal and is not added to GrandTotal.
type Totals struct {
	Subtotal   float64 `json:"subtotal"`
	Shipping   float64 `json:"shipping"`
	VAT        float64 `json:"vat"`
	GrandTotal float64 `json:"grandTotal"`
}

// ComputeTotals sums the cart and applies the flat shipping fee.
func ComputeTotals(items []model.CartItem) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		line := decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity)))
		subtotal = subtotal.Add(line)
	}
	shipping := decimal.NewFromInt(ShippingFee)
	vat := subtotal.Mul(vatRate).Round(0)

	return Totals{
		Subtotal:   subtotal.InexactFloat64(),
		Shipping:   shipping.InexactFloat64(),
		VAT:        vat.InexactFloat64(),
		GrandTotal: subtotal.Add(shipping).InexactFloat64(),
	}
}
