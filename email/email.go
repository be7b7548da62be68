// Package email renders the order confirmation mail.
package email

import (
	"bytes"
	"embed"
	"html/template"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"storefront/model"
)

//go:embed templates/confirmation.gohtml
var templateFS embed.FS

var confirmation = template.Must(template.ParseFS(templateFS, "templates/confirmation.gohtml"))

// DefaultBrand is used when a Renderer has no Brand.
const DefaultBrand = "Audiophile"

// Subject is the subject line of the confirmation mail.
func Subject(orderNumber string) string {
	return "Order Confirmation - " + orderNumber
}

// Renderer turns an order snapshot into a self-contained HTML document.
// Relative image paths are resolved against SiteOrigin.
type Renderer struct {
	SiteOrigin string
	Brand      string
}

type itemView struct {
	Name      string
	ShortName string
	Image     string
	Price     string
	Quantity  int
}

type pageView struct {
	Brand        string
	Logo         string
	CustomerName string
	OrderNumber  string
	Items        []itemView
	Subtotal     string
	Shipping     string
	VAT          string
	GrandTotal   string
	Address      model.ShippingAddress
	Year         int
}

// Render is deterministic for a given snapshot and now; now only feeds the
// copyright year.
func (r Renderer) Render(s model.OrderSnapshot, now time.Time) (string, error) {
	brand := r.Brand
	if brand == "" {
		brand = DefaultBrand
	}
	p := message.NewPrinter(language.English)

	view := pageView{
		Brand:        brand,
		Logo:         strings.ToLower(brand),
		CustomerName: s.CustomerName,
		OrderNumber:  s.OrderNumber,
		Items:        make([]itemView, 0, len(s.Items)),
		Subtotal:     formatMoney(p, s.Subtotal),
		Shipping:     formatMoney(p, s.Shipping),
		VAT:          formatMoney(p, s.VAT),
		GrandTotal:   formatMoney(p, s.GrandTotal),
		Address:      s.ShippingAddress,
		Year:         now.Year(),
	}
	for _, it := range s.Items {
		view.Items = append(view.Items, itemView{
			Name:      it.Name,
			ShortName: it.ShortName,
			Image:     r.AbsoluteURL(it.Image),
			Price:     formatMoney(p, it.Price),
			Quantity:  it.Quantity,
		})
	}

	var buf bytes.Buffer
	if err := confirmation.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// AbsoluteURL resolves a relative path against the site root. Refs that
// carry a scheme or host are returned unchanged.
func (r Renderer) AbsoluteURL(ref string) string {
	if ref == "" {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil || u.IsAbs() || u.Host != "" {
		return ref
	}
	base, err := url.Parse(strings.TrimRight(r.SiteOrigin, "/") + "/")
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}

// FormatMoney renders v as dollars with thousands separators, e.g. $2,999.
func FormatMoney(v float64) string {
	return formatMoney(message.NewPrinter(language.English), v)
}

func formatMoney(p *message.Printer, v float64) string {
	return "$" + p.Sprintf("%v", number.Decimal(v))
}
