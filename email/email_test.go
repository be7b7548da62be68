package email

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/model"
)

func sampleSnapshot() model.OrderSnapshot {
	return model.OrderSnapshot{
		OrderNumber:   "ORD-LOYW3V28-7QX2K",
		CustomerName:  "Alexei Ward",
		CustomerEmail: "alexei@mail.com",
		Items: []model.CartItem{
			{ProductID: "xx99-mark-ii", Name: "XX99 MARK II HEADPHONES", ShortName: "XX99 MK II", Price: 2999, Quantity: 1, Image: "/img/a.png"},
			{ProductID: "xx59", Name: "XX59 HEADPHONES", ShortName: "XX59", Price: 899, Quantity: 2, Image: "img/b.png"},
			{ProductID: "yx1", Name: "YX1 WIRELESS EARPHONES", ShortName: "YX1", Price: 599, Quantity: 1, Image: "https://cdn.example.com/yx1.png"},
		},
		Subtotal:   5396,
		Shipping:   50,
		VAT:        1079,
		GrandTotal: 5446,
		ShippingAddress: model.ShippingAddress{
			Address: "1137 Williams Avenue", ZipCode: "10001", City: "New York", Country: "United States",
		},
	}
}

func TestRender_ResolvesImagesAndShowsOrder(t *testing.T) {
	r := Renderer{SiteOrigin: "https://shop.example.com/"}
	html, err := r.Render(sampleSnapshot(), time.Date(2031, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "ORD-LOYW3V28-7QX2K")
	assert.Contains(t, html, `src="https://shop.example.com/img/a.png"`)
	assert.Contains(t, html, `src="https://shop.example.com/img/b.png"`)
	assert.Contains(t, html, `src="https://cdn.example.com/yx1.png"`)
	assert.NotContains(t, html, `src="/img/a.png"`)

	assert.Contains(t, html, "$2,999")
	assert.Contains(t, html, "$5,446")
	assert.Contains(t, html, "x2")
	assert.Contains(t, html, "New York, 10001")
	assert.Contains(t, html, "&copy; 2031 Audiophile")
}

func TestRender_SelfContained(t *testing.T) {
	html, err := Renderer{SiteOrigin: "http://localhost:8082"}.Render(sampleSnapshot(), time.Now())
	require.NoError(t, err)

	lower := strings.ToLower(html)
	assert.NotContains(t, lower, "<script")
	assert.NotContains(t, lower, "<link")
	assert.NotContains(t, lower, "<style")
}

func TestRender_EscapesCustomerInput(t *testing.T) {
	s := sampleSnapshot()
	s.CustomerName = `<script>alert("x")</script>`
	html, err := Renderer{SiteOrigin: "http://localhost:8082"}.Render(s, time.Now())
	require.NoError(t, err)

	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestRender_Deterministic(t *testing.T) {
	r := Renderer{SiteOrigin: "http://localhost:8082", Brand: "Audiophile"}
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	a, err := r.Render(sampleSnapshot(), now)
	require.NoError(t, err)
	b, err := r.Render(sampleSnapshot(), now)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestAbsoluteURL(t *testing.T) {
	r := Renderer{SiteOrigin: "https://shop.example.com/"}
	for ref, want := range map[string]string{
		"":                               "",
		"/img/a.png":                     "https://shop.example.com/img/a.png",
		"img/b.png":                      "https://shop.example.com/img/b.png",
		"https://cdn.example.com/c.png":  "https://cdn.example.com/c.png",
		"//cdn.example.com/d.png":        "//cdn.example.com/d.png",
		"data:image/png;base64,iVBORw0K": "data:image/png;base64,iVBORw0K",
	} {
		assert.Equal(t, want, r.AbsoluteURL(ref), ref)
	}
	assert.Equal(t, "http://localhost:8082/img/a.png",
		Renderer{SiteOrigin: "http://localhost:8082"}.AbsoluteURL("/img/a.png"))
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$2,999", FormatMoney(2999))
	assert.Equal(t, "$1,234.5", FormatMoney(1234.5))
	assert.Equal(t, "$50", FormatMoney(50))
	assert.Equal(t, "$0", FormatMoney(0))
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "Order Confirmation - ORD-1-AAAAA", Subject("ORD-1-AAAAA"))
}
