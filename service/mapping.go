package service

import (
	"storefront/model"
	"storefront/store"
)

func orderToRow(o model.Order) store.OrderRow {
	return store.OrderRow{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		CustomerPhone: o.CustomerPhone,
		Address:       o.ShippingAddress.Address,
		ZipCode:       o.ShippingAddress.ZipCode,
		City:          o.ShippingAddress.City,
		Country:       o.ShippingAddress.Country,
		PaymentMethod: string(o.PaymentMethod),
		Items:         o.Items,
		Subtotal:      o.Subtotal,
		Shipping:      o.Shipping,
		VAT:           o.VAT,
		GrandTotal:    o.GrandTotal,
		Status:        o.Status,
		CreatedAt:     o.CreatedAt,
	}
}

func orderFromRow(r store.OrderRow) model.Order {
	items := r.Items
	if items == nil {
		items = []model.CartItem{}
	}
	return model.Order{
		ID:            r.ID,
		OrderNumber:   r.OrderNumber,
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		CustomerPhone: r.CustomerPhone,
		ShippingAddress: model.ShippingAddress{
			Address: r.Address,
			ZipCode: r.ZipCode,
			City:    r.City,
			Country: r.Country,
		},
		PaymentMethod: model.PaymentMethod(r.PaymentMethod),
		Items:         items,
		Subtotal:      r.Subtotal,
		Shipping:      r.Shipping,
		VAT:           r.VAT,
		GrandTotal:    r.GrandTotal,
		Status:        r.Status,
		CreatedAt:     r.CreatedAt,
	}
}

func ordersFromRows(rows []store.OrderRow) []model.Order {
	out := make([]model.Order, 0, len(rows))
	for _, r := range rows {
		out = append(out, orderFromRow(r))
	}
	return out
}
