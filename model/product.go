package model

// IncludedItem is one entry of the "in the box" list.
type IncludedItem struct {
	Quantity int    `json:"quantity"`
	Item     string `json:"item"`
}

type Product struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	ShortName   string         `json:"shortName"`
	Description string         `json:"description"`
	Price       float64        `json:"price"`
	Category    string         `json:"category"`
	Image       string         `json:"image"`
	Gallery     []string       `json:"gallery"`
	Features    string         `json:"features"`
	Includes    []IncludedItem `json:"includes"`
	New         bool           `json:"new"`
}

// CartItem builds the line item added to a cart for qty units of p.
func (p Product) CartItem(qty int) CartItem {
	return CartItem{
		ProductID: p.ID,
		Name:      p.Name,
		ShortName: p.ShortName,
		Price:     p.Price,
		Quantity:  qty,
		Image:     p.Image,
	}
}
