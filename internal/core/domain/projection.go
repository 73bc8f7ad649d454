package domain

import "github.com/shopspring/decimal"

type ProjectedLine struct {
	CartLine
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CartProjection is the display view of a cart. It is derived on every read
// and never stored.
type CartProjection struct {
	Items     []ProjectedLine `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

func Project(cart Cart) CartProjection {
	p := CartProjection{
		Items: make([]ProjectedLine, 0, len(cart.Lines)),
		Total: decimal.Zero,
	}
	for _, l := range cart.Lines {
		subtotal := l.Subtotal()
		p.Items = append(p.Items, ProjectedLine{CartLine: l, Subtotal: subtotal})
		p.Total = p.Total.Add(subtotal)
		p.ItemCount += l.Quantity
	}
	return p
}
