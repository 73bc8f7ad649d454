package domain

import "github.com/shopspring/decimal"

const (
	MinLineQuantity = 1
	MaxLineQuantity = 10
)

// CartLine is a snapshot of an item taken when it was first added to the cart.
// Name, price, image, category and availability are not refreshed afterwards.
type CartLine struct {
	ItemID      int64           `json:"id"`
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"price"`
	Image       *string         `json:"image,omitempty"`
	Category    *Category       `json:"category,omitempty"`
	Quantity    int             `json:"quantity"`
	IsAvailable bool            `json:"is_available"`
}

func NewCartLine(item Item, quantity int) CartLine {
	line := CartLine{
		ItemID:      item.ID,
		Name:        item.Name,
		UnitPrice:   item.Price,
		Quantity:    quantity,
		IsAvailable: item.IsAvailable,
	}
	if item.Image != nil {
		image := *item.Image
		line.Image = &image
	}
	if item.Category != nil {
		category := *item.Category
		line.Category = &category
	}
	return line
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart keeps lines in insertion order. Item ids are unique.
type Cart struct {
	Lines []CartLine `json:"lines"`
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c *Cart) Line(itemID int64) (CartLine, bool) {
	if i := c.index(itemID); i >= 0 {
		return c.Lines[i], true
	}
	return CartLine{}, false
}

// Add increments the quantity of an existing line, or appends the line.
// The resulting quantity never exceeds MaxLineQuantity.
func (c *Cart) Add(line CartLine) {
	if i := c.index(line.ItemID); i >= 0 {
		c.Lines[i].Quantity = min(c.Lines[i].Quantity+line.Quantity, MaxLineQuantity)
		return
	}
	line.Quantity = min(line.Quantity, MaxLineQuantity)
	c.Lines = append(c.Lines, line)
}

// SetQuantity replaces the quantity of an existing line. It reports whether
// the line was present; absent lines are never inserted.
func (c *Cart) SetQuantity(itemID int64, quantity int) bool {
	i := c.index(itemID)
	if i < 0 {
		return false
	}
	c.Lines[i].Quantity = quantity
	return true
}

func (c *Cart) Remove(itemID int64) bool {
	i := c.index(itemID)
	if i < 0 {
		return false
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	return true
}

// Clone returns a copy that shares no line storage with c.
func (c Cart) Clone() Cart {
	if c.Lines == nil {
		return Cart{}
	}
	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)
	return Cart{Lines: lines}
}

func (c *Cart) Clear() {
	c.Lines = nil
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (c *Cart) index(itemID int64) int {
	for i, l := range c.Lines {
		if l.ItemID == itemID {
			return i
		}
	}
	return -1
}
