package domain

// Item is one menu line in the cart. ID is the opaque menu-item identifier
// and the de-duplication key; UnitPrice is in minor units.
type Item struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
	Image     string `json:"image,omitempty"`
}

// Cart is an ordered sequence of items; insertion order is display order.
// At most one item per distinct ID, quantity always >= 1.
type Cart struct {
	Items []Item `json:"items"`
}

// Add merges by ID: an existing line keeps its fields and gains it.Quantity,
// otherwise the item is appended.
func (c *Cart) Add(it Item) {
	for i := range c.Items {
		if c.Items[i].ID == it.ID {
			c.Items[i].Quantity += it.Quantity
			return
		}
	}
	c.Items = append(c.Items, it)
}

// Remove deletes the line with the given ID. Absent IDs are a no-op.
func (c *Cart) Remove(id string) {
	for i := range c.Items {
		if c.Items[i].ID == id {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// SetQuantity sets the line's quantity exactly. Quantity <= 0 removes the
// line, so a zero-quantity row can never exist.
func (c *Cart) SetQuantity(id string, quantity int64) {
	if quantity <= 0 {
		c.Remove(id)
		return
	}
	for i := range c.Items {
		if c.Items[i].ID == id {
			c.Items[i].Quantity = quantity
			return
		}
	}
}

func (c *Cart) Clear() {
	c.Items = nil
}

// Total is the sum of UnitPrice * Quantity over all lines, in minor units.
func (c *Cart) Total() int64 {
	var total int64
	for _, it := range c.Items {
		total += it.UnitPrice * it.Quantity
	}
	return total
}
