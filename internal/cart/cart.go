package cart

import "github.com/shopspring/decimal"

// Entry is one ledger line: a product reference plus the requested quantity.
type Entry struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Cart is the per-session ledger. Entries keep insertion order so the cart
// page renders stably across mutations.
type Cart struct {
	Entries []Entry `json:"entries"`
}

func (c *Cart) find(productID string) int {
	for i := range c.Entries {
		if c.Entries[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Quantity returns the requested quantity for a product, zero when absent.
func (c *Cart) Quantity(productID string) int {
	if i := c.find(productID); i >= 0 {
		return c.Entries[i].Quantity
	}
	return 0
}

func (c *Cart) set(productID string, qty int) {
	if i := c.find(productID); i >= 0 {
		c.Entries[i].Quantity = qty
		return
	}
	c.Entries = append(c.Entries, Entry{ProductID: productID, Quantity: qty})
}

func (c *Cart) remove(productID string) bool {
	i := c.find(productID)
	if i < 0 {
		return false
	}
	c.Entries = append(c.Entries[:i], c.Entries[i+1:]...)
	return true
}

// Count returns the total number of units across all entries.
func (c *Cart) Count() int {
	n := 0
	for _, e := range c.Entries {
		n += e.Quantity
	}
	return n
}

// Line is one snapshot row: live catalog data joined to a ledger entry.
type Line struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
	Stock     int             `json:"stock"`
	Available bool            `json:"available"`
}

// Snapshot is the ledger joined against the live catalog.
// swagger:model CartSnapshot
type Snapshot struct {
	Lines []Line          `json:"lines"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}
