package catalog

import "fmt"

// InsufficientStockError reports a quantity that cannot be satisfied by the
// current stock of a product. Inactive products report zero availability.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

// CheckStock validates a requested quantity against a product. It returns
// *InsufficientStockError when the product is inactive or qty exceeds stock.
func CheckStock(p *Product, qty int) error {
	available := p.Stock
	if !p.Active {
		available = 0
	}
	if qty > available {
		return &InsufficientStockError{ProductID: p.ID, Requested: qty, Available: available}
	}
	return nil
}
