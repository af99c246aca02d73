package cart

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/retailcore/storefront/internal/catalog"
)

var (
	ErrBadQuantity   = errors.New("quantity must be a positive integer")
	ErrStockExceeded = errors.New("requested quantity exceeds available stock")
	ErrNotInCart     = errors.New("product not in cart")
)

// ProductReader is the slice of the catalog the ledger needs.
type ProductReader interface {
	GetProduct(ctx context.Context, id string) (*catalog.Product, error)
}

// Service applies ledger mutations for one session at a time.
type Service struct {
	store    Store
	products ProductReader
}

func NewService(store Store, products ProductReader) *Service {
	return &Service{store: store, products: products}
}

// Add increments the entry for a product, inserting it when absent. The
// stock check here is advisory; checkout re-validates before committing.
func (s *Service) Add(ctx context.Context, sessionID, productID string, qty int) error {
	if qty <= 0 {
		return ErrBadQuantity
	}
	p, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	if !p.Active {
		return catalog.ErrProductNotFound
	}

	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	next := c.Quantity(productID) + qty
	if catalog.CheckStock(p, next) != nil {
		return ErrStockExceeded
	}
	c.set(productID, next)
	return s.store.Save(ctx, sessionID, c)
}

// Update replaces an entry's quantity. qty <= 0 removes the entry.
func (s *Service) Update(ctx context.Context, sessionID, productID string, qty int) error {
	if qty <= 0 {
		return s.Remove(ctx, sessionID, productID)
	}

	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	if c.find(productID) < 0 {
		return ErrNotInCart
	}

	p, err := s.products.GetProduct(ctx, productID)
	if err != nil || !p.Active {
		// stale reference: heal the ledger, then report
		c.remove(productID)
		if serr := s.store.Save(ctx, sessionID, c); serr != nil {
			return serr
		}
		return catalog.ErrProductNotFound
	}
	if catalog.CheckStock(p, qty) != nil {
		return ErrStockExceeded
	}
	c.set(productID, qty)
	return s.store.Save(ctx, sessionID, c)
}

// Remove deletes an entry.
func (s *Service) Remove(ctx context.Context, sessionID, productID string) error {
	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	if !c.remove(productID) {
		return ErrNotInCart
	}
	return s.store.Save(ctx, sessionID, c)
}

// Clear drops the whole ledger for the session.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	return s.store.Drop(ctx, sessionID)
}

// Count returns the number of units in the ledger without joining the catalog.
func (s *Service) Count(ctx context.Context, sessionID string) (int, error) {
	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return c.Count(), nil
}

// Snapshot joins the ledger against the live catalog. Entries whose product
// vanished or went inactive are dropped from the ledger. Entries whose
// quantity now exceeds stock stay priced in the totals but are flagged
// unavailable so the cart page can warn before checkout refuses them.
func (s *Service) Snapshot(ctx context.Context, sessionID string) (*Snapshot, error) {
	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Total: decimal.Zero}
	kept := make([]Entry, 0, len(c.Entries))
	for _, e := range c.Entries {
		p, err := s.products.GetProduct(ctx, e.ProductID)
		if err != nil || !p.Active {
			continue
		}
		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(e.Quantity)))
		snap.Lines = append(snap.Lines, Line{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  e.Quantity,
			LineTotal: lineTotal,
			Stock:     p.Stock,
			Available: catalog.CheckStock(p, e.Quantity) == nil,
		})
		snap.Total = snap.Total.Add(lineTotal)
		snap.Count += e.Quantity
		kept = append(kept, e)
	}

	if len(kept) != len(c.Entries) {
		c.Entries = kept
		if err := s.store.Save(ctx, sessionID, c); err != nil {
			return nil, err
		}
	}
	return snap, nil
}
