package order

import (
	"context"
	"errors"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/retailcore/storefront/internal/cart"
	"github.com/retailcore/storefront/internal/catalog"
)

var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrInvalidCustomerInfo = errors.New("invalid customer info")
)

// CustomerInfo is the checkout form after binding.
type CustomerInfo struct {
	Name            string
	Email           string
	Phone           string
	ShippingAddress string
	Notes           string
}

func (ci CustomerInfo) validate() error {
	if strings.TrimSpace(ci.Name) == "" || strings.TrimSpace(ci.ShippingAddress) == "" {
		return ErrInvalidCustomerInfo
	}
	if _, err := mail.ParseAddress(ci.Email); err != nil {
		return ErrInvalidCustomerInfo
	}
	return nil
}

// CartLedger is the slice of the cart the reconciler needs.
type CartLedger interface {
	Snapshot(ctx context.Context, sessionID string) (*cart.Snapshot, error)
	Clear(ctx context.Context, sessionID string) error
}

// Reconciler turns a session ledger into a durable order.
type Reconciler struct {
	carts  CartLedger
	orders Repository
}

func NewReconciler(carts CartLedger, orders Repository) *Reconciler {
	return &Reconciler{carts: carts, orders: orders}
}

// Checkout re-validates the ledger against live stock, snapshots unit prices,
// writes the order in one transaction, and clears the session ledger. The
// snapshot check pre-screens doomed checkouts; the repository guard is the
// authoritative protection against overselling.
func (r *Reconciler) Checkout(ctx context.Context, sessionID string, info CustomerInfo) (*Order, []Item, error) {
	if err := info.validate(); err != nil {
		return nil, nil, err
	}

	snap, err := r.carts.Snapshot(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if len(snap.Lines) == 0 {
		return nil, nil, ErrEmptyCart
	}
	for _, l := range snap.Lines {
		if !l.Available {
			return nil, nil, &catalog.InsufficientStockError{ProductID: l.ProductID, Requested: l.Quantity, Available: l.Stock}
		}
	}

	now := time.Now().UTC()
	o := &Order{
		ID:              uuid.NewString(),
		CustomerName:    strings.TrimSpace(info.Name),
		CustomerEmail:   strings.TrimSpace(info.Email),
		CustomerPhone:   strings.TrimSpace(info.Phone),
		ShippingAddress: strings.TrimSpace(info.ShippingAddress),
		Notes:           strings.TrimSpace(info.Notes),
		Status:          StatusPending,
		Total:           snap.Total,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	items := make([]Item, 0, len(snap.Lines))
	for _, l := range snap.Lines {
		items = append(items, Item{
			ID:          uuid.NewString(),
			OrderID:     o.ID,
			ProductID:   l.ProductID,
			ProductName: l.Name,
			Price:       l.Price,
			Quantity:    l.Quantity,
		})
	}

	if err := r.orders.Create(ctx, o, items); err != nil {
		return nil, nil, err
	}

	// the ledger lives outside the database transaction; clearing after
	// commit means a failed clear leaves a stale cart, never a partial order
	if err := r.carts.Clear(ctx, sessionID); err != nil {
		log.Printf("[checkout] clear cart for session %s: %v", sessionID, err)
	}
	return o, items, nil
}
