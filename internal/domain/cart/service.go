package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/solodko/storefront/internal/domain/product"
)

// Sentinel errors for cart operations.
var (
	// ErrCartNotFound is returned when no cart exists for a session.
	ErrCartNotFound = errors.New("cart not found")
	// ErrEmptyCart is returned when checking out an empty cart.
	ErrEmptyCart = errors.New("cart is empty")
)

// Store persists session carts. Implementations must tolerate concurrent
// access from multiple requests of the same session.
type Store interface {
	// Get returns the cart for the session, or ErrCartNotFound.
	Get(ctx context.Context, sessionID string) (*Cart, error)
	// Put saves the cart under the session, refreshing its TTL.
	Put(ctx context.Context, sessionID string, c *Cart) error
	// Delete removes the cart for the session. Absent carts are a no-op.
	Delete(ctx context.Context, sessionID string) error
}

// Confirmation is the result of a checkout. Orders are not persisted; the
// confirmation number exists only so the customer has a reference for the
// follow-up phone call or email.
type Confirmation struct {
	OrderNumber string
	Total       decimal.Decimal
	Items       []Item
	PlacedAt    time.Time
}

// Service binds the session cart store to the product catalog. Adding an item
// goes through the catalog so the cart only ever holds products that exist,
// with their current name and price snapshotted in.
type Service struct {
	store    Store
	products product.Repository
}

// NewService creates a cart Service.
func NewService(store Store, products product.Repository) *Service {
	return &Service{store: store, products: products}
}

// Get returns the session's cart, creating an empty one if none exists yet.
func (s *Service) Get(ctx context.Context, sessionID string) (*Cart, error) {
	c, err := s.store.Get(ctx, sessionID)
	if errors.Is(err, ErrCartNotFound) {
		return New(sessionID), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get cart")
	}
	return c, nil
}

// AddItem validates the product against the catalog and adds it to the
// session's cart. Returns product.ErrNotFound for unknown products.
func (s *Service) AddItem(ctx context.Context, sessionID, productID string, quantity int) (*Cart, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	c, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	c.AddItem(*p, quantity)

	if err := s.store.Put(ctx, sessionID, c); err != nil {
		return nil, errors.Wrap(err, "save cart")
	}
	return c, nil
}

// UpdateQuantity sets an item's quantity; a quantity below one removes it.
func (s *Service) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (*Cart, error) {
	c, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	c.UpdateQuantity(productID, quantity)

	if err := s.store.Put(ctx, sessionID, c); err != nil {
		return nil, errors.Wrap(err, "save cart")
	}
	return c, nil
}

// RemoveItem drops an item from the session's cart.
func (s *Service) RemoveItem(ctx context.Context, sessionID, productID string) (*Cart, error) {
	c, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	c.RemoveItem(productID)

	if err := s.store.Put(ctx, sessionID, c); err != nil {
		return nil, errors.Wrap(err, "save cart")
	}
	return c, nil
}

// Clear empties the session's cart.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return errors.Wrap(err, "clear cart")
	}
	return nil
}

// Checkout finalizes the cart: it produces a confirmation with the computed
// total and clears the cart. An empty cart cannot be checked out.
func (s *Service) Checkout(ctx context.Context, sessionID string) (*Confirmation, error) {
	c, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(c.Items) == 0 {
		return nil, ErrEmptyCart
	}

	conf := &Confirmation{
		OrderNumber: uuid.New().String(),
		Total:       c.TotalPrice().Round(2),
		Items:       c.Items,
		PlacedAt:    time.Now().UTC(),
	}

	if err := s.store.Delete(ctx, sessionID); err != nil {
		return nil, errors.Wrap(err, "clear cart after checkout")
	}
	return conf, nil
}
