package cart

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/solodko/storefront/internal/domain/product"
)

// Item is a single cart line: one product with its quantity. Name and price
// are snapshotted from the catalog at the time the item is added, so the cart
// stays renderable even if the product is edited afterwards.
type Item struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
}

// Cart holds the items selected during one browsing session. Items keep
// insertion order and there is at most one entry per product. Quantity on a
// stored item is always >= 1: mutations that would drop a quantity below one
// remove the item instead.
type Cart struct {
	ID        string    `json:"id"`
	Items     []Item    `json:"items"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// New creates an empty cart with the given session identifier.
func New(id string) *Cart {
	now := time.Now().UTC()
	return &Cart{ID: id, CreatedAt: now, UpdatedAt: now}
}

// AddItem adds a product to the cart. If an item for the product already
// exists its quantity is incremented; otherwise a new item is appended.
// Non-positive quantities are clamped to 1.
func (c *Cart) AddItem(p product.Product, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	for i := range c.Items {
		if c.Items[i].ProductID == p.ID {
			c.Items[i].Quantity += quantity
			c.touch()
			return
		}
	}
	c.Items = append(c.Items, Item{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image,
		Quantity:  quantity,
	})
	c.touch()
}

// RemoveItem drops the item for the given product. Removing a product that is
// not in the cart is a no-op.
func (c *Cart) RemoveItem(productID string) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.touch()
			return
		}
	}
}

// UpdateQuantity sets the quantity of an existing item. A quantity below one
// removes the item entirely. Updating a product that is not in the cart is a
// no-op.
func (c *Cart) UpdateQuantity(productID string, quantity int) {
	if quantity < 1 {
		c.RemoveItem(productID)
		return
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = quantity
			c.touch()
			return
		}
	}
}

// Clear empties the cart unconditionally.
func (c *Cart) Clear() {
	c.Items = nil
	c.touch()
}

// TotalPrice is the sum of price times quantity over all items. It is
// recomputed on every call, never cached.
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// TotalQuantity is the number of units across all items.
func (c *Cart) TotalQuantity() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now().UTC()
}
