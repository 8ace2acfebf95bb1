package category

import (
	"context"

	"github.com/go-faster/errors"
)

// Sentinel errors for category operations.
var (
	// ErrNotFound is returned when a requested category does not exist.
	ErrNotFound = errors.New("category not found")

	// ErrInUse is returned when deleting a category that still has products
	// referencing it. Deletion is restricted rather than cascading so the
	// admin is forced to move or delete the products first.
	ErrInUse = errors.New("category has products referencing it")
)

// Category groups products for navigation, e.g. "oatmeal cookies" or "rusks".
type Category struct {
	ID    string
	Name  string
	Image string
}

// Repository defines persistence operations for product categories.
// List orders categories by display name.
type Repository interface {
	List(ctx context.Context) ([]Category, error)
	GetByID(ctx context.Context, id string) (*Category, error)
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	Upsert(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id string) error
}
