package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item manufactured by the confectionery.
type Product struct {
	ID               string
	Name             string
	Description      string
	Price            decimal.Decimal
	Image            string
	AdditionalImages []string
	CategoryID       string
	InStock          bool
	CreatedAt        time.Time
	Details          *Details
}

// Details holds the optional nutrition and logistics record shown on the
// product page. Stored as a JSONB document alongside the product row.
type Details struct {
	Weight            string  `json:"weight,omitempty"`
	ExpirationDays    int     `json:"expirationDays,omitempty"`
	Calories          float64 `json:"calories,omitempty"`
	Proteins          float64 `json:"proteins,omitempty"`
	Fats              float64 `json:"fats,omitempty"`
	Carbs             float64 `json:"carbs,omitempty"`
	Packaging         string  `json:"packaging,omitempty"`
	StorageConditions string  `json:"storageConditions,omitempty"`
	Ingredients       string  `json:"ingredients,omitempty"`
	PiecesInPackage   int     `json:"piecesInPackage,omitempty"`
	Manufacturer      string  `json:"manufacturer,omitempty"`
	CountryOfOrigin   string  `json:"countryOfOrigin,omitempty"`
}

// Repository defines persistence operations for the product catalog.
// Listing orders products by creation time, newest first.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	ListByCategory(ctx context.Context, categoryID string) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	ListIDs(ctx context.Context) ([]string, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Upsert(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}
