// Package seed holds the static in-code dataset: the catalog and news content
// the site ships with. The sync utility pushes it to the database, and the
// news service falls back to it when the database is unavailable.
package seed

import (
	"embed"
	"encoding/json"
	"sort"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/solodko/storefront/internal/domain/category"
	"github.com/solodko/storefront/internal/domain/news"
	"github.com/solodko/storefront/internal/domain/product"
	"github.com/solodko/storefront/internal/domain/store"
)

//go:embed data/*.json
var dataFS embed.FS

type productJSON struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Description      string           `json:"description"`
	Price            decimal.Decimal  `json:"price"`
	Image            string           `json:"image"`
	AdditionalImages []string         `json:"additionalImages"`
	CategoryID       string           `json:"categoryId"`
	InStock          bool             `json:"inStock"`
	CreatedAt        time.Time        `json:"createdAt"`
	Details          *product.Details `json:"details"`
}

type categoryJSON struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

type articleJSON struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Summary string    `json:"summary"`
	Image   string    `json:"image"`
	Images  []string  `json:"images"`
	Date    time.Time `json:"date"`
	Author  string    `json:"author"`
}

type storeJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo"`
	URL  string `json:"url"`
}

// Data is the parsed seed dataset.
type Data struct {
	Categories []category.Category
	Products   []product.Product
	News       []news.Article
	Stores     []store.Store
}

// Load parses and validates the embedded seed files. News articles come out
// sorted by date descending, matching repository ordering.
func Load() (*Data, error) {
	var (
		cats     []categoryJSON
		products []productJSON
		articles []articleJSON
		stores   []storeJSON
	)
	if err := loadJSON("data/categories.json", &cats); err != nil {
		return nil, err
	}
	if err := loadJSON("data/products.json", &products); err != nil {
		return nil, err
	}
	if err := loadJSON("data/news.json", &articles); err != nil {
		return nil, err
	}
	if err := loadJSON("data/stores.json", &stores); err != nil {
		return nil, err
	}

	d := &Data{}

	catIDs := make(map[string]bool, len(cats))
	for _, c := range cats {
		if c.ID == "" || c.Name == "" {
			return nil, errors.Errorf("seed category %q missing id or name", c.ID)
		}
		catIDs[c.ID] = true
		d.Categories = append(d.Categories, category.Category(c))
	}

	for _, p := range products {
		if p.Price.IsNegative() {
			return nil, errors.Errorf("seed product %q has negative price", p.ID)
		}
		if !catIDs[p.CategoryID] {
			return nil, errors.Errorf("seed product %q references unknown category %q", p.ID, p.CategoryID)
		}
		d.Products = append(d.Products, product.Product{
			ID:               p.ID,
			Name:             p.Name,
			Description:      p.Description,
			Price:            p.Price,
			Image:            p.Image,
			AdditionalImages: p.AdditionalImages,
			CategoryID:       p.CategoryID,
			InStock:          p.InStock,
			CreatedAt:        p.CreatedAt,
			Details:          p.Details,
		})
	}

	for _, a := range articles {
		if a.ID == "" || a.Title == "" {
			return nil, errors.Errorf("seed article %q missing id or title", a.ID)
		}
		d.News = append(d.News, news.Article{
			ID:      a.ID,
			Title:   a.Title,
			Content: a.Content,
			Summary: a.Summary,
			Image:   a.Image,
			Images:  a.Images,
			Date:    a.Date,
			Author:  a.Author,
		})
	}
	sort.Slice(d.News, func(i, j int) bool {
		return d.News[i].Date.After(d.News[j].Date)
	})

	for _, s := range stores {
		d.Stores = append(d.Stores, store.Store(s))
	}

	return d, nil
}

func loadJSON(name string, v any) error {
	raw, err := dataFS.ReadFile(name)
	if err != nil {
		return errors.Wrapf(err, "read %s", name)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.Wrapf(err, "parse %s", name)
	}
	return nil
}
