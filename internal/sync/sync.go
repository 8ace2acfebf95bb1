// Package sync implements one-shot reconciliation of the embedded seed
// dataset against the database: seed rows are upserted, remote rows absent
// from the seed are deleted. A failing row is counted and skipped, not fatal;
// only a schema failure aborts a run.
package sync

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/solodko/storefront/internal/domain/category"
	"github.com/solodko/storefront/internal/domain/news"
	"github.com/solodko/storefront/internal/domain/product"
)

// Stats aggregates the outcome of one reconciliation pass.
type Stats struct {
	Uploaded int `json:"uploaded"`
	Updated  int `json:"updated"`
	Deleted  int `json:"deleted"`
	Errors   int `json:"errors"`
}

// Add merges other into s.
func (s *Stats) Add(other Stats) {
	s.Uploaded += other.Uploaded
	s.Updated += other.Updated
	s.Deleted += other.Deleted
	s.Errors += other.Errors
}

// SchemaEnsurer prepares the target tables. Implementations must be
// idempotent; running them against an existing schema is a no-op.
type SchemaEnsurer interface {
	EnsureSchema(ctx context.Context) error
}

// Reconciler aligns seed data with the remote news and catalog tables.
type Reconciler struct {
	schema     SchemaEnsurer
	news       news.Repository
	categories category.Repository
	products   product.Repository
	lg         *zap.Logger
}

// NewReconciler creates a Reconciler over the given repositories.
func NewReconciler(
	schema SchemaEnsurer,
	newsRepo news.Repository,
	categories category.Repository,
	products product.Repository,
	lg *zap.Logger,
) *Reconciler {
	return &Reconciler{
		schema:     schema,
		news:       newsRepo,
		categories: categories,
		products:   products,
		lg:         lg,
	}
}

// SyncNews reconciles the seed articles with the news table.
func (r *Reconciler) SyncNews(ctx context.Context, seed []news.Article) (Stats, error) {
	var stats Stats

	if err := r.schema.EnsureSchema(ctx); err != nil {
		return stats, errors.Wrap(err, "ensure schema")
	}

	remoteIDs, err := r.news.ListIDs(ctx)
	if err != nil {
		return stats, errors.Wrap(err, "list remote article ids")
	}
	remote := toSet(remoteIDs)

	seedIDs := make(map[string]bool, len(seed))
	for i := range seed {
		a := &seed[i]
		seedIDs[a.ID] = true

		if remote[a.ID] {
			if err := r.news.Update(ctx, a); err != nil {
				stats.Errors++
				r.lg.Error("update article failed", zap.String("id", a.ID), zap.Error(err))
				continue
			}
			stats.Updated++
		} else {
			if err := r.news.Create(ctx, a); err != nil {
				stats.Errors++
				r.lg.Error("insert article failed", zap.String("id", a.ID), zap.Error(err))
				continue
			}
			stats.Uploaded++
		}
	}

	for _, id := range remoteIDs {
		if seedIDs[id] {
			continue
		}
		if err := r.news.Delete(ctx, id); err != nil {
			stats.Errors++
			r.lg.Error("delete article failed", zap.String("id", id), zap.Error(err))
			continue
		}
		stats.Deleted++
	}

	return stats, nil
}

// SyncCatalog reconciles seed categories and products with the catalog
// tables. Categories go first so product foreign keys resolve; product
// deletions go before category deletions for the same reason.
func (r *Reconciler) SyncCatalog(ctx context.Context, categories []category.Category, products []product.Product) (Stats, error) {
	var stats Stats

	if err := r.schema.EnsureSchema(ctx); err != nil {
		return stats, errors.Wrap(err, "ensure schema")
	}

	for i := range categories {
		c := &categories[i]
		if err := r.categories.Upsert(ctx, c); err != nil {
			stats.Errors++
			r.lg.Error("upsert category failed", zap.String("id", c.ID), zap.Error(err))
		}
	}

	remoteIDs, err := r.products.ListIDs(ctx)
	if err != nil {
		return stats, errors.Wrap(err, "list remote product ids")
	}
	remote := toSet(remoteIDs)

	seedIDs := make(map[string]bool, len(products))
	for i := range products {
		p := &products[i]
		seedIDs[p.ID] = true

		if err := r.products.Upsert(ctx, p); err != nil {
			stats.Errors++
			r.lg.Error("upsert product failed", zap.String("id", p.ID), zap.Error(err))
			continue
		}
		if remote[p.ID] {
			stats.Updated++
		} else {
			stats.Uploaded++
		}
	}

	for _, id := range remoteIDs {
		if seedIDs[id] {
			continue
		}
		if err := r.products.Delete(ctx, id); err != nil {
			stats.Errors++
			r.lg.Error("delete product failed", zap.String("id", id), zap.Error(err))
			continue
		}
		stats.Deleted++
	}

	return stats, nil
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
