// Command seed-sync reconciles the embedded seed dataset with a live
// database: it uploads missing catalog entries and news articles, refreshes
// the ones already present, and removes remote rows the seed no longer
// carries. It also doubles as a credential helper via -hash-password.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	gosync "sync"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/solodko/storefront/internal/domain/auth"
	"github.com/solodko/storefront/internal/seed"
	"github.com/solodko/storefront/internal/storage/postgres"
	storesync "github.com/solodko/storefront/internal/sync"
)

func main() {
	var (
		databaseURL  string
		hashPassword string
		pepper       string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&hashPassword, "hash-password", "", "print the admin password hash for this password and exit")
	flag.StringVar(&pepper, "pepper", "", "HMAC pepper for -hash-password (or SWEET_ADMIN_SESSION_PEPPER env)")
	flag.Parse()

	if hashPassword != "" {
		if pepper == "" {
			pepper = os.Getenv("SWEET_ADMIN_SESSION_PEPPER")
		}
		if pepper == "" {
			slog.Error("pepper is required: set --pepper or SWEET_ADMIN_SESSION_PEPPER")
			os.Exit(1)
		}
		fmt.Println(auth.HashPassword(hashPassword, []byte(pepper)))
		return
	}

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL); err != nil {
		slog.Error("sync failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("sync completed successfully")
}

// migrator runs the embedded schema at most once even when both sync passes
// ask for it concurrently.
type migrator struct {
	pool *pgxpool.Pool
	once gosync.Once
	err  error
}

func (m *migrator) EnsureSchema(ctx context.Context) error {
	m.once.Do(func() {
		m.err = postgres.RunMigrations(ctx, m.pool)
	})
	return m.err
}

func run(ctx context.Context, databaseURL string) error {
	data, err := seed.Load()
	if err != nil {
		return errors.Wrap(err, "load seed data")
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	lg, err := zap.NewProduction()
	if err != nil {
		return errors.Wrap(err, "create logger")
	}
	defer func() { _ = lg.Sync() }()

	reconciler := storesync.NewReconciler(
		&migrator{pool: pool},
		postgres.NewNewsRepository(pool),
		postgres.NewCategoryRepository(pool),
		postgres.NewProductRepository(pool),
		lg,
	)

	var newsStats, catalogStats storesync.Stats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		newsStats, err = reconciler.SyncNews(gctx, data.News)
		return err
	})
	g.Go(func() error {
		var err error
		catalogStats, err = reconciler.SyncCatalog(gctx, data.Categories, data.Products)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	var total storesync.Stats
	total.Add(newsStats)
	total.Add(catalogStats)

	out, err := json.Marshal(total)
	if err != nil {
		return errors.Wrap(err, "marshal stats")
	}
	fmt.Println(string(out))

	if total.Errors > 0 {
		return errors.Errorf("completed with %d errors", total.Errors)
	}
	return nil
}
