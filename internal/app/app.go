package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/solodko/storefront/internal/domain/auth"
	"github.com/solodko/storefront/internal/domain/cart"
	"github.com/solodko/storefront/internal/domain/news"
	"github.com/solodko/storefront/internal/handler"
	"github.com/solodko/storefront/internal/seed"
	"github.com/solodko/storefront/internal/storage/images"
	"github.com/solodko/storefront/internal/storage/memstore"
	"github.com/solodko/storefront/internal/storage/postgres"
	"github.com/solodko/storefront/internal/storage/redisstore"
	"github.com/solodko/storefront/pkg/health"
	"github.com/solodko/storefront/pkg/httpmiddleware"
)

// janitorInterval is how often in-memory stores sweep expired entries.
const janitorInterval = 5 * time.Minute

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Embedded seed dataset: store directory, news fallback, and the initial
	// catalog for a fresh database.
	seedData, err := seed.Load()
	if err != nil {
		return errors.Wrap(err, "load seed data")
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	// Carts and admin sessions live in Redis when configured, otherwise in
	// process memory with periodic expiry sweeps.
	var (
		cartStore    cart.Store
		sessionStore auth.SessionStore
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return errors.Wrap(err, "parse redis URL")
		}
		client := redis.NewClient(opts)
		defer client.Close()

		healthSvc.AddReadinessCheck("redis", 5*time.Second, func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
		cartStore = redisstore.NewCartStore(client, cfg.CartTTL)
		sessionStore = redisstore.NewSessionStore(client)
	} else {
		carts := memstore.NewCartStore(cfg.CartTTL)
		carts.StartJanitor(ctx, janitorInterval)
		sessions := memstore.NewSessionStore()
		sessions.StartJanitor(ctx, janitorInterval)
		cartStore = carts
		sessionStore = sessions
	}

	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Repositories.
	productRepo := postgres.NewProductRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	newsRepo := postgres.NewNewsRepository(pool)
	contactRepo := postgres.NewContactRepository(pool)

	// Domain services.
	newsSvc := news.NewService(newsRepo, seedData.News, lg.Named("news"))
	cartSvc := cart.NewService(cartStore, productRepo)
	authSvc, err := auth.NewService(
		cfg.Admin.Username,
		cfg.Admin.PasswordHash,
		[]byte(cfg.Admin.SessionPepper),
		cfg.Admin.SessionTTL,
		sessionStore,
	)
	if err != nil {
		return errors.Wrap(err, "create auth service")
	}

	imageStore, err := images.NewStore(cfg.ImageDir, cfg.ImageBaseURL)
	if err != nil {
		return errors.Wrap(err, "create image store")
	}

	// HTTP handlers.
	h := handler.NewHandler(
		productRepo,
		categoryRepo,
		newsSvc,
		cartSvc,
		authSvc,
		contactRepo,
		seedData.Stores,
		imageStore,
	)

	// Mux: health endpoints, uploaded images, and the API routes.
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/images/", http.StripPrefix("/images/", http.FileServer(http.Dir(imageStore.Root()))))
	mux.Handle("/api/", h.Routes())

	instrumented := otelhttp.NewHandler(mux, "storefront-api",
		otelhttp.WithTracerProvider(m.TracerProvider()),
		otelhttp.WithMeterProvider(m.MeterProvider()),
	)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(instrumented,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
