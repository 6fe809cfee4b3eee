package app

import (
	"context"

	"github.com/promptvault/server/internal/auth"
	"github.com/promptvault/server/internal/billing"
	"github.com/promptvault/server/internal/cache"
	"github.com/promptvault/server/internal/config"
	"github.com/promptvault/server/internal/feed"
	"github.com/promptvault/server/internal/httpapi"
	"github.com/promptvault/server/internal/logging"
	"github.com/promptvault/server/internal/providers"
	"github.com/promptvault/server/internal/ratelimit"
	"github.com/promptvault/server/internal/support"
	"github.com/promptvault/server/internal/usage"
	"github.com/promptvault/server/internal/vault"
)

// App holds all application dependencies
type App struct {
	Config         *config.Config
	Logger         *logging.Logger
	Cache          cache.Cache
	FeedSvc        *feed.Service
	VaultClient    *vault.Client
	BillingSvc     *billing.Service
	SupportClient  *support.Client
	UsageStore     usage.Store
	AuthMiddleware *auth.Middleware
	HTTPServer     *httpapi.Server
}

// New creates and initializes a new App instance
func New(cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}

	app.Logger = logging.New(logging.ParseLevel(cfg.Logging.Level))

	app.initCacheAndUsage()

	// Feed aggregation
	limiter := ratelimit.New(cfg.Feed.ScrapeRateLimit)
	fetcher := feed.NewFetcher(cfg.Feed)
	scraper := feed.NewScraper(cfg.Feed, app.Cache, limiter, app.Logger)
	app.FeedSvc = feed.NewService(cfg.Feed, fetcher, scraper, app.Cache, app.Logger)

	// Content vault and billing
	app.VaultClient = vault.NewClient(cfg.Vault, app.Cache, app.Logger)
	app.BillingSvc = billing.NewService(cfg.Billing.StripeSecretKey, app.Logger)

	// Upstream AI providers
	anthropic := providers.NewAnthropicClient(cfg.Providers.AnthropicAPIKey, app.Logger)
	openaiClient := providers.NewOpenAIClient(cfg.Providers.OpenAIAPIKey, app.Logger)
	gemini := providers.NewGeminiClient(cfg.Providers.GeminiAPIKey, app.Logger)

	app.SupportClient = support.NewClient(cfg.Support, app.Logger)

	app.AuthMiddleware = auth.NewMiddleware(auth.NewVerifier(cfg.Auth))

	app.HTTPServer = httpapi.New(
		app.FeedSvc,
		app.VaultClient,
		app.BillingSvc,
		anthropic,
		openaiClient,
		gemini,
		app.SupportClient,
		app.UsageStore,
		cfg.Usage.DailyImageLimit,
		app.AuthMiddleware,
		app.Logger,
	)

	return app, nil
}

// initCacheAndUsage sets up the cache backend and the quota store. When
// Redis is reachable both share one connection; otherwise both fall back to
// process memory.
func (a *App) initCacheAndUsage() {
	if a.Config.Cache.Backend == "redis" {
		a.Logger.Info("Using Redis cache backend", logging.WithField("addr", a.Config.Cache.RedisAddr))
		redisCache, err := cache.NewRedis(cache.RedisConfig{
			Addr:   a.Config.Cache.RedisAddr,
			Prefix: "vault:",
		}, a.Config.Cache.TTL)
		if err == nil {
			a.Cache = redisCache
			a.UsageStore = usage.NewRedisStore(redisCache.Client(), "vault:")
			a.Logger.Info("Using Redis for usage counters")
			return
		}
		a.Logger.Error("Failed to connect to Redis, falling back to memory cache", logging.WithField("error", err.Error()))
	} else {
		a.Logger.Info("Using in-memory cache backend")
	}

	a.Cache = cache.NewMemory(a.Config.Cache.TTL)
	a.UsageStore = usage.NewMemoryStore()
}

// Run starts the HTTP server and warms the news cache in the background
func (a *App) Run(ctx context.Context) error {
	a.Logger.Info("Starting HTTP server", logging.WithField("addr", a.Config.Server.HTTPAddr))

	go func() {
		a.Logger.Info("Warming news feed in background...")
		a.FeedSvc.News(ctx)
		a.Logger.Info("Initial feed aggregation complete")
	}()

	return a.HTTPServer.Start(a.Config.Server.HTTPAddr)
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown(ctx context.Context) error {
	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error("HTTP server shutdown error", logging.WithField("error", err.Error()))
		}
	}

	if mc, ok := a.Cache.(*cache.MemoryCache); ok {
		mc.Stop()
	}
	if rc, ok := a.Cache.(*cache.RedisCache); ok {
		if err := rc.Close(); err != nil {
			a.Logger.Error("Redis close error", logging.WithField("error", err.Error()))
		}
	}

	a.Logger.Sync()
	return nil
}
