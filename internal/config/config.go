package config

import (
	"flag"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration. It is built once at startup and
// passed by reference; nothing reads the environment after Load returns.
type Config struct {
	Server    ServerConfig
	Cache     CacheConfig
	Logging   LoggingConfig
	Feed      FeedConfig
	Vault     VaultConfig
	Billing   BillingConfig
	Auth      AuthConfig
	Providers ProvidersConfig
	Usage     UsageConfig
	Support   SupportConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	HTTPAddr string
}

// CacheConfig holds cache configuration
type CacheConfig struct {
	Backend   string // "memory" or "redis"
	TTL       time.Duration
	RedisAddr string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
}

// FeedConfig holds news aggregation configuration
type FeedConfig struct {
	// URL is the pre-configured feed source.
	URL string
	// MaxEntries caps how many raw feed entries one aggregation run consumes.
	MaxEntries int
	// ScrapeHead is how many leading entries are eligible for live article-image
	// resolution; the rest keep their embedded image or the placeholder. The split
	// bounds wall-clock latency and is tunable, not a contract.
	ScrapeHead int
	// ScrapeConcurrency bounds how many image scrapes run at once.
	ScrapeConcurrency int
	// ScrapeTimeout is the per-page budget for one image scrape.
	ScrapeTimeout time.Duration
	// FetchTimeout is the budget for the top-level feed fetch.
	FetchTimeout time.Duration
	// CacheTTL is how long one aggregated result is reused.
	CacheTTL time.Duration
	// PlaceholderImage is substituted whenever no real image can be resolved.
	PlaceholderImage string
	// UserAgent is sent on scrape requests; some sites block non-browser clients.
	UserAgent string
	// ScrapeRateLimit is the minimum delay between scrapes of the same host.
	ScrapeRateLimit time.Duration
}

// VaultConfig identifies the GitHub repository that hosts portal content
type VaultConfig struct {
	Owner  string
	Repo   string
	Branch string
	Token  string // optional, for private repos
}

// BillingConfig holds Stripe configuration
type BillingConfig struct {
	StripeSecretKey string
}

// AuthConfig holds token validation settings. Tokens are issued by an external
// identity provider; this server only verifies them.
type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
}

// ProvidersConfig holds upstream AI provider credentials
type ProvidersConfig struct {
	AnthropicAPIKey string
	OpenAIAPIKey    string
	GeminiAPIKey    string
}

// UsageConfig holds daily quota settings
type UsageConfig struct {
	DailyImageLimit int
}

// SupportConfig holds the hosted support tracker credentials
type SupportConfig struct {
	APIKey     string
	DatabaseID string
}

const defaultPlaceholderImage = "https://placehold.co/600x400/f3f4f6/9ca3af/png?text=AI+News"

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36"

// Load parses flags and environment variables to build configuration
func Load() *Config {
	httpAddr := flag.String("http", ":8080", "HTTP server address")
	cacheTTL := flag.Duration("cache-ttl", 5*time.Minute, "Default cache TTL")
	cacheBackend := flag.String("cache-backend", "memory", "Cache backend: memory or redis")
	redisAddr := flag.String("redis-addr", "localhost:6379", "Redis server address")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	feedURL := flag.String("feed-url", "", "News feed URL")
	feedMaxEntries := flag.Int("feed-max-entries", 20, "Max raw feed entries per aggregation run")
	scrapeHead := flag.Int("scrape-head", 10, "Leading entries eligible for article-image scraping")
	scrapeConcurrency := flag.Int("scrape-concurrency", 5, "Concurrent article-image scrapes")
	scrapeTimeout := flag.Duration("scrape-timeout", 2500*time.Millisecond, "Per-page image scrape timeout")
	feedFetchTimeout := flag.Duration("feed-fetch-timeout", 15*time.Second, "Feed document fetch timeout")
	feedCacheTTL := flag.Duration("feed-cache-ttl", 5*time.Minute, "Aggregated feed cache TTL")
	scrapeRateLimit := flag.Duration("scrape-rate-limit", time.Second, "Minimum delay between scrapes of the same host")

	flag.Parse()

	applyEnvOverrides(httpAddr, cacheTTL, cacheBackend, redisAddr, logLevel,
		feedURL, feedMaxEntries, scrapeHead, scrapeConcurrency, scrapeTimeout,
		feedFetchTimeout, feedCacheTTL, scrapeRateLimit)

	cfg := &Config{}

	cfg.Server = ServerConfig{
		HTTPAddr: *httpAddr,
	}

	cfg.Cache = CacheConfig{
		Backend:   *cacheBackend,
		TTL:       *cacheTTL,
		RedisAddr: *redisAddr,
	}

	cfg.Logging = LoggingConfig{
		Level: *logLevel,
	}

	cfg.Feed = FeedConfig{
		URL:               *feedURL,
		MaxEntries:        *feedMaxEntries,
		ScrapeHead:        *scrapeHead,
		ScrapeConcurrency: *scrapeConcurrency,
		ScrapeTimeout:     *scrapeTimeout,
		FetchTimeout:      *feedFetchTimeout,
		CacheTTL:          *feedCacheTTL,
		PlaceholderImage:  getEnvOrDefault("FEED_PLACEHOLDER_IMAGE", defaultPlaceholderImage),
		UserAgent:         getEnvOrDefault("SCRAPE_USER_AGENT", defaultUserAgent),
		ScrapeRateLimit:   *scrapeRateLimit,
	}

	cfg.Vault = VaultConfig{
		Owner:  getEnvOrDefault("GITHUB_OWNER", ""),
		Repo:   getEnvOrDefault("GITHUB_REPO", "vault-content"),
		Branch: getEnvOrDefault("GITHUB_BRANCH", "main"),
		Token:  os.Getenv("GITHUB_TOKEN"),
	}

	cfg.Billing = BillingConfig{
		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
	}

	cfg.Auth = AuthConfig{
		JWTSecret:   getEnvOrDefault("AUTH_JWT_SECRET", "change-me-in-production"),
		JWTIssuer:   os.Getenv("AUTH_JWT_ISSUER"),
		JWTAudience: os.Getenv("AUTH_JWT_AUDIENCE"),
	}

	cfg.Providers = ProvidersConfig{
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		GeminiAPIKey:    os.Getenv("NANO_API_KEY"),
	}

	cfg.Usage = UsageConfig{
		DailyImageLimit: getEnvInt("DAILY_IMAGE_LIMIT", 10),
	}

	cfg.Support = SupportConfig{
		APIKey:     os.Getenv("NOTION_API_KEY"),
		DatabaseID: os.Getenv("NOTION_SUPPORT_DATABASE_ID"),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func applyEnvOverrides(
	httpAddr *string,
	cacheTTL *time.Duration,
	cacheBackend *string,
	redisAddr *string,
	logLevel *string,
	feedURL *string,
	feedMaxEntries *int,
	scrapeHead *int,
	scrapeConcurrency *int,
	scrapeTimeout *time.Duration,
	feedFetchTimeout *time.Duration,
	feedCacheTTL *time.Duration,
	scrapeRateLimit *time.Duration,
) {
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		*httpAddr = v
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*cacheTTL = d
		}
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		*cacheBackend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		*redisAddr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		*logLevel = v
	}
	if v := os.Getenv("FEED_URL"); v != "" {
		*feedURL = v
	}
	if v := os.Getenv("FEED_MAX_ENTRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*feedMaxEntries = n
		}
	}
	if v := os.Getenv("SCRAPE_HEAD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			*scrapeHead = n
		}
	}
	if v := os.Getenv("SCRAPE_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*scrapeConcurrency = n
		}
	}
	if v := os.Getenv("SCRAPE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*scrapeTimeout = d
		}
	}
	if v := os.Getenv("FEED_FETCH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*feedFetchTimeout = d
		}
	}
	if v := os.Getenv("FEED_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*feedCacheTTL = d
		}
	}
	if v := os.Getenv("SCRAPE_RATE_LIMIT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*scrapeRateLimit = d
		}
	}
}
