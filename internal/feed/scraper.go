package feed

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/promptvault/server/internal/cache"
	"github.com/promptvault/server/internal/config"
	"github.com/promptvault/server/internal/logging"
	"github.com/promptvault/server/internal/ratelimit"
)

const (
	scrapeCachePrefix = "article_image:"
	scrapeCacheTTL    = 7 * 24 * time.Hour
)

// metaSelectors are consulted in order; the first usable value wins.
var metaSelectors = []struct {
	selector string
	attr     string
}{
	{`meta[property="og:image"]`, "content"},
	{`meta[name="twitter:image"]`, "content"},
	{`meta[property="og:image:secure_url"]`, "content"},
	{`meta[name="image"]`, "content"},
	{`link[rel="image_src"]`, "href"},
}

// Scraper resolves a representative image for an article URL. Every internal
// failure substitutes the placeholder; a missing thumbnail never blocks the
// surrounding aggregation.
type Scraper struct {
	cfg     config.FeedConfig
	client  *http.Client
	cache   cache.Cache
	limiter *ratelimit.Limiter
	logger  *logging.Logger
}

// NewScraper creates an article-image scraper
func NewScraper(cfg config.FeedConfig, c cache.Cache, limiter *ratelimit.Limiter, logger *logging.Logger) *Scraper {
	return &Scraper{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.ScrapeTimeout,
		},
		cache:   c,
		limiter: limiter,
		logger:  logger,
	}
}

// Resolve returns an image URL for the article. It never returns an error;
// every failure path yields the configured placeholder. Results, placeholder
// included, are cached so repeat aggregations skip the page fetch.
func (s *Scraper) Resolve(ctx context.Context, articleURL string) string {
	cacheKey := scrapeCachePrefix + articleURL
	if s.cache != nil {
		if cached, ok := s.cache.Get(cacheKey); ok {
			if img, ok := cached.(string); ok && img != "" {
				return img
			}
		}
	}

	img := s.scrape(ctx, articleURL)

	if s.cache != nil {
		s.cache.SetWithTTL(cacheKey, img, scrapeCacheTTL)
	}
	return img
}

func (s *Scraper) scrape(ctx context.Context, articleURL string) string {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx, articleURL); err != nil {
			return s.cfg.PlaceholderImage
		}
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, s.cfg.ScrapeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctxWithTimeout, http.MethodGet, articleURL, nil)
	if err != nil {
		return s.cfg.PlaceholderImage
	}
	// Some publishers reject non-browser clients outright.
	req.Header.Set("User-Agent", s.cfg.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Debug("Article image fetch failed", logging.WithFields(map[string]interface{}{
			"url":   articleURL,
			"error": err.Error(),
		}))
		return s.cfg.PlaceholderImage
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Debug("Article image fetch returned non-success status", logging.WithFields(map[string]interface{}{
			"url":    articleURL,
			"status": resp.StatusCode,
		}))
		return s.cfg.PlaceholderImage
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return s.cfg.PlaceholderImage
	}

	for _, ms := range metaSelectors {
		val, _ := doc.Find(ms.selector).First().Attr(ms.attr)
		if usableImage(val) {
			return val
		}
	}

	return s.cfg.PlaceholderImage
}

// usableImage rejects trivially short values and inlined data URIs
func usableImage(val string) bool {
	return len(val) > 5 && !strings.HasPrefix(val, "data:")
}
