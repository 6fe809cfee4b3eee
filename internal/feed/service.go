package feed

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/promptvault/server/internal/cache"
	"github.com/promptvault/server/internal/config"
	"github.com/promptvault/server/internal/logging"
	"github.com/promptvault/server/internal/models"
)

const newsCacheKey = "news_feed"

// Service orchestrates one aggregation run: fetch the feed document, extract
// and normalize each entry, unwrap redirect links, resolve article images for
// a bounded head subset, and produce a date-descending FeedEntry list.
type Service struct {
	cfg     config.FeedConfig
	fetcher *Fetcher
	scraper *Scraper
	cache   cache.Cache
	logger  *logging.Logger
}

// NewService creates the news aggregation service
func NewService(cfg config.FeedConfig, fetcher *Fetcher, scraper *Scraper, c cache.Cache, logger *logging.Logger) *Service {
	return &Service{
		cfg:     cfg,
		fetcher: fetcher,
		scraper: scraper,
		cache:   c,
		logger:  logger,
	}
}

// News returns the aggregated entry list. A failure fetching the feed
// document is fatal to the whole call and surfaces as an empty list (logged,
// not retried); failures inside individual entries are absorbed per-entry and
// never abort the batch.
func (s *Service) News(ctx context.Context) []models.FeedEntry {
	if cached, ok := s.loadFromCache(); ok {
		return cached
	}

	raw, err := s.fetcher.Fetch(ctx)
	if err != nil {
		s.logger.Warn("Feed fetch failed, returning empty list", logging.WithField("error", err.Error()))
		return []models.FeedEntry{}
	}

	entries := s.buildEntries(raw)
	s.resolveImages(ctx, entries)

	sort.Slice(entries, func(i, j int) bool {
		return parseDate(entries[i].Date).After(parseDate(entries[j].Date))
	})

	if s.cache != nil {
		s.cache.SetWithTTL(newsCacheKey, entries, s.cfg.CacheTTL)
	}

	s.logger.Info("Aggregation complete", logging.WithField("count", len(entries)))
	return entries
}

// buildEntries runs extraction, title normalization, and redirect unwrapping
// over the raw entries, dropping any entry without a resolvable link.
func (s *Service) buildEntries(raw []RawEntry) []models.FeedEntry {
	entries := make([]models.FeedEntry, 0, len(raw))
	for _, r := range raw {
		if r.Link == "" {
			continue
		}

		url := UnwrapRedirect(r.Link)

		image := r.EmbeddedImage
		if !usableImage(image) {
			image = s.cfg.PlaceholderImage
		}

		entries = append(entries, models.FeedEntry{
			ID:    url,
			Title: NormalizeTitle(r.Title),
			URL:   url,
			Image: image,
			Date:  r.PublishedAt.UTC().Format(time.RFC3339),
		})
	}
	return entries
}

// resolveImages scrapes article images for the first ScrapeHead entries that
// still carry the placeholder. Scrapes run concurrently under a worker cap
// and a shared batch deadline derived from the per-page timeout, so one slow
// site cannot stall the batch. Tail entries keep their embedded image or the
// placeholder as-is.
func (s *Service) resolveImages(ctx context.Context, entries []models.FeedEntry) {
	if s.scraper == nil || s.cfg.ScrapeHead <= 0 {
		return
	}

	head := s.cfg.ScrapeHead
	if head > len(entries) {
		head = len(entries)
	}

	workers := s.cfg.ScrapeConcurrency
	if workers < 1 {
		workers = 1
	}

	waves := (head + workers - 1) / workers
	batchCtx, cancel := context.WithTimeout(ctx, s.cfg.ScrapeTimeout*time.Duration(waves+1))
	defer cancel()

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i := 0; i < head; i++ {
		if entries[i].Image != s.cfg.PlaceholderImage {
			continue
		}

		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-batchCtx.Done():
				return
			}
			defer func() { <-sem }()

			// Each goroutine writes only its own index; no shared state.
			entries[idx].Image = s.scraper.Resolve(batchCtx, entries[idx].URL)
		}(i)
	}

	wg.Wait()
}

// loadFromCache handles both the in-memory case (typed slice survives) and
// the Redis case (values come back as decoded JSON and need a round trip).
func (s *Service) loadFromCache() ([]models.FeedEntry, bool) {
	if s.cache == nil {
		return nil, false
	}

	cached, ok := s.cache.Get(newsCacheKey)
	if !ok || cached == nil {
		return nil, false
	}

	if entries, ok := cached.([]models.FeedEntry); ok {
		return entries, true
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return nil, false
	}

	var entries []models.FeedEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false
	}
	// An empty list is a valid cached aggregation, not a miss.
	if entries == nil {
		entries = []models.FeedEntry{}
	}
	return entries, true
}

func parseDate(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
