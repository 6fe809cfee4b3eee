package feed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/promptvault/server/internal/config"
)

// RawEntry is one feed entry after field extraction but before image
// resolution. Every field except Link is defaultable; entries without a link
// are dropped later because their identity would be meaningless.
type RawEntry struct {
	Title       string
	Link        string
	PublishedAt time.Time
	// EmbeddedImage is the image found inside the entry's content block, or
	// "" when none exists. Absence is distinct from the placeholder; the
	// resolver decides the placeholder.
	EmbeddedImage string
}

// Fetcher retrieves the configured feed document and extracts typed entries
// from it. The document is parsed with a conformant parser; a malformed
// individual entry degrades to defaulted fields instead of aborting the run.
type Fetcher struct {
	cfg    config.FeedConfig
	parser *gofeed.Parser
}

// NewFetcher creates a fetcher for the configured feed source
func NewFetcher(cfg config.FeedConfig) *Fetcher {
	parser := gofeed.NewParser()
	parser.UserAgent = cfg.UserAgent
	return &Fetcher{
		cfg:    cfg,
		parser: parser,
	}
}

// Fetch retrieves and extracts up to MaxEntries entries. An error here means
// the whole batch failed; the caller decides how to surface that.
func (f *Fetcher) Fetch(ctx context.Context) ([]RawEntry, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, f.cfg.FetchTimeout)
	defer cancel()

	parsed, err := f.parser.ParseURLWithContext(f.cfg.URL, ctxWithTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed %s: %w", f.cfg.URL, err)
	}

	entries := make([]RawEntry, 0, len(parsed.Items))
	for i, item := range parsed.Items {
		if i >= f.cfg.MaxEntries {
			break
		}

		publishedAt := time.Now()
		if item.PublishedParsed != nil {
			publishedAt = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			publishedAt = *item.UpdatedParsed
		}

		entries = append(entries, RawEntry{
			Title:         item.Title,
			Link:          item.Link,
			PublishedAt:   publishedAt,
			EmbeddedImage: firstContentImage(item.Content),
		})
	}

	return entries, nil
}

// firstContentImage finds the first <img> source inside an entry's content
// block. Returns "" when the block is empty, unparsable, or has no image.
func firstContentImage(content string) string {
	if content == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return ""
	}

	src, _ := doc.Find("img").First().Attr("src")
	return src
}
