package models

// FeedEntry is one external article produced by a single aggregation run. The
// ID is the article's canonical URL; there is no separate primary key. Entries
// are built once, sorted once, and handed to the caller, never mutated or
// persisted.
type FeedEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
	// Image is never empty; when no real image can be resolved the configured
	// placeholder URL is substituted.
	Image string `json:"image"`
	// Date is an RFC 3339 timestamp string. Entries whose source omits a
	// publish date get "now", which makes them indistinguishable from
	// genuinely current entries. Accepted lossy behavior.
	Date string `json:"date"`
}
