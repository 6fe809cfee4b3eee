package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/promptvault/server/internal/cache"
	"github.com/promptvault/server/internal/config"
	"github.com/promptvault/server/internal/testutil"
)

const testPlaceholder = "https://placehold.example.com/600x400.png"

func scrapeConfig() config.FeedConfig {
	return config.FeedConfig{
		ScrapeTimeout:    500 * time.Millisecond,
		PlaceholderImage: testPlaceholder,
		UserAgent:        "test-agent/1.0",
	}
}

func newTestScraper(c cache.Cache) *Scraper {
	return NewScraper(scrapeConfig(), c, nil, testutil.NullLogger())
}

func TestScraper_OGImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head>
			<meta property="og:image" content="https://img.example.com/og.jpg">
			<meta name="twitter:image" content="https://img.example.com/tw.jpg">
		</head><body></body></html>`))
	}))
	defer srv.Close()

	got := newTestScraper(nil).Resolve(context.Background(), srv.URL)
	if got != "https://img.example.com/og.jpg" {
		t.Errorf("Resolve() = %q, want og:image value", got)
	}
}

func TestScraper_FallbackOrder(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "twitter image when no og",
			html: `<meta name="twitter:image" content="https://img.example.com/tw.jpg">`,
			want: "https://img.example.com/tw.jpg",
		},
		{
			name: "secure url variant",
			html: `<meta property="og:image:secure_url" content="https://img.example.com/sec.jpg">`,
			want: "https://img.example.com/sec.jpg",
		},
		{
			name: "generic image meta",
			html: `<meta name="image" content="https://img.example.com/meta.jpg">`,
			want: "https://img.example.com/meta.jpg",
		},
		{
			name: "link image_src hint",
			html: `<link rel="image_src" href="https://img.example.com/link.jpg">`,
			want: "https://img.example.com/link.jpg",
		},
		{
			name: "no image at all",
			html: `<title>nothing here</title>`,
			want: testPlaceholder,
		},
		{
			name: "data uri rejected",
			html: `<meta property="og:image" content="data:image/png;base64,AAAA">`,
			want: testPlaceholder,
		},
		{
			name: "trivially short value rejected",
			html: `<meta property="og:image" content="x.png">`,
			want: testPlaceholder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html><head>" + tt.html + "</head><body></body></html>"))
			}))
			defer srv.Close()

			got := newTestScraper(nil).Resolve(context.Background(), srv.URL)
			if got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScraper_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	got := newTestScraper(nil).Resolve(context.Background(), srv.URL)
	if got != testPlaceholder {
		t.Errorf("Resolve() = %q, want placeholder on 403", got)
	}
}

func TestScraper_UnreachableHost(t *testing.T) {
	got := newTestScraper(nil).Resolve(context.Background(), "http://127.0.0.1:1/nothing")
	if got != testPlaceholder {
		t.Errorf("Resolve() = %q, want placeholder for unreachable host", got)
	}
}

func TestScraper_MalformedURL(t *testing.T) {
	got := newTestScraper(nil).Resolve(context.Background(), "http://bad\x7f/")
	if got != testPlaceholder {
		t.Errorf("Resolve() = %q, want placeholder for malformed URL", got)
	}
}

func TestScraper_SlowHostTimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	start := time.Now()
	got := newTestScraper(nil).Resolve(context.Background(), srv.URL)
	elapsed := time.Since(start)

	if got != testPlaceholder {
		t.Errorf("Resolve() = %q, want placeholder on timeout", got)
	}
	if elapsed > time.Second {
		t.Errorf("Resolve() took %v, should respect the %v timeout", elapsed, 500*time.Millisecond)
	}
}

func TestScraper_SendsBrowserUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(`<html><head></head></html>`))
	}))
	defer srv.Close()

	newTestScraper(nil).Resolve(context.Background(), srv.URL)
	if gotUA != "test-agent/1.0" {
		t.Errorf("User-Agent = %q, want configured agent", gotUA)
	}
}

func TestScraper_CachesResult(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`<html><head><meta property="og:image" content="https://img.example.com/og.jpg"></head></html>`))
	}))
	defer srv.Close()

	c := cache.NewMemory(time.Minute)
	defer c.Stop()
	s := newTestScraper(c)

	first := s.Resolve(context.Background(), srv.URL)
	second := s.Resolve(context.Background(), srv.URL)

	if first != second {
		t.Errorf("cached Resolve() mismatch: %q vs %q", first, second)
	}
	if calls != 1 {
		t.Errorf("origin fetched %d times, want 1", calls)
	}
}
