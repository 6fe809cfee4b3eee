package config

import (
	"flag"
	"io"
	"os"
	"testing"
	"time"
)

func loadWithArgs(t *testing.T, args ...string) *Config {
	t.Helper()

	if len(args) == 0 {
		args = []string{"test"}
	}

	oldCommandLine := flag.CommandLine
	oldArgs := os.Args

	flag.CommandLine = flag.NewFlagSet(args[0], flag.ContinueOnError)
	flag.CommandLine.SetOutput(io.Discard)
	os.Args = args

	t.Cleanup(func() {
		flag.CommandLine = oldCommandLine
		os.Args = oldArgs
	})

	return Load()
}

func TestLoad_Defaults(t *testing.T) {
	cfg := loadWithArgs(t, "test")

	if cfg.Server.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.Server.HTTPAddr)
	}
	if cfg.Feed.MaxEntries != 20 {
		t.Errorf("MaxEntries = %d, want 20", cfg.Feed.MaxEntries)
	}
	if cfg.Feed.ScrapeHead != 10 {
		t.Errorf("ScrapeHead = %d, want 10", cfg.Feed.ScrapeHead)
	}
	if cfg.Feed.ScrapeTimeout != 2500*time.Millisecond {
		t.Errorf("ScrapeTimeout = %v, want 2.5s", cfg.Feed.ScrapeTimeout)
	}
	if cfg.Feed.PlaceholderImage == "" {
		t.Error("PlaceholderImage should have a default")
	}
	if cfg.Usage.DailyImageLimit != 10 {
		t.Errorf("DailyImageLimit = %d, want 10", cfg.Usage.DailyImageLimit)
	}
}

func TestLoad_FeedURL_FromEnv(t *testing.T) {
	t.Setenv("FEED_URL", "https://alerts.example.com/feed")
	cfg := loadWithArgs(t, "test")
	if cfg.Feed.URL != "https://alerts.example.com/feed" {
		t.Errorf("Feed.URL = %q, want env value", cfg.Feed.URL)
	}
}

func TestLoad_FeedURL_FromFlag(t *testing.T) {
	t.Setenv("FEED_URL", "")
	cfg := loadWithArgs(t, "test", "-feed-url", "https://flag.example.com/feed")
	if cfg.Feed.URL != "https://flag.example.com/feed" {
		t.Errorf("Feed.URL = %q, want flag value", cfg.Feed.URL)
	}
}

func TestLoad_EnvOverridesFlag(t *testing.T) {
	t.Setenv("SCRAPE_HEAD", "3")
	cfg := loadWithArgs(t, "test", "-scrape-head", "7")
	if cfg.Feed.ScrapeHead != 3 {
		t.Errorf("ScrapeHead = %d, want env override 3", cfg.Feed.ScrapeHead)
	}
}

func TestLoad_InvalidEnvIgnored(t *testing.T) {
	t.Setenv("FEED_MAX_ENTRIES", "not-a-number")
	t.Setenv("SCRAPE_TIMEOUT", "soon")
	cfg := loadWithArgs(t, "test")
	if cfg.Feed.MaxEntries != 20 {
		t.Errorf("MaxEntries = %d, want default 20 for invalid env", cfg.Feed.MaxEntries)
	}
	if cfg.Feed.ScrapeTimeout != 2500*time.Millisecond {
		t.Errorf("ScrapeTimeout = %v, want default for invalid env", cfg.Feed.ScrapeTimeout)
	}
}

func TestLoad_DailyLimit_FromEnv(t *testing.T) {
	t.Setenv("DAILY_IMAGE_LIMIT", "25")
	cfg := loadWithArgs(t, "test")
	if cfg.Usage.DailyImageLimit != 25 {
		t.Errorf("DailyImageLimit = %d, want 25", cfg.Usage.DailyImageLimit)
	}
}
