package ratelimit

import (
	"context"
	"net/url"
	"sync"
	"time"
)

// Limiter enforces a minimum interval between requests to the same host. The
// image scraper uses it so a batch of head-entry scrapes pointing at one
// publisher does not hammer that site.
type Limiter struct {
	mu          sync.Mutex
	hosts       map[string]time.Time
	minInterval time.Duration
}

// New creates a limiter with the given minimum interval per host
func New(minInterval time.Duration) *Limiter {
	return &Limiter{
		hosts:       make(map[string]time.Time),
		minInterval: minInterval,
	}
}

// Allow reports whether a request to target may proceed now, recording the
// attempt when it may. Target can be a bare host or a full URL.
func (l *Limiter) Allow(target string) bool {
	host := hostOf(target)

	l.mu.Lock()
	defer l.mu.Unlock()

	last, ok := l.hosts[host]
	now := time.Now()
	if ok && now.Sub(last) < l.minInterval {
		return false
	}
	l.hosts[host] = now
	return true
}

// Wait blocks until a request to target is allowed, then records it. It
// returns early without recording if ctx is cancelled first.
func (l *Limiter) Wait(ctx context.Context, target string) error {
	host := hostOf(target)

	for {
		l.mu.Lock()
		last, ok := l.hosts[host]
		now := time.Now()
		if !ok || now.Sub(last) >= l.minInterval {
			l.hosts[host] = now
			l.mu.Unlock()
			return nil
		}
		sleep := l.minInterval - now.Sub(last)
		l.mu.Unlock()

		timer := time.NewTimer(sleep)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}

// Reset clears the recorded timestamp for one host
func (l *Limiter) Reset(target string) {
	host := hostOf(target)

	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.hosts, host)
}

// ResetAll clears all recorded timestamps
func (l *Limiter) ResetAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hosts = make(map[string]time.Time)
}

func hostOf(target string) string {
	if u, err := url.Parse(target); err == nil && u.Host != "" {
		return u.Host
	}
	return target
}
