package usage

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore_IncrementSequence(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for want := 1; want <= 5; want++ {
		got, err := store.Increment(ctx, "user-1")
		if err != nil {
			t.Fatalf("Increment failed: %v", err)
		}
		if got != want {
			t.Errorf("Expected count %d, got %d", want, got)
		}
	}
}

func TestMemoryStore_PeekWithoutIncrement(t *testing.T) {
	store := NewMemoryStore()

	count, err := store.Peek(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Peek failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 for unseen user, got %d", count)
	}
}

func TestMemoryStore_UsersAreIndependent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.Increment(ctx, "user-a")
	store.Increment(ctx, "user-a")
	store.Increment(ctx, "user-b")

	a, _ := store.Peek(ctx, "user-a")
	b, _ := store.Peek(ctx, "user-b")
	if a != 2 || b != 1 {
		t.Errorf("Expected a=2 b=1, got a=%d b=%d", a, b)
	}
}

func TestMemoryStore_DecrementFloorsAtZero(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Decrement(ctx, "user-1"); err != nil {
		t.Fatalf("Decrement on missing counter failed: %v", err)
	}
	count, _ := store.Peek(ctx, "user-1")
	if count != 0 {
		t.Errorf("Expected 0 after decrementing missing counter, got %d", count)
	}

	store.Increment(ctx, "user-1")
	store.Decrement(ctx, "user-1")
	store.Decrement(ctx, "user-1")
	count, _ = store.Peek(ctx, "user-1")
	if count != 0 {
		t.Errorf("Expected floor at 0, got %d", count)
	}
}

func TestMemoryStore_DayRollover(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	day1 := time.Date(2026, 3, 1, 23, 50, 0, 0, time.UTC)
	store.now = func() time.Time { return day1 }

	store.Increment(ctx, "user-1")
	store.Increment(ctx, "user-1")

	store.now = func() time.Time { return day1.Add(time.Hour) }

	count, err := store.Peek(ctx, "user-1")
	if err != nil {
		t.Fatalf("Peek failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected fresh counter after midnight, got %d", count)
	}

	got, _ := store.Increment(ctx, "user-1")
	if got != 1 {
		t.Errorf("Expected new day to start at 1, got %d", got)
	}
}

func TestDayKey_Format(t *testing.T) {
	at := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	key := dayKey("abc123", at)
	if key != "usage:abc123:2026-08-30" {
		t.Errorf("Unexpected key: %s", key)
	}
}

func TestDayKey_UsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	// 02:00 on the 31st locally is still the 30th in UTC.
	at := time.Date(2026, 8, 31, 2, 0, 0, 0, loc)
	key := dayKey("abc123", at)
	if key != "usage:abc123:2026-08-30" {
		t.Errorf("Expected UTC date in key, got %s", key)
	}
}
