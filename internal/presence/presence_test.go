package presence

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func setupRedisTracker(t *testing.T, window time.Duration) (*RedisTracker, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	tracker, err := NewRedisTracker("redis://"+s.Addr(), window)
	if err != nil {
		t.Fatalf("failed to create redis tracker: %v", err)
	}
	return tracker, s
}

func TestRedisTrackerTouchAndActive(t *testing.T) {
	tracker, s := setupRedisTracker(t, time.Minute)
	defer tracker.Close()
	defer s.Close()

	ctx := context.Background()
	for _, name := range []string{"alice", "bob"} {
		if err := tracker.Touch(ctx, name); err != nil {
			t.Fatalf("Touch(%s): %v", name, err)
		}
	}

	active, err := tracker.Active(ctx)
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	sort.Strings(active)
	if len(active) != 2 || active[0] != "alice" || active[1] != "bob" {
		t.Fatalf("active = %v, want [alice bob]", active)
	}
}

func TestRedisTrackerExpiresAfterWindow(t *testing.T) {
	tracker, s := setupRedisTracker(t, time.Minute)
	defer tracker.Close()
	defer s.Close()

	ctx := context.Background()
	if err := tracker.Touch(ctx, "alice"); err != nil {
		t.Fatalf("Touch: %v", err)
	}

	s.FastForward(2 * time.Minute)

	active, err := tracker.Active(ctx)
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("active = %v, want empty after expiry", active)
	}
}

func TestRedisTrackerTouchRefreshesTTL(t *testing.T) {
	tracker, s := setupRedisTracker(t, time.Minute)
	defer tracker.Close()
	defer s.Close()

	ctx := context.Background()
	if err := tracker.Touch(ctx, "alice"); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	s.FastForward(40 * time.Second)
	if err := tracker.Touch(ctx, "alice"); err != nil {
		t.Fatalf("Touch again: %v", err)
	}
	s.FastForward(40 * time.Second)

	active, err := tracker.Active(ctx)
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("active = %v, want [alice]", active)
	}
}

func TestMemoryTrackerPrunesStaleEntries(t *testing.T) {
	tracker := NewMemoryTracker(time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time { return now }

	ctx := context.Background()
	tracker.Touch(ctx, "alice")
	now = now.Add(45 * time.Second)
	tracker.Touch(ctx, "bob")
	now = now.Add(30 * time.Second)

	active, err := tracker.Active(ctx)
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if len(active) != 1 || active[0] != "bob" {
		t.Fatalf("active = %v, want [bob]", active)
	}
}

func TestTrackerIgnoresEmptyName(t *testing.T) {
	tracker := NewMemoryTracker(time.Minute)
	if err := tracker.Touch(context.Background(), ""); err != nil {
		t.Fatalf("Touch empty: %v", err)
	}
	active, _ := tracker.Active(context.Background())
	if len(active) != 0 {
		t.Fatalf("active = %v, want empty", active)
	}
}
