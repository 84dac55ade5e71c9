package cache

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestMemoryRoundTrip(t *testing.T) {
	c := NewMemory(time.Hour, 10)
	ctx := context.Background()
	fp := Fingerprint{Crop: "maize", Region: "nakuru", FarmStage: "planting"}

	c.Set(ctx, "How do I plant maize?", "Plant at the onset of the long rains.", fp)

	got, ok := c.Get(ctx, "How do I plant maize?", fp)
	if !ok {
		t.Fatal("expected a hit immediately after Set")
	}
	if got != "Plant at the onset of the long rains." {
		t.Errorf("Get = %q", got)
	}
}

func TestKeyNormalization(t *testing.T) {
	fp := Fingerprint{Crop: "maize"}
	a := Key("  How do I   plant MAIZE? ", fp)
	b := Key("how do i plant maize?", fp)
	if a != b {
		t.Errorf("normalized queries should share a key: %q vs %q", a, b)
	}

	c := Key("how do i plant maize?", Fingerprint{Crop: "beans"})
	if a == c {
		t.Error("different fingerprints must not share a key")
	}
}

func TestMemoryMissOnDifferentContext(t *testing.T) {
	c := NewMemory(time.Hour, 10)
	ctx := context.Background()

	c.Set(ctx, "when to harvest", "answer", Fingerprint{Crop: "maize"})
	if _, ok := c.Get(ctx, "when to harvest", Fingerprint{Crop: "wheat"}); ok {
		t.Error("expected miss for a different crop fingerprint")
	}
}

func TestMemoryTTLExpiry(t *testing.T) {
	c := NewMemory(time.Hour, 10)
	ctx := context.Background()
	fp := Fingerprint{}

	now := time.Now()
	c.now = func() time.Time { return now }
	c.Set(ctx, "q", "r", fp)

	// Reads after TTL are misses even without an explicit sweep.
	c.now = func() time.Time { return now.Add(time.Hour + time.Minute) }
	if _, ok := c.Get(ctx, "q", fp); ok {
		t.Error("expected miss after TTL expiry")
	}
}

func TestMemoryCapacityEvictsOldest(t *testing.T) {
	const capacity = 5
	c := NewMemory(time.Hour, capacity)
	ctx := context.Background()
	fp := Fingerprint{}

	now := time.Now()
	for i := 0; i < capacity; i++ {
		tick := now.Add(time.Duration(i) * time.Second)
		c.now = func() time.Time { return tick }
		c.Set(ctx, fmt.Sprintf("query-%d", i), fmt.Sprintf("resp-%d", i), fp)
	}

	// Inserting one more evicts exactly the oldest-by-creation-time entry.
	last := now.Add(time.Duration(capacity) * time.Second)
	c.now = func() time.Time { return last }
	c.Set(ctx, "query-new", "resp-new", fp)

	if _, ok := c.Get(ctx, "query-0", fp); ok {
		t.Error("oldest entry should have been evicted")
	}
	for i := 1; i < capacity; i++ {
		if _, ok := c.Get(ctx, fmt.Sprintf("query-%d", i), fp); !ok {
			t.Errorf("query-%d should still be cached", i)
		}
	}
	if _, ok := c.Get(ctx, "query-new", fp); !ok {
		t.Error("new entry should be cached")
	}
}

func TestMemoryHitCounter(t *testing.T) {
	c := NewMemory(time.Hour, 10)
	ctx := context.Background()
	fp := Fingerprint{Crop: "maize"}

	c.Set(ctx, "q", "r", fp)
	if got := c.Hits("q", fp); got != 0 {
		t.Errorf("Hits = %d before any read, want 0", got)
	}
	c.Get(ctx, "q", fp)
	c.Get(ctx, "q", fp)
	if got := c.Hits("q", fp); got != 2 {
		t.Errorf("Hits = %d, want 2", got)
	}
}

func TestMemoryClearExpired(t *testing.T) {
	c := NewMemory(time.Hour, 10)
	ctx := context.Background()

	now := time.Now()
	c.now = func() time.Time { return now }
	c.Set(ctx, "old", "r", Fingerprint{})

	c.now = func() time.Time { return now.Add(30 * time.Minute) }
	c.Set(ctx, "fresh", "r", Fingerprint{})

	c.now = func() time.Time { return now.Add(90 * time.Minute) }
	if removed := c.ClearExpired(ctx); removed != 1 {
		t.Errorf("ClearExpired = %d, want 1", removed)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d after sweep, want 1", c.Len())
	}
	if _, ok := c.Get(ctx, "fresh", Fingerprint{}); !ok {
		t.Error("fresh entry should survive the sweep")
	}
}

func TestMemorySetOverwrites(t *testing.T) {
	c := NewMemory(time.Hour, 10)
	ctx := context.Background()
	fp := Fingerprint{}

	c.Set(ctx, "q", "first", fp)
	c.Set(ctx, "q", "second", fp)
	got, ok := c.Get(ctx, "q", fp)
	if !ok || got != "second" {
		t.Errorf("Get = %q, %v; want second", got, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}
