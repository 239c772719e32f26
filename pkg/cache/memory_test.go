package cache

import (
	"testing"
	"time"
)

type cachedValue struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache()
	ctx := t.Context()

	if err := c.Set(ctx, "k", cachedValue{Name: "btc", Count: 3}, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var got cachedValue
	hit, err := c.Get(ctx, "k", &got)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !hit {
		t.Fatal("expected a hit")
	}
	if got.Name != "btc" || got.Count != 3 {
		t.Errorf("got %+v", got)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	c := NewMemoryCache()

	var got cachedValue
	hit, err := c.Get(t.Context(), "absent", &got)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Error("unexpected hit for an absent key")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache()
	ctx := t.Context()

	if err := c.Set(ctx, "k", cachedValue{Name: "btc"}, 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(30 * time.Millisecond)

	var got cachedValue
	hit, err := c.Get(ctx, "k", &got)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Error("expired entry still served")
	}
}

func TestMemoryCacheDelete(t *testing.T) {
	c := NewMemoryCache()
	ctx := t.Context()

	if err := c.Set(ctx, "k", cachedValue{}, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var got cachedValue
	if hit, _ := c.Get(ctx, "k", &got); hit {
		t.Error("deleted entry still served")
	}
}
