package cache

import (
	"testing"
	"time"
)

func TestTimedCacheAddGet(t *testing.T) {
	c := NewTimedCache(time.Minute)
	c.Add("pair", 42)
	if v := c.Get("pair"); v != 42 {
		t.Fatalf("expected 42, got %v", v)
	}
	if c.Get("missing") != nil {
		t.Fatal("expected nil for missing key")
	}
	if !c.Contains("pair") {
		t.Fatal("expected key to be held")
	}
}

func TestTimedCacheExpiry(t *testing.T) {
	c := NewTimedCache(time.Minute)
	c.Add("k", "v")

	// Shift the clock past the entry lifetime
	c.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if c.Get("k") != nil {
		t.Fatal("expected entry to have expired")
	}
	if c.Len() != 0 {
		t.Fatal("expired entry should be evicted on access")
	}
}

func TestTimedCacheNoExpiry(t *testing.T) {
	c := NewTimedCache(0)
	c.Add("k", "v")
	c.now = func() time.Time { return time.Now().Add(24 * time.Hour) }
	if c.Get("k") != "v" {
		t.Fatal("zero ttl entries should not expire")
	}
}

func TestTimedCacheRemoveClear(t *testing.T) {
	c := NewTimedCache(time.Minute)
	c.Add("a", 1)
	c.Add("b", 2)
	if !c.Remove("a") {
		t.Fatal("expected removal")
	}
	if c.Remove("a") {
		t.Fatal("expected no-op removal")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Fatal("expected empty cache")
	}
}
