package cache

import (
	"context"
	"testing"
	"time"
)

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	c := NewLRU(2, time.Minute)
	c.Set(ctx, "a", []byte("1"))
	c.Set(ctx, "b", []byte("2"))
	if _, ok := c.Get(ctx, "a"); !ok {
		t.Fatal("a missing")
	}
	c.Set(ctx, "c", []byte("3"))
	if _, ok := c.Get(ctx, "b"); ok {
		t.Errorf("b should have been evicted")
	}
	if v, ok := c.Get(ctx, "a"); !ok || string(v) != "1" {
		t.Errorf("a = %q, %v", v, ok)
	}
	if c.Len() != 2 {
		t.Errorf("len = %d", c.Len())
	}
}

func TestLRUExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	c := NewLRU(4, 10*time.Second)
	c.now = func() time.Time { return now }
	c.Set(ctx, "k", []byte("v"))
	now = now.Add(9 * time.Second)
	if _, ok := c.Get(ctx, "k"); !ok {
		t.Fatal("expired too early")
	}
	now = now.Add(2 * time.Second)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("entry outlived ttl")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry not removed")
	}
}

func TestLRUOverwrite(t *testing.T) {
	ctx := context.Background()
	c := NewLRU(1, time.Minute)
	c.Set(ctx, "k", []byte("old"))
	c.Set(ctx, "k", []byte("new"))
	if v, _ := c.Get(ctx, "k"); string(v) != "new" {
		t.Errorf("k = %q", v)
	}
}

func TestKeyIsContentHash(t *testing.T) {
	a := Key([]byte(`{"type":"FeatureCollection","features":[]}`))
	b := Key([]byte(`{"type":"FeatureCollection","features":[]}`))
	c := Key([]byte(`{"type":"FeatureCollection","features":[ ]}`))
	if a != b || a == c || len(a) != 64 {
		t.Errorf("keys a=%s b=%s c=%s", a, b, c)
	}
}
