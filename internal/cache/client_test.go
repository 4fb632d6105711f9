package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryClientGetSet(t *testing.T) {
	client := NewMemoryClient(100)
	ctx := context.Background()

	if _, err := client.Get(ctx, "missing"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}

	if err := client.Set(ctx, "key1", []byte("value1"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, err := client.Get(ctx, "key1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(val) != "value1" {
		t.Errorf("Expected value1, got %s", string(val))
	}
}

func TestMemoryClientExpiry(t *testing.T) {
	client := NewMemoryClient(100)
	ctx := context.Background()

	if err := client.Set(ctx, "short", []byte("v"), -time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, err := client.Get(ctx, "short"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss for expired entry, got %v", err)
	}
}

func TestMemoryClientDelete(t *testing.T) {
	client := NewMemoryClient(100)
	ctx := context.Background()

	_ = client.Set(ctx, "key1", []byte("v"), time.Minute)

	if err := client.Delete(ctx, "key1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := client.Get(ctx, "key1"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss after delete, got %v", err)
	}
}

func TestMemoryClientDeleteByPrefix(t *testing.T) {
	client := NewMemoryClient(100)
	ctx := context.Background()

	_ = client.Set(ctx, "summarize:response:a", []byte("1"), time.Minute)
	_ = client.Set(ctx, "summarize:response:b", []byte("2"), time.Minute)
	_ = client.Set(ctx, "other:c", []byte("3"), time.Minute)

	if err := client.DeleteByPrefix(ctx, "summarize:response:"); err != nil {
		t.Fatalf("DeleteByPrefix failed: %v", err)
	}

	if _, err := client.Get(ctx, "summarize:response:a"); !errors.Is(err, ErrCacheMiss) {
		t.Error("Expected prefixed key a to be deleted")
	}
	if _, err := client.Get(ctx, "summarize:response:b"); !errors.Is(err, ErrCacheMiss) {
		t.Error("Expected prefixed key b to be deleted")
	}
	if _, err := client.Get(ctx, "other:c"); err != nil {
		t.Errorf("Expected unrelated key to survive, got %v", err)
	}
}

func TestMemoryClientEviction(t *testing.T) {
	client := NewMemoryClient(2)
	ctx := context.Background()

	_ = client.Set(ctx, "a", []byte("1"), time.Minute)
	_ = client.Set(ctx, "b", []byte("2"), time.Hour)
	_ = client.Set(ctx, "c", []byte("3"), time.Hour)

	client.mu.RLock()
	size := len(client.data)
	client.mu.RUnlock()

	if size != 2 {
		t.Errorf("Expected 2 entries after eviction, got %d", size)
	}

	// "a" expires first, so it is the one evicted
	if _, err := client.Get(ctx, "a"); !errors.Is(err, ErrCacheMiss) {
		t.Error("Expected oldest entry to be evicted")
	}
}

func TestKey(t *testing.T) {
	if got := Key("summarize", "response", "abc"); got != "summarize:response:abc" {
		t.Errorf("Expected summarize:response:abc, got %s", got)
	}
	if got := Key("single"); got != "single" {
		t.Errorf("Expected single, got %s", got)
	}
}
