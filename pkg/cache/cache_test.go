package cache

import (
	"testing"
	"time"
)

func TestSetAndGet(t *testing.T) {
	c := New()
	c.Set("key1", "value1", 1*time.Second)
	val, ok := c.Get("key1")
	if !ok || val != "value1" {
		t.Fatalf("expected value1, got %v, exists=%v", val, ok)
	}
}

func TestExpiration(t *testing.T) {
	c := New()
	c.Set("key1", "value1", 100*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	_, ok := c.Get("key1")
	if ok {
		t.Fatalf("expected expired key to return false")
	}
}

func TestDelete(t *testing.T) {
	c := New()
	c.Set("key1", "value1", 1*time.Second)
	c.Delete("key1")
	_, ok := c.Get("key1")
	if ok {
		t.Fatalf("expected deleted key to return false")
	}
}

func TestInvalidate(t *testing.T) {
	c := New()
	c.Set("earnings:usr_1", "r1", 1*time.Second)
	c.Set("earnings:usr_2", "r2", 1*time.Second)
	c.Set("platform", "stats", 1*time.Second)
	c.Invalidate("earnings:")
	_, ok1 := c.Get("earnings:usr_1")
	_, ok2 := c.Get("earnings:usr_2")
	_, ok3 := c.Get("platform")
	if ok1 || ok2 {
		t.Fatalf("expected earnings keys to be invalidated")
	}
	if !ok3 {
		t.Fatalf("expected platform to still exist")
	}
}
