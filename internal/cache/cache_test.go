package cache

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestMemoryInvalidate(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()
	a, b := uuid.New(), uuid.New()

	_, ok, va, _ := c.Get(ctx, a)
	if ok {
		t.Fatalf("empty cache should miss")
	}
	_, _, vb, _ := c.Get(ctx, b)
	_ = c.Set(ctx, a, va, 3)
	_ = c.Set(ctx, b, vb, 1)
	if n, ok, _, _ := c.Get(ctx, a); !ok || n != 3 {
		t.Fatalf("Get(a) = %d, %v", n, ok)
	}
	_ = c.Invalidate(ctx, a)
	if _, ok, _, _ := c.Get(ctx, a); ok {
		t.Fatalf("a should be invalidated")
	}
	if n, ok, _, _ := c.Get(ctx, b); !ok || n != 1 {
		t.Fatalf("b should survive, got %d, %v", n, ok)
	}
}

func TestMemoryRefusesStaleSet(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()
	id := uuid.New()

	_, _, before, _ := c.Get(ctx, id)
	// a write lands between reading the version and storing the count
	_ = c.Invalidate(ctx, id)
	_ = c.Set(ctx, id, before, 0)
	if n, ok, _, _ := c.Get(ctx, id); ok {
		t.Fatalf("stale count cached: %d", n)
	}

	_, _, after, _ := c.Get(ctx, id)
	if after == before {
		t.Fatalf("Invalidate did not bump the version")
	}
	_ = c.Set(ctx, id, after, 1)
	if n, ok, _, _ := c.Get(ctx, id); !ok || n != 1 {
		t.Fatalf("Get = %d, %v", n, ok)
	}
}

func TestNoopAlwaysMisses(t *testing.T) {
	var c UnreadCounts = Noop{}
	ctx := context.Background()
	id := uuid.New()
	_ = c.Set(ctx, id, 0, 5)
	if _, ok, _, err := c.Get(ctx, id); ok || err != nil {
		t.Fatalf("noop Get = %v, %v", ok, err)
	}
}
