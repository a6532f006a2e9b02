package conversation

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestMemoryRegistryResolveUnknown(t *testing.T) {
	r := NewMemoryRegistry(0)
	if _, ok := r.Resolve(context.Background(), "nope"); ok {
		t.Fatalf("expected unknown id to miss")
	}
	if _, ok := r.Resolve(context.Background(), ""); ok {
		t.Fatalf("expected empty id to miss")
	}
}

func TestMemoryRegistryBindAndResolve(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRegistry(0)
	r.Bind(ctx, "conv-1", "thread-a")
	got, ok := r.Resolve(ctx, "conv-1")
	if !ok || got != "thread-a" {
		t.Fatalf("expected thread-a, got %q ok=%v", got, ok)
	}
	// last writer wins
	r.Bind(ctx, "conv-1", "thread-b")
	if got, _ := r.Resolve(ctx, "conv-1"); got != "thread-b" {
		t.Fatalf("expected thread-b after rebind, got %q", got)
	}
}

func TestMemoryRegistryTTLAndSweep(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRegistry(10 * time.Millisecond)
	r.Bind(ctx, "conv-1", "thread-a")
	if _, ok := r.Resolve(ctx, "conv-1"); !ok {
		t.Fatalf("expected fresh entry to resolve")
	}
	time.Sleep(25 * time.Millisecond)
	if _, ok := r.Resolve(ctx, "conv-1"); ok {
		t.Fatalf("expected expired entry to miss")
	}
	if n := r.Sweep(); n != 1 {
		t.Fatalf("expected sweep to remove 1, got %d", n)
	}
	if r.Len() != 0 {
		t.Fatalf("expected empty registry after sweep, got %d", r.Len())
	}
}

func TestMemoryRegistrySweepWithoutTTL(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRegistry(0)
	r.Bind(ctx, "conv-1", "thread-a")
	if n := r.Sweep(); n != 0 {
		t.Fatalf("sweep without ttl should be a no-op, removed %d", n)
	}
}

func TestMemoryRegistryConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRegistry(0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("conv-%d", i%10)
			r.Bind(ctx, id, fmt.Sprintf("thread-%d", i))
			r.Resolve(ctx, id)
		}(i)
	}
	wg.Wait()
	if r.Len() != 10 {
		t.Fatalf("expected 10 distinct bindings, got %d", r.Len())
	}
}
