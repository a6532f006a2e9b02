// Package conversation maps caller-supplied conversation ids to the remote
// assistant's thread ids so that follow-up questions land on the same thread.
package conversation

import (
	"context"
	"sync"
	"time"
)

// Registry resolves an external conversation id to a remote thread id.
// Resolve on an unknown id reports ok=false; callers then create a fresh
// thread and Bind it. Two requests racing on the same id are allowed to both
// create threads; the last Bind wins and the losing thread is simply unused.
type Registry interface {
	Resolve(ctx context.Context, externalID string) (threadID string, ok bool)
	Bind(ctx context.Context, externalID, threadID string)
}

type entry struct {
	threadID string
	boundAt  time.Time
}

// MemoryRegistry is the default in-process registry. Entries live for the
// process lifetime unless a TTL is configured.
type MemoryRegistry struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
}

// NewMemoryRegistry builds a registry. ttl of 0 disables expiry.
func NewMemoryRegistry(ttl time.Duration) *MemoryRegistry {
	return &MemoryRegistry{entries: make(map[string]entry), ttl: ttl}
}

func (r *MemoryRegistry) Resolve(_ context.Context, externalID string) (string, bool) {
	if externalID == "" {
		return "", false
	}
	r.mu.RLock()
	e, ok := r.entries[externalID]
	r.mu.RUnlock()
	if !ok {
		return "", false
	}
	if r.ttl > 0 && time.Since(e.boundAt) > r.ttl {
		return "", false
	}
	return e.threadID, true
}

func (r *MemoryRegistry) Bind(_ context.Context, externalID, threadID string) {
	if externalID == "" || threadID == "" {
		return
	}
	r.mu.Lock()
	r.entries[externalID] = entry{threadID: threadID, boundAt: time.Now()}
	r.mu.Unlock()
}

// Sweep drops expired entries. It is a no-op without a TTL; the server
// schedules it from a cron expression.
func (r *MemoryRegistry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := time.Now().Add(-r.ttl)
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, e := range r.entries {
		if e.boundAt.Before(cutoff) {
			delete(r.entries, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of live bindings.
func (r *MemoryRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
