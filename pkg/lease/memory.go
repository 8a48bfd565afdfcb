package lease

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryLocker keeps leases in process memory. It serializes firings within a single
// replica and is used when Redis is not configured.
type MemoryLocker struct {
	mu    sync.Mutex
	store *cache.Cache
}

// NewMemoryLocker creates an in-process Locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{store: cache.New(cache.NoExpiration, time.Minute)}
}

// Acquire adds key unless an unexpired lease exists.
func (l *MemoryLocker) Acquire(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	token := newToken()
	if err := l.store.Add(key, token, ttl); err != nil {
		return "", false, nil
	}
	return token, true, nil
}

// Release removes key if token still holds it.
func (l *MemoryLocker) Release(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if current, ok := l.store.Get(key); ok && current == token {
		l.store.Delete(key)
	}
	return nil
}
