package rate

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLimiter: fixed window por proceso sobre go-cache. Para una sola
// réplica o para desarrollo.
type MemoryLimiter struct {
	mu     sync.Mutex
	c      *gocache.Cache
	Max    int64
	Window time.Duration
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		c:      gocache.New(window, 2*window),
		Max:    int64(max),
		Window: window,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Add falla si la ventana ya está abierta; en ese caso solo se incrementa.
	_ = l.c.Add(key, int64(0), l.Window)
	hits, err := l.c.IncrementInt64(key, 1)
	if err != nil {
		return Result{}, err
	}
	var ttl time.Duration
	if _, exp, ok := l.c.GetWithExpiration(key); ok && !exp.IsZero() {
		ttl = time.Until(exp)
	}
	return newResult(hits, l.Max, ttl, l.Window), nil
}
