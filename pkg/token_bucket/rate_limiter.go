package token_bucket

import (
	"sync"
	"time"
)

type Limiter interface {
	Allow() bool
}

// TokenBucket - классический token bucket: Allow либо пропускает запрос
// и тратит токен, либо отклоняет.
type TokenBucket struct {
	capacity   int
	tokens     int
	refillRate float64 // токенов в секунду
	lastRefill time.Time
	mu         sync.Mutex
}

func NewTokenBucket(capacity int, refillRate float64) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		tokens:     capacity,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

func (t *TokenBucket) Allow() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.refill()

	if t.tokens == 0 {
		return false
	}
	t.tokens--
	return true
}

func (t *TokenBucket) refill() {
	now := time.Now()
	elapsed := now.Sub(t.lastRefill).Seconds()
	if elapsed <= 0 {
		return
	}

	added := int(elapsed * t.refillRate)
	if added == 0 {
		return
	}

	t.tokens = min(t.tokens+added, t.capacity)
	t.lastRefill = now
}
