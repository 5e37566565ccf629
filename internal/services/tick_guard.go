package services

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tumo-mining/backend/internal/config"
)

// TickGuard enforces a minimum interval between ticks of one wallet.
// Release gives the slot back when the tick was not recorded.
type TickGuard interface {
	Allow(ctx context.Context, wallet string, interval time.Duration) (bool, error)
	Release(ctx context.Context, wallet string) error
}

// NewTickGuard picks the backend named by TICK_GUARD_BACKEND. A nil client
// falls back to process memory.
func NewTickGuard(cfg *config.Config, client *redis.Client) TickGuard {
	if cfg.UseRedisTickGuard() && client != nil {
		return NewRedisTickGuard(client)
	}
	return NewMemoryTickGuard()
}

const tickKeyPrefix = "tick:last:"

type RedisTickGuard struct {
	client *redis.Client
}

func NewRedisTickGuard(client *redis.Client) *RedisTickGuard {
	return &RedisTickGuard{client: client}
}

func (g *RedisTickGuard) Allow(ctx context.Context, wallet string, interval time.Duration) (bool, error) {
	if interval <= 0 {
		return true, nil
	}
	return g.client.SetNX(ctx, tickKeyPrefix+wallet, 1, interval).Result()
}

func (g *RedisTickGuard) Release(ctx context.Context, wallet string) error {
	return g.client.Del(ctx, tickKeyPrefix+wallet).Err()
}

// MemoryTickGuard keeps the last tick per wallet in process. Each API
// instance enforces its own interval.
type MemoryTickGuard struct {
	mu   sync.Mutex
	last map[string]time.Time
	now  func() time.Time
}

func NewMemoryTickGuard() *MemoryTickGuard {
	return &MemoryTickGuard{last: make(map[string]time.Time), now: time.Now}
}

func (g *MemoryTickGuard) Allow(_ context.Context, wallet string, interval time.Duration) (bool, error) {
	if interval <= 0 {
		return true, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if prev, ok := g.last[wallet]; ok && now.Sub(prev) < interval {
		return false, nil
	}
	g.last[wallet] = now

	// prune expired wallets
	if len(g.last) > 100000 {
		for w, t := range g.last {
			if now.Sub(t) >= interval {
				delete(g.last, w)
			}
		}
	}
	return true, nil
}

func (g *MemoryTickGuard) Release(_ context.Context, wallet string) error {
	g.mu.Lock()
	delete(g.last, wallet)
	g.mu.Unlock()
	return nil
}
