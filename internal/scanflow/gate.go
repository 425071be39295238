package scanflow

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// One result popup may be in flight per scan station at a time. While it is
// showing, new scan attempts are dropped entirely (not queued); the marker
// clears after a fixed cool-down so rapid rescans cannot flood the operator
// with toasts.

const DefaultCooldown = 3 * time.Second

// Gate tracks whether a station's result popup is still showing.
type Gate interface {
	// Showing reports whether a result is being displayed for the station.
	Showing(ctx context.Context, station string) (bool, error)
	// Shown marks a result as displayed, starting the cool-down window.
	Shown(ctx context.Context, station string) error
}

const cooldownPrefix = "scan:cooldown:"

// RedisGate shares the cool-down across every request a station issues.
type RedisGate struct {
	Rdb      *redis.Client
	Cooldown time.Duration
}

func (g *RedisGate) cooldown() time.Duration {
	if g.Cooldown > 0 {
		return g.Cooldown
	}
	return DefaultCooldown
}

func (g *RedisGate) Showing(ctx context.Context, station string) (bool, error) {
	n, err := g.Rdb.Exists(ctx, cooldownPrefix+station).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (g *RedisGate) Shown(ctx context.Context, station string) error {
	return g.Rdb.Set(ctx, cooldownPrefix+station, "1", g.cooldown()).Err()
}

// MemoryGate is the in-process variant used by tests and single-station
// deployments.
type MemoryGate struct {
	Cooldown time.Duration
	Now      func() time.Time

	mu    sync.Mutex
	until map[string]time.Time
}

func (g *MemoryGate) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

func (g *MemoryGate) cooldown() time.Duration {
	if g.Cooldown > 0 {
		return g.Cooldown
	}
	return DefaultCooldown
}

func (g *MemoryGate) Showing(_ context.Context, station string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.now().Before(g.until[station]), nil
}

func (g *MemoryGate) Shown(_ context.Context, station string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.until == nil {
		g.until = make(map[string]time.Time)
	}
	g.until[station] = g.now().Add(g.cooldown())
	return nil
}
