package ai

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// BudgetChecker checks and records token usage against per-client budgets.
type BudgetChecker interface {
	// Check returns true if the client has budget remaining.
	Check(ctx context.Context, clientID string) (bool, error)
	// Record adds token usage for a client.
	Record(ctx context.Context, clientID string, tokens int) error
	// Usage returns current usage and the configured budget for a client.
	Usage(ctx context.Context, clientID string) (used int64, budget int64, err error)
}

// InMemoryBudget is a simple in-memory budget tracker for development and
// tests.
type InMemoryBudget struct {
	mu      sync.RWMutex
	budgets map[string]int64
	usage   map[string]int64
}

// NewInMemoryBudget creates a new in-memory budget tracker.
func NewInMemoryBudget() *InMemoryBudget {
	return &InMemoryBudget{
		budgets: make(map[string]int64),
		usage:   make(map[string]int64),
	}
}

// SetBudget sets the token budget for a client.
func (b *InMemoryBudget) SetBudget(clientID string, tokens int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.budgets[clientID] = tokens
}

func (b *InMemoryBudget) Check(_ context.Context, clientID string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	budget, hasBudget := b.budgets[clientID]
	if !hasBudget {
		// No budget set means unlimited.
		return true, nil
	}
	return b.usage[clientID] < budget, nil
}

func (b *InMemoryBudget) Record(_ context.Context, clientID string, tokens int) error {
	if tokens < 0 {
		return fmt.Errorf("tokens must be non-negative, got %d", tokens)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.usage[clientID] += int64(tokens)
	return nil
}

func (b *InMemoryBudget) Usage(_ context.Context, clientID string) (int64, int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.usage[clientID], b.budgets[clientID], nil
}

// RedisBudget tracks token usage in Redis/Dragonfly so budgets survive
// restarts and are shared across replicas. Usage counters expire after the
// window so budgets reset on a rolling basis.
type RedisBudget struct {
	client *redis.Client
	window time.Duration
}

// NewRedisBudget creates a Redis-backed budget tracker. A zero window means
// counters never expire.
func NewRedisBudget(client *redis.Client, window time.Duration) *RedisBudget {
	return &RedisBudget{client: client, window: window}
}

// SetBudget sets the token budget for a client.
func (b *RedisBudget) SetBudget(ctx context.Context, clientID string, tokens int64) error {
	return b.client.Set(ctx, budgetKey(clientID), tokens, 0).Err()
}

func (b *RedisBudget) Check(ctx context.Context, clientID string) (bool, error) {
	budget, err := b.client.Get(ctx, budgetKey(clientID)).Int64()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("get budget: %w", err)
	}

	used, err := b.client.Get(ctx, usageKey(clientID)).Int64()
	if err == redis.Nil {
		used = 0
	} else if err != nil {
		return false, fmt.Errorf("get usage: %w", err)
	}
	return used < budget, nil
}

func (b *RedisBudget) Record(ctx context.Context, clientID string, tokens int) error {
	if tokens < 0 {
		return fmt.Errorf("tokens must be non-negative, got %d", tokens)
	}
	key := usageKey(clientID)
	if err := b.client.IncrBy(ctx, key, int64(tokens)).Err(); err != nil {
		return fmt.Errorf("record usage: %w", err)
	}
	if b.window > 0 {
		// Refresh only when the key has no TTL yet, so the window is
		// anchored at first use.
		b.client.ExpireNX(ctx, key, b.window)
	}
	return nil
}

func (b *RedisBudget) Usage(ctx context.Context, clientID string) (int64, int64, error) {
	used, err := b.client.Get(ctx, usageKey(clientID)).Int64()
	if err == redis.Nil {
		used = 0
	} else if err != nil {
		return 0, 0, fmt.Errorf("get usage: %w", err)
	}

	budget, err := b.client.Get(ctx, budgetKey(clientID)).Int64()
	if err == redis.Nil {
		budget = 0
	} else if err != nil {
		return 0, 0, fmt.Errorf("get budget: %w", err)
	}
	return used, budget, nil
}

func budgetKey(clientID string) string {
	return "budget:" + clientID
}

func usageKey(clientID string) string {
	return "usage:" + clientID
}
