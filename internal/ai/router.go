package ai

import (
	"context"
	"log/slog"
	"sync"
)

// Router dispatches completions to providers in registration order, failing
// over to the next provider when one errors. This is failover across
// backends, not retry: a request is attempted at most once per provider,
// and a timeout on an expired context stops the chain since later attempts
// share the same deadline.
type Router struct {
	providers map[string]Provider
	fallback  []string
	mu        sync.RWMutex
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider to the end of the failover chain.
func (r *Router) Register(name string, provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = provider
	r.fallback = append(r.fallback, name)
	slog.Info("ai provider registered", "provider", name)
}

// Complete routes a request through the failover chain. The returned error
// is the last provider's classified error, so callers still see the kind
// when every backend fails.
func (r *Router) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	r.mu.RLock()
	chain := append([]string(nil), r.fallback...)
	r.mu.RUnlock()

	if len(chain) == 0 {
		return CompletionResponse{}, &ProviderError{
			Provider: "router",
			Kind:     ErrKindAuth,
			Err:      errNoProviders,
		}
	}

	var lastErr error
	for _, name := range chain {
		r.mu.RLock()
		provider := r.providers[name]
		r.mu.RUnlock()

		resp, err := provider.Complete(ctx, req)
		if err == nil {
			slog.Debug("completion served",
				"provider", name,
				"model", resp.Model,
				"input_tokens", resp.InputTokens,
				"output_tokens", resp.OutputTokens,
			)
			return resp, nil
		}

		lastErr = err
		kind := KindOf(err)
		slog.Warn("ai provider failed",
			"provider", name,
			"kind", kind.String(),
			"error", err,
		)
		// Timeouts and cancellations bound the whole request, not one
		// provider; trying the next backend would just blow the budget.
		if kind == ErrKindTimeout && ctx.Err() != nil {
			break
		}
	}
	return CompletionResponse{}, lastErr
}

// StreamComplete opens a streaming completion on the first registered
// provider. Streaming does not fail over mid-stream.
func (r *Router) StreamComplete(ctx context.Context, req CompletionRequest) (<-chan StreamChunk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.fallback) == 0 {
		return nil, &ProviderError{Provider: "router", Kind: ErrKindAuth, Err: errNoProviders}
	}
	return r.providers[r.fallback[0]].StreamComplete(ctx, req)
}

// HasProvider reports whether at least one provider is registered.
func (r *Router) HasProvider() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers) > 0
}

// Providers returns the failover chain in order.
func (r *Router) Providers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.fallback...)
}
