package ai

import (
	"context"
	"sync"
)

// MockProvider is a test double for generation backends. Responses are
// served in order; the last one repeats once the queue drains.
type MockProvider struct {
	Responses   []string
	Err         error
	Delay       func(ctx context.Context) error // optional hook to simulate latency
	mu          sync.Mutex
	LastRequest *CompletionRequest
	calls       int
}

// NewMockProvider creates a MockProvider that always returns response.
func NewMockProvider(response string) *MockProvider {
	return &MockProvider{Responses: []string{response}}
}

func (m *MockProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	m.mu.Lock()
	m.LastRequest = &req
	idx := m.calls
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	m.calls++
	m.mu.Unlock()
	if m.Delay != nil {
		if err := m.Delay(ctx); err != nil {
			return CompletionResponse{}, transportError("mock", err)
		}
	}
	if m.Err != nil {
		return CompletionResponse{}, m.Err
	}

	content := ""
	if idx >= 0 {
		content = m.Responses[idx]
	}
	return CompletionResponse{
		Content:      content,
		Model:        "mock",
		InputTokens:  10,
		OutputTokens: len(content),
	}, nil
}

func (m *MockProvider) StreamComplete(ctx context.Context, req CompletionRequest) (<-chan StreamChunk, error) {
	resp, err := m.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	ch := make(chan StreamChunk, 1)
	go func() {
		defer close(ch)
		ch <- StreamChunk{Content: resp.Content, Done: true}
	}()
	return ch, nil
}

func (m *MockProvider) Models() []ModelInfo {
	return []ModelInfo{
		{ID: "mock", Name: "Mock Model", MaxTokens: 4096, Description: "Test mock"},
	}
}

func (m *MockProvider) HealthCheck(_ context.Context) error {
	return m.Err
}
