package llm

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider is a scriptable provider for tests and dry runs. Set the
// func fields to control behavior, or use Enqueue for a fixed response
// sequence.
type MockProvider struct {
	QueryFunc          func(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error)
	QueryWithImageFunc func(ctx context.Context, prompt string, image []byte, mediaType, systemPrompt string) (string, error)

	mu     sync.Mutex
	queue  []string
	Calls  int
}

var _ VisionProvider = (*MockProvider)(nil)

// Enqueue appends canned responses returned in order by Query.
func (m *MockProvider) Enqueue(responses ...string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, responses...)
	return m
}

func (m *MockProvider) Query(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, prompt, systemPrompt, options)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.queue) == 0 {
		return "", fmt.Errorf("mock provider has no queued responses")
	}
	next := m.queue[0]
	m.queue = m.queue[1:]
	return next, nil
}

func (m *MockProvider) QueryWithImage(ctx context.Context, prompt string, image []byte, mediaType, systemPrompt string) (string, error) {
	if err := ValidateMediaType(mediaType); err != nil {
		return "", err
	}
	if m.QueryWithImageFunc != nil {
		return m.QueryWithImageFunc(ctx, prompt, image, mediaType, systemPrompt)
	}
	return m.Query(ctx, prompt, systemPrompt, nil)
}
