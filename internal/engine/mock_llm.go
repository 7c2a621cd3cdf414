package engine

import (
	"context"
	"sync"

	"github.com/Veraticus/restaurant-ai/internal/llm"
)

// MockClient is a test implementation of llm.Client.
// It replays canned completions and records every request it receives.
type MockClient struct {
	Err        error
	ModelsErr  error
	Completion llm.Completion
	Models     []string
	Configs    []llm.Config
	Requests   []llm.ChatRequest
	mu         sync.Mutex
}

// NewMockClient creates a mock that answers every request with content.
func NewMockClient(content string) *MockClient {
	return &MockClient{
		Completion: llm.Completion{Content: content},
	}
}

// Factory returns a ClientFactory that always hands out this mock.
func (m *MockClient) Factory() ClientFactory {
	return func(cfg llm.Config) (llm.Client, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.Configs = append(m.Configs, cfg)
		return m, nil
	}
}

// Complete records req and returns the canned completion or error.
func (m *MockClient) Complete(_ context.Context, req llm.ChatRequest) (llm.Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return llm.Completion{}, m.Err
	}
	return m.Completion, nil
}

// ListModels returns the canned model ids.
func (m *MockClient) ListModels(_ context.Context) ([]string, error) {
	if m.ModelsErr != nil {
		return nil, m.ModelsErr
	}
	return m.Models, nil
}

// CallCount returns how many completion requests were made.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}
