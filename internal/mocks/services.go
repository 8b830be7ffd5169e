package mocks

import (
	"context"
	"sync"

	"github.com/ai-blog-writer/internal/provider"
	"github.com/ai-blog-writer/internal/service"
)

// GenerateCall records one call made to MockGenerator
type GenerateCall struct {
	Provider provider.Provider
	Prompt   string
	APIKey   string
	Params   provider.Params
}

// MockGenerator is a mock implementation of service.TextGenerator
type MockGenerator struct {
	mu sync.Mutex

	GenerateFunc func(ctx context.Context, p provider.Provider, prompt, apiKey string, params provider.Params) (*provider.Result, error)
	Text         string
	Err          error
	Calls        []GenerateCall
}

// Verify interface compliance
var _ service.TextGenerator = (*MockGenerator)(nil)

func NewMockGenerator(text string) *MockGenerator {
	return &MockGenerator{Text: text}
}

func (m *MockGenerator) Generate(ctx context.Context, p provider.Provider, prompt, apiKey string, params provider.Params) (*provider.Result, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, GenerateCall{Provider: p, Prompt: prompt, APIKey: apiKey, Params: params})
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, p, prompt, apiKey, params)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	spec, _ := provider.DefaultSpec(p)
	return &provider.Result{Provider: p, Model: spec.Model, Text: m.Text, Attempts: 1}, nil
}

func (m *MockGenerator) Spec(p provider.Provider) (provider.Spec, bool) {
	return provider.DefaultSpec(p)
}

// CallCount returns how many times Generate was called
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
