package llm

import (
	"context"
	"errors"
)

// MockClient is a scripted Client for tests. Structured responses are
// consumed in order; when the queue is empty, Err (or a default error) is
// returned.
type MockClient struct {
	Structured []map[string]any
	Texts      []string
	Err        error

	// Prompts records every prompt received, for assertions.
	Prompts []string
}

func (m *MockClient) ClassifyStructured(_ context.Context, prompt string) (map[string]any, error) {
	m.Prompts = append(m.Prompts, prompt)
	if len(m.Structured) == 0 {
		if m.Err != nil {
			return nil, m.Err
		}
		return nil, errors.New("mock: no structured response queued")
	}
	next := m.Structured[0]
	m.Structured = m.Structured[1:]
	return next, nil
}

func (m *MockClient) AskText(_ context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if len(m.Texts) == 0 {
		if m.Err != nil {
			return "", m.Err
		}
		return "", errors.New("mock: no text response queued")
	}
	next := m.Texts[0]
	m.Texts = m.Texts[1:]
	return next, nil
}
