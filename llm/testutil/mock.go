// Package testutil provides test utilities for the llm package.
// It includes mock implementations for testing LLM boundary interactions.
package testutil

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/innovagov/policyhub/llm"
)

// MockInvoker is a thread-safe mock of the structured AI boundary.
// It records every prompt and returns configured payloads in sequence,
// running each through the same extraction/validation path the real
// client uses so malformed fixtures fail exactly like malformed model
// output.
//
// Usage:
//
//	mock := &testutil.MockInvoker{
//	    Payloads: []string{`{"title_ar": "..."}`},
//	}
//
//	// Error response
//	mock := &testutil.MockInvoker{Err: errors.New("connection refused")}
type MockInvoker struct {
	mu           sync.Mutex
	prompts      []llm.Prompt
	Payloads     []string // Raw model outputs to return in sequence
	Err          error    // Error to return (takes precedence over Payloads)
	callCount    int
	payloadIndex int
}

// Invoke implements llm.Invoker.
func (m *MockInvoker) Invoke(_ context.Context, prompt llm.Prompt, schema *jsonschema.Schema) (json.RawMessage, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.callCount++

	if m.Err != nil {
		m.mu.Unlock()
		return nil, m.Err
	}

	content := "{}"
	if m.payloadIndex < len(m.Payloads) {
		content = m.Payloads[m.payloadIndex]
		m.payloadIndex++
	}
	m.mu.Unlock()

	return llm.ValidatePayload(content, schema)
}

// CallCount returns the number of times Invoke was called.
func (m *MockInvoker) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastPrompt returns the most recent prompt, or the zero value if Invoke
// was never called.
func (m *MockInvoker) LastPrompt() llm.Prompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return llm.Prompt{}
	}
	return m.prompts[len(m.prompts)-1]
}

// Reset clears recorded calls so one mock can serve multiple test cases.
func (m *MockInvoker) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = nil
	m.callCount = 0
	m.payloadIndex = 0
}
