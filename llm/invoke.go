package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/innovagov/policyhub/policy"
)

// Prompt is a structured invocation request: a system instruction plus the
// user content the model should act on.
type Prompt struct {
	System      string
	User        string
	Temperature *float64
	MaxTokens   int
}

// Invoker is the structured AI invocation boundary. Implementations must
// validate the returned payload against the given schema before handing it
// upstream; a payload that fails validation is never returned.
type Invoker interface {
	Invoke(ctx context.Context, prompt Prompt, schema *jsonschema.Schema) (json.RawMessage, error)
}

// Invoke sends one completion request and validates the extracted JSON
// payload against schema. Transport failures map to
// policy.ErrProviderUnavailable; unparseable or schema-invalid payloads map
// to policy.ErrMalformedResponse. Each call is counted once by outcome
// ("ok", "transport_error", "malformed") when a metrics sink is set.
func (c *Client) Invoke(ctx context.Context, prompt Prompt, schema *jsonschema.Schema) (json.RawMessage, error) {
	messages := make([]Message, 0, 2)
	if prompt.System != "" {
		messages = append(messages, Message{Role: "system", Content: prompt.System})
	}
	messages = append(messages, Message{Role: "user", Content: prompt.User})

	resp, err := c.Complete(ctx, Request{
		Messages:    messages,
		Temperature: prompt.Temperature,
		MaxTokens:   prompt.MaxTokens,
	})
	if err != nil {
		c.countRequest("transport_error")
		return nil, fmt.Errorf("%w: %v", policy.ErrProviderUnavailable, err)
	}

	raw, err := ValidatePayload(resp.Content, schema)
	if err != nil {
		c.countRequest("malformed")
		return nil, err
	}
	c.countRequest("ok")
	return raw, nil
}

func (c *Client) countRequest(outcome string) {
	if c.metrics == nil {
		return
	}
	c.metrics.LLMRequests.WithLabelValues(outcome).Inc()
}

// ValidatePayload extracts the JSON object from raw model output and
// validates it against schema. Exposed so mocks and tests share the exact
// validation path the client uses.
func ValidatePayload(content string, schema *jsonschema.Schema) (json.RawMessage, error) {
	jsonStr := ExtractJSON(content)
	if jsonStr == "" {
		return nil, fmt.Errorf("%w: no JSON object in model output", policy.ErrMalformedResponse)
	}

	var payload any
	if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", policy.ErrMalformedResponse, err)
	}

	if schema != nil {
		if err := schema.Validate(payload); err != nil {
			return nil, fmt.Errorf("%w: schema validation: %v", policy.ErrMalformedResponse, err)
		}
	}

	return json.RawMessage(jsonStr), nil
}

// MustSchema compiles a JSON Schema document or panics. Schemas are
// package-level constants; a failure here is a programming error.
func MustSchema(name, src string) *jsonschema.Schema {
	return jsonschema.MustCompileString(name, src)
}
