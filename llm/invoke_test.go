package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innovagov/policyhub/metrics"
	"github.com/innovagov/policyhub/policy"
)

var testSchema = MustSchema("test.json", `{
	"type": "object",
	"properties": {
		"title": {"type": "string"},
		"score": {"type": "integer", "minimum": 0, "maximum": 100}
	},
	"required": ["title"]
}`)

func TestValidatePayload(t *testing.T) {
	raw, err := ValidatePayload("```json\n{\"title\": \"water reuse\", \"score\": 88}\n```", testSchema)
	require.NoError(t, err)

	var out struct {
		Title string `json:"title"`
		Score int    `json:"score"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "water reuse", out.Title)
	assert.Equal(t, 88, out.Score)
}

func TestValidatePayload_NoJSON(t *testing.T) {
	_, err := ValidatePayload("sorry, I cannot help with that", testSchema)
	require.Error(t, err)
	assert.True(t, errors.Is(err, policy.ErrMalformedResponse))
}

func TestValidatePayload_SchemaViolation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "missing required field", content: `{"score": 10}`},
		{name: "score out of range", content: `{"title": "x", "score": 250}`},
		{name: "wrong type", content: `{"title": 42}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidatePayload(tt.content, testSchema)
			require.Error(t, err)
			assert.True(t, errors.Is(err, policy.ErrMalformedResponse))
		})
	}
}

func TestValidatePayload_NilSchemaSkipsValidation(t *testing.T) {
	raw, err := ValidatePayload(`{"anything": true}`, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"anything": true}`, string(raw))
}

// stubProvider passes the raw HTTP response body through as the model
// content, so tests control the content from the test server side.
type stubProvider struct{}

func (stubProvider) Name() string                   { return "stub" }
func (stubProvider) BuildURL(baseURL string) string { return baseURL }
func (stubProvider) SetHeaders(_ *http.Request)     {}

func (stubProvider) BuildRequestBody(model string, _ []Message, _ *float64, _ int) ([]byte, error) {
	return []byte(fmt.Sprintf(`{"model":%q}`, model)), nil
}

func (stubProvider) ParseResponse(body []byte, model string) (*Response, error) {
	return &Response{Content: string(body), Model: model}, nil
}

func TestInvoke_CountsRequestOutcomes(t *testing.T) {
	RegisterProvider(stubProvider{})

	var (
		status int
		body   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	m := metrics.New()
	c := NewClient(Endpoint{Provider: "stub", URL: srv.URL, Model: "test-model"},
		WithMetrics(m),
		WithRetryConfig(RetryConfig{MaxAttempts: 1}))
	prompt := Prompt{User: "compare these policies"}

	status, body = http.StatusOK, `{"title": "water reuse"}`
	_, err := c.Invoke(context.Background(), prompt, testSchema)
	require.NoError(t, err)

	status, body = http.StatusOK, "no structured payload at all"
	_, err = c.Invoke(context.Background(), prompt, testSchema)
	require.ErrorIs(t, err, policy.ErrMalformedResponse)

	status, body = http.StatusBadRequest, "bad request"
	_, err = c.Invoke(context.Background(), prompt, testSchema)
	require.ErrorIs(t, err, policy.ErrProviderUnavailable)

	assert.Equal(t, 1.0, promtest.ToFloat64(m.LLMRequests.WithLabelValues("ok")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.LLMRequests.WithLabelValues("malformed")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.LLMRequests.WithLabelValues("transport_error")))
}

func TestValidatePayload_CleansLLMArtifacts(t *testing.T) {
	content := "```json\n{\n  \"title\": \"licensing reform\", // main subject\n  \"score\": 40,\n}\n```"
	raw, err := ValidatePayload(content, testSchema)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "licensing reform", out["title"])
}
