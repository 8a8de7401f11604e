package providers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innovagov/policyhub/llm"
)

func TestOllamaProvider_BuildURL(t *testing.T) {
	p := &OllamaProvider{}

	tests := []struct {
		name    string
		baseURL string
		want    string
	}{
		{
			name:    "empty uses local default",
			baseURL: "",
			want:    "http://localhost:11434/v1/chat/completions",
		},
		{
			name:    "custom base URL",
			baseURL: "http://inference:8080/v1",
			want:    "http://inference:8080/v1/chat/completions",
		},
		{
			name:    "trailing slash handled",
			baseURL: "http://localhost:11434/v1/",
			want:    "http://localhost:11434/v1/chat/completions",
		},
		{
			name:    "already has endpoint",
			baseURL: "http://localhost:11434/v1/chat/completions",
			want:    "http://localhost:11434/v1/chat/completions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.BuildURL(tt.baseURL))
		})
	}
}

func TestOllamaProvider_BuildRequestBody(t *testing.T) {
	p := &OllamaProvider{}

	messages := []llm.Message{
		{Role: "system", Content: "You translate policy text."},
		{Role: "user", Content: "ترجم العنوان"},
	}

	temp := 0.2
	body, err := p.BuildRequestBody("qwen2.5:32b", messages, &temp, 2048)
	require.NoError(t, err)

	assert.Contains(t, string(body), `"model":"qwen2.5:32b"`)
	// The OpenAI-compatible format keeps the system prompt as a message.
	assert.Contains(t, string(body), `"role":"system"`)
	assert.Contains(t, string(body), `"role":"user"`)
	assert.Contains(t, string(body), `"temperature":0.2`)
	assert.Contains(t, string(body), `"max_tokens":2048`)
}

func TestOllamaProvider_BuildRequestBody_NoOptionalParams(t *testing.T) {
	p := &OllamaProvider{}

	body, err := p.BuildRequestBody("qwen2.5:32b", []llm.Message{{Role: "user", Content: "hi"}}, nil, 0)
	require.NoError(t, err)

	assert.NotContains(t, string(body), `"temperature"`)
	assert.NotContains(t, string(body), `"max_tokens"`)
}

func TestOllamaProvider_BuildRequestBody_ZeroTemperature(t *testing.T) {
	p := &OllamaProvider{}

	// Zero is deterministic sampling, not "unset".
	temp := 0.0
	body, err := p.BuildRequestBody("qwen2.5:32b", []llm.Message{{Role: "user", Content: "hi"}}, &temp, 0)
	require.NoError(t, err)

	assert.Contains(t, string(body), `"temperature":0`)
}

func TestOllamaProvider_ParseResponse(t *testing.T) {
	p := &OllamaProvider{}

	body := []byte(`{
		"model": "qwen2.5:32b",
		"choices": [{
			"index": 0,
			"message": {"role": "assistant", "content": "{\"title\": \"Water Reuse Policy\"}"},
			"finish_reason": "stop"
		}],
		"usage": {"prompt_tokens": 10, "completion_tokens": 6, "total_tokens": 16}
	}`)

	resp, err := p.ParseResponse(body, "qwen2.5:32b")
	require.NoError(t, err)

	assert.Equal(t, `{"title": "Water Reuse Policy"}`, resp.Content)
	assert.Equal(t, "qwen2.5:32b", resp.Model)
	assert.Equal(t, 16, resp.TokensUsed)
	assert.Equal(t, "stop", resp.FinishReason)
}

func TestOllamaProvider_ParseResponse_NoChoices(t *testing.T) {
	p := &OllamaProvider{}

	_, err := p.ParseResponse([]byte(`{"choices": []}`), "qwen2.5:32b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestOllamaProvider_SetHeaders(t *testing.T) {
	p := &OllamaProvider{}

	t.Run("bearer auth from environment", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "test-key")
		req, _ := http.NewRequest(http.MethodPost, "http://localhost:11434/v1/chat/completions", nil)
		p.SetHeaders(req)
		assert.Equal(t, "Bearer test-key", req.Header.Get("Authorization"))
	})

	t.Run("no auth header without key", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		req, _ := http.NewRequest(http.MethodPost, "http://localhost:11434/v1/chat/completions", nil)
		p.SetHeaders(req)
		assert.Empty(t, req.Header.Get("Authorization"))
	})
}
