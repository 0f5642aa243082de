package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qainatsaeed/BlackBox-LLM/pkg/llm"
)

func TestChatWireFormat(t *testing.T) {
	var gotPath string
	var gotAuth string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hi there"}}]}`))
	}))
	defer server.Close()

	p := NewOpenAIProvider("sk-test", server.URL, "gpt-test")

	answer, err := p.Chat(context.Background(), []llm.Message{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "hello"},
	}, llm.WithMaxTokens(64), llm.WithTemperature(0.1))
	require.NoError(t, err)
	assert.Equal(t, "hi there", answer)

	assert.Equal(t, "/v1/chat/completions", gotPath)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "gpt-test", gotBody["model"])

	messages, ok := gotBody["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, messages, 2)

	first, ok := messages[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "system", first["role"])
	assert.Equal(t, "be brief", first["content"])

	second, ok := messages[1].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "user", second["role"])
	assert.Equal(t, "hello", second["content"])
}

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare host", "https://api.openai.com", "https://api.openai.com/v1"},
		{"trailing slash", "https://api.openai.com/", "https://api.openai.com/v1"},
		{"already versioned", "https://api.openai.com/v1", "https://api.openai.com/v1"},
		{"versioned with slash", "https://gateway.local/v1/", "https://gateway.local/v1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeBaseURL(tt.in))
		})
	}
}

func TestChatAPIErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	p := NewOpenAIProvider("sk-test", server.URL, "gpt-test")

	_, err := p.Generate(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
