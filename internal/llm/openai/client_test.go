package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aescanero/dago-agent-patterns/internal/config"
	"github.com/aescanero/dago-agent-patterns/internal/llm"
)

func newTestServer(t *testing.T, captured *map[string]any, reply map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if captured != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(reply)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{APIKey: "   "})
	assert.Error(t, err)
}

func TestNewClient_Defaults(t *testing.T) {
	client, err := NewClient(Config{APIKey: "test-key"})
	require.NoError(t, err)
	assert.Equal(t, defaultModel, client.Model())
	assert.Equal(t, defaultTimeout, client.timeout)
}

func TestChat_TextReply(t *testing.T) {
	var body map[string]any
	srv := newTestServer(t, &body, map[string]any{
		"id": "chatcmpl-1",
		"choices": []map[string]any{
			{"index": 0, "message": map[string]any{"role": "assistant", "content": " booker \n"}, "finish_reason": "stop"},
		},
	})

	client, err := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL + "/", Timeout: time.Second})
	require.NoError(t, err)

	resp, err := client.Chat(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "classify"},
			{Role: llm.RoleUser, Content: "Book me a flight to London"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, " booker \n", resp.Message.Content)
	assert.Equal(t, llm.RoleAssistant, resp.Message.Role)
	assert.False(t, resp.HasToolCalls())

	assert.Equal(t, "gpt-3.5-turbo", body["model"])
	temp, ok := body["temperature"].(float64)
	require.True(t, ok, "temperature must be sent even when configured as zero")
	assert.Less(t, temp, 1e-6)
	assert.NotContains(t, body, "tools")

	msgs := body["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
}

func TestChat_ToolCallRoundTrip(t *testing.T) {
	var body map[string]any
	srv := newTestServer(t, &body, map[string]any{
		"id": "chatcmpl-2",
		"choices": []map[string]any{
			{
				"index": 0,
				"message": map[string]any{
					"role": "assistant",
					"tool_calls": []map[string]any{
						{
							"id":   "call_1",
							"type": "function",
							"function": map[string]any{
								"name":      "search_information",
								"arguments": `{"query":"capital of france"}`,
							},
						},
					},
				},
				"finish_reason": "tool_calls",
			},
		},
	})

	client, err := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, Temperature: 0.5})
	require.NoError(t, err)

	resp, err := client.Chat(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: "What is the capital of France?"},
			{Role: llm.RoleAssistant, ToolCalls: []llm.ToolCall{{ID: "call_0", Name: "search_information", Arguments: `{}`}}},
			{Role: llm.RoleTool, ToolCallID: "call_0", Content: "nothing"},
		},
		Tools: []llm.ToolDefinition{{
			Name:        "search_information",
			Description: "Provides factual information",
			Parameters:  map[string]any{"type": "object"},
		}},
	})
	require.NoError(t, err)
	require.True(t, resp.HasToolCalls())
	assert.Equal(t, llm.ToolCall{ID: "call_1", Name: "search_information", Arguments: `{"query":"capital of france"}`}, resp.Message.ToolCalls[0])

	assert.Equal(t, "auto", body["tool_choice"])
	assert.InDelta(t, 0.5, body["temperature"], 1e-6)
	tools := body["tools"].([]any)
	require.Len(t, tools, 1)
	fn := tools[0].(map[string]any)["function"].(map[string]any)
	assert.Equal(t, "search_information", fn["name"])

	msgs := body["messages"].([]any)
	assert.Equal(t, "call_0", msgs[2].(map[string]any)["tool_call_id"])
	assert.NotEmpty(t, msgs[1].(map[string]any)["tool_calls"])
}

func TestChat_NoChoices(t *testing.T) {
	srv := newTestServer(t, nil, map[string]any{"id": "x", "choices": []any{}})
	client, err := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.Chat(context.Background(), &llm.ChatRequest{Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}}})
	assert.Error(t, err)
}

func TestChat_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.Chat(context.Background(), &llm.ChatRequest{Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai chat completion failed")
}

func TestChat_EmptyRequest(t *testing.T) {
	client, err := NewClient(Config{APIKey: "test-key"})
	require.NoError(t, err)

	_, err = client.Chat(context.Background(), &llm.ChatRequest{})
	assert.Error(t, err)
}

func TestWireTemperature(t *testing.T) {
	assert.Greater(t, wireTemperature(0), float32(0))
	assert.Equal(t, float32(0.7), wireTemperature(0.7))
}

func TestChat_RateLimited(t *testing.T) {
	srv := newTestServer(t, nil, map[string]any{
		"id":      "chatcmpl-1",
		"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant", "content": "info"}}},
	})

	client, err := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, RateLimit: 0.5, Burst: 1})
	require.NoError(t, err)

	req := &llm.ChatRequest{Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}}}
	_, err = client.Chat(context.Background(), req)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = client.Chat(ctx, req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter")
}

func TestFromConfig(t *testing.T) {
	cfg := &config.Config{
		LLMAPIKey:  "test-key",
		LLMModel:   "gpt-4o-mini",
		LLMTimeout: 5 * time.Second,
		LLMBurst:   1,
	}

	client, err := FromConfig(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", client.Model())
	assert.Equal(t, 5*time.Second, client.timeout)
	assert.Nil(t, client.limiter)

	cfg.LLMRateLimit = 2
	client, err = FromConfig(cfg, nil)
	require.NoError(t, err)
	assert.NotNil(t, client.limiter)

	cfg.LLMAPIKey = ""
	_, err = FromConfig(cfg, nil)
	assert.Error(t, err)
}
