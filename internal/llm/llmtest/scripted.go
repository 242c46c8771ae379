// Package llmtest provides a scripted llm.Client for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/aescanero/dago-agent-patterns/internal/llm"
)

// Responder produces the reply for one call
type Responder func(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error)

// Client is a fake llm.Client driven by a Responder. It records every request.
type Client struct {
	respond Responder

	mu    sync.Mutex
	calls []*llm.ChatRequest
}

// New creates a scripted client
func New(respond Responder) *Client {
	return &Client{respond: respond}
}

// Reply returns a client that always answers with the given text
func Reply(content string) *Client {
	return New(func(context.Context, *llm.ChatRequest) (*llm.ChatResponse, error) {
		return Text(content), nil
	})
}

// Fail returns a client whose every call fails with err
func Fail(err error) *Client {
	return New(func(context.Context, *llm.ChatRequest) (*llm.ChatResponse, error) {
		return nil, err
	})
}

// Chat implements llm.Client
func (c *Client) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	c.mu.Lock()
	c.calls = append(c.calls, req)
	c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.respond(ctx, req)
}

// Calls returns the recorded requests
func (c *Client) Calls() []*llm.ChatRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*llm.ChatRequest, len(c.calls))
	copy(out, c.calls)
	return out
}

// Text builds a final assistant reply
func Text(content string) *llm.ChatResponse {
	return &llm.ChatResponse{Message: llm.Message{Role: llm.RoleAssistant, Content: content}}
}

// ToolCalls builds an assistant reply requesting tool invocations
func ToolCalls(calls ...llm.ToolCall) *llm.ChatResponse {
	return &llm.ChatResponse{Message: llm.Message{Role: llm.RoleAssistant, ToolCalls: calls}}
}

// LastUser returns the content of the last user message in a request
func LastUser(req *llm.ChatRequest) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == llm.RoleUser {
			return req.Messages[i].Content
		}
	}
	return ""
}

// FirstUser returns the content of the first user message in a request
func FirstUser(req *llm.ChatRequest) string {
	for _, m := range req.Messages {
		if m.Role == llm.RoleUser {
			return m.Content
		}
	}
	return ""
}

// ToolResults returns the contents of all tool messages in a request
func ToolResults(req *llm.ChatRequest) []string {
	var out []string
	for _, m := range req.Messages {
		if m.Role == llm.RoleTool {
			out = append(out, m.Content)
		}
	}
	return out
}
