package llm

import (
	"context"
	"fmt"
	"strings"
)

// Role tags a message in a conversation
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is a single role-tagged conversation entry
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

// ToolCall is a structured tool invocation requested by the model
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolDefinition describes a callable tool to the model.
// Parameters is a JSON Schema object.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ChatRequest is one model call
type ChatRequest struct {
	Messages []Message
	Tools    []ToolDefinition
}

// ChatResponse carries the model's reply.
// A reply with ToolCalls is a tool-invocation request, otherwise it is final.
type ChatResponse struct {
	Message Message
}

// HasToolCalls reports whether the model asked for tool invocations
func (r *ChatResponse) HasToolCalls() bool {
	return r != nil && len(r.Message.ToolCalls) > 0
}

// Client is a chat-completion capability. Implementations must be safe for concurrent use.
type Client interface {
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
}

// Ask performs a single-turn exchange and returns the reply text.
// An empty system prompt sends the user message alone.
func Ask(ctx context.Context, client Client, system, user string) (string, error) {
	if client == nil {
		return "", fmt.Errorf("llm client not configured")
	}

	messages := make([]Message, 0, 2)
	if strings.TrimSpace(system) != "" {
		messages = append(messages, Message{Role: RoleSystem, Content: system})
	}
	messages = append(messages, Message{Role: RoleUser, Content: user})

	resp, err := client.Chat(ctx, &ChatRequest{Messages: messages})
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", fmt.Errorf("empty response from llm client")
	}

	return resp.Message.Content, nil
}
