// Package openai adapts OpenAI-compatible chat completion APIs to llm.Client.
//
// Function calling is supported: tool definitions are sent as function tools with
// automatic tool choice, and tool calls in the reply are mapped back to llm.ToolCall.
package openai

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/aescanero/dago-agent-patterns/internal/config"
	"github.com/aescanero/dago-agent-patterns/internal/llm"
)

const (
	defaultModel   = "gpt-3.5-turbo"
	defaultTimeout = 30 * time.Second
)

// Config describes how to reach the model
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
	// RateLimit caps requests per second across all callers; zero disables it
	RateLimit float64
	Burst     int
	Logger    *zap.Logger
}

// Client implements llm.Client on top of go-openai
type Client struct {
	api         *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
	limiter     *rate.Limiter
	logger      *zap.Logger
}

// NewClient creates a client. It fails when no API key is configured.
func NewClient(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	apiCfg := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		api:         openai.NewClientWithConfig(apiCfg),
		model:       model,
		temperature: wireTemperature(cfg.Temperature),
		timeout:     timeout,
		limiter:     limiter,
		logger:      logger,
	}, nil
}

// FromConfig creates a client from the LLM_* settings
func FromConfig(cfg *config.Config, logger *zap.Logger) (*Client, error) {
	return NewClient(Config{
		APIKey:      cfg.LLMAPIKey,
		BaseURL:     cfg.LLMBaseURL,
		Model:       cfg.LLMModel,
		Temperature: cfg.LLMTemperature,
		Timeout:     cfg.LLMTimeout,
		RateLimit:   cfg.LLMRateLimit,
		Burst:       cfg.LLMBurst,
		Logger:      logger,
	})
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.model
}

// Chat implements llm.Client
func (c *Client) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	if req == nil || len(req.Messages) == 0 {
		return nil, fmt.Errorf("chat request has no messages")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()

	apiReq := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    toOpenAIMessages(req.Messages),
		Temperature: c.temperature,
	}

	if len(req.Tools) > 0 {
		apiReq.Tools = toOpenAITools(req.Tools)
		apiReq.ToolChoice = "auto"
	}

	c.logger.Debug("llm request",
		zap.String("model", c.model),
		zap.Int("messages", len(req.Messages)),
		zap.Int("tools", len(req.Tools)),
	)

	resp, err := c.api.CreateChatCompletion(ctx, apiReq)
	if err != nil {
		c.logger.Error("llm request failed",
			zap.String("model", c.model),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("openai chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}

	msg := fromOpenAIMessage(resp.Choices[0].Message)

	c.logger.Debug("llm response",
		zap.String("model", c.model),
		zap.Int("tool_calls", len(msg.ToolCalls)),
		zap.Int("content_length", len(msg.Content)),
		zap.Duration("duration", time.Since(start)),
	)

	return &llm.ChatResponse{Message: msg}, nil
}

// wireTemperature keeps a zero temperature on the wire: go-openai drops the
// field when it is exactly 0, which the API would read as its default of 1.
func wireTemperature(t float32) float32 {
	if t <= 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}

func toOpenAIMessages(messages []llm.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		msg := openai.ChatCompletionMessage{
			Role:       string(m.Role),
			Content:    m.Content,
			Name:       m.Name,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		out[i] = msg
	}
	return out
}

func fromOpenAIMessage(m openai.ChatCompletionMessage) llm.Message {
	msg := llm.Message{
		Role:    llm.Role(m.Role),
		Content: m.Content,
	}
	if msg.Role == "" {
		msg.Role = llm.RoleAssistant
	}
	for _, tc := range m.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, llm.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return msg
}

func toOpenAITools(defs []llm.ToolDefinition) []openai.Tool {
	out := make([]openai.Tool, len(defs))
	for i, def := range defs {
		out[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  def.Parameters,
			},
		}
	}
	return out
}
