package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aescanero/dago-agent-patterns/internal/llm"
	"github.com/aescanero/dago-agent-patterns/internal/tools"
)

// DefaultMaxIterations bounds the reasoning loop when Config leaves it unset
const DefaultMaxIterations = 25

// ErrMaxIterations is returned when the model keeps requesting tools past the limit
var ErrMaxIterations = errors.New("agent exceeded max iterations")

// Config configures an Agent
type Config struct {
	// SystemPrompt is prepended to every conversation when set
	SystemPrompt string
	// MaxIterations is the number of model calls allowed per query
	MaxIterations int
	// Concurrency limits RunAll; zero means one goroutine per query
	Concurrency int
}

// Answer is the final outcome of one query
type Answer struct {
	Query      string         `json:"query"`
	Content    string         `json:"content"`
	ToolCalls  []llm.ToolCall `json:"tool_calls,omitempty"`
	Iterations int            `json:"iterations"`
}

// Outcome pairs a query with its answer or error
type Outcome struct {
	Query  string
	Answer *Answer
	Err    error
}

// Agent answers queries with a model that may call registered tools
type Agent struct {
	client   llm.Client
	registry *tools.Registry
	config   Config
	logger   *zap.Logger
}

// New creates an agent
func New(client llm.Client, registry *tools.Registry, config Config, logger *zap.Logger) (*Agent, error) {
	if client == nil {
		return nil, fmt.Errorf("llm client is required")
	}
	if registry == nil {
		registry = tools.NewRegistry()
	}
	if config.MaxIterations <= 0 {
		config.MaxIterations = DefaultMaxIterations
	}
	if config.Concurrency < 0 {
		return nil, fmt.Errorf("concurrency must be >= 0, got %d", config.Concurrency)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Agent{
		client:   client,
		registry: registry,
		config:   config,
		logger:   logger,
	}, nil
}

// Run answers a single query. The model is called repeatedly until it replies
// without tool calls. Tool failures are reported back to the model as text.
func (a *Agent) Run(ctx context.Context, query string) (*Answer, error) {
	runID := uuid.NewString()
	logger := a.logger.With(
		zap.String("run_id", runID),
		zap.String("query", query),
	)
	logger.Info("running agent")

	messages := make([]llm.Message, 0, 4)
	if a.config.SystemPrompt != "" {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: a.config.SystemPrompt})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: query})

	answer := &Answer{Query: query}
	definitions := a.registry.Definitions()

	for answer.Iterations < a.config.MaxIterations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		answer.Iterations++
		resp, err := a.client.Chat(ctx, &llm.ChatRequest{
			Messages: messages,
			Tools:    definitions,
		})
		if err != nil {
			logger.Error("model call failed",
				zap.Int("iteration", answer.Iterations),
				zap.Error(err),
			)
			return nil, fmt.Errorf("agent model call failed: %w", err)
		}
		if resp == nil {
			return nil, fmt.Errorf("agent model call returned an empty response")
		}

		if !resp.HasToolCalls() {
			answer.Content = resp.Message.Content
			logger.Info("agent finished",
				zap.Int("iterations", answer.Iterations),
				zap.Int("tool_calls", len(answer.ToolCalls)),
			)
			return answer, nil
		}

		messages = append(messages, resp.Message)
		for _, call := range resp.Message.ToolCalls {
			answer.ToolCalls = append(answer.ToolCalls, call)
			messages = append(messages, llm.Message{
				Role:       llm.RoleTool,
				Content:    a.invoke(ctx, logger, call),
				ToolCallID: call.ID,
				Name:       call.Name,
			})
		}
	}

	logger.Warn("agent stopped at iteration limit",
		zap.Int("max_iterations", a.config.MaxIterations),
	)
	return nil, fmt.Errorf("%w (%d)", ErrMaxIterations, a.config.MaxIterations)
}

// invoke runs one tool call and returns the text handed back to the model
func (a *Agent) invoke(ctx context.Context, logger *zap.Logger, call llm.ToolCall) string {
	logger.Debug("executing tool",
		zap.String("tool", call.Name),
		zap.String("arguments", call.Arguments),
	)

	out, err := a.registry.Execute(ctx, call.Name, call.Arguments)
	if err != nil {
		logger.Warn("tool execution failed",
			zap.String("tool", call.Name),
			zap.Error(err),
		)
		return fmt.Sprintf("Error: %v", err)
	}
	return out
}

// RunAll answers the queries concurrently. Outcomes are returned in input order
// and one query failing does not affect the others.
func (a *Agent) RunAll(ctx context.Context, queries []string) []Outcome {
	outcomes := make([]Outcome, len(queries))

	var g errgroup.Group
	if a.config.Concurrency > 0 {
		g.SetLimit(a.config.Concurrency)
	}

	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			answer, err := a.Run(ctx, q)
			outcomes[i] = Outcome{Query: q, Answer: answer, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}
