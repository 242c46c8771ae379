package chain

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/aescanero/dago-agent-patterns/internal/eval/template"
	"github.com/aescanero/dago-agent-patterns/internal/llm"
)

// Step is one prompt in a chain. Its rendered template is sent to the model and
// the trimmed reply is stored under OutputKey for later steps.
type Step struct {
	Name      string
	Template  string
	OutputKey string
}

// StepResult records what one step sent and received
type StepResult struct {
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
	Output string `json:"output"`
}

// Result holds the accumulated variables and per-step trace of a run
type Result struct {
	Vars  map[string]string `json:"vars"`
	Steps []StepResult      `json:"steps"`
}

// Final returns the output of the last step
func (r *Result) Final() string {
	if len(r.Steps) == 0 {
		return ""
	}
	return r.Steps[len(r.Steps)-1].Output
}

// Chain runs steps in order, each seeing the outputs of the ones before it
type Chain struct {
	steps  []Step
	client llm.Client
	engine *template.Engine
	logger *zap.Logger
}

// New creates a chain. Step templates are compiled up front.
func New(client llm.Client, steps []Step, logger *zap.Logger) (*Chain, error) {
	if client == nil {
		return nil, fmt.Errorf("llm client is required")
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("chain needs at least one step")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	engine := template.NewEngine()
	seen := make(map[string]bool, len(steps))
	for i, s := range steps {
		if s.Name == "" {
			return nil, fmt.Errorf("step %d: name is required", i)
		}
		if s.OutputKey == "" {
			return nil, fmt.Errorf("step %q: output key is required", s.Name)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("step %q: duplicate name", s.Name)
		}
		seen[s.Name] = true

		if err := engine.Register(s.Name, s.Template); err != nil {
			return nil, fmt.Errorf("step %q: %w", s.Name, err)
		}
	}

	return &Chain{
		steps:  steps,
		client: client,
		engine: engine,
		logger: logger,
	}, nil
}

// Run executes every step in order. The first failing step aborts the run.
func (c *Chain) Run(ctx context.Context, vars map[string]string) (*Result, error) {
	result := &Result{
		Vars:  make(map[string]string, len(vars)+len(c.steps)),
		Steps: make([]StepResult, 0, len(c.steps)),
	}
	for k, v := range vars {
		result.Vars[k] = v
	}

	for _, step := range c.steps {
		data := make(map[string]interface{}, len(result.Vars))
		for k, v := range result.Vars {
			data[k] = v
		}

		prompt, err := c.engine.RenderNamed(step.Name, data)
		if err != nil {
			return nil, fmt.Errorf("step %q: render failed: %w", step.Name, err)
		}

		c.logger.Debug("running chain step",
			zap.String("step", step.Name),
			zap.String("prompt", prompt),
		)

		reply, err := llm.Ask(ctx, c.client, "", prompt)
		if err != nil {
			c.logger.Error("chain step failed",
				zap.String("step", step.Name),
				zap.Error(err),
			)
			return nil, fmt.Errorf("step %q: %w", step.Name, err)
		}

		output := strings.TrimSpace(reply)
		result.Vars[step.OutputKey] = output
		result.Steps = append(result.Steps, StepResult{
			Name:   step.Name,
			Prompt: prompt,
			Output: output,
		})

		c.logger.Info("chain step completed",
			zap.String("step", step.Name),
			zap.String("output_key", step.OutputKey),
			zap.Int("output_len", len(output)),
		)
	}

	return result, nil
}
