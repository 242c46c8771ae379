package router

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/aescanero/dago-agent-patterns/internal/llm"
)

// routeLLM performs model-based classification
func (r *Router) routeLLM(ctx context.Context, request string) (*Result, error) {
	if r.llmClient == nil {
		return nil, fmt.Errorf("llm client not configured")
	}

	prompt, err := r.renderPrompt(request)
	if err != nil {
		return nil, fmt.Errorf("failed to render prompt: %w", err)
	}

	raw, err := llm.Ask(ctx, r.llmClient, r.config.SystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("router classification failed: %w", err)
	}

	r.logger.Debug("llm response received",
		zap.String("response", raw),
	)

	decision := ParseDecision(raw)

	result := &Result{
		Request:   request,
		Decision:  decision,
		Raw:       raw,
		PathTaken: PathModel,
		Reasoning: fmt.Sprintf("llm classified as: %s", decision),
	}

	if decision == DecisionUnclear {
		result.PathTaken = PathFallback
		if Decision(strings.TrimSpace(raw)) != DecisionUnclear {
			r.logger.Warn("llm response did not match any label",
				zap.String("response", raw),
			)
			result.Reasoning = fmt.Sprintf("llm response '%s' did not match any label", raw)
		}
	}

	return result, nil
}

// renderPrompt renders the user message for the request
func (r *Router) renderPrompt(request string) (string, error) {
	return r.templateEngine.Render(r.config.RequestTemplate, map[string]interface{}{
		"request": request,
	})
}
