package router

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/aescanero/dago-agent-patterns/internal/eval/cel"
	"github.com/aescanero/dago-agent-patterns/internal/eval/template"
	"github.com/aescanero/dago-agent-patterns/internal/llm"
)

// RoutingMode represents the routing strategy
type RoutingMode string

const (
	// ModeLLM classifies every request with one model call
	ModeLLM RoutingMode = "llm"

	// ModeHybrid tries CEL fast rules first and calls the model only when none match
	ModeHybrid RoutingMode = "hybrid"
)

// Path values recorded on a Result
const (
	PathFast     = "fast"
	PathModel    = "model"
	PathFallback = "fallback"
)

// CoordinatorPrompt is the fixed instruction enumerating the valid labels
const CoordinatorPrompt = `Analyze the user's request and determine which specialist handler should process it.
- If the request is related to booking flights or hotels, output 'booker'.
- For all other general information questions, output 'info'.
- If the request is unclear or doesn't fit either category, output 'unclear'.
ONLY output one word: 'booker', 'info', or 'unclear'.`

// DefaultRequestTemplate renders the user message sent to the model
const DefaultRequestTemplate = "{{{request}}}"

// Rule is a CEL fast rule mapping a matching request to a decision
type Rule struct {
	Condition string   `json:"condition"`
	Decision  Decision `json:"decision"`
}

// Config configures a Router
type Config struct {
	Mode            RoutingMode
	FastRules       []Rule
	SystemPrompt    string
	RequestTemplate string
	Routes          DispatchTable
}

// Result represents the outcome of routing one request
type Result struct {
	Request   string   `json:"request"`
	Decision  Decision `json:"decision"`
	Raw       string   `json:"raw,omitempty"`
	Handler   string   `json:"handler"`
	Output    string   `json:"output"`
	PathTaken string   `json:"path_taken"` // "fast", "model", "fallback"
	Reasoning string   `json:"reasoning"`
}

// Router classifies requests and delegates them to handlers
type Router struct {
	config         Config
	celEvaluator   *cel.Evaluator
	templateEngine *template.Engine
	llmClient      llm.Client
	logger         *zap.Logger
}

// DefaultFastRules returns the booking cue rules used in hybrid mode
func DefaultFastRules() []Rule {
	return []Rule{
		{Condition: "request.lowerAscii().contains('flight')", Decision: DecisionBooker},
		{Condition: "request.lowerAscii().contains('hotel')", Decision: DecisionBooker},
	}
}

// NewRouter creates a new router
func NewRouter(llmClient llm.Client, config Config, logger *zap.Logger) (*Router, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if config.Mode == "" {
		config.Mode = ModeLLM
	}
	if config.SystemPrompt == "" {
		config.SystemPrompt = CoordinatorPrompt
	}
	if config.RequestTemplate == "" {
		config.RequestTemplate = DefaultRequestTemplate
	}
	if config.Routes == nil {
		config.Routes = DefaultRoutes()
	}

	r := &Router{
		config:         config,
		templateEngine: template.NewEngine(),
		llmClient:      llmClient,
		logger:         logger,
	}

	if err := r.validateConfig(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if config.Mode == ModeHybrid {
		evaluator, err := cel.NewEvaluator()
		if err != nil {
			return nil, err
		}
		for i, rule := range config.FastRules {
			if err := evaluator.ValidateExpression(rule.Condition); err != nil {
				return nil, fmt.Errorf("fast rule %d: %w", i, err)
			}
		}
		r.celEvaluator = evaluator
	}

	return r, nil
}

// Route classifies a request and runs the selected handler.
// A failed model call is returned to the caller; unknown labels are not errors.
func (r *Router) Route(ctx context.Context, request string) (*Result, error) {
	r.logger.Debug("routing request",
		zap.String("request", request),
		zap.String("mode", string(r.config.Mode)),
	)

	var (
		result *Result
		err    error
	)

	switch r.config.Mode {
	case ModeHybrid:
		result, err = r.routeHybrid(ctx, request)
	default:
		result, err = r.routeLLM(ctx, request)
	}

	if err != nil {
		r.logger.Error("routing failed",
			zap.String("request", request),
			zap.String("mode", string(r.config.Mode)),
			zap.Error(err),
		)
		return nil, err
	}

	route, output := r.config.Routes.Dispatch(result.Decision, request)
	result.Handler = route.Name
	result.Output = output

	r.logger.Info("router decision",
		zap.String("decision", string(result.Decision)),
		zap.String("delegating_to", result.Handler),
		zap.String("path", result.PathTaken),
		zap.String("reasoning", result.Reasoning),
	)

	return result, nil
}

// routeHybrid tries fast rules before falling through to the model
func (r *Router) routeHybrid(ctx context.Context, request string) (*Result, error) {
	if result := r.matchFastRules(ctx, request); result != nil {
		return result, nil
	}

	r.logger.Debug("fast rules did not match, asking model")
	return r.routeLLM(ctx, request)
}

// validateConfig validates the routing configuration
func (r *Router) validateConfig() error {
	switch r.config.Mode {
	case ModeLLM:
	case ModeHybrid:
		for i, rule := range r.config.FastRules {
			if rule.Condition == "" {
				return fmt.Errorf("fast rule %d: condition is required", i)
			}
			if !rule.Decision.Valid() {
				return fmt.Errorf("fast rule %d: unknown decision %q", i, rule.Decision)
			}
		}
	default:
		return fmt.Errorf("unknown routing mode: %s", r.config.Mode)
	}

	if err := r.templateEngine.ValidateTemplate(r.config.RequestTemplate); err != nil {
		return fmt.Errorf("request template: %w", err)
	}

	return nil
}
