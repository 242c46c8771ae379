package router

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// matchFastRules evaluates fast rules in order and returns the first match, or nil
func (r *Router) matchFastRules(ctx context.Context, request string) *Result {
	if r.celEvaluator == nil {
		return nil
	}

	for i, rule := range r.config.FastRules {
		r.logger.Debug("evaluating fast rule",
			zap.Int("rule_index", i),
			zap.String("condition", rule.Condition),
		)

		matched, err := r.celEvaluator.Evaluate(ctx, rule.Condition, request)
		if err != nil {
			r.logger.Warn("fast rule evaluation error",
				zap.Int("rule_index", i),
				zap.String("condition", rule.Condition),
				zap.Error(err),
			)
			// Continue to next rule on error
			continue
		}

		if matched {
			r.logger.Debug("fast rule matched",
				zap.Int("rule_index", i),
				zap.String("decision", string(rule.Decision)),
			)

			return &Result{
				Request:   request,
				Decision:  rule.Decision,
				PathTaken: PathFast,
				Reasoning: fmt.Sprintf("matched fast rule %d: %s", i, rule.Condition),
			}
		}
	}

	return nil
}
