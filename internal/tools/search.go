package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/aescanero/dago-agent-patterns/internal/llm"
)

// SearchToolName is the name the model uses to call SearchInformation
const SearchToolName = "search_information"

var simulatedResults = map[string]string{
	"weather in london":   "The weather in London is currently cloudy with a temperature of 15°C.",
	"capital of france":   "The capital of France is Paris.",
	"population of earth": "The estimated population of Earth is around 8 billion people.",
	"tallest mountain":    "Mount Everest is the tallest mountain above sea level.",
}

// SearchInformation is a simulated lookup over a fixed set of facts
type SearchInformation struct {
	logger *zap.Logger
}

// NewSearchInformation creates the search tool
func NewSearchInformation(logger *zap.Logger) *SearchInformation {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchInformation{logger: logger}
}

// Definition implements Tool
func (s *SearchInformation) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name: SearchToolName,
		Description: "Provides factual information on a given topic. Use this tool to find answers " +
			"to phrases like 'capital of France' or 'weather in London?'.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The topic to look up",
				},
			},
			"required": []string{"query"},
		},
	}
}

// Execute implements Tool
func (s *SearchInformation) Execute(_ context.Context, argsJSON string) (string, error) {
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return "", fmt.Errorf("search_information: invalid arguments: %w", err)
	}

	s.logger.Info("tool called",
		zap.String("tool", SearchToolName),
		zap.String("query", args.Query),
	)

	result := Search(args.Query)

	s.logger.Info("tool result",
		zap.String("tool", SearchToolName),
		zap.String("result", result),
	)

	return result, nil
}

// Search returns the fact for query, matched case-insensitively, or a default message
func Search(query string) string {
	if result, ok := simulatedResults[strings.ToLower(query)]; ok {
		return result
	}
	return fmt.Sprintf("Simulated search result for '%s': No specific information found, but the topic seems interesting.", query)
}
