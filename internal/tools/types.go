package tools

import (
	"context"
	"errors"

	"github.com/aescanero/dago-agent-patterns/internal/llm"
)

// ErrToolNotFound is returned when a tool name is not registered
var ErrToolNotFound = errors.New("tool not found")

// Tool is the contract every callable capability implements
type Tool interface {
	// Definition describes the tool to the model
	Definition() llm.ToolDefinition

	// Execute runs the tool with the raw JSON arguments sent by the model
	Execute(ctx context.Context, argsJSON string) (string, error)
}
