package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/aescanero/dago-agent-patterns/internal/llm"
)

// Registry is a concurrency-safe set of tools keyed by name
type Registry struct {
	mu    sync.RWMutex
	tools map[string]entry
}

type entry struct {
	tool   Tool
	schema *gojsonschema.Schema
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]entry),
	}
}

// validateDefinition checks the name and that parameters describe a JSON object
func validateDefinition(def llm.ToolDefinition) error {
	if def.Name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if def.Parameters == nil {
		return fmt.Errorf("tool '%s': parameters cannot be nil", def.Name)
	}

	typeStr, ok := def.Parameters["type"].(string)
	if !ok {
		return fmt.Errorf("tool '%s': parameters must have a string 'type' field", def.Name)
	}
	if typeStr != "object" {
		return fmt.Errorf("tool '%s': parameters.type must be 'object', got: '%s'", def.Name, typeStr)
	}

	return nil
}

// Register adds a tool after validating its definition.
// A tool registered under an existing name replaces the previous one.
func (r *Registry) Register(tool Tool) error {
	def := tool.Definition()

	if err := validateDefinition(def); err != nil {
		return err
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(def.Parameters))
	if err != nil {
		return fmt.Errorf("tool '%s': invalid parameter schema: %w", def.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[def.Name] = entry{tool: tool, schema: schema}
	return nil
}

// Get looks up a tool by name
func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrToolNotFound, name)
	}
	return e.tool, nil
}

// Definitions returns every tool definition sorted by name
func (r *Registry) Definitions() []llm.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]llm.ToolDefinition, 0, len(r.tools))
	for _, e := range r.tools {
		defs = append(defs, e.tool.Definition())
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Execute validates the arguments against the tool's parameter schema and runs it
func (r *Registry) Execute(ctx context.Context, name, argsJSON string) (string, error) {
	r.mu.RLock()
	e, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: '%s'", ErrToolNotFound, name)
	}

	if argsJSON == "" {
		argsJSON = "{}"
	}

	res, err := e.schema.Validate(gojsonschema.NewStringLoader(argsJSON))
	if err != nil {
		return "", fmt.Errorf("tool '%s': invalid arguments: %w", name, err)
	}
	if !res.Valid() {
		return "", fmt.Errorf("tool '%s': invalid arguments: %s", name, res.Errors()[0])
	}

	return e.tool.Execute(ctx, argsJSON)
}
