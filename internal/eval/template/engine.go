package template

import (
	"fmt"
	"strings"
	"sync"

	"github.com/aymerick/raymond"
)

// Engine renders Handlebars prompt templates
type Engine struct {
	named map[string]string
	cache map[string]*raymond.Template
	mu    sync.RWMutex
}

// NewEngine creates a new template engine
func NewEngine() *Engine {
	return &Engine{
		named: make(map[string]string),
		cache: make(map[string]*raymond.Template),
	}
}

// Register validates a template and stores it under name
func (e *Engine) Register(name, templateStr string) error {
	if name == "" {
		return fmt.Errorf("template name is required")
	}

	if _, err := e.getTemplate(templateStr); err != nil {
		return fmt.Errorf("template %q: %w", name, err)
	}

	e.mu.Lock()
	e.named[name] = templateStr
	e.mu.Unlock()

	return nil
}

// RenderNamed renders a template previously stored with Register
func (e *Engine) RenderNamed(name string, data interface{}) (string, error) {
	e.mu.RLock()
	templateStr, ok := e.named[name]
	e.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("template %q not registered", name)
	}

	return e.Render(templateStr, data)
}

// Render renders a template with the given data
func (e *Engine) Render(templateStr string, data interface{}) (string, error) {
	tmpl, err := e.getTemplate(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to compile template: %w", err)
	}

	result, err := tmpl.Exec(data)
	if err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}

	return result, nil
}

// getTemplate gets a compiled template from cache or compiles it
func (e *Engine) getTemplate(templateStr string) (*raymond.Template, error) {
	e.mu.RLock()
	if tmpl, ok := e.cache[templateStr]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	// Check again in case another goroutine compiled it
	if tmpl, ok := e.cache[templateStr]; ok {
		return tmpl, nil
	}

	tmpl, err := raymond.Parse(templateStr)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	// Helpers are bound per template; raymond's global registry panics on re-registration.
	tmpl.RegisterHelpers(helpers())

	e.cache[templateStr] = tmpl

	return tmpl, nil
}

// ValidateTemplate validates a template without rendering it
func (e *Engine) ValidateTemplate(templateStr string) error {
	_, err := raymond.Parse(templateStr)
	return err
}

func helpers() map[string]interface{} {
	return map[string]interface{}{
		"uppercase": func(str string) string {
			return strings.ToUpper(str)
		},
		"lowercase": func(str string) string {
			return strings.ToLower(str)
		},
		"trim": func(str string) string {
			return strings.TrimSpace(str)
		},
		"default": func(value interface{}, defaultValue interface{}) interface{} {
			if value == nil || value == "" {
				return defaultValue
			}
			return value
		},
		"join": func(arr []interface{}, sep string) string {
			strs := make([]string, len(arr))
			for i, v := range arr {
				strs[i] = fmt.Sprint(v)
			}
			return strings.Join(strs, sep)
		},
	}
}
