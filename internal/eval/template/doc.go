// Package template provides a Handlebars template engine for rendering LLM prompts.
//
// Templates can be rendered directly or registered under a name once and rendered
// by name afterwards. Compiled templates are cached.
//
// Example usage:
//
//	engine := template.NewEngine()
//	_ = engine.Register("extract", "Extract the technical specification from the following text:\n\n{{{text_input}}}")
//
//	prompt, err := engine.RenderNamed("extract", map[string]interface{}{
//	    "text_input": "The new laptop model features a 3.5 GHz octa-core processor",
//	})
//
// User-supplied text should be interpolated with triple braces ({{{var}}}); double
// braces HTML-escape the value, which changes quotes and apostrophes in prompts.
//
// Built-in helpers:
//   - uppercase - Convert string to uppercase
//   - lowercase - Convert string to lowercase
//   - trim - Trim whitespace from string
//   - default - Return default value if first arg is empty
//   - join - Join array elements with separator
package template
