// Package llm defines the model provider boundary shared by the router, the
// tool-using agent and the prompt chain.
//
// A Client accepts role-tagged messages plus optional tool definitions and returns
// either a final message or a message carrying tool-invocation requests. Calls are
// synchronous; run them from goroutines for concurrent invocation.
//
// Concrete providers live in subpackages (see llm/openai). Tests use llm/llmtest.
package llm
