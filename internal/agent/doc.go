// Package agent implements a tool-invoking agent: the model is given the
// registered tool definitions and may request tool calls, whose results are fed
// back until it produces a final answer.
//
// RunAll fans several queries out across goroutines and joins them, returning
// one Outcome per query in input order.
package agent
