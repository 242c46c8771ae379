// Package tools defines the Tool contract, a concurrency-safe Registry and the
// simulated search_information tool used by the agent.
//
// Arguments sent by the model are validated against the tool's JSON Schema
// parameters before the tool runs.
package tools
