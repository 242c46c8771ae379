// Package chain implements sequential prompt chaining. Each step's reply is
// stored under a variable that later step templates can reference, so a
// failing step stops the chain before anything downstream runs.
//
// The hardware spec chain extracts a technical specification from free text
// and then transforms it into a JSON object keyed by cpu, memory, storage and gpu.
package chain
