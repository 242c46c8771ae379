// Package cel provides a CEL (Common Expression Language) evaluator for deterministic routing cues.
//
// Expressions see a single string variable, request, and may use the extended
// string library (lowerAscii, indexOf, split, ...). They must evaluate to a bool.
//
// Example usage:
//
//	evaluator, err := cel.NewEvaluator()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	matched, err := evaluator.Evaluate(ctx, "request.lowerAscii().contains('flight')", "Book me a flight to London")
//	// matched == true
package cel
