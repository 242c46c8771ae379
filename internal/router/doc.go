// Package router implements the classification router: a request is labelled
// booker, info or unclear and delegated to the matching handler.
//
// The router supports two modes:
//   - LLM: one model call with a fixed instruction that enumerates the labels
//   - Hybrid: CEL fast rules on the request text first, the model call only if none match
//
// The model's raw answer is trimmed and compared exactly. Anything other than
// "booker" or "info" lands on the unclear handler; this is not an error. A failed
// model call is returned to the caller without retry.
//
// Example:
//
//	r, err := router.NewRouter(client, router.Config{}, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := r.Route(ctx, "Book me a flight to London")
//	// result.Decision == router.DecisionBooker
//	// result.Output == "Booking Handler processed request: 'Book me a flight to London'. Result: 'Simulated booking action.'"
//
// Example hybrid routing:
//
//	r, err := router.NewRouter(client, router.Config{
//	    Mode:      router.ModeHybrid,
//	    FastRules: router.DefaultFastRules(),
//	}, logger)
package router
