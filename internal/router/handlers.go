package router

import "fmt"

// Handler produces the terminal output for a delegated request
type Handler func(request string) string

// Route is a named delegation target
type Route struct {
	Name    string
	Handler Handler
}

// DispatchTable maps each decision to its route
type DispatchTable map[Decision]Route

// BookingHandler simulates the booking sub-agent
func BookingHandler(request string) string {
	return fmt.Sprintf("Booking Handler processed request: '%s'. Result: 'Simulated booking action.'", request)
}

// InfoHandler simulates the information sub-agent
func InfoHandler(request string) string {
	return fmt.Sprintf("Info Handler processed request: '%s'. Result: 'Simulated info action.'", request)
}

// UnclearHandler answers requests that could not be delegated
func UnclearHandler(request string) string {
	return fmt.Sprintf("Coordinator could not delegate request: '%s'. Result: 'Please clarify your request.'", request)
}

var unclearRoute = Route{Name: "unclear_handler", Handler: UnclearHandler}

// DefaultRoutes returns the booking/info/unclear dispatch table
func DefaultRoutes() DispatchTable {
	return DispatchTable{
		DecisionBooker:  {Name: "booking_handler", Handler: BookingHandler},
		DecisionInfo:    {Name: "info_handler", Handler: InfoHandler},
		DecisionUnclear: unclearRoute,
	}
}

// Lookup returns the route for d. Decisions without an entry, and tables
// without an unclear entry, resolve to the built-in unclear route.
func (t DispatchTable) Lookup(d Decision) Route {
	if route, ok := t[d]; ok && route.Handler != nil {
		return route
	}
	if route, ok := t[DecisionUnclear]; ok && route.Handler != nil {
		return route
	}
	return unclearRoute
}

// Dispatch runs the handler selected by d
func (t DispatchTable) Dispatch(d Decision, request string) (Route, string) {
	route := t.Lookup(d)
	return route, route.Handler(request)
}
