package function

import (
	"context"
	"net/http"
	"slices"
)

// AuthLevel is the key required to invoke a function. Hosts enforce it.
type AuthLevel int

const (
	// AuthAnonymous requires no key.
	AuthAnonymous AuthLevel = iota
	// AuthFunction requires a function key or the master key.
	AuthFunction
	// AuthAdmin requires the master key.
	AuthAdmin
)

// String returns the lower-case level name.
func (l AuthLevel) String() string {
	switch l {
	case AuthAnonymous:
		return "anonymous"
	case AuthFunction:
		return "function"
	case AuthAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// Definition binds a function to its HTTP trigger.
type Definition struct {
	Name      string
	Route     string
	Methods   []string
	AuthLevel AuthLevel
	Summary   string
	Invoke    func(ctx context.Context) Result
}

// Allows reports whether method is accepted by the trigger.
func (d Definition) Allows(method string) bool {
	return slices.Contains(d.Methods, method)
}

// Definitions returns the trigger table in registration order.
func (f *Functions) Definitions() []Definition {
	return []Definition{
		{
			Name:      "Function1",
			Route:     "Function1",
			Methods:   []string{http.MethodGet, http.MethodPost},
			AuthLevel: AuthFunction,
			Summary:   "Return the welcome greeting",
			Invoke:    f.Welcome,
		},
		{
			Name:      "HealthCheck",
			Route:     "HealthCheck",
			Methods:   []string{http.MethodGet},
			AuthLevel: AuthFunction,
			Summary:   "Report that the function app is healthy",
			Invoke:    f.HealthCheck,
		},
	}
}
