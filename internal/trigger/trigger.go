// Package trigger runs function definitions for a host: it attaches the
// function name to the request logger, opens a span, counts the invocation,
// and, for plain net/http hosts, enforces methods and keys before invoking.
package trigger

import (
	"context"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/janisto/function-app-demo/internal/function"
	"github.com/janisto/function-app-demo/internal/platform/funckey"
	applog "github.com/janisto/function-app-demo/internal/platform/logging"
	"github.com/janisto/function-app-demo/internal/platform/metrics"
	"github.com/janisto/function-app-demo/internal/platform/respond"
	"github.com/janisto/function-app-demo/internal/platform/tracing"
)

// Counter records invocations. *metrics.Metrics satisfies it; nil disables counting.
type Counter interface {
	Invoked(name string)
}

var _ Counter = (*metrics.Metrics)(nil)

// Run invokes def with instrumentation.
func Run(ctx context.Context, def function.Definition, c Counter) function.Result {
	ctx = applog.WithFields(ctx, zap.String("function", def.Name))
	ctx, span := tracing.StartInvocation(ctx, def.Name)
	defer span.End()
	if c != nil {
		c.Invoked(def.Name)
	}
	return def.Invoke(ctx)
}

// Handler serves def over plain net/http: disallowed methods get 405, requests
// failing the key check get 401, everything else gets the function result.
func Handler(def function.Definition, keys funckey.Keys, c Counter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !def.Allows(r.Method) {
			respond.WriteMethodNotAllowed(w, r, def.Methods)
			return
		}
		if err := keys.Authorize(def.AuthLevel, funckey.FromRequest(r)); err != nil {
			funckey.Reject(r.Context(), def.Name, err)
			w.Header().Set("WWW-Authenticate", funckey.Scheme)
			respond.WriteProblem(w, r, http.StatusUnauthorized, err.Error())
			return
		}
		Write(w, Run(r.Context(), def, c))
	})
}

// Write renders a function result.
func Write(w http.ResponseWriter, res function.Result) {
	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Body)))
	w.WriteHeader(res.Status)
	_, _ = w.Write([]byte(res.Body))
}
