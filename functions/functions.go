// Package functions registers the function app's triggers with the Functions
// Framework so each one deploys as an HTTP Cloud Function:
//
//	gcloud functions deploy function1 --gen2 --runtime=go125 --trigger-http --entry-point=Function1
package functions

import (
	"context"
	"net/http"

	framework "github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/janisto/function-app-demo/internal/function"
	"github.com/janisto/function-app-demo/internal/platform/config"
	applog "github.com/janisto/function-app-demo/internal/platform/logging"
	appmiddleware "github.com/janisto/function-app-demo/internal/platform/middleware"
	"github.com/janisto/function-app-demo/internal/platform/respond"
	"github.com/janisto/function-app-demo/internal/platform/tracing"
	"github.com/janisto/function-app-demo/internal/trigger"
)

const serviceName = "function-app-demo"

func init() {
	for name, h := range Setup(context.Background(), config.Load) {
		framework.HTTP(name, h.ServeHTTP)
	}
}

// Setup loads configuration, installs tracing and returns the entry point
// handlers. When loading fails every entry point answers 503 instead of
// running with a partial configuration.
func Setup(ctx context.Context, load func(...string) (config.Config, error)) map[string]http.Handler {
	cfg, err := load()
	if err != nil {
		applog.LogError(ctx, "config load failed", err)
		return Unavailable()
	}
	if !cfg.Keys().Enabled() {
		applog.LogWarn(ctx, "no function keys configured, function key checks are disabled")
	}
	if _, err := tracing.Setup(ctx, tracing.Options{
		Exporter:       cfg.TracingExporter,
		ServiceName:    serviceName,
		ServiceVersion: cfg.Version,
		Synchronous:    true,
	}); err != nil {
		applog.LogError(ctx, "tracing setup failed", err)
	}
	return Handlers(cfg)
}

// Handlers returns one handler per function definition keyed by entry point name.
func Handlers(cfg config.Config) map[string]http.Handler {
	keys := cfg.Keys()
	out := map[string]http.Handler{}
	for _, def := range definitions() {
		out[def.Name] = wrap(trigger.Handler(def, keys, nil))
	}
	return out
}

// Unavailable returns handlers that answer every request with a 503 problem.
func Unavailable() map[string]http.Handler {
	out := map[string]http.Handler{}
	for _, def := range definitions() {
		out[def.Name] = wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			respond.WriteProblem(w, r, http.StatusServiceUnavailable, "function app is not configured")
		}))
	}
	return out
}

func definitions() []function.Definition {
	return function.New(applog.ContextLogger{}).Definitions()
}

func wrap(h http.Handler) http.Handler {
	h = respond.Recoverer()(h)
	h = applog.RequestLogger()(h)
	return appmiddleware.RequestID()(h)
}
