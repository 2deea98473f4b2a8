package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/janisto/function-app-demo/internal/function"
	"github.com/janisto/function-app-demo/internal/http/health"
	"github.com/janisto/function-app-demo/internal/http/v1/routes"
	"github.com/janisto/function-app-demo/internal/platform/config"
	applog "github.com/janisto/function-app-demo/internal/platform/logging"
	"github.com/janisto/function-app-demo/internal/platform/metrics"
	appmiddleware "github.com/janisto/function-app-demo/internal/platform/middleware"
	"github.com/janisto/function-app-demo/internal/platform/respond"
	"github.com/janisto/function-app-demo/internal/platform/tracing"
)

const serviceName = "function-app-demo"

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

func main() {
	defer func() {
		if err := applog.Sync(); err != nil {
			applog.LogError(context.Background(), "logger sync error", err)
		}
	}()
	if err := applog.Err(); err != nil {
		applog.LogWarn(context.Background(), "log level ignored", zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		applog.LogError(context.Background(), "config load failed", err)
		os.Exit(1)
	}
	version := Version
	if version == "dev" && cfg.Version != "" {
		version = cfg.Version
	}

	shutdownTracing, err := tracing.Setup(context.Background(), tracing.Options{
		Exporter:       cfg.TracingExporter,
		ServiceName:    serviceName,
		ServiceVersion: version,
	})
	if err != nil {
		applog.LogError(context.Background(), "tracing setup failed", err)
		os.Exit(1)
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}
	if !cfg.Keys().Enabled() {
		applog.LogWarn(context.Background(), "no function keys configured, function key checks are disabled")
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           newRouter(cfg, version, m),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    64 << 10, // 64 KB
	}

	listenErr := make(chan error, 1)
	go func() {
		applog.LogInfo(context.Background(), "server listening",
			zap.String("addr", srv.Addr),
			zap.String("routePrefix", cfg.RoutePrefix),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			listenErr <- err
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-listenErr:
		applog.LogError(context.Background(), "listen failed", err, zap.String("addr", srv.Addr))
		os.Exit(1)
	case <-stop:
		applog.LogInfo(context.Background(), "shutdown signal received")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		applog.LogError(ctx, "server shutdown error", err)
	}
	if err := shutdownTracing(ctx); err != nil {
		applog.LogError(ctx, "tracer shutdown error", err)
	}
	applog.LogInfo(context.Background(), "server exited")
}

// newRouter builds the full handler tree. A nil m disables metrics.
func newRouter(cfg config.Config, version string, m *metrics.Metrics) chi.Router {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	// Base middleware stack
	router.Use(
		appmiddleware.Security("/api-docs"),
		appmiddleware.Vary(),
		appmiddleware.CORS(),
		appmiddleware.RequestID(),
		// RealIP trusts X-Real-IP and X-Forwarded-For; only run behind a trusted proxy.
		chimiddleware.RealIP,
		chimiddleware.RequestSize(1<<20), // 1 MB limit
		tracing.Middleware(serviceName),
	)
	if m != nil {
		router.Use(m.Middleware())
	}
	router.Use(
		applog.RequestLogger(),
		applog.AccessLogger(),
		respond.Recoverer(),
	)

	router.Get(health.Path, health.Handler)
	if m != nil {
		router.Method(http.MethodGet, "/metrics", m.Handler())
	}

	humaCfg := huma.DefaultConfig("Function App API", version)
	humaCfg.DocsPath = "/api-docs"
	api := humachi.New(router, humaCfg)
	api.OpenAPI().OnAddOperation = append(api.OpenAPI().OnAddOperation, mirrorCBOR)

	routes.Register(api, cfg, function.New(applog.ContextLogger{}), m)
	return router
}

// mirrorCBOR advertises application/cbor wherever an operation accepts or returns JSON.
func mirrorCBOR(_ *huma.OpenAPI, op *huma.Operation) {
	if op.RequestBody != nil && op.RequestBody.Content != nil {
		if jsonContent, ok := op.RequestBody.Content["application/json"]; ok {
			op.RequestBody.Content["application/cbor"] = jsonContent
		}
	}
	for _, resp := range op.Responses {
		if resp.Content == nil {
			continue
		}
		if jsonContent, ok := resp.Content["application/json"]; ok {
			resp.Content["application/cbor"] = jsonContent
		}
	}
}
