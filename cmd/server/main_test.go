package main

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/fxamacker/cbor/v2"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/janisto/function-app-demo/internal/function"
	"github.com/janisto/function-app-demo/internal/http/health"
	"github.com/janisto/function-app-demo/internal/platform/config"
	"github.com/janisto/function-app-demo/internal/platform/funckey"
	"github.com/janisto/function-app-demo/internal/platform/metrics"
)

func testServer(cfg config.Config, m *metrics.Metrics) http.Handler {
	router := newRouter(cfg, "test", m)
	router.Get("/panic", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
	return router
}

func serve(t *testing.T, h http.Handler, method, target string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set(chimiddleware.RequestIDHeader, "test-"+strings.ToLower(method)+"-req")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

func decodeProblem(t *testing.T, resp *httptest.ResponseRecorder) huma.ErrorModel {
	t.Helper()
	if ct := resp.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("expected application/problem+json content type, got %q", ct)
	}
	var problem huma.ErrorModel
	if err := json.Unmarshal(resp.Body.Bytes(), &problem); err != nil {
		t.Fatalf("failed to unmarshal problem: %v", err)
	}
	return problem
}

func TestHealth(t *testing.T) {
	resp := serve(t, testServer(config.Config{}, nil), http.MethodGet, health.Path, nil)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", resp.Code)
	}
	var body health.Response
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if body.Status != "healthy" {
		t.Fatalf("expected status 'healthy', got %s", body.Status)
	}
}

func TestFunctionEndpoints(t *testing.T) {
	srv := testServer(config.Config{}, nil)

	tests := []struct {
		method string
		target string
		want   string
	}{
		{http.MethodGet, "/Function1", function.WelcomeBody},
		{http.MethodPost, "/Function1", function.WelcomeBody},
		{http.MethodGet, "/HealthCheck", function.HealthyBody},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			resp := serve(t, srv, tt.method, tt.target, nil)
			if resp.Code != http.StatusOK {
				t.Fatalf("expected 200 got %d", resp.Code)
			}
			if resp.Body.String() != tt.want {
				t.Fatalf("expected %q got %q", tt.want, resp.Body.String())
			}
			if resp.Header().Get("X-Content-Type-Options") != "nosniff" {
				t.Fatal("expected security headers on function response")
			}
		})
	}
}

func TestFunctionKeyGate(t *testing.T) {
	srv := testServer(config.Config{FunctionKeys: []string{"k1"}}, nil)

	resp := serve(t, srv, http.MethodGet, "/Function1", nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	resp = serve(t, srv, http.MethodGet, "/Function1?code=k1", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	resp = serve(t, srv, http.MethodGet, health.Path, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected liveness probe outside the gate, got %d", resp.Code)
	}
	resp = serve(t, srv, http.MethodGet, "/HealthCheck", map[string]string{funckey.HeaderName: "k1"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestNotFoundReturnsProblemDetails(t *testing.T) {
	resp := serve(t, testServer(config.Config{}, nil), http.MethodGet, "/missing", nil)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
	problem := decodeProblem(t, resp)
	if problem.Status != http.StatusNotFound || problem.Title != "Not Found" {
		t.Fatalf("unexpected problem: %+v", problem)
	}
	if problem.Detail != "resource not found" {
		t.Fatalf("unexpected detail: %s", problem.Detail)
	}
}

func TestMethodNotAllowedReturnsProblemDetails(t *testing.T) {
	resp := serve(t, testServer(config.Config{}, nil), http.MethodPost, "/HealthCheck", nil)

	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 got %d", resp.Code)
	}
	if allow := resp.Header().Get("Allow"); !strings.Contains(allow, http.MethodGet) {
		t.Fatalf("expected Allow header to list GET, got %q", allow)
	}
	problem := decodeProblem(t, resp)
	if problem.Status != http.StatusMethodNotAllowed || problem.Title != "Method Not Allowed" {
		t.Fatalf("unexpected problem: %+v", problem)
	}
	if !strings.Contains(problem.Detail, "POST") {
		t.Fatalf("expected detail to mention POST, got %s", problem.Detail)
	}
}

func TestRecovererReturnsProblemDetails(t *testing.T) {
	resp := serve(t, testServer(config.Config{}, nil), http.MethodGet, "/panic", nil)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
	problem := decodeProblem(t, resp)
	if problem.Title != "Internal Server Error" || problem.Detail != "internal server error" {
		t.Fatalf("unexpected problem: %+v", problem)
	}
}

func TestNotFoundCBOR(t *testing.T) {
	resp := serve(t, testServer(config.Config{}, nil), http.MethodGet, "/missing",
		map[string]string{"Accept": "application/cbor"})

	if ct := resp.Header().Get("Content-Type"); ct != "application/problem+cbor" {
		t.Fatalf("expected application/problem+cbor, got %q", ct)
	}
	var problem huma.ErrorModel
	if err := cbor.Unmarshal(resp.Body.Bytes(), &problem); err != nil {
		t.Fatalf("failed to decode cbor problem: %v", err)
	}
	if problem.Status != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", problem.Status)
	}
}

func TestRoutePrefix(t *testing.T) {
	srv := testServer(config.Config{RoutePrefix: "/api"}, nil)

	if resp := serve(t, srv, http.MethodGet, "/api/Function1", nil); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp := serve(t, srv, http.MethodGet, "/Function1", nil); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.New()
	srv := testServer(config.Config{}, m)
	serve(t, srv, http.MethodGet, "/HealthCheck", nil)

	resp := serve(t, srv, http.MethodGet, "/metrics", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	body := resp.Body.String()
	if !strings.Contains(body, `function_invocations_total{function="HealthCheck"} 1`) {
		t.Fatal("expected HealthCheck invocation to be counted")
	}
	if !strings.Contains(body, `route="/HealthCheck"`) {
		t.Fatal("expected request metrics labelled by route")
	}
}

func TestMetricsDisabled(t *testing.T) {
	resp := serve(t, testServer(config.Config{}, nil), http.MethodGet, "/metrics", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestAPIDocs(t *testing.T) {
	srv := testServer(config.Config{}, nil)

	resp := serve(t, srv, http.MethodGet, "/openapi.json", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var doc struct {
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &doc); err != nil {
		t.Fatalf("failed to unmarshal openapi: %v", err)
	}
	if _, ok := doc.Paths["/Function1"]["post"]; !ok {
		t.Fatal("expected POST /Function1 in OpenAPI document")
	}

	resp = serve(t, srv, http.MethodGet, "/api-docs", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected docs page, got %d", resp.Code)
	}
}

func TestServerShutdownOnSignal(t *testing.T) {
	srv := &http.Server{
		Addr:              ":0",
		Handler:           testServer(config.Config{}, nil),
		ReadHeaderTimeout: time.Second,
	}

	listenErr := make(chan error, 1)
	started := make(chan struct{})
	go func() {
		ln, err := net.Listen("tcp", srv.Addr)
		if err != nil {
			listenErr <- err
			return
		}
		close(started)
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			listenErr <- err
		}
	}()

	select {
	case <-started:
	case err := <-listenErr:
		t.Fatalf("server failed to start: %v", err)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for server to start")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}

	select {
	case err := <-listenErr:
		t.Fatalf("unexpected listen error after shutdown: %v", err)
	default:
	}
}

func TestMirrorCBOR(t *testing.T) {
	router := chi.NewRouter()
	api := humachi.New(router, huma.DefaultConfig("Test API", "1.0.0"))
	api.OpenAPI().OnAddOperation = append(api.OpenAPI().OnAddOperation, mirrorCBOR)

	type echoInput struct {
		Body struct {
			Name string `json:"name"`
		}
	}
	type echoOutput struct {
		Body struct {
			Name string `json:"name"`
		}
	}
	huma.Post(api, "/echo", func(_ context.Context, in *echoInput) (*echoOutput, error) {
		out := &echoOutput{}
		out.Body.Name = in.Body.Name
		return out, nil
	})

	op := api.OpenAPI().Paths["/echo"].Post
	if _, ok := op.RequestBody.Content["application/cbor"]; !ok {
		t.Fatal("expected application/cbor in request body content")
	}
	if _, ok := op.Responses["200"].Content["application/cbor"]; !ok {
		t.Fatal("expected application/cbor in 200 response content")
	}
}
