// Package function holds the function app's handlers and their trigger table.
// Hosts (the HTTP server and the functions framework) register every
// Definition; the handlers themselves never see the request.
package function

import (
	"context"
	"net/http"
)

const (
	// WelcomeBody is returned by Function1.
	WelcomeBody = "Welcome to Azure Functions!"
	// HealthyBody is returned by HealthCheck.
	HealthyBody = "Healthy"

	// ContentTypeText is the content type of every function result.
	ContentTypeText = "text/plain; charset=utf-8"

	welcomeLogMessage = "C# HTTP trigger function processed a request."
	healthLogMessage  = "Health check endpoint hit."
)

// Logger receives one informational message per invocation.
type Logger interface {
	Info(ctx context.Context, msg string)
}

type discardLogger struct{}

func (discardLogger) Info(context.Context, string) {}

// Result is the response produced by a function.
type Result struct {
	Status      int
	Body        string
	ContentType string
}

// Functions is the set of HTTP-triggered functions.
type Functions struct {
	log Logger
}

// New returns the function set logging through log. A nil logger discards messages.
func New(log Logger) *Functions {
	if log == nil {
		log = discardLogger{}
	}
	return &Functions{log: log}
}

// Welcome handles Function1.
func (f *Functions) Welcome(ctx context.Context) Result {
	f.log.Info(ctx, welcomeLogMessage)
	return text(WelcomeBody)
}

// HealthCheck handles HealthCheck.
func (f *Functions) HealthCheck(ctx context.Context) Result {
	f.log.Info(ctx, healthLogMessage)
	return text(HealthyBody)
}

func text(body string) Result {
	return Result{Status: http.StatusOK, Body: body, ContentType: ContentTypeText}
}
