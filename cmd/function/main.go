// Command function runs the Functions Framework locally with every registered
// entry point. Select one with FUNCTION_TARGET=Function1 or HealthCheck.
package main

import (
	"context"
	"os"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"go.uber.org/zap"

	_ "github.com/janisto/function-app-demo/functions"
	"github.com/janisto/function-app-demo/internal/platform/config"
	applog "github.com/janisto/function-app-demo/internal/platform/logging"
)

func main() {
	defer func() { _ = applog.Sync() }()

	port := config.LookupPort()
	applog.LogInfo(context.Background(), "functions framework listening",
		zap.String("port", port),
		zap.String("target", os.Getenv("FUNCTION_TARGET")),
	)
	if err := funcframework.Start(port); err != nil {
		applog.LogError(context.Background(), "funcframework.Start failed", err)
		os.Exit(1)
	}
}
