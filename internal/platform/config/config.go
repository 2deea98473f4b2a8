// Package config loads process configuration from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/janisto/function-app-demo/internal/platform/funckey"
)

// Tracing exporters accepted by TRACING_EXPORTER.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
)

// Config holds the settings shared by the server and functions hosts.
type Config struct {
	// Port is the TCP port to listen on.
	Port string
	// RoutePrefix is prepended to every function route ("" or "/api").
	RoutePrefix string
	// FunctionKeys unlock function-level triggers.
	FunctionKeys []string
	// MasterKey unlocks function- and admin-level triggers.
	MasterKey string
	// MetricsEnabled exposes Prometheus metrics at /metrics.
	MetricsEnabled bool
	// TracingExporter selects the OpenTelemetry span exporter.
	TracingExporter string
	// Version is reported in the OpenAPI document when no build version is set.
	Version string
}

// Load reads envFiles (missing files are skipped, existing variables win) and
// then the process environment. With no arguments ".env" is tried.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", "8080")
	v.SetDefault("route_prefix", "")
	v.SetDefault("function_keys", "")
	v.SetDefault("master_key", "")
	v.SetDefault("metrics_enabled", true)
	v.SetDefault("tracing_exporter", ExporterNone)
	v.SetDefault("app_version", "dev")

	cfg := Config{
		Port:            strings.TrimSpace(v.GetString("port")),
		RoutePrefix:     NormalizePrefix(v.GetString("route_prefix")),
		FunctionKeys:    splitList(v.GetString("function_keys")),
		MasterKey:       strings.TrimSpace(v.GetString("master_key")),
		MetricsEnabled:  v.GetBool("metrics_enabled"),
		TracingExporter: strings.ToLower(strings.TrimSpace(v.GetString("tracing_exporter"))),
		Version:         v.GetString("app_version"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid PORT %q: must be 1-65535", c.Port)
	}
	switch c.TracingExporter {
	case "", ExporterNone, ExporterStdout:
	default:
		return fmt.Errorf("invalid TRACING_EXPORTER %q: must be %q or %q", c.TracingExporter, ExporterNone, ExporterStdout)
	}
	if strings.ContainsAny(c.RoutePrefix, " ?#") {
		return fmt.Errorf("invalid ROUTE_PREFIX %q", c.RoutePrefix)
	}
	return nil
}

// Addr returns the listen address for Port.
func (c Config) Addr() string {
	return ":" + c.Port
}

// Keys returns the function key set built from FunctionKeys and MasterKey.
func (c Config) Keys() funckey.Keys {
	return funckey.Keys{Function: c.FunctionKeys, Master: c.MasterKey}
}

// NormalizePrefix turns "api", "/api/" or "/api" into "/api" and "" or "/" into "".
func NormalizePrefix(prefix string) string {
	p := strings.Trim(strings.TrimSpace(prefix), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// LookupPort returns $PORT or "8080" for entrypoints that start before Load.
func LookupPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "8080"
}
