// Package health serves the host liveness probe used by container platforms.
// It is independent of the HealthCheck function and is never gated by keys.
package health

import (
	"encoding/json"
	"net/http"

	"github.com/janisto/function-app-demo/internal/platform/timeutil"
)

// Path is where the probe is mounted.
const Path = "/health"

// Response is the payload for the liveness probe.
type Response struct {
	Status    string        `json:"status"`
	Timestamp timeutil.Time `json:"timestamp"`
}

// Handler reports that the process is serving requests.
func Handler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(Response{Status: "healthy", Timestamp: timeutil.Now()})
}
