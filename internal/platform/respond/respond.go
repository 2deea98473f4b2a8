// Package respond renders RFC 9457 problem details for responses produced
// outside huma operations: unknown routes, disallowed methods, panics, and the
// functions-framework host.
package respond

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/fxamacker/cbor/v2"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	applog "github.com/janisto/function-app-demo/internal/platform/logging"
)

const (
	contentTypeProblemJSON = "application/problem+json"
	contentTypeProblemCBOR = "application/problem+cbor"

	msgNotFound       = "resource not found"
	msgInternalServer = "internal server error"
)

// candidateMethods are probed when building the Allow header.
var candidateMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
}

// WriteProblem writes a problem details body with the given status and detail,
// encoded as CBOR when the client prefers it and JSON otherwise.
func WriteProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	problem := &huma.ErrorModel{
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}

	var (
		body []byte
		err  error
		ct   string
	)
	if prefersCBOR(r.Header.Get("Accept")) {
		ct = contentTypeProblemCBOR
		body, err = cbor.Marshal(problem)
	} else {
		ct = contentTypeProblemJSON
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		err = enc.Encode(problem)
		body = buf.Bytes()
	}
	if err != nil {
		applog.LogError(r.Context(), "failed to encode problem", err, zap.Int("status", status))
		http.Error(w, http.StatusText(status), status)
		return
	}

	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// NotFoundHandler renders 404 problems.
func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteProblem(w, r, http.StatusNotFound, msgNotFound)
	}
}

// MethodNotAllowedHandler renders 405 problems and lists the route's methods in Allow.
func MethodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteMethodNotAllowed(w, r, allowedMethods(r))
	}
}

// WriteMethodNotAllowed renders a 405 problem with the given Allow list.
func WriteMethodNotAllowed(w http.ResponseWriter, r *http.Request, allow []string) {
	if len(allow) > 0 {
		w.Header().Set("Allow", strings.Join(allow, ", "))
	}
	WriteProblem(w, r, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed", r.Method))
}

// Recoverer converts panics into 500 problems. http.ErrAbortHandler is re-panicked
// so net/http can abort the connection, and nothing is written once headers are out.
func Recoverer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				err, ok := rec.(error)
				if ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				if !ok {
					err = fmt.Errorf("%v", rec)
				}
				applog.LogError(r.Context(), "panic recovered", err, zap.ByteString("stack", debug.Stack()))
				if ww.Status() != 0 {
					return
				}
				WriteProblem(ww, r, http.StatusInternalServerError, msgInternalServer)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// allowedMethods asks chi's routing tree which methods match the request path.
func allowedMethods(r *http.Request) []string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.Routes == nil {
		return nil
	}
	path := rctx.RoutePath
	if path == "" {
		path = r.URL.RawPath
	}
	if path == "" {
		path = r.URL.Path
	}
	if path == "" {
		path = "/"
	}

	allowed := make([]string, 0, len(candidateMethods))
	for _, method := range candidateMethods {
		if rctx.Routes.Match(chi.NewRouteContext(), method, path) {
			allowed = append(allowed, method)
		}
	}
	return allowed
}

// prefersCBOR reports whether the Accept header ranks CBOR strictly above JSON.
// Wildcards count for both, so "*/*" and an empty header select JSON.
func prefersCBOR(accept string) bool {
	if strings.TrimSpace(accept) == "" {
		return false
	}
	jsonQ, cborQ, wildQ := -1.0, -1.0, -1.0
	for part := range strings.SplitSeq(accept, ",") {
		mediaType, q, ok := parseMediaRange(part)
		if !ok {
			continue
		}
		switch mediaType {
		case "application/json", "application/problem+json":
			jsonQ = max(jsonQ, q)
		case "application/cbor", "application/problem+cbor":
			cborQ = max(cborQ, q)
		case "*/*", "application/*":
			wildQ = max(wildQ, q)
		}
	}
	if jsonQ < 0 {
		jsonQ = wildQ
	}
	if cborQ < 0 {
		cborQ = wildQ
	}
	return cborQ > 0 && cborQ > jsonQ
}

// parseMediaRange returns the lower-cased media type and its q value (default 1).
func parseMediaRange(part string) (string, float64, bool) {
	params := strings.Split(part, ";")
	mediaType := strings.ToLower(strings.TrimSpace(params[0]))
	if mediaType == "" || !strings.Contains(mediaType, "/") {
		return "", 0, false
	}
	q := 1.0
	for _, p := range params[1:] {
		key, value, found := strings.Cut(strings.TrimSpace(p), "=")
		if !found || !strings.EqualFold(strings.TrimSpace(key), "q") {
			continue
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || parsed < 0 || parsed > 1 {
			return "", 0, false
		}
		q = parsed
	}
	return mediaType, q, true
}
