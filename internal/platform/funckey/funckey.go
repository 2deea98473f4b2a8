// Package funckey enforces trigger authorization levels with function and master keys.
package funckey

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/janisto/function-app-demo/internal/function"
)

const (
	// HeaderName carries the key in a request header.
	HeaderName = "x-functions-key"
	// QueryParam carries the key in the query string.
	QueryParam = "code"
	// Scheme names the key in WWW-Authenticate challenges and the OpenAPI document.
	Scheme = "FunctionKey"
)

var (
	// ErrMissingKey means the request carried no key.
	ErrMissingKey = errors.New("missing function key")
	// ErrInvalidKey means the key does not unlock the level.
	ErrInvalidKey = errors.New("invalid function key")
)

// Keys holds the configured secrets.
type Keys struct {
	Function []string
	Master   string
}

// Enabled reports whether any key is configured. Without keys every level is open.
func (k Keys) Enabled() bool {
	return k.Master != "" || len(k.Function) > 0
}

// Authorize checks key against level.
func (k Keys) Authorize(level function.AuthLevel, key string) error {
	if level == function.AuthAnonymous || !k.Enabled() {
		return nil
	}
	if key == "" {
		return ErrMissingKey
	}
	if k.Master != "" && equal(key, k.Master) {
		return nil
	}
	if level == function.AuthFunction {
		for _, fk := range k.Function {
			if equal(key, fk) {
				return nil
			}
		}
	}
	return ErrInvalidKey
}

// FromRequest returns the key from the x-functions-key header, falling back to ?code=.
func FromRequest(r *http.Request) string {
	if key := r.Header.Get(HeaderName); key != "" {
		return key
	}
	return r.URL.Query().Get(QueryParam)
}

// Reason returns a log-safe category for err.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrMissingKey):
		return "missing_key"
	case errors.Is(err, ErrInvalidKey):
		return "invalid_key"
	default:
		return "unknown"
	}
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
