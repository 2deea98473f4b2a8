package funckey

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	"github.com/janisto/function-app-demo/internal/function"
	applog "github.com/janisto/function-app-demo/internal/platform/logging"
)

// Operation metadata keys.
const (
	levelMetadataKey    = "authLevel"
	functionMetadataKey = "function"
)

// Metadata returns huma operation metadata recording the function name and its level.
func Metadata(name string, level function.AuthLevel) map[string]any {
	return map[string]any{
		functionMetadataKey: name,
		levelMetadataKey:    level,
	}
}

// LevelOf returns the level recorded on op. Operations without one are anonymous.
func LevelOf(op *huma.Operation) function.AuthLevel {
	if op == nil {
		return function.AuthAnonymous
	}
	level, _ := op.Metadata[levelMetadataKey].(function.AuthLevel)
	return level
}

func nameOf(op *huma.Operation) string {
	if op == nil {
		return ""
	}
	if name, ok := op.Metadata[functionMetadataKey].(string); ok {
		return name
	}
	return op.OperationID
}

// NewMiddleware returns huma middleware that answers 401 when the request key
// does not satisfy the operation's level. The handler is not called in that case.
func NewMiddleware(api huma.API, keys Keys) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		op := ctx.Operation()
		key := ctx.Header(HeaderName)
		if key == "" {
			key = ctx.Query(QueryParam)
		}
		if err := keys.Authorize(LevelOf(op), key); err != nil {
			Reject(ctx.Context(), nameOf(op), err)
			ctx.SetHeader("WWW-Authenticate", Scheme)
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, err.Error())
			return
		}
		next(ctx)
	}
}

// Reject logs and audits a refused invocation of the named function.
func Reject(ctx context.Context, name string, err error) {
	reason := Reason(err)
	applog.LogWarn(ctx, "function key rejected", zap.String("function", name), zap.String("reason", reason))
	applog.LogAuditEvent(ctx, "invoke", "function", name, "failure", map[string]any{"reason": reason})
}
