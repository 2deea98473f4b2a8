package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/function-app-demo/internal/function"
	"github.com/janisto/function-app-demo/internal/http/v1/functions"
	"github.com/janisto/function-app-demo/internal/platform/config"
	"github.com/janisto/function-app-demo/internal/platform/funckey"
	"github.com/janisto/function-app-demo/internal/trigger"
)

// Register wires the function key gate and all function routes into api.
func Register(api huma.API, cfg config.Config, fns *function.Functions, c trigger.Counter) {
	oapi := api.OpenAPI()
	if oapi.Components.SecuritySchemes == nil {
		oapi.Components.SecuritySchemes = map[string]*huma.SecurityScheme{}
	}
	oapi.Components.SecuritySchemes[funckey.Scheme] = &huma.SecurityScheme{
		Type:        "apiKey",
		In:          "header",
		Name:        funckey.HeaderName,
		Description: "Function key. May also be sent as the `" + funckey.QueryParam + "` query parameter.",
	}

	api.UseMiddleware(funckey.NewMiddleware(api, cfg.Keys()))

	functions.Register(api, cfg.RoutePrefix, fns.Definitions(), c)
}
