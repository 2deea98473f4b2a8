// Package functions exposes function definitions as huma operations.
package functions

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/function-app-demo/internal/function"
	"github.com/janisto/function-app-demo/internal/platform/funckey"
	"github.com/janisto/function-app-demo/internal/trigger"
)

// Register adds one operation per definition and method at prefix + "/" + Route.
func Register(api huma.API, prefix string, defs []function.Definition, c trigger.Counter) {
	for _, def := range defs {
		for _, method := range def.Methods {
			huma.Register(api, operation(prefix, def, method), handler(def, c))
		}
	}
}

func operation(prefix string, def function.Definition, method string) huma.Operation {
	op := huma.Operation{
		OperationID: OperationID(def.Name, method),
		Method:      method,
		Path:        prefix + "/" + def.Route,
		Summary:     def.Summary,
		Tags:        []string{"functions"},
		Metadata:    funckey.Metadata(def.Name, def.AuthLevel),
		Responses: map[string]*huma.Response{
			"200": {
				Description: "Function result",
				Content: map[string]*huma.MediaType{
					"text/plain": {Schema: &huma.Schema{Type: huma.TypeString}},
				},
			},
		},
	}
	if def.AuthLevel != function.AuthAnonymous {
		op.Security = []map[string][]string{{funckey.Scheme: {}}}
		op.Errors = []int{http.StatusUnauthorized}
	}
	return op
}

// OperationID returns "<name>-<method>" in lower case, e.g. "function1-post".
func OperationID(name, method string) string {
	return strings.ToLower(name) + "-" + strings.ToLower(method)
}

func handler(def function.Definition, c trigger.Counter) func(context.Context, *struct{}) (*Output, error) {
	return func(ctx context.Context, _ *struct{}) (*Output, error) {
		res := trigger.Run(ctx, def, c)
		return &Output{Status: res.Status, ContentType: res.ContentType, Body: []byte(res.Body)}, nil
	}
}
