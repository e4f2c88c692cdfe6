package routectx

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Mount wires the dispatch handler into a chi router behind the
// context middleware, claiming every path not already routed.
//
// Example:
//
//	r := chi.NewRouter()
//	r.Handle("/metrics", promhttp.Handler())
//	routectx.Mount(r, cfg, dispatcher)
func Mount(r chi.Router, cfg Config, h http.Handler) {
	r.With(Middleware(cfg)).Handle("/*", h)
}

// ChiMiddleware builds the dispatch context from chi route parameters
// instead of the path convention, for routers that declare explicit
// patterns. The pattern must capture {app} and may capture {page}; a
// trailing wildcard supplies the positional URL parameters, and every
// other named parameter becomes an extra capture consumed by
// parameter name.
//
//	r.With(routectx.ChiMiddleware(cfg)).Handle("/{app}/{page}/*", dispatcher)
func ChiMiddleware(cfg Config) func(http.Handler) http.Handler {
	cfg = cfg.withDefaults()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc := &Context{
				App:      cfg.DefaultApp,
				Page:     cfg.DefaultPage,
				Function: cfg.DefaultFunction,
				Extras:   make(map[string]string),
			}

			routeCtx := chi.RouteContext(r.Context())
			if routeCtx != nil {
				for i, key := range routeCtx.URLParams.Keys {
					value := routeCtx.URLParams.Values[i]
					switch key {
					case "app":
						if value != "" {
							rc.App = value
						}
					case "page":
						parsePage(rc, value, cfg)
					case "*":
						if value != "" {
							rc.URLParams = splitWildcard(value)
						}
					default:
						rc.Extras[key] = value
					}
				}
			}

			rc.Module = rc.App + "/" + rc.Page
			next.ServeHTTP(w, Attach(r, rc))
		})
	}
}

func splitWildcard(value string) []string {
	var out []string
	for _, seg := range strings.Split(value, "/") {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}
