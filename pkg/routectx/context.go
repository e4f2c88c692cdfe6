// Package routectx carries the per-request dispatch context: which
// application, module, and view function should handle the request,
// plus the ordered URL parameters and extra named captures. The
// context is attached by the Middleware before dispatch runs; the
// dispatcher fails fast when it is missing.
package routectx

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey struct{}

// Context identifies the dispatch target for one request.
type Context struct {
	// App is the application name (first URL segment).
	App string

	// Page is the page name within the app; the fallback template is
	// derived from it when no view module exists.
	Page string

	// Module is the view-module path looked up in the view registry.
	Module string

	// Function is the view name within the module.
	Function string

	// Class is the method-class name for class-based targets, empty
	// for plain functions.
	Class string

	// URLParams are the ordered positional URL segments after the
	// page segment.
	URLParams []string

	// Extras are named captures from the URL pattern, consumed by
	// parameter name during conversion.
	Extras map[string]string
}

// Complete reports whether the fields dispatch requires are set.
func (c *Context) Complete() bool {
	return c != nil && c.App != "" && c.Module != "" && c.Function != ""
}

// Target returns the attribute name the factory should resolve: the
// class name for class-based targets, the function name otherwise.
func (c *Context) Target() string {
	if c.Class != "" {
		return c.Class
	}
	return c.Function
}

// FallbackTemplate returns the template name tried when the module
// does not exist.
func (c *Context) FallbackTemplate() string {
	return c.Page + ".html"
}

// With returns a copy of ctx carrying rc.
func With(ctx context.Context, rc *Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, rc)
}

// From returns the dispatch context attached to ctx, or nil.
func From(ctx context.Context) *Context {
	rc, _ := ctx.Value(ctxKey{}).(*Context)
	return rc
}

// Attach returns a shallow copy of r carrying rc.
func Attach(r *http.Request, rc *Context) *http.Request {
	return r.WithContext(With(r.Context(), rc))
}

// Config controls how URLs parse into dispatch contexts.
type Config struct {
	// DefaultApp handles "/" and single-segment URLs.
	DefaultApp string

	// DefaultPage is used when a URL names only the app.
	DefaultPage string

	// DefaultFunction is used when the page segment has no ".function"
	// suffix.
	DefaultFunction string
}

func (c Config) withDefaults() Config {
	if c.DefaultPage == "" {
		c.DefaultPage = "index"
	}
	if c.DefaultFunction == "" {
		c.DefaultFunction = "process"
	}
	return c
}

// Parse builds a dispatch context from a request path using the
// convention /app/page.function/param1/param2. Supported forms:
//
//	/                          -> defaultApp, defaultPage, defaultFunction
//	/app                       -> app, defaultPage, defaultFunction
//	/app/page                  -> app, page, defaultFunction
//	/app/page.function/a/b     -> app, page, function, urlparams [a b]
//	/app/page.Class.function   -> class-based target
//
// The module path is "app/page".
func Parse(path string, cfg Config) *Context {
	cfg = cfg.withDefaults()

	rc := &Context{
		App:      cfg.DefaultApp,
		Page:     cfg.DefaultPage,
		Function: cfg.DefaultFunction,
	}

	trimmed := strings.Trim(path, "/")
	if trimmed != "" {
		segments := strings.Split(trimmed, "/")
		rc.App = segments[0]
		if len(segments) > 1 {
			parsePage(rc, segments[1], cfg)
		}
		if len(segments) > 2 {
			rc.URLParams = segments[2:]
		}
	}

	rc.Module = rc.App + "/" + rc.Page
	return rc
}

// parsePage splits the "page[.Class][.function]" segment.
func parsePage(rc *Context, segment string, cfg Config) {
	parts := strings.Split(segment, ".")
	rc.Page = parts[0]
	switch len(parts) {
	case 1:
	case 2:
		rc.Function = parts[1]
	default:
		rc.Class = parts[1]
		rc.Function = parts[2]
	}
	if rc.Page == "" {
		rc.Page = cfg.DefaultPage
	}
	if rc.Function == "" {
		rc.Function = cfg.DefaultFunction
	}
}

// Middleware parses every request per the convention and attaches the
// dispatch context. Install it ahead of the dispatcher.
func Middleware(cfg Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, Attach(r, Parse(r.URL.Path, cfg)))
		})
	}
}
