package dispatch

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	slogctx "github.com/veqryn/slog-context"

	"github.com/routra-dev/routra/pkg/convert"
	"github.com/routra-dev/routra/pkg/routectx"
)

// ErrMisconfigured reports a request that reached the dispatcher
// without a dispatch context. This is a deployment fault (the
// routectx middleware did not run), not a per-request failure, and is
// the one dispatch error that escapes as an error rather than a
// response.
var ErrMisconfigured = errors.New("request has no dispatch context (check that the routectx middleware is installed)")

// Dispatcher is the front controller: it resolves the dispatch
// context to a cached Resolver, runs the hook chains around the
// invocation, and loops while views return internal redirects.
type Dispatcher struct {
	factory      *Factory
	cache        *Cache
	hooks        *Hooks
	logger       *slog.Logger
	debug        bool
	maxRedirects int
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithCache sets the resolver cache. Without one, every request
// consults the factory.
func WithCache(c *Cache) DispatcherOption {
	return func(d *Dispatcher) { d.cache = c }
}

// WithHooks sets the hook registry.
func WithHooks(h *Hooks) DispatcherOption {
	return func(d *Dispatcher) { d.hooks = h }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = logger }
}

// WithDebug bypasses the resolver cache so code and template changes
// are picked up per request.
func WithDebug(debug bool) DispatcherOption {
	return func(d *Dispatcher) { d.debug = debug }
}

// WithMaxRedirects caps the internal-redirect chain length. Zero
// means unbounded, matching the historical behavior where a
// self-redirecting view loops forever.
func WithMaxRedirects(n int) DispatcherOption {
	return func(d *Dispatcher) { d.maxRedirects = n }
}

// NewDispatcher creates a Dispatcher around a factory.
func NewDispatcher(factory *Factory, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		factory: factory,
		logger:  slog.Default().With("component", "dispatch"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch runs the front-controller loop for one request and returns
// the response. The returned error is either ErrMisconfigured
// (wrapped) or an error from view code; both belong to the outer
// server's 500 handling, never to the client as a raw value.
func (d *Dispatcher) Dispatch(r *http.Request) (Response, error) {
	rctx := routectx.From(r.Context())
	if !rctx.Complete() {
		return nil, fmt.Errorf("cannot dispatch %s: %w", r.URL.Path, ErrMisconfigured)
	}

	ctx := slogctx.Append(r.Context(),
		slog.String("app", rctx.App),
		slog.String("module", rctx.Module),
		slog.String("function", rctx.Function),
	)
	r = r.WithContext(ctx)

	extras := make(map[string]string, len(rctx.Extras))
	for k, v := range rctx.Extras {
		extras[k] = v
	}

	res := d.resolve(rctx)
	for hop := 0; ; hop++ {
		if d.maxRedirects > 0 && hop > d.maxRedirects {
			d.logger.ErrorContext(ctx, "internal redirect chain exceeded limit", "limit", d.maxRedirects)
			return NotFound("redirect chain too long"), nil
		}

		d.logger.InfoContext(ctx, "processing view", "urlparams", rctx.URLParams)

		// A memoized negative resolution short-circuits: log the
		// diagnostic and answer 404 without running any hooks.
		if er, ok := res.(*errorResolver); ok {
			d.logger.ErrorContext(ctx, er.diag)
			return NotFound(er.diag), nil
		}

		if resp := d.hooks.runPre(r); resp != nil {
			return resp, nil
		}

		d.logger.InfoContext(ctx, "calling view", "view", res.Describe(r))
		resp, err := res.Invoke(r, extras)
		if err != nil {
			var ir *InternalRedirect
			if errors.As(err, &ir) {
				d.hooks.runInternalRedirect(r, ir)
				rctx.Module = ir.Module
				rctx.Function = ir.Function
				res = d.factory.BuildDirect(ir.Module, ir.Function)
				d.logger.InfoContext(ctx, "internal redirect",
					"to_module", ir.Module, "to_function", ir.Function)
				continue
			}

			var red *Redirect
			if errors.As(err, &red) {
				if rctx.Class == "" {
					d.logger.WarnContext(ctx, "view redirected processing",
						"view", res.Describe(r), "url", red.URL)
				}
				d.hooks.runRedirect(r, red)
				return red.Response(), nil
			}

			if errors.Is(err, convert.ErrNotFound) {
				d.logger.InfoContext(ctx, "url parameters did not match view", "error", err)
				return NotFound(err.Error()), nil
			}

			return nil, err
		}

		resp = d.hooks.runPost(r, resp)
		if resp == nil {
			d.logger.ErrorContext(ctx, "view failed to return a Response (or a post hook removed it); answering not found",
				"view", res.Describe(r))
			return NotFound("view did not return a response"), nil
		}
		return resp, nil
	}
}

// resolve fetches the resolver for the dispatch context, through the
// cache in production and directly from the factory in debug mode.
func (d *Dispatcher) resolve(rctx *routectx.Context) Resolver {
	build := func() Resolver {
		return d.factory.Build(rctx.App, rctx.Module, rctx.Target(), rctx.FallbackTemplate())
	}
	if d.debug || d.cache == nil {
		return build()
	}
	return d.cache.Get(CacheKey{App: rctx.App, Module: rctx.Module, Function: rctx.Target()}, build)
}

// Describe returns the description of the resolver the request would
// dispatch to, for logs and diagnostics.
func (d *Dispatcher) Describe(r *http.Request) string {
	rctx := routectx.From(r.Context())
	if !rctx.Complete() {
		return ""
	}
	return d.resolve(rctx).Describe(r)
}

// ServeHTTP adapts the dispatcher to http.Handler. Misconfiguration
// and view errors render as 500; everything else is a Response.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp, err := d.Dispatch(r)
	if err != nil {
		if errors.Is(err, ErrMisconfigured) {
			d.logger.Error("dispatch misconfigured", "error", err)
			http.Error(w, "improperly configured", http.StatusInternalServerError)
			return
		}
		d.logger.Error("view error", "error", err, "path", r.URL.Path)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if err := resp.Render(w, r); err != nil {
		d.logger.Error("response render failed", "error", err, "path", r.URL.Path)
	}
}
