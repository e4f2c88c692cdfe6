// Package middleware provides production-grade HTTP middleware for
// Routra applications.
//
// This package includes:
//   - OpenTelemetry distributed tracing middleware
//   - Prometheus metrics middleware
//
// # OpenTelemetry Middleware
//
// The OpenTelemetry middleware traces every dispatched request. When a
// dispatch context is attached, spans are named after the target view
// (app module.function); otherwise after the request line.
//
//	r.Use(middleware.OpenTelemetry(
//	    middleware.WithTracerName("my-app"),
//	    middleware.WithRequestFilter(func(r *http.Request) bool {
//	        return r.URL.Path != "/healthz"
//	    }),
//	))
//
// # Prometheus Metrics
//
// The Prometheus middleware collects dispatch metrics:
//   - routra_dispatches_total: Dispatches by app and status class
//   - routra_dispatch_duration_seconds: Dispatch duration histogram by app
//   - routra_internal_redirects_total: Internal redirects by target module
//   - routra_external_redirects_total: External redirects by kind
//
// The redirect counters are fed by the Record* functions, which are
// meant to be wired through dispatch hooks:
//
//	hooks.OnInternalRedirect(func(r *http.Request, ir *dispatch.InternalRedirect) {
//	    middleware.RecordInternalRedirect(ir.Module)
//	})
//	hooks.OnRedirect(func(r *http.Request, red *dispatch.Redirect) {
//	    middleware.RecordRedirect(red.Permanent)
//	})
//
// Then expose metrics:
//
//	r.Handle("/metrics", promhttp.Handler())
package middleware
