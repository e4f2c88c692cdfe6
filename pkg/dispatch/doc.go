// Package dispatch is the view-dispatch engine: it resolves a
// (module, function) dispatch context into a cached Resolver, converts
// URL segments into typed view arguments, invokes the view, and runs
// the front-controller loop that interprets redirect outcomes.
//
// The moving parts:
//
//   - Factory builds Resolvers and never fails; unresolvable targets
//     become error resolvers that answer 404.
//   - Cache memoizes Resolvers per (app, module, function) for the
//     lifetime of the process; debug deployments bypass it.
//   - Dispatcher is the front controller. It requires a routectx
//     dispatch context on the request, runs the hook chains, and loops
//     while views return internal redirects.
//
// Views signal control flow with explicit outcome values instead of
// panics: return *InternalRedirect to re-target dispatch within the
// same request, or *Redirect to send the client elsewhere.
package dispatch
