package dispatch

import "net/http"

// PreHook runs before the view. A non-nil return short-circuits
// dispatch and becomes the response; the view never runs.
type PreHook func(r *http.Request) Response

// PostHook runs after the view. A non-nil return replaces the
// response; the last non-nil return in the chain wins.
type PostHook func(r *http.Request, resp Response) Response

// InternalRedirectHook observes internal redirect outcomes.
type InternalRedirectHook func(r *http.Request, ir *InternalRedirect)

// RedirectHook observes external redirect outcomes.
type RedirectHook func(r *http.Request, red *Redirect)

// Hooks holds the ordered dispatch hook chains. Register hooks at
// startup; the chains are not safe for concurrent mutation once
// requests are flowing.
type Hooks struct {
	enabled    bool
	pre        []PreHook
	post       []PostHook
	onInternal []InternalRedirectHook
	onRedirect []RedirectHook
}

// NewHooks creates an enabled, empty hook registry.
func NewHooks() *Hooks {
	return &Hooks{enabled: true}
}

// SetEnabled toggles all hook chains at once.
func (h *Hooks) SetEnabled(enabled bool) { h.enabled = enabled }

// Pre appends a pre-dispatch hook.
func (h *Hooks) Pre(fn PreHook) { h.pre = append(h.pre, fn) }

// Post appends a post-dispatch hook.
func (h *Hooks) Post(fn PostHook) { h.post = append(h.post, fn) }

// OnInternalRedirect appends an internal-redirect observer.
func (h *Hooks) OnInternalRedirect(fn InternalRedirectHook) {
	h.onInternal = append(h.onInternal, fn)
}

// OnRedirect appends an external-redirect observer.
func (h *Hooks) OnRedirect(fn RedirectHook) {
	h.onRedirect = append(h.onRedirect, fn)
}

func (h *Hooks) runPre(r *http.Request) Response {
	if h == nil || !h.enabled {
		return nil
	}
	for _, fn := range h.pre {
		if resp := fn(r); resp != nil {
			return resp
		}
	}
	return nil
}

func (h *Hooks) runPost(r *http.Request, resp Response) Response {
	if h == nil || !h.enabled {
		return resp
	}
	for _, fn := range h.post {
		if out := fn(r, resp); out != nil {
			resp = out
		}
	}
	return resp
}

func (h *Hooks) runInternalRedirect(r *http.Request, ir *InternalRedirect) {
	if h == nil || !h.enabled {
		return
	}
	for _, fn := range h.onInternal {
		fn(r, ir)
	}
}

func (h *Hooks) runRedirect(r *http.Request, red *Redirect) {
	if h == nil || !h.enabled {
		return
	}
	for _, fn := range h.onRedirect {
		fn(r, red)
	}
}
