package dispatch

import (
	"fmt"
	"net/http"
)

// InternalRedirect re-targets dispatch to another module/function
// within the same request. Views return it (or return it as an error)
// to make the dispatcher loop re-resolve and invoke the new target
// without involving the client.
type InternalRedirect struct {
	Module   string
	Function string
}

// RedirectInternal builds an internal redirect outcome.
func RedirectInternal(module, function string) *InternalRedirect {
	return &InternalRedirect{Module: module, Function: function}
}

// Error implements error so the outcome can flow through invoke.
func (e *InternalRedirect) Error() string {
	return fmt.Sprintf("internal redirect to %s.%s", e.Module, e.Function)
}

// Redirect terminates dispatch and sends the client an HTTP redirect.
type Redirect struct {
	URL       string
	Permanent bool
}

// RedirectTo builds a temporary (302) redirect outcome.
func RedirectTo(url string) *Redirect {
	return &Redirect{URL: url}
}

// RedirectPermanent builds a permanent (301) redirect outcome.
func RedirectPermanent(url string) *Redirect {
	return &Redirect{URL: url, Permanent: true}
}

// Error implements error so the outcome can flow through invoke.
func (e *Redirect) Error() string {
	return fmt.Sprintf("redirect to %s", e.URL)
}

// Response returns the redirect response sent to the client.
func (e *Redirect) Response() Response {
	status := http.StatusFound
	if e.Permanent {
		status = http.StatusMovedPermanently
	}
	return &redirectResponse{url: e.URL, status: status}
}

type redirectResponse struct {
	url    string
	status int
}

func (rr *redirectResponse) StatusCode() int { return rr.status }

func (rr *redirectResponse) Render(w http.ResponseWriter, r *http.Request) error {
	http.Redirect(w, r, rr.url, rr.status)
	return nil
}
