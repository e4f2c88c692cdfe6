package dispatch

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Response is what views produce and the dispatcher returns. Anything
// else coming back from a view is logged and downgraded to not found.
type Response interface {
	// StatusCode returns the HTTP status the response will write.
	StatusCode() int

	// Render writes the response to w.
	Render(w http.ResponseWriter, r *http.Request) error
}

// BodyResponse is a fixed-body response.
type BodyResponse struct {
	Status      int
	ContentType string
	Body        []byte
}

// Text builds a plain-text response.
func Text(status int, body string) *BodyResponse {
	return &BodyResponse{Status: status, ContentType: "text/plain; charset=utf-8", Body: []byte(body)}
}

// HTML builds an HTML response.
func HTML(status int, body string) *BodyResponse {
	return &BodyResponse{Status: status, ContentType: "text/html; charset=utf-8", Body: []byte(body)}
}

// StatusCode implements Response.
func (b *BodyResponse) StatusCode() int { return b.Status }

// Render implements Response.
func (b *BodyResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if b.ContentType != "" {
		w.Header().Set("Content-Type", b.ContentType)
	}
	w.WriteHeader(b.Status)
	_, err := w.Write(b.Body)
	return err
}

// NotFound builds the 404 response used for resolution and conversion
// failures.
func NotFound(message string) Response {
	if message == "" {
		message = "not found"
	}
	return Text(http.StatusNotFound, message)
}

// JSON builds a JSON response; encoding happens at render time.
func JSON(status int, v any) Response {
	return &jsonResponse{status: status, value: v}
}

type jsonResponse struct {
	status int
	value  any
}

func (j *jsonResponse) StatusCode() int { return j.status }

func (j *jsonResponse) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.value)
}

// MethodNotAllowed builds a 405 response advertising the permitted
// methods in an Allow header.
func MethodNotAllowed(allow []string) Response {
	return &notAllowedResponse{allow: allow}
}

type notAllowedResponse struct {
	allow []string
}

func (n *notAllowedResponse) StatusCode() int { return http.StatusMethodNotAllowed }

func (n *notAllowedResponse) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Allow", strings.Join(n.allow, ", "))
	w.WriteHeader(http.StatusMethodNotAllowed)
	return nil
}

// Allow returns the advertised methods, for logging and tests.
func (n *notAllowedResponse) Allow() []string { return n.allow }
