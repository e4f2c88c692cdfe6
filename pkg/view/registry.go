// Package view holds the explicit registration table for dispatchable
// views. Applications register view modules at startup; the dispatch
// factory consults the table instead of reflecting over markers
// attached to function values.
//
// A module is a named group of views, typically one per page:
//
//	m := reg.Module("polls/index")
//	m.Register("process", Process, view.Params("pollID"), view.Default("pollID", 0))
//	m.Register("detail", &DetailView{})
//	m.Expose("helper", renderHelper)
//
// Register marks the target as dispatchable; Expose attaches it
// without the marker, so the factory reports it as "not registered".
package view

import (
	"sync"

	"github.com/routra-dev/routra/pkg/convert"
)

// Registry maps module paths to their registered views. It is safe
// for concurrent use; registration normally happens once at startup.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]*Module
}

// NewRegistry creates an empty view registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]*Module)}
}

// Module returns the module for path, creating it if needed.
func (r *Registry) Module(path string) *Module {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.modules[path]
	if !ok {
		m = &Module{path: path, entries: make(map[string]*Entry)}
		r.modules[path] = m
	}
	return m
}

// Lookup returns the module for path without creating it.
func (r *Registry) Lookup(path string) (*Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[path]
	return m, ok
}

// Module is a named group of views.
type Module struct {
	path    string
	mu      sync.RWMutex
	entries map[string]*Entry
}

// Path returns the module path.
func (m *Module) Path() string { return m.path }

// Register adds a dispatchable view under name. The target is either
// a view function (func(*http.Request, ...) any) or a method-class
// value whose Get/Post/... methods have view-function shape. It
// returns the module so registrations can chain.
func (m *Module) Register(name string, target any, opts ...Option) *Module {
	m.add(name, target, true, opts)
	return m
}

// Expose attaches a target without marking it dispatchable. The
// factory rejects exposed entries with a "not registered" diagnostic;
// this mirrors a module-level helper that was never decorated.
func (m *Module) Expose(name string, target any) *Module {
	m.add(name, target, false, nil)
	return m
}

func (m *Module) add(name string, target any, registered bool, opts []Option) {
	e := &Entry{
		Name:       name,
		Target:     target,
		Registered: registered,
		Defaults:   make(map[string]any),
		Converters: make(map[string]convert.ConverterFunc),
	}
	for _, opt := range opts {
		opt(e)
	}
	m.mu.Lock()
	m.entries[name] = e
	m.mu.Unlock()
}

// Lookup returns the entry registered or exposed under name.
func (m *Module) Lookup(name string) (*Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[name]
	return e, ok
}

// Entry is the registration metadata for one view target.
type Entry struct {
	// Name is the view name within its module.
	Name string

	// Target is the registered function or class value.
	Target any

	// Registered reports whether the entry carries the view marker.
	Registered bool

	// ParamNames names the positional parameters after the request
	// parameter. Unnamed parameters get synthesized names.
	ParamNames []string

	// Defaults maps parameter names to values used when no URL
	// segment or extra capture supplies the parameter.
	Defaults map[string]any

	// Converters maps parameter names to per-parameter converters.
	Converters map[string]convert.ConverterFunc

	// Converter, when set, replaces the pipeline's type-driven
	// conversion for every parameter of this view.
	Converter convert.ConverterFunc
}

// Option configures a registration.
type Option func(*Entry)

// Params names the view function's parameters in declaration order,
// excluding the leading request parameter.
func Params(names ...string) Option {
	return func(e *Entry) {
		e.ParamNames = names
	}
}

// Default sets the value a parameter receives when the URL supplies
// no segment for it. The value must already have the parameter's type.
func Default(param string, value any) Option {
	return func(e *Entry) {
		e.Defaults[param] = value
	}
}

// ParamConverter overrides conversion for a single parameter.
func ParamConverter(param string, fn convert.ConverterFunc) Option {
	return func(e *Entry) {
		e.Converters[param] = fn
	}
}

// Converter overrides conversion for every parameter of the view.
func Converter(fn convert.ConverterFunc) Option {
	return func(e *Entry) {
		e.Converter = fn
	}
}
