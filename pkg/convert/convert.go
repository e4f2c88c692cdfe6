// Package convert maps raw URL path segments to typed view function
// arguments. A Pipeline holds the default converters keyed by target
// type; individual parameters can carry their own converter, and a
// whole view function can override the pipeline via its registration
// metadata.
package convert

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// ErrNotFound marks a conversion failure that should surface to the
// client as a 404 rather than a server error. Custom converters may
// wrap it, or return a redirect error instead, at their discretion.
var ErrNotFound = errors.New("url segment does not match parameter type")

// ConverterFunc converts a single raw URL segment to a typed value.
type ConverterFunc func(value string, param *Param, task *Task) (any, error)

// Param describes one formal parameter of a view function, excluding
// the leading request parameter. Params are built once at resolver
// construction time and are immutable afterward.
type Param struct {
	// Name is the parameter name, used to match extra named captures.
	Name string

	// Type is the declared Go type of the parameter.
	Type reflect.Type

	// Default is the value used when no URL segment is supplied.
	// Only meaningful when HasDefault is true.
	Default any

	// HasDefault reports whether a default was registered.
	HasDefault bool

	// Converter overrides the pipeline for this parameter.
	Converter ConverterFunc
}

// String returns a diagnostic description of the parameter.
func (p *Param) String() string {
	typ := "<not specified>"
	if p.Type != nil {
		typ = p.Type.String()
	}
	def := "<none>"
	if p.HasDefault {
		def = fmt.Sprintf("%v", p.Default)
	}
	return fmt.Sprintf("param %s type=%s default=%s", p.Name, typ, def)
}

// Task bundles the per-invocation state a converter may need. One Task
// is created per view invocation and discarded afterward.
type Task struct {
	// Request is the in-flight request.
	Request *http.Request

	// Module and Function identify the dispatch target.
	Module   string
	Function string

	// Converter is the function-level override from registration
	// metadata, nil when the view did not register one.
	Converter ConverterFunc
}

// Pipeline converts URL segments using type-driven default converters
// plus any registered overrides. The zero value is not usable; call
// NewPipeline.
type Pipeline struct {
	mu     sync.RWMutex
	byType map[reflect.Type]ConverterFunc
}

// NewPipeline creates a Pipeline with the built-in converters for
// strings, integers, unsigned integers, floats, and booleans.
func NewPipeline() *Pipeline {
	return &Pipeline{
		byType: make(map[reflect.Type]ConverterFunc),
	}
}

// Register installs a converter for an exact target type, replacing
// any previous converter for that type.
func (p *Pipeline) Register(t reflect.Type, fn ConverterFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.byType[t] = fn
}

// Convert produces a typed value for one URL segment. Resolution
// order: the parameter's own converter, the task's function-level
// converter, a registered type converter, then the kind-based default.
func (p *Pipeline) Convert(value string, param *Param, task *Task) (any, error) {
	if param.Converter != nil {
		return param.Converter(value, param, task)
	}
	if task != nil && task.Converter != nil {
		return task.Converter(value, param, task)
	}
	if param.Type != nil {
		p.mu.RLock()
		fn, ok := p.byType[param.Type]
		p.mu.RUnlock()
		if ok {
			return fn(value, param, task)
		}
	}
	return convertKind(value, param)
}

// convertKind is the fallback conversion keyed on the parameter's
// reflect.Kind.
func convertKind(value string, param *Param) (any, error) {
	if param.Type == nil {
		return value, nil
	}
	switch param.Type.Kind() {
	case reflect.String:
		return value, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, param.Type.Bits())
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid %s for %s: %w", value, param.Type, param.Name, ErrNotFound)
		}
		return coerce(reflect.ValueOf(n), param.Type), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, param.Type.Bits())
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid %s for %s: %w", value, param.Type, param.Name, ErrNotFound)
		}
		return coerce(reflect.ValueOf(n), param.Type), nil

	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(value, param.Type.Bits())
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid %s for %s: %w", value, param.Type, param.Name, ErrNotFound)
		}
		return coerce(reflect.ValueOf(n), param.Type), nil

	case reflect.Bool:
		b, err := parseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid bool for %s: %w", value, param.Name, ErrNotFound)
		}
		return b, nil

	case reflect.Slice:
		if param.Type.Elem().Kind() == reflect.String {
			// Catch-all tail: "a/b/c" -> ["a", "b", "c"].
			if value == "" {
				return []string{}, nil
			}
			return strings.Split(value, "/"), nil
		}
	}
	return nil, fmt.Errorf("no converter for %s (type %s): %w", param.Name, param.Type, ErrNotFound)
}

// coerce converts a parsed int64/uint64/float64 to the exact declared
// type (int32, uint16, float32, ...).
func coerce(v reflect.Value, t reflect.Type) any {
	return v.Convert(t).Interface()
}

// parseBool accepts the strconv forms plus a bare empty string as
// false, so boolean flags can appear as trailing optional segments.
func parseBool(value string) (bool, error) {
	if value == "" {
		return false, nil
	}
	return strconv.ParseBool(value)
}
