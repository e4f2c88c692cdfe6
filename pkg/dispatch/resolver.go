package dispatch

import (
	"bytes"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/routra-dev/routra/pkg/convert"
	"github.com/routra-dev/routra/pkg/routectx"
	"github.com/routra-dev/routra/pkg/templates"
	"github.com/routra-dev/routra/pkg/view"
)

// Resolver produces a response for one dispatch target. Variants are
// built once by the Factory and shared across requests.
type Resolver interface {
	// Invoke executes the target. It returns a response, or an
	// *InternalRedirect/*Redirect outcome as the error, or a
	// conversion/handler error.
	Invoke(r *http.Request, extras map[string]string) (Response, error)

	// Describe returns a human-readable target description for logs.
	Describe(r *http.Request) string
}

var (
	requestType = reflect.TypeOf((*http.Request)(nil))
	extrasType  = reflect.TypeOf(map[string]string(nil))
)

// httpMethods are the verbs a method class may implement, in the
// order they are advertised on 405 responses.
var httpMethods = []struct{ verb, method string }{
	{"get", "Get"},
	{"post", "Post"},
	{"put", "Put"},
	{"patch", "Patch"},
	{"delete", "Delete"},
	{"head", "Head"},
	{"options", "Options"},
	{"trace", "Trace"},
}

// funcResolver dispatches to a plain view function (or a bound class
// method), converting URL segments to its typed arguments.
type funcResolver struct {
	module   string
	function string
	fn       reflect.Value
	meta     *view.Entry
	pipeline *convert.Pipeline
	params   []*convert.Param

	// extrasIn is set when the function declares a trailing
	// map[string]string parameter that receives unconsumed captures.
	extrasIn bool
}

// newFuncResolver introspects fn and builds one parameter descriptor
// per formal parameter after the leading request parameter.
func newFuncResolver(module, function string, fn any, meta *view.Entry, pipeline *convert.Pipeline) (*funcResolver, error) {
	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func {
		return nil, fmt.Errorf("target is %s, not a function", t.Kind())
	}
	if t.IsVariadic() {
		return nil, fmt.Errorf("variadic view functions are not supported")
	}
	if t.NumIn() < 1 || t.In(0) != requestType {
		return nil, fmt.Errorf("first parameter must be *http.Request")
	}
	if t.NumOut() != 1 {
		return nil, fmt.Errorf("view functions return exactly one value")
	}

	fr := &funcResolver{
		module:   module,
		function: function,
		fn:       v,
		meta:     meta,
		pipeline: pipeline,
	}

	last := t.NumIn() - 1
	for i := 1; i <= last; i++ {
		if i == last && t.In(i) == extrasType {
			fr.extrasIn = true
			break
		}
		name := fmt.Sprintf("arg%d", i)
		if len(meta.ParamNames) >= i {
			name = meta.ParamNames[i-1]
		}
		p := &convert.Param{
			Name:      name,
			Type:      t.In(i),
			Converter: meta.Converters[name],
		}
		if def, ok := meta.Defaults[name]; ok {
			p.Default = def
			p.HasDefault = true
		}
		fr.params = append(fr.params, p)
	}
	return fr, nil
}

// Invoke implements Resolver.
func (fr *funcResolver) Invoke(r *http.Request, extras map[string]string) (Response, error) {
	var urlparams []string
	if rc := routectx.From(r.Context()); rc != nil {
		urlparams = rc.URLParams
	}
	if len(urlparams) > len(fr.params) {
		return nil, fmt.Errorf("%d url segments supplied for the %d parameters of %s.%s: %w",
			len(urlparams), len(fr.params), fr.module, fr.function, convert.ErrNotFound)
	}

	task := &convert.Task{
		Request:   r,
		Module:    fr.module,
		Function:  fr.function,
		Converter: fr.meta.Converter,
	}

	leftovers := make(map[string]string, len(extras))
	for k, v := range extras {
		leftovers[k] = v
	}

	args := make([]reflect.Value, 0, len(fr.params)+2)
	args = append(args, reflect.ValueOf(r))
	for i, p := range fr.params {
		typed, err := fr.argument(i, p, urlparams, leftovers, task)
		if err != nil {
			return nil, err
		}
		rv, err := toArgValue(typed, p)
		if err != nil {
			return nil, err
		}
		args = append(args, rv)
	}
	if fr.extrasIn {
		args = append(args, reflect.ValueOf(leftovers))
	}

	return interpret(fr.fn.Call(args)[0])
}

// argument picks the raw value for one parameter (positional segment,
// then same-named extra capture, then the default) and converts it.
// Each supplied value is converted exactly once.
func (fr *funcResolver) argument(i int, p *convert.Param, urlparams []string, leftovers map[string]string, task *convert.Task) (any, error) {
	if i < len(urlparams) {
		raw := urlparams[i]
		if raw == "" && p.HasDefault {
			return p.Default, nil
		}
		return fr.pipeline.Convert(raw, p, task)
	}
	if raw, ok := leftovers[p.Name]; ok {
		delete(leftovers, p.Name)
		return fr.pipeline.Convert(raw, p, task)
	}
	if p.HasDefault {
		return p.Default, nil
	}
	return reflect.Zero(p.Type).Interface(), nil
}

// toArgValue turns a converted value into a call argument, verifying
// the converter produced the declared type.
func toArgValue(typed any, p *convert.Param) (reflect.Value, error) {
	if typed == nil {
		return reflect.Zero(p.Type), nil
	}
	rv := reflect.ValueOf(typed)
	if rv.Type() == p.Type {
		return rv, nil
	}
	if rv.Type().ConvertibleTo(p.Type) {
		return rv.Convert(p.Type), nil
	}
	return reflect.Value{}, fmt.Errorf("converter produced %s for %s (declared %s)", rv.Type(), p.Name, p.Type)
}

// interpret maps a view's single return value onto the invoke
// contract: a Response passes through, redirect outcomes and errors
// become the error, anything else is left for the dispatcher's
// response validation to reject.
func interpret(out reflect.Value) (Response, error) {
	result := out.Interface()
	switch v := result.(type) {
	case nil:
		return nil, nil
	case Response:
		return v, nil
	case *InternalRedirect:
		return nil, v
	case *Redirect:
		return nil, v
	case error:
		return nil, v
	default:
		return nil, nil
	}
}

// Describe implements Resolver.
func (fr *funcResolver) Describe(r *http.Request) string {
	return fmt.Sprintf("view function %s.%s", fr.module, fr.function)
}

// Params returns the parameter descriptors, for tests and diagnostics.
func (fr *funcResolver) Params() []*convert.Param { return fr.params }

// classResolver dispatches to a method class: one funcResolver per
// HTTP verb the class implements.
type classResolver struct {
	module    string
	class     string
	endpoints map[string]*funcResolver
	allow     []string
}

// newClassResolver wraps every verb method the instance defines.
func newClassResolver(module string, meta *view.Entry, pipeline *convert.Pipeline) (*classResolver, error) {
	v := reflect.ValueOf(meta.Target)
	t := reflect.Indirect(v).Type()

	cr := &classResolver{
		module:    module,
		class:     t.Name(),
		endpoints: make(map[string]*funcResolver),
	}
	for _, hm := range httpMethods {
		m := v.MethodByName(hm.method)
		if !m.IsValid() {
			continue
		}
		fr, err := newFuncResolver(module, hm.verb, m.Interface(), meta, pipeline)
		if err != nil {
			return nil, fmt.Errorf("method %s.%s.%s: %w", module, cr.class, hm.method, err)
		}
		cr.endpoints[hm.verb] = fr
		cr.allow = append(cr.allow, strings.ToUpper(hm.verb))
	}
	if len(cr.endpoints) == 0 {
		return nil, fmt.Errorf("%s.%s defines no HTTP method handlers", module, cr.class)
	}
	return cr, nil
}

// Invoke implements Resolver. An unsupported verb answers 405 with the
// supported methods rather than failing.
func (cr *classResolver) Invoke(r *http.Request, extras map[string]string) (Response, error) {
	if ep, ok := cr.endpoints[strings.ToLower(r.Method)]; ok {
		return ep.Invoke(r, extras)
	}
	return MethodNotAllowed(cr.allow), nil
}

// Describe implements Resolver.
func (cr *classResolver) Describe(r *http.Request) string {
	return fmt.Sprintf("class-based view %s.%s.%s", cr.module, cr.class, strings.ToLower(r.Method))
}

// templateResolver renders a template directly when no view module
// exists but a same-named template does. The template is re-fetched
// from the provider on every call; the provider owns caching.
type templateResolver struct {
	provider templates.Provider
	app      string
	name     string
}

// newTemplateResolver eagerly validates the template so a bad route
// fails at factory time, not at first request.
func newTemplateResolver(provider templates.Provider, app, name string) (*templateResolver, error) {
	if provider == nil {
		return nil, fmt.Errorf("no template provider configured")
	}
	loader, err := provider.Loader(app)
	if err != nil {
		return nil, err
	}
	if _, err := loader.Template(name); err != nil {
		return nil, err
	}
	return &templateResolver{provider: provider, app: app, name: name}, nil
}

// Invoke implements Resolver, rendering with the leftover named
// captures as context.
func (tr *templateResolver) Invoke(r *http.Request, extras map[string]string) (Response, error) {
	loader, err := tr.provider.Loader(tr.app)
	if err != nil {
		return nil, err
	}
	tpl, err := loader.Template(tr.name)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tpl.Render(&buf, templates.RenderData{Params: extras}); err != nil {
		return nil, err
	}
	return &BodyResponse{Status: http.StatusOK, ContentType: "text/html; charset=utf-8", Body: buf.Bytes()}, nil
}

// Describe implements Resolver.
func (tr *templateResolver) Describe(r *http.Request) string {
	desc := fmt.Sprintf("template %s", tr.name)
	if rc := routectx.From(r.Context()); rc != nil {
		desc += fmt.Sprintf(" (view function %s.%s not found)", rc.Module, rc.Function)
	}
	return desc
}

// errorResolver is the memoized negative-resolution result: repeated
// requests to a broken route answer 404 without re-attempting lookup.
type errorResolver struct {
	diag string
}

// Invoke implements Resolver; it never succeeds.
func (er *errorResolver) Invoke(r *http.Request, extras map[string]string) (Response, error) {
	return NotFound(er.diag), nil
}

// Describe implements Resolver.
func (er *errorResolver) Describe(r *http.Request) string { return er.diag }
