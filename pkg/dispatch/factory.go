package dispatch

import (
	"fmt"
	"reflect"

	"github.com/routra-dev/routra/pkg/convert"
	"github.com/routra-dev/routra/pkg/templates"
	"github.com/routra-dev/routra/pkg/view"
)

// Factory builds Resolvers. Build never fails: every resolution
// failure folds into an error resolver so callers have a uniform
// non-throwing contract.
type Factory struct {
	views     *view.Registry
	templates templates.Provider
	pipeline  *convert.Pipeline
}

// NewFactory creates a Factory. The template provider may be nil, in
// which case template fallback always fails. A nil pipeline gets the
// default converters.
func NewFactory(views *view.Registry, provider templates.Provider, pipeline *convert.Pipeline) *Factory {
	if pipeline == nil {
		pipeline = convert.NewPipeline()
	}
	return &Factory{views: views, templates: provider, pipeline: pipeline}
}

// Pipeline returns the conversion pipeline, so applications can
// register additional type converters.
func (f *Factory) Pipeline() *convert.Pipeline { return f.pipeline }

// Build resolves (app, module, function) into a Resolver, trying the
// view registry first and falling back to rendering fallbackTemplate
// directly when the module does not exist.
func (f *Factory) Build(app, module, function, fallbackTemplate string) Resolver {
	mod, ok := f.views.Lookup(module)
	if !ok {
		// No view module; can we render the template directly?
		tr, err := newTemplateResolver(f.templates, app, fallbackTemplate)
		if err != nil {
			return &errorResolver{diag: fmt.Sprintf(
				"view module %s not found, and fallback template %s could not be loaded (%v)",
				module, fallbackTemplate, err)}
		}
		return tr
	}

	entry, ok := mod.Lookup(function)
	if !ok {
		return &errorResolver{diag: fmt.Sprintf(
			"module %s found successfully, but view %s is not defined in the module", module, function)}
	}

	if isClass(entry.Target) {
		cr, err := newClassResolver(module, entry, f.pipeline)
		if err != nil {
			return &errorResolver{diag: err.Error()}
		}
		return cr
	}

	if !entry.Registered {
		return &errorResolver{diag: fmt.Sprintf(
			"view %s.%s was found successfully, but it is not registered as dispatchable (register it with Module.Register)",
			module, function)}
	}

	fr, err := newFuncResolver(module, function, entry.Target, entry, f.pipeline)
	if err != nil {
		return &errorResolver{diag: fmt.Sprintf("view %s.%s: %v", module, function, err)}
	}
	return fr
}

// BuildDirect resolves an internal-redirect target: module and
// function lookup only, with no template fallback and no registration
// check, mirroring the lighter re-resolution the dispatch loop does
// between redirect hops.
func (f *Factory) BuildDirect(module, function string) Resolver {
	mod, ok := f.views.Lookup(module)
	if !ok {
		return &errorResolver{diag: fmt.Sprintf(
			"view %s.%s not found during internal redirect", module, function)}
	}
	entry, ok := mod.Lookup(function)
	if !ok {
		return &errorResolver{diag: fmt.Sprintf(
			"module %s found successfully during internal redirect, but view function %s is not defined in the module",
			module, function)}
	}
	if isClass(entry.Target) {
		cr, err := newClassResolver(module, entry, f.pipeline)
		if err != nil {
			return &errorResolver{diag: err.Error()}
		}
		return cr
	}
	fr, err := newFuncResolver(module, function, entry.Target, entry, f.pipeline)
	if err != nil {
		return &errorResolver{diag: fmt.Sprintf("view %s.%s: %v", module, function, err)}
	}
	return fr
}

// isClass reports whether the registered target is a method class
// rather than a plain function.
func isClass(target any) bool {
	return target != nil && reflect.TypeOf(target).Kind() != reflect.Func
}
