// Package templates defines the template-loading contract the
// dispatch layer consumes, plus a directory-backed implementation
// built on html/template. Template caching belongs to the provider;
// the dispatch layer re-fetches templates on every call.
package templates

import (
	"fmt"
	htmltemplate "html/template"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Provider hands out per-application template loaders.
type Provider interface {
	// Loader returns the loader for one application.
	Loader(app string) (Loader, error)
}

// Loader resolves template names for a single application.
type Loader interface {
	// Template returns the named template, or an error if it does
	// not exist or fails to parse.
	Template(name string) (Template, error)
}

// Template is a renderable template.
type Template interface {
	// Name returns the template name as requested from the loader.
	Name() string

	// Render writes the rendered template to w.
	Render(w io.Writer, data any) error
}

// RenderData is the data passed to templates rendered directly by the
// dispatcher when no view function exists.
type RenderData struct {
	// Params holds the extra named captures from the URL.
	Params map[string]string
}

// DirProvider serves templates from <root>/<app>/templates/<name>.
// Parsed templates are cached until Flush is called; the dev watcher
// flushes on file changes.
type DirProvider struct {
	root string

	mu      sync.RWMutex
	loaders map[string]*dirLoader
}

// NewDirProvider creates a provider rooted at dir.
func NewDirProvider(dir string) *DirProvider {
	return &DirProvider{
		root:    dir,
		loaders: make(map[string]*dirLoader),
	}
}

// Loader returns the loader for app. The application directory must
// exist; a missing directory is an error so that a bad app name fails
// at resolver construction, not at render time.
func (p *DirProvider) Loader(app string) (Loader, error) {
	p.mu.RLock()
	l, ok := p.loaders[app]
	p.mu.RUnlock()
	if ok {
		return l, nil
	}

	dir := filepath.Join(p.root, app, "templates")
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("no template directory for app %q (looked in %s)", app, dir)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if l, ok := p.loaders[app]; ok {
		return l, nil
	}
	l = &dirLoader{dir: dir, cache: make(map[string]*dirTemplate)}
	p.loaders[app] = l
	return l, nil
}

// Flush drops every cached loader and parsed template.
func (p *DirProvider) Flush() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loaders = make(map[string]*dirLoader)
}

type dirLoader struct {
	dir   string
	mu    sync.RWMutex
	cache map[string]*dirTemplate
}

func (l *dirLoader) Template(name string) (Template, error) {
	l.mu.RLock()
	t, ok := l.cache[name]
	l.mu.RUnlock()
	if ok {
		return t, nil
	}

	path := filepath.Join(l.dir, filepath.Clean("/"+name))
	tpl, err := htmltemplate.ParseFiles(path)
	if err != nil {
		return nil, fmt.Errorf("template %q: %w", name, err)
	}

	t = &dirTemplate{name: name, tpl: tpl}
	l.mu.Lock()
	l.cache[name] = t
	l.mu.Unlock()
	return t, nil
}

type dirTemplate struct {
	name string
	tpl  *htmltemplate.Template
}

func (t *dirTemplate) Name() string { return t.name }

func (t *dirTemplate) Render(w io.Writer, data any) error {
	return t.tpl.ExecuteTemplate(w, filepath.Base(t.name), data)
}
