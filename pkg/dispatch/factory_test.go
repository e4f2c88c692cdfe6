package dispatch

import (
	"net/http"
	"strings"
	"testing"

	"github.com/routra-dev/routra/pkg/templates"
	"github.com/routra-dev/routra/pkg/view"
)

func TestFactoryModuleAndTemplateMissing(t *testing.T) {
	f := NewFactory(view.NewRegistry(), templates.NewDirProvider(t.TempDir()), nil)

	res := f.Build("polls", "polls/ghost", "process", "ghost.html")
	er, ok := res.(*errorResolver)
	if !ok {
		t.Fatalf("got %T, want errorResolver", res)
	}
	// The diagnostic names both failures.
	if !strings.Contains(er.diag, "polls/ghost") || !strings.Contains(er.diag, "ghost.html") {
		t.Errorf("diag = %q, should mention module and template", er.diag)
	}
}

func TestFactoryTemplateFallback(t *testing.T) {
	root := t.TempDir()
	writeTemplates(t, root, "polls", map[string]string{"about.html": "<p>about</p>"})

	f := NewFactory(view.NewRegistry(), templates.NewDirProvider(root), nil)
	res := f.Build("polls", "polls/about", "process", "about.html")
	if _, ok := res.(*templateResolver); !ok {
		t.Fatalf("got %T, want templateResolver", res)
	}

	resp, err := res.Invoke(request("GET", "polls/about", "process", nil, nil), nil)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if resp.StatusCode() != 200 {
		t.Errorf("status = %d", resp.StatusCode())
	}
}

func TestFactoryFunctionNotDefined(t *testing.T) {
	reg := view.NewRegistry()
	reg.Module("polls/index").Register("process", func(r *http.Request) any { return nil })

	f := NewFactory(reg, nil, nil)
	res := f.Build("polls", "polls/index", "missing", "index.html")
	er, ok := res.(*errorResolver)
	if !ok {
		t.Fatalf("got %T, want errorResolver", res)
	}
	if !strings.Contains(er.diag, "missing") || !strings.Contains(er.diag, "not defined") {
		t.Errorf("diag = %q", er.diag)
	}
}

func TestFactoryUnregisteredFunction(t *testing.T) {
	reg := view.NewRegistry()
	reg.Module("polls/index").Expose("helper", func(r *http.Request) any { return nil })

	f := NewFactory(reg, nil, nil)
	res := f.Build("polls", "polls/index", "helper", "index.html")
	er, ok := res.(*errorResolver)
	if !ok {
		t.Fatalf("got %T, want errorResolver", res)
	}
	if !strings.Contains(er.diag, "not registered") {
		t.Errorf("diag = %q", er.diag)
	}
}

func TestFactoryBuildsFunctionResolver(t *testing.T) {
	reg := view.NewRegistry()
	reg.Module("polls/index").Register("process", func(r *http.Request, id int) any {
		return Text(200, "ok")
	}, view.Params("id"))

	f := NewFactory(reg, nil, nil)
	res := f.Build("polls", "polls/index", "process", "index.html")
	if _, ok := res.(*funcResolver); !ok {
		t.Fatalf("got %T, want funcResolver", res)
	}
}

func TestFactoryBuildsClassResolver(t *testing.T) {
	reg := view.NewRegistry()
	reg.Module("polls/detail").Register("PollView", &pollView{}, view.Params("id"))

	f := NewFactory(reg, nil, nil)
	res := f.Build("polls", "polls/detail", "PollView", "detail.html")
	if _, ok := res.(*classResolver); !ok {
		t.Fatalf("got %T, want classResolver", res)
	}
}

func TestFactoryBadSignatureFoldsIntoError(t *testing.T) {
	reg := view.NewRegistry()
	reg.Module("polls/index").Register("process", func(id int) any { return nil })

	f := NewFactory(reg, nil, nil)
	if _, ok := f.Build("polls", "polls/index", "process", "index.html").(*errorResolver); !ok {
		t.Error("bad signature should fold into an errorResolver")
	}
}

func TestFactoryIdempotentConstruction(t *testing.T) {
	reg := view.NewRegistry()
	reg.Module("polls/index").Register("process", func(r *http.Request, id int, name string) any {
		return Text(200, "ok")
	}, view.Params("id", "name"), view.Default("name", "anon"))

	f := NewFactory(reg, nil, nil)
	a := f.Build("polls", "polls/index", "process", "index.html").(*funcResolver)
	b := f.Build("polls", "polls/index", "process", "index.html").(*funcResolver)

	if len(a.Params()) != len(b.Params()) {
		t.Fatal("parameter sets differ between builds")
	}
	for i := range a.Params() {
		if a.Params()[i].String() != b.Params()[i].String() {
			t.Errorf("param %d: %s != %s", i, a.Params()[i], b.Params()[i])
		}
	}

	req := request("GET", "polls/index", "process", []string{"1"}, nil)
	ra, err := a.Invoke(req, nil)
	if err != nil {
		t.Fatal(err)
	}
	rb, err := b.Invoke(req, nil)
	if err != nil {
		t.Fatal(err)
	}
	if ra.StatusCode() != rb.StatusCode() {
		t.Error("invoke behavior differs between builds")
	}
}

func TestFactoryBuildDirect(t *testing.T) {
	reg := view.NewRegistry()
	reg.Module("polls/index").Register("process", func(r *http.Request) any { return Text(200, "ok") })

	f := NewFactory(reg, nil, nil)
	if _, ok := f.BuildDirect("polls/index", "process").(*funcResolver); !ok {
		t.Error("BuildDirect should resolve a registered function")
	}
	if _, ok := f.BuildDirect("polls/ghost", "process").(*errorResolver); !ok {
		t.Error("BuildDirect should fold a missing module into an errorResolver")
	}
	if _, ok := f.BuildDirect("polls/index", "ghost").(*errorResolver); !ok {
		t.Error("BuildDirect should fold a missing function into an errorResolver")
	}
}

func TestTemplateResolverEagerValidation(t *testing.T) {
	root := t.TempDir()
	writeTemplates(t, root, "polls", map[string]string{"index.html": "x"})
	provider := templates.NewDirProvider(root)

	if _, err := newTemplateResolver(provider, "polls", "index.html"); err != nil {
		t.Errorf("existing template should validate: %v", err)
	}
	if _, err := newTemplateResolver(provider, "polls", "missing.html"); err == nil {
		t.Error("missing template should fail at construction")
	}
	if _, err := newTemplateResolver(nil, "polls", "index.html"); err == nil {
		t.Error("nil provider should fail at construction")
	}
}

func TestTemplateResolverRendersExtras(t *testing.T) {
	root := t.TempDir()
	writeTemplates(t, root, "polls", map[string]string{"hello.html": "hi {{.Params.name}}"})
	provider := templates.NewDirProvider(root)

	tr, err := newTemplateResolver(provider, "polls", "hello.html")
	if err != nil {
		t.Fatal(err)
	}
	resp, err := tr.Invoke(request("GET", "polls/hello", "process", nil, nil), map[string]string{"name": "ana"})
	if err != nil {
		t.Fatal(err)
	}
	body := string(resp.(*BodyResponse).Body)
	if !strings.Contains(body, "hi ana") {
		t.Errorf("body = %q", body)
	}
}
