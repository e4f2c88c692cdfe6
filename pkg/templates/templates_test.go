package templates

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeApp creates <root>/<app>/templates with the given files.
func writeApp(t *testing.T, root, app string, files map[string]string) {
	t.Helper()
	dir := filepath.Join(root, app, "templates")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDirProviderLoadAndRender(t *testing.T) {
	root := t.TempDir()
	writeApp(t, root, "polls", map[string]string{
		"index.html": "<h1>{{.Params.title}}</h1>",
	})

	p := NewDirProvider(root)
	loader, err := p.Loader("polls")
	if err != nil {
		t.Fatalf("Loader: %v", err)
	}

	tpl, err := loader.Template("index.html")
	if err != nil {
		t.Fatalf("Template: %v", err)
	}
	if tpl.Name() != "index.html" {
		t.Errorf("Name() = %q", tpl.Name())
	}

	var sb strings.Builder
	data := RenderData{Params: map[string]string{"title": "Polls"}}
	if err := tpl.Render(&sb, data); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(sb.String(), "<h1>Polls</h1>") {
		t.Errorf("rendered %q", sb.String())
	}
}

func TestDirProviderMissingApp(t *testing.T) {
	p := NewDirProvider(t.TempDir())
	if _, err := p.Loader("ghost"); err == nil {
		t.Error("expected error for missing app directory")
	}
}

func TestDirProviderMissingTemplate(t *testing.T) {
	root := t.TempDir()
	writeApp(t, root, "polls", map[string]string{"index.html": "x"})

	p := NewDirProvider(root)
	loader, err := p.Loader("polls")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := loader.Template("missing.html"); err == nil {
		t.Error("expected error for missing template")
	}
}

func TestDirProviderFlushPicksUpChanges(t *testing.T) {
	root := t.TempDir()
	writeApp(t, root, "polls", map[string]string{"index.html": "one"})

	p := NewDirProvider(root)
	loader, _ := p.Loader("polls")
	tpl, err := loader.Template("index.html")
	if err != nil {
		t.Fatal(err)
	}
	var before strings.Builder
	tpl.Render(&before, nil)

	writeApp(t, root, "polls", map[string]string{"index.html": "two"})

	// Cached until flushed.
	tpl2, _ := loader.Template("index.html")
	if tpl2 != tpl {
		t.Error("template should be cached before Flush")
	}

	p.Flush()
	loader2, _ := p.Loader("polls")
	tpl3, err := loader2.Template("index.html")
	if err != nil {
		t.Fatal(err)
	}
	var after strings.Builder
	tpl3.Render(&after, nil)
	if after.String() != "two" {
		t.Errorf("after flush rendered %q, want two", after.String())
	}
}

func TestDirProviderTraversalContained(t *testing.T) {
	root := t.TempDir()
	writeApp(t, root, "polls", map[string]string{"index.html": "x"})
	if err := os.WriteFile(filepath.Join(root, "secret.html"), []byte("s"), 0644); err != nil {
		t.Fatal(err)
	}

	p := NewDirProvider(root)
	loader, _ := p.Loader("polls")
	if _, err := loader.Template("../../secret.html"); err == nil {
		t.Error("path traversal should not resolve outside the app dir")
	}
}
