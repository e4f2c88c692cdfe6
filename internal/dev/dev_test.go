package dev

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestWatcher_Basic(t *testing.T) {
	tmpDir := t.TempDir()

	// Create initial file
	testFile := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(testFile, []byte("<p>hello</p>"), 0644); err != nil {
		t.Fatal(err)
	}

	watcher := NewWatcher(WatcherConfig{
		Paths:    []string{tmpDir},
		Debounce: 50 * time.Millisecond,
	})

	changes := make(chan Change, 10)
	watcher.OnChange(func(c Change) {
		changes <- c
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start watcher in background
	go watcher.Start(ctx)

	// Wait for initial scan
	time.Sleep(100 * time.Millisecond)

	// Modify file
	if err := os.WriteFile(testFile, []byte("<p>changed</p>"), 0644); err != nil {
		t.Fatal(err)
	}

	// Wait for change detection
	select {
	case change := <-changes:
		if change.Type != ChangeTemplate {
			t.Errorf("Expected template change, got %v", change.Type)
		}
		if change.Path != testFile {
			t.Errorf("Expected path %q, got %q", testFile, change.Path)
		}
	case <-time.After(500 * time.Millisecond):
		t.Error("Timeout waiting for change")
	}

	watcher.Stop()
}

func TestWatcher_NewFile(t *testing.T) {
	tmpDir := t.TempDir()

	watcher := NewWatcher(WatcherConfig{
		Paths:    []string{tmpDir},
		Debounce: 50 * time.Millisecond,
	})

	changes := make(chan Change, 10)
	watcher.OnChange(func(c Change) {
		changes <- c
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go watcher.Start(ctx)

	time.Sleep(100 * time.Millisecond)

	newFile := filepath.Join(tmpDir, "new.html")
	if err := os.WriteFile(newFile, []byte("<p>new</p>"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case change := <-changes:
		if change.Type != ChangeTemplate {
			t.Errorf("Expected template change, got %v", change.Type)
		}
		if change.Path != newFile {
			t.Errorf("Expected path %q, got %q", newFile, change.Path)
		}
	case <-time.After(500 * time.Millisecond):
		t.Error("Timeout waiting for new file change")
	}

	watcher.Stop()
}

func TestWatcher_Ignore(t *testing.T) {
	tmpDir := t.TempDir()

	watcher := NewWatcher(WatcherConfig{
		Paths:  []string{tmpDir},
		Ignore: []string{"*.swp", "vendor"},
	})

	// Test ignore patterns
	if !watcher.shouldIgnore(filepath.Join(tmpDir, "index.html.swp")) {
		t.Error("Should ignore *.swp files")
	}
	if !watcher.shouldIgnore(filepath.Join(tmpDir, "vendor", "lib.go")) {
		t.Error("Should ignore vendor directory")
	}
	if watcher.shouldIgnore(filepath.Join(tmpDir, "index.html")) {
		t.Error("Should not ignore index.html")
	}
}

func TestWatcher_IgnoreSegments(t *testing.T) {
	watcher := NewWatcher(WatcherConfig{
		Paths:  []string{"."},
		Ignore: []string{"tmp"},
	})

	if !watcher.shouldIgnore(filepath.Join("foo", "tmp", "bar.html")) {
		t.Error("Should ignore tmp directory segment")
	}
	if watcher.shouldIgnore(filepath.Join("foo", "attempt.html")) {
		t.Error("Should not ignore substring match")
	}
}

func TestClassifyChange(t *testing.T) {
	tests := []struct {
		path string
		want ChangeType
	}{
		{"index.html", ChangeTemplate},
		{"detail.gohtml", ChangeTemplate},
		{"partial.tmpl", ChangeTemplate},
		{"routra.json", ChangeConfig},
		{"image.png", ChangeAsset},
		{"data.json", ChangeAsset},
	}

	for _, tt := range tests {
		got := classifyChange(tt.path)
		if got != tt.want {
			t.Errorf("classifyChange(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestWatcher_IsRunning(t *testing.T) {
	watcher := NewWatcher(WatcherConfig{
		Paths: []string{"."},
	})

	if watcher.IsRunning() {
		t.Error("Watcher should not be running initially")
	}
}

func TestReloadServer_ClientCount(t *testing.T) {
	rs := NewReloadServer()

	if rs.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d, want 0", rs.ClientCount())
	}
}

func TestReloadMessage_JSON(t *testing.T) {
	msg := ReloadMessage{
		Type:  ReloadTypeFull,
		Error: "",
	}

	if msg.Type != "reload" {
		t.Errorf("Type = %q, want %q", msg.Type, "reload")
	}
}

// recordingFlusher counts Flush calls.
type recordingFlusher struct {
	mu    sync.Mutex
	count int
}

func (f *recordingFlusher) Flush() {
	f.mu.Lock()
	f.count++
	f.mu.Unlock()
}

func (f *recordingFlusher) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count
}

func TestRunner_FlushesOnTemplateChange(t *testing.T) {
	flusher := &recordingFlusher{}
	runner := NewRunner([]string{"."}, nil, flusher)

	runner.handleChange(Change{Path: "polls/templates/index.html", Type: ChangeTemplate})
	if flusher.Count() != 1 {
		t.Errorf("flush count = %d, want 1 after template change", flusher.Count())
	}

	runner.handleChange(Change{Path: "routra.json", Type: ChangeConfig})
	if flusher.Count() != 2 {
		t.Errorf("flush count = %d, want 2 after config change", flusher.Count())
	}

	// Asset changes reload the browser but keep the caches.
	runner.handleChange(Change{Path: "logo.png", Type: ChangeAsset})
	if flusher.Count() != 2 {
		t.Errorf("flush count = %d, asset change must not flush", flusher.Count())
	}
}

func TestClientScript(t *testing.T) {
	if len(ClientScript) == 0 {
		t.Error("ClientScript should not be empty")
	}

	if !strings.Contains(ClientScript, "WebSocket") {
		t.Error("ClientScript should contain WebSocket")
	}
	if !strings.Contains(ClientScript, "_routra/reload") {
		t.Error("ClientScript should contain reload endpoint")
	}
	if !strings.Contains(ClientScript, "location.reload") {
		t.Error("ClientScript should contain reload logic")
	}
}
