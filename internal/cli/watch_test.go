package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestIsDraft(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"post.json", true},
		{"story.YAML", true},
		{"a/b/c.yml", true},
		{"post.corrected.json", false},
		{"notes.txt", false},
		{"post", false},
	}
	for _, tt := range tests {
		if got := isDraft(tt.path); got != tt.want {
			t.Errorf("isDraft(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestWatchDraftsDebounces(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu    sync.Mutex
		calls []string
	)
	done := make(chan error, 1)
	go func() {
		done <- watchDrafts(ctx, dir, 100*time.Millisecond, log.New(io.Discard), func(p string) {
			mu.Lock()
			calls = append(calls, filepath.Base(p))
			mu.Unlock()
		})
	}()
	// Let the watcher register the directory.
	time.Sleep(100 * time.Millisecond)

	draft := filepath.Join(dir, "post.json")
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(draft, []byte("[]"), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err := os.WriteFile(filepath.Join(dir, "post.corrected.json"), []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "readme.md"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(calls)
		mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	// Give a second debounce window the chance to fire if it wrongly would.
	time.Sleep(250 * time.Millisecond)

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("watchDrafts() error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 1 || calls[0] != "post.json" {
		t.Errorf("calls = %v, want exactly [post.json]", calls)
	}
}

func TestWatchDraftsNewSubdirectory(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan string, 4)
	go func() {
		_ = watchDrafts(ctx, dir, 50*time.Millisecond, log.New(io.Discard), func(p string) { got <- p })
	}()
	time.Sleep(100 * time.Millisecond)

	sub := filepath.Join(dir, "stories")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(sub, "s.yaml"), []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case p := <-got:
		if filepath.Base(p) != "s.yaml" {
			t.Errorf("changed draft = %s", p)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("draft in new subdirectory was not seen")
	}
}
