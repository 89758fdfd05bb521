package directive

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoaderDefaultsWhenFileMissing(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "missing.md"), nil)
	if loader.Text() != DefaultText {
		t.Errorf("Text() = %q, want default", loader.Text())
	}
}

func TestLoaderReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "DIRECTIVE.md")
	if err := os.WriteFile(path, []byte("You are a terse assistant.\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	loader := NewLoader(path, nil)
	if got := loader.Text(); got != "You are a terse assistant." {
		t.Errorf("Text() = %q", got)
	}
}

func TestLoaderKeepsTextWhenFileEmptied(t *testing.T) {
	path := filepath.Join(t.TempDir(), "DIRECTIVE.md")
	if err := os.WriteFile(path, []byte("Original directive."), 0o644); err != nil {
		t.Fatal(err)
	}
	loader := NewLoader(path, nil)

	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	loader.reload()
	if got := loader.Text(); got != "Original directive." {
		t.Errorf("Text() = %q, want original kept", got)
	}
}

func TestLoaderWatchPicksUpWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "DIRECTIVE.md")
	if err := os.WriteFile(path, []byte("First."), 0o644); err != nil {
		t.Fatal(err)
	}
	loader := NewLoader(path, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- loader.Watch(ctx) }()

	// Give the watcher a beat to register before the write lands.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("Second."), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(3 * time.Second)
	for loader.Text() != "Second." {
		select {
		case <-deadline:
			t.Fatalf("directive never reloaded, still %q", loader.Text())
		case <-time.After(20 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Watch returned %v", err)
	}
}
