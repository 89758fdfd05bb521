// Package directive loads the assistant's system directive from disk and
// keeps it current while the process runs, so persona edits land without a
// restart.
package directive

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// DefaultText is used when no directive file exists at the configured path.
const DefaultText = `You are Man Friday, a personal executive assistant reachable over WhatsApp.
You manage the user's email, calendar, tasks and reminders on their behalf.
Be concise and practical; WhatsApp messages should read well on a phone.
Use the available tools whenever the request calls for live data or a real
change. Never invent email, event or task contents. When something fails,
say plainly what failed and what the user can do about it.`

type Loader struct {
	path   string
	logger *slog.Logger

	mu   sync.RWMutex
	text string
}

func NewLoader(path string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	loader := &Loader{path: path, logger: logger, text: DefaultText}
	loader.reload()
	return loader
}

// Text returns the current directive.
func (l *Loader) Text() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.text
}

func (l *Loader) reload() {
	raw, err := os.ReadFile(l.path)
	if err != nil {
		if !os.IsNotExist(err) {
			l.logger.Warn("directive file unreadable, keeping current text", "path", l.path, "error", err)
		}
		return
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		l.logger.Warn("directive file empty, keeping current text", "path", l.path)
		return
	}

	l.mu.Lock()
	changed := text != l.text
	l.text = text
	l.mu.Unlock()

	if changed {
		l.logger.Info("directive reloaded", "path", l.path, "bytes", len(text))
	}
}

// Watch blocks until ctx is done, reloading the directive whenever its file
// is written, created or renamed. Editors replace files rather than writing
// in place, so the parent directory is watched instead of the file itself.
func (l *Loader) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(l.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch directive dir %s: %w", dir, err)
	}
	l.logger.Info("directive watcher started", "path", l.path)

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("directive watcher stopped")
			return nil
		case event := <-watcher.Events:
			if filepath.Clean(event.Name) != filepath.Clean(l.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			l.reload()
		case err := <-watcher.Errors:
			if err != nil {
				l.logger.Error("directive watcher error", "error", err)
			}
		}
	}
}
