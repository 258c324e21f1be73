// Package prompt supplies the system prompt sent ahead of every conversation.
package prompt

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/kiosk404/oracle/pkg/logger"
)

// Static is a fixed system prompt.
type Static string

func (s Static) SystemPrompt() string { return string(s) }

// FileSource serves the content of a prompt file and reloads it when the file changes.
type FileSource struct {
	path     string
	fallback string

	mu      sync.RWMutex
	content string

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewFileSource reads path and starts watching it. fallback is served while the file is
// missing or empty.
func NewFileSource(path, fallback string) (*FileSource, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fs := &FileSource{path: abs, fallback: fallback, done: make(chan struct{})}
	if err := fs.reload(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create prompt watcher: %w", err)
	}
	// Watch the directory so editors that replace the file are still observed.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	fs.watcher = w

	go fs.watch()
	logger.Info("[Prompt] serving system prompt from %s", abs)
	return fs, nil
}

func (f *FileSource) SystemPrompt() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.content == "" {
		return f.fallback
	}
	return f.content
}

// Close stops watching the file.
func (f *FileSource) Close() error {
	select {
	case <-f.done:
		return nil
	default:
	}
	close(f.done)
	return f.watcher.Close()
}

func (f *FileSource) reload() error {
	data, err := os.ReadFile(f.path)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.content = ""
		return err
	}
	f.content = strings.TrimSpace(string(data))
	return nil
}

func (f *FileSource) watch() {
	for {
		select {
		case <-f.done:
			return
		case ev, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != f.path {
				continue
			}
			if err := f.reload(); err != nil && !errors.Is(err, os.ErrNotExist) {
				logger.Warn("[Prompt] reload %s failed: %v", f.path, err)
				continue
			}
			logger.Info("[Prompt] %s changed (%s), system prompt reloaded", f.path, ev.Op)
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("[Prompt] watcher error: %v", err)
		}
	}
}
