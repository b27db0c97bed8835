// Package watch reacts to edits of the task document made outside the service,
// such as a hand-edited JSON file or a restored backup.
package watch

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDelay is how long the watcher waits for writes to settle.
const DefaultDelay = 500 * time.Millisecond

// Config holds configuration for a Watcher
type Config struct {
	// Path is the file to watch. Its directory is watched so atomic
	// rename-over writes are seen.
	Path     string
	Delay    time.Duration
	Logger   *slog.Logger
	OnChange func(ctx context.Context) error
}

// Watcher calls OnChange once per burst of changes to a single file.
type Watcher struct {
	path      string
	onChange  func(ctx context.Context) error
	log       *slog.Logger
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	hashes    *ContentHashTracker

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running sync.Mutex // held while onChange runs
}

// New creates a Watcher. Call Start to begin watching.
func New(cfg Config) (*Watcher, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("watch path is required")
	}
	if cfg.OnChange == nil {
		return nil, fmt.Errorf("watch callback is required")
	}
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	abs, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve watch path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		path:     abs,
		onChange: cfg.OnChange,
		log:      cfg.Logger,
		watcher:  fw,
		hashes:   NewContentHashTracker(),
		ctx:      ctx,
		cancel:   cancel,
	}
	w.debouncer = NewDebouncer(cfg.Delay, w.fire)
	// Seed the tracker so our first event is compared against what is on disk now.
	w.hashes.HasChanged(abs)
	return w, nil
}

// Start begins watching.
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.log.Debug("watching task file", "path", w.path)

	w.wg.Add(1)
	go w.eventLoop()
	return nil
}

// Stop stops watching and waits for a running callback to return.
func (w *Watcher) Stop() {
	w.cancel()
	_ = w.watcher.Close()
	w.debouncer.Stop()
	w.wg.Wait()

	w.running.Lock()
	defer w.running.Unlock()
}

func (w *Watcher) eventLoop() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "error", err)

		case <-w.ctx.Done():
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 && event.Op&fsnotify.Create == 0 {
		w.hashes.Remove(w.path)
		return
	}
	if !w.hashes.HasChanged(w.path) {
		return
	}
	w.log.Debug("task file changed", "op", event.Op.String())
	w.debouncer.Trigger()
}

func (w *Watcher) fire() {
	w.running.Lock()
	defer w.running.Unlock()
	if w.ctx.Err() != nil {
		return
	}

	if err := w.onChange(w.ctx); err != nil {
		w.log.Warn("task file change handler failed", "error", err)
	}
}

// ContentHashTracker tracks file content hashes to detect actual changes
type ContentHashTracker struct {
	hashes map[string]string
	mu     sync.Mutex
}

// NewContentHashTracker creates a new content hash tracker
func NewContentHashTracker() *ContentHashTracker {
	return &ContentHashTracker{hashes: make(map[string]string)}
}

// HasChanged reports whether the file is new or its content differs from
// the last call. Unreadable files count as changed.
func (t *ContentHashTracker) HasChanged(path string) bool {
	hash, err := fileHash(path)
	if err != nil {
		return true
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	old, exists := t.hashes[path]
	t.hashes[path] = hash
	return !exists || hash != old
}

// Remove forgets a file.
func (t *ContentHashTracker) Remove(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.hashes, path)
}

func fileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
