// Package watch re-scans Structured Text files as they change on disk.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/strooct/strooct/logging"
	"github.com/strooct/strooct/pkg/strooct/scan"
)

// DefaultDebounce is the quiet period used when Options.Debounce is zero.
const DefaultDebounce = 100 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	// Scan is passed to scan.File for every changed file.
	Scan scan.Options

	// Debounce is how long a file must stay unchanged before it is
	// re-scanned.
	Debounce time.Duration

	// IsSource selects the files to scan. Nil accepts *.st.
	IsSource func(path string) bool
}

// Watcher monitors directories and re-scans source files when they are
// written or created.
type Watcher struct {
	watcher  *fsnotify.Watcher
	dirs     []string
	opts     Options
	log      *logging.Logger
	onResult func(*scan.Result)

	mu     sync.Mutex
	timers map[string]*time.Timer
	scans  uint64

	// Results are delivered one at a time
	deliver sync.Mutex
}

// New creates a watcher for dirs. onResult receives the result of every
// re-scan; it is never called concurrently.
func New(dirs []string, opts Options, log *logging.Logger, onResult func(*scan.Result)) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.IsSource == nil {
		opts.IsSource = func(path string) bool {
			return strings.EqualFold(filepath.Ext(path), ".st")
		}
	}
	if log == nil {
		log = logging.Discard()
	}

	return &Watcher{
		watcher:  fsWatcher,
		dirs:     dirs,
		opts:     opts,
		log:      log,
		onResult: onResult,
		timers:   make(map[string]*time.Timer),
	}, nil
}

// Start begins watching for file changes. Events are processed until ctx
// is done or Close is called.
func (w *Watcher) Start(ctx context.Context) error {
	for _, dir := range w.dirs {
		if err := w.watchDirRecursive(dir); err != nil {
			w.log.Error("[WATCH] failed to watch %s: %v", dir, err)
			return err
		}
		w.log.Info("[WATCH] watching: %s", dir)
	}

	go w.eventLoop(ctx)

	return nil
}

// watchDirRecursive adds a directory and its subdirectories to the watch list
func (w *Watcher) watchDirRecursive(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return w.watcher.Add(root)
	}

	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if info.IsDir() {
			// Skip hidden directories
			if strings.HasPrefix(info.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return w.watcher.Add(path)
		}
		return nil
	})
}

// eventLoop processes file system events
func (w *Watcher) eventLoop(ctx context.Context) {
	defer w.stopTimers()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			// Only handle write and create events
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.watchDirRecursive(event.Name); err != nil {
						w.log.Error("[WATCH] failed to watch %s: %v", event.Name, err)
					}
					continue
				}
			}

			if !w.opts.IsSource(event.Name) {
				continue
			}

			w.schedule(ctx, event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("[WATCH] watcher error: %v", err)
		}
	}
}

// schedule (re)starts the debounce timer for path
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.scheduleLocked(ctx, path)
}

// scheduleLocked is schedule with w.mu held. A timer that already fired
// may have its callback waiting on w.mu; it is replaced, not re-armed.
func (w *Watcher) scheduleLocked(ctx context.Context, path string) {
	if t, ok := w.timers[path]; ok && t.Stop() {
		t.Reset(w.opts.Debounce)
		return
	}

	var t *time.Timer
	t = time.AfterFunc(w.opts.Debounce, func() {
		w.mu.Lock()
		if w.timers[path] == t {
			delete(w.timers, path)
		}
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		w.handleFileChange(path)
	})
	w.timers[path] = t
}

// handleFileChange re-scans path and reports the result
func (w *Watcher) handleFileChange(path string) {
	w.log.Debug("[WATCH] changed: %s", path)

	r := scan.File(path, w.opts.Scan)

	w.mu.Lock()
	w.scans++
	w.mu.Unlock()

	switch {
	case r.Err != nil:
		w.log.Warn("[WATCH] %s: %v", path, r.Err)
	case r.HasIllegal():
		w.log.Warn("[WATCH] %s: %d tokens, illegal input", path, r.Stats.Tokens)
	default:
		w.log.Info("[WATCH] %s: %d tokens", path, r.Stats.Tokens)
	}

	if w.onResult != nil {
		w.deliver.Lock()
		w.onResult(r)
		w.deliver.Unlock()
	}
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
}

// Scans returns how many re-scans have completed.
func (w *Watcher) Scans() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.scans
}

// Close stops the watcher
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
