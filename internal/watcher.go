package internal

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher timing. Duplicate or missed notifications are acceptable by
// contract: consumers re-derive truth from a full cache clear and
// re-query, not from the event payload.
const (
	watchDebounce = 500 * time.Millisecond
	existencePoll = 2 * time.Second
)

// FileWatcher observes the key-value store's backing file for OS-level
// change and rename events. If the file does not exist yet, it polls
// for existence on a fixed delay, then attaches. SQLite writes through
// sidecar files (-wal, -journal) and renames, so the parent directory
// is watched and events are filtered by path prefix.
type FileWatcher struct {
	path string

	mu        sync.Mutex
	callbacks map[int]func()
	nextID    int

	done      chan struct{}
	closeOnce sync.Once
}

// NewFileWatcher starts watching path in the background.
func NewFileWatcher(path string) *FileWatcher {
	w := &FileWatcher{
		path:      path,
		callbacks: make(map[int]func()),
		done:      make(chan struct{}),
	}
	go w.run()
	return w
}

// Subscribe registers a zero-argument callback fired at most once per
// detected change event. The returned function unregisters it.
func (w *FileWatcher) Subscribe(cb func()) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := w.nextID
	w.nextID++
	w.callbacks[id] = cb

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.callbacks, id)
	}
}

// Close stops the watcher. Idempotent.
func (w *FileWatcher) Close() {
	w.closeOnce.Do(func() {
		close(w.done)
	})
}

func (w *FileWatcher) run() {
	for {
		if !w.waitForFile() {
			return
		}
		if !w.watch() {
			return
		}
		// The watch loop ended on an error; re-attach from scratch.
	}
}

// waitForFile blocks until the backing file exists. Returns false when
// the watcher was closed.
func (w *FileWatcher) waitForFile() bool {
	ticker := time.NewTicker(existencePoll)
	defer ticker.Stop()
	for {
		if _, err := os.Stat(w.path); err == nil {
			return true
		}
		select {
		case <-w.done:
			return false
		case <-ticker.C:
		}
	}
}

// watch attaches fsnotify and dispatches debounced notifications.
// Returns false when the watcher was closed, true when the underlying
// watch failed and should be re-attached.
func (w *FileWatcher) watch() bool {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		LogWarn("Failed to create file watcher: %v", err)
		return w.sleepOrDone()
	}
	defer fsw.Close()

	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		LogWarn("Failed to watch %s: %v", filepath.Dir(w.path), err)
		return w.sleepOrDone()
	}

	var pending *time.Timer
	var pendingC <-chan time.Time

	for {
		select {
		case <-w.done:
			return false

		case event, ok := <-fsw.Events:
			if !ok {
				return true
			}
			if !w.relevant(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			// Debounce: SQLite emits bursts of writes per commit.
			if pending == nil {
				pending = time.NewTimer(watchDebounce)
				pendingC = pending.C
			} else {
				if !pending.Stop() {
					select {
					case <-pending.C:
					default:
					}
				}
				pending.Reset(watchDebounce)
			}

		case <-pendingC:
			pending = nil
			pendingC = nil
			w.notify()

		case err, ok := <-fsw.Errors:
			if !ok {
				return true
			}
			LogDebug("File watcher error: %v", err)
		}
	}
}

// relevant reports whether an event path belongs to the watched file or
// one of its SQLite sidecars.
func (w *FileWatcher) relevant(name string) bool {
	base := filepath.Base(w.path)
	got := filepath.Base(name)
	return got == base || got == base+"-wal" || got == base+"-journal" || got == base+"-shm"
}

func (w *FileWatcher) notify() {
	w.mu.Lock()
	callbacks := make([]func(), 0, len(w.callbacks))
	for _, cb := range w.callbacks {
		callbacks = append(callbacks, cb)
	}
	w.mu.Unlock()

	for _, cb := range callbacks {
		cb()
	}
}

// sleepOrDone pauses before a re-attach attempt. Returns false when the
// watcher was closed meanwhile.
func (w *FileWatcher) sleepOrDone() bool {
	select {
	case <-w.done:
		return false
	case <-time.After(existencePoll):
		return true
	}
}
