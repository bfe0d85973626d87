package broadcast

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// StoreWatcher watches the store database file for writes performed by
// other local processes and emits a change signal for each burst of
// writes. The signal carries no collection detail; a process receiving it
// re-reads whatever it needs from the store.
//
// SQLite in WAL mode writes to the -wal sidecar, so the watcher matches
// the database file name as a prefix rather than exactly.
type StoreWatcher struct {
	watcher  *fsnotify.Watcher
	events   chan time.Time
	errors   chan error
	done     chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool
	dbPath   string
	debounce time.Duration
}

// NewStoreWatcher creates a watcher for the database at dbPath.
// The watcher must be started with Start() before it emits events.
// debounce batches rapid write bursts into a single signal; zero selects
// a 100ms default.
func NewStoreWatcher(dbPath string, debounce time.Duration) (*StoreWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if debounce == 0 {
		debounce = 100 * time.Millisecond
	}

	return &StoreWatcher{
		watcher:  watcher,
		events:   make(chan time.Time, 16),
		errors:   make(chan error, 4),
		done:     make(chan struct{}),
		dbPath:   dbPath,
		debounce: debounce,
	}, nil
}

// Start begins watching the database directory.
func (w *StoreWatcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("watcher already running")
	}

	dir := filepath.Dir(w.dbPath)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch store directory %s: %w", dir, err)
	}

	w.running = true
	w.wg.Add(1)
	go w.processEvents()

	return nil
}

// Stop stops watching and closes the event channels. It blocks until the
// processing goroutine has exited.
func (w *StoreWatcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.mu.Unlock()

	close(w.done)

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}

	w.wg.Wait()

	close(w.events)
	close(w.errors)
	return nil
}

// Events returns the channel that signals peer writes.
// The channel is closed when the watcher is stopped.
func (w *StoreWatcher) Events() <-chan time.Time {
	return w.events
}

// Errors returns the channel that emits watcher errors.
func (w *StoreWatcher) Errors() <-chan error {
	return w.errors
}

// IsRunning reports whether the watcher is active.
func (w *StoreWatcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *StoreWatcher) processEvents() {
	defer w.wg.Done()

	var (
		pending  bool
		lastSeen time.Time
	)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.matchesStore(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			pending = true
			lastSeen = time.Now()

		case <-ticker.C:
			if pending && time.Since(lastSeen) >= w.debounce {
				pending = false
				select {
				case w.events <- time.Now():
				case <-w.done:
					return
				default:
					// Consumer is behind; collapsing signals is fine.
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			case <-w.done:
				return
			}
		}
	}
}

// matchesStore reports whether the event path refers to the database file
// or one of its SQLite sidecars (-wal, -shm).
func (w *StoreWatcher) matchesStore(path string) bool {
	base := filepath.Base(path)
	dbBase := filepath.Base(w.dbPath)
	return base == dbBase || strings.HasPrefix(base, dbBase+"-")
}
