// Package watcher provides file watching for configuration live reload.
//
// The watcher rides fsnotify: it registers the parent directory of each
// watched file and filters events down to the registered names, which
// keeps working across the rename-and-replace dance most editors do on
// save. Rapid event bursts are debounced and coalesced per path before
// handlers run.
package watcher

import (
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dmoreno/cuaderno/internal/sched"
)

// Event represents a file change event.
type Event struct {
	// Path is the absolute path to the changed file.
	Path string

	// Op is the operation that triggered the event.
	Op Operation

	// Time is when the event occurred.
	Time time.Time
}

// Operation represents the type of file operation.
type Operation int

const (
	// OpWrite indicates the file was modified.
	OpWrite Operation = iota

	// OpCreate indicates a new file was created.
	OpCreate

	// OpRemove indicates the file was deleted.
	OpRemove

	// OpRename indicates the file was renamed away.
	OpRename
)

// String returns the operation name.
func (op Operation) String() string {
	switch op {
	case OpWrite:
		return "write"
	case OpCreate:
		return "create"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Handler is called when a file change is detected.
type Handler func(event Event)

// Watcher monitors individual files for changes.
type Watcher struct {
	mu sync.RWMutex

	fsw *fsnotify.Watcher

	// Watched file paths (absolute)
	files map[string]bool

	// Watched parent directories, refcounted so Unwatch of one file
	// doesn't drop a directory another watched file still needs
	dirs map[string]int

	// Handlers to call on file changes
	handlers []Handler

	// Debounced per-path event coalescing
	deb       *sched.Debouncer
	pendingMu sync.Mutex
	pending   map[string]pendingEvent

	// Lifecycle
	running bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// pendingEvent stores a queued event with its operation for coalescing.
type pendingEvent struct {
	Op   Operation
	Time time.Time
}

// Option configures a Watcher.
type Option func(*settings)

type settings struct {
	debounce time.Duration
	clock    sched.Clock
}

// WithDebounce sets the quiet period before coalesced events are delivered.
func WithDebounce(d time.Duration) Option {
	return func(s *settings) {
		if d >= 0 {
			s.debounce = d
		}
	}
}

// WithClock sets the clock used for debouncing.
func WithClock(c sched.Clock) Option {
	return func(s *settings) {
		if c != nil {
			s.clock = c
		}
	}
}

// New creates a new file watcher.
func New(opts ...Option) (*Watcher, error) {
	s := settings{
		debounce: 100 * time.Millisecond,
		clock:    sched.System(),
	}
	for _, opt := range opts {
		opt(&s)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:     fsw,
		files:   make(map[string]bool),
		dirs:    make(map[string]int),
		pending: make(map[string]pendingEvent),
		done:    make(chan struct{}),
	}
	w.deb = sched.NewDebouncer(s.clock, s.debounce, w.flush)

	return w, nil
}

// Watch adds a file to the watch list. The file itself may not exist
// yet; its parent directory must.
func (w *Watcher) Watch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.files[absPath] {
		return nil
	}

	dir := filepath.Dir(absPath)
	if w.dirs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return err
		}
	}
	w.dirs[dir]++
	w.files[absPath] = true
	return nil
}

// Unwatch removes a file from the watch list.
func (w *Watcher) Unwatch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.files[absPath] {
		return nil
	}
	delete(w.files, absPath)

	dir := filepath.Dir(absPath)
	if w.dirs[dir] > 0 {
		w.dirs[dir]--
		if w.dirs[dir] == 0 {
			delete(w.dirs, dir)
			return w.fsw.Remove(dir)
		}
	}
	return nil
}

// OnChange registers a handler for file change events.
func (w *Watcher) OnChange(handler Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, handler)
}

// Start begins delivering change events to registered handlers.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.wg.Add(1)
	go w.loop()
}

// Stop stops watching files. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.done)
	_ = w.fsw.Close()
	w.wg.Wait()
	w.deb.Cancel()
}

// IsRunning returns whether the watcher is active.
func (w *Watcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// WatchedFiles returns the list of watched files.
func (w *Watcher) WatchedFiles() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	files := make([]string, 0, len(w.files))
	for path := range w.files {
		files = append(files, path)
	}
	sort.Strings(files)
	return files
}

// loop consumes raw fsnotify events until Stop.
func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case fsEvent, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleFSEvent(fsEvent)

		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			// Errors from the kernel watch are not actionable here;
			// the next poll of the file will surface real problems.
		}
	}
}

// handleFSEvent filters a directory-level event down to watched files
// and queues it for debounced delivery.
func (w *Watcher) handleFSEvent(fsEvent fsnotify.Event) {
	path := filepath.Clean(fsEvent.Name)

	w.mu.RLock()
	watched := w.files[path]
	w.mu.RUnlock()
	if !watched {
		return
	}

	op, ok := convertOp(fsEvent.Op)
	if !ok {
		return
	}

	w.queueEvent(Event{Path: path, Op: op, Time: time.Now()})
}

// convertOp maps an fsnotify operation to a watcher operation.
// Chmod-only events are dropped.
func convertOp(fsOp fsnotify.Op) (Operation, bool) {
	switch {
	case fsOp.Has(fsnotify.Create):
		return OpCreate, true
	case fsOp.Has(fsnotify.Write):
		return OpWrite, true
	case fsOp.Has(fsnotify.Remove):
		return OpRemove, true
	case fsOp.Has(fsnotify.Rename):
		return OpRename, true
	default:
		return 0, false
	}
}

// queueEvent queues an event for debounced delivery, coalescing per
// path: a later create supersedes a pending remove (the file is back),
// a remove supersedes pending writes, and repeated writes keep the
// latest time.
func (w *Watcher) queueEvent(event Event) {
	w.pendingMu.Lock()

	existing, exists := w.pending[event.Path]
	switch {
	case !exists:
		w.pending[event.Path] = pendingEvent{Op: event.Op, Time: event.Time}
	case event.Op == OpRemove || event.Op == OpCreate:
		w.pending[event.Path] = pendingEvent{Op: event.Op, Time: event.Time}
	case event.Op == OpWrite && existing.Op == OpWrite:
		w.pending[event.Path] = pendingEvent{Op: OpWrite, Time: event.Time}
	default:
		// Keep the existing operation but refresh the time so the
		// debounce window extends.
		w.pending[event.Path] = pendingEvent{Op: existing.Op, Time: event.Time}
	}
	w.pendingMu.Unlock()

	w.deb.Call()
}

// flush delivers all coalesced events once the debounce window closes.
func (w *Watcher) flush() {
	w.pendingMu.Lock()
	events := make([]Event, 0, len(w.pending))
	for path, p := range w.pending {
		events = append(events, Event{Path: path, Op: p.Op, Time: p.Time})
		delete(w.pending, path)
	}
	w.pendingMu.Unlock()

	sort.Slice(events, func(i, j int) bool {
		if events[i].Time.Equal(events[j].Time) {
			return events[i].Path < events[j].Path
		}
		return events[i].Time.Before(events[j].Time)
	})

	w.mu.RLock()
	handlers := make([]Handler, len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.RUnlock()

	for _, event := range events {
		for _, handler := range handlers {
			w.safeCallHandler(handler, event)
		}
	}
}

// safeCallHandler calls a handler with panic recovery so one bad
// handler can't kill event delivery.
func (w *Watcher) safeCallHandler(handler Handler, event Event) {
	defer func() {
		_ = recover()
	}()
	handler(event)
}
