// Package watcher reports changes to configuration files.
//
// The parent directory of every file is watched so that editors replacing a
// file by rename are still seen. Bursts of events are coalesced and
// delivered once the files have been quiet for the debounce interval.
package watcher

import (
	"errors"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet interval used when none is given.
const DefaultDebounce = 100 * time.Millisecond

// ErrClosed is returned by Watch after Close.
var ErrClosed = errors.New("watcher closed")

// Event is a change to a watched file.
type Event struct {
	Path string
	Op   Operation
	Time time.Time
}

// Operation is the kind of change.
type Operation int

const (
	OpWrite Operation = iota
	OpCreate
	OpRemove
	OpRename
)

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

// Handler receives the coalesced events of a burst, sorted by path.
type Handler func(events []Event)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet interval.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// Watcher watches configuration files.
type Watcher struct {
	fsw      *fsnotify.Watcher
	interval time.Duration
	logger   *slog.Logger
	debounce func(func())

	mu       sync.Mutex
	files    map[string]bool
	dirs     map[string]int
	handlers []Handler
	pending  map[string]Event
	closed   bool

	done chan struct{}
	wg   sync.WaitGroup
}

// New creates a watcher and starts its event loop.
func New(opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsw:      fsw,
		interval: DefaultDebounce,
		logger:   slog.Default(),
		files:    make(map[string]bool),
		dirs:     make(map[string]int),
		pending:  make(map[string]Event),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debounce = debounce.New(w.interval)

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Watch adds a file. The file does not need to exist yet.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if w.files[abs] {
		return nil
	}
	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return err
		}
	}
	w.dirs[dir]++
	w.files[abs] = true
	return nil
}

// Unwatch removes a file.
func (w *Watcher) Unwatch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.files[abs] {
		return nil
	}
	delete(w.files, abs)
	dir := filepath.Dir(abs)
	w.dirs[dir]--
	if w.dirs[dir] == 0 {
		delete(w.dirs, dir)
		if !w.closed {
			return w.fsw.Remove(dir)
		}
	}
	return nil
}

// Files returns the watched files, sorted.
func (w *Watcher) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.files))
	for f := range w.files {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// OnChange registers a handler.
func (w *Watcher) OnChange(h Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, h)
}

// Close stops the watcher. Pending events are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.done)
	w.mu.Unlock()

	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.queue(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)
		}
	}
}

func (w *Watcher) queue(ev fsnotify.Event) {
	op, ok := convertOp(ev.Op)
	if !ok {
		return
	}
	path := filepath.Clean(ev.Name)

	w.mu.Lock()
	if !w.files[path] || w.closed {
		w.mu.Unlock()
		return
	}
	w.pending[path] = coalesce(w.pending[path], Event{Path: path, Op: op, Time: time.Now()})
	w.mu.Unlock()

	w.debounce(w.flush)
}

// coalesce merges next into prev. A removal wins over anything, a creation
// survives later writes.
func coalesce(prev, next Event) Event {
	if prev.Path == "" {
		return next
	}
	switch {
	case next.Op == OpRemove || next.Op == OpRename:
	case prev.Op == OpCreate:
		next.Op = OpCreate
	case prev.Op == OpRemove || prev.Op == OpRename:
		// Removed and written again: the file was replaced.
		next.Op = OpCreate
	}
	return next
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if w.closed || len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	events := make([]Event, 0, len(w.pending))
	for _, ev := range w.pending {
		events = append(events, ev)
	}
	clear(w.pending)
	handlers := slices.Clone(w.handlers)
	w.mu.Unlock()

	slices.SortFunc(events, func(a, b Event) int {
		switch {
		case a.Path < b.Path:
			return -1
		case a.Path > b.Path:
			return 1
		}
		return 0
	})
	for _, h := range handlers {
		w.call(h, events)
	}
}

func (w *Watcher) call(h Handler, events []Event) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("config watcher handler panicked", "panic", r)
		}
	}()
	h(events)
}

func convertOp(op fsnotify.Op) (Operation, bool) {
	switch {
	case op.Has(fsnotify.Remove):
		return OpRemove, true
	case op.Has(fsnotify.Rename):
		return OpRename, true
	case op.Has(fsnotify.Create):
		return OpCreate, true
	case op.Has(fsnotify.Write):
		return OpWrite, true
	default:
		return 0, false
	}
}
