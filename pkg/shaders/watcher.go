package shaders

import (
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/justyntemme/vroutput/pkg/framework/debug"
)

// Watcher flags shader files in a directory as changed. It never touches
// GPU state: owners poll Changed from their render thread and rebuild there.
type Watcher struct {
	fsw     *fsnotify.Watcher
	mu      sync.Mutex
	subs    map[*Subscription]struct{}
	done    chan struct{}
	stopped sync.Once
	log     *debug.Logger
}

// Subscription tracks changes to a set of file names.
type Subscription struct {
	names map[string]bool
	dirty atomic.Bool
}

// NewWatcher starts watching dir.
func NewWatcher(dir string, log *debug.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create shader watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &Watcher{
		fsw:  fsw,
		subs: make(map[*Subscription]struct{}),
		done: make(chan struct{}),
		log:  log,
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.notify(filepath.Base(ev.Name))
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("shader watcher: %v", err)
		}
	}
}

func (w *Watcher) notify(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for s := range w.subs {
		if s.names[name] {
			w.log.Debug("shader %s changed", name)
			s.dirty.Store(true)
		}
	}
}

// Subscribe returns a subscription for changes to the named files.
func (w *Watcher) Subscribe(names ...string) *Subscription {
	s := &Subscription{names: make(map[string]bool, len(names))}
	for _, n := range names {
		s.names[n] = true
	}
	w.mu.Lock()
	w.subs[s] = struct{}{}
	w.mu.Unlock()
	return s
}

// Unsubscribe stops delivering changes to s.
func (w *Watcher) Unsubscribe(s *Subscription) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.subs, s)
}

// Close stops the watcher and waits for its goroutine.
func (w *Watcher) Close() error {
	var err error
	w.stopped.Do(func() {
		err = w.fsw.Close()
		<-w.done
	})
	return err
}

// Changed reports whether a watched file changed since the last call, and
// clears the flag. A nil subscription never changes.
func (s *Subscription) Changed() bool {
	if s == nil {
		return false
	}
	return s.dirty.Swap(false)
}
