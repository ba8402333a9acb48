// Package trigger implements the external signal a node polls to decide
// whether to self-initiate a Chandy-Lamport snapshot: the presence of a
// well-known file.
package trigger

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// MarkerFileName is the well-known signal file name.
const MarkerFileName = "MARKER"

// Watcher observes dir for the creation of MarkerFileName. Fired()
// returns true at most once per file appearance, and deletes the file
// on the same call that reports it: check, then remove, one-shot per
// edge. An fsnotify watch is
// kept on dir, but Fired() decides by a direct os.Stat on every call and
// only drains the watch's pending event, so the file is detected whether
// or not an fsnotify event was delivered for it.
type Watcher struct {
	dir  string
	path string

	fsw    *fsnotify.Watcher
	events chan string
}

// New creates a Watcher for the MARKER file inside dir. The fsnotify
// watch is best-effort: if it cannot be established (e.g. the platform
// has no inotify support), New still returns a working Watcher that
// falls back to the Stat-based check alone.
func New(dir string) *Watcher {
	w := &Watcher{
		dir:    dir,
		path:   filepath.Join(dir, MarkerFileName),
		events: make(chan string, 1),
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warnf("fsnotify unavailable, falling back to Stat-only polling: %v", err)
		return w
	}
	if err := fsw.Add(dir); err != nil {
		log.Warnf("cannot watch %s, falling back to Stat-only polling: %v", dir, err)
		fsw.Close()
		return w
	}
	w.fsw = fsw
	go w.pump()
	return w
}

func (w *Watcher) pump() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Name == w.path && (ev.Op&(fsnotify.Create|fsnotify.Write) != 0) {
				select {
				case w.events <- ev.Name:
				default:
				}
			}
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

// Fired reports whether the MARKER file is present, consuming it
// (removing it from disk) if so. It is safe to call once per node-loop
// iteration.
func (w *Watcher) Fired() bool {
	select {
	case <-w.events:
	default:
	}

	if _, err := os.Stat(w.path); err != nil {
		return false
	}

	// Best-effort atomic consumption: if Remove races with another
	// observer and loses, this call simply reports "not fired" since
	// the signal is no longer present.
	if err := os.Remove(w.path); err != nil {
		return false
	}
	log.Debugf("consumed trigger file %s", w.path)
	return true
}

// Close stops the underlying fsnotify watch, if any.
func (w *Watcher) Close() error {
	if w.fsw == nil {
		return nil
	}
	return w.fsw.Close()
}
