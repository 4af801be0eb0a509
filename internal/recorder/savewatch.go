package recorder

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// saveWatcher notices document saves between recomputation cycles by
// watching the directory containing the document file. Detection still goes
// through detectSaved, so a save observed by both the watcher and the next
// cycle logs once.
type saveWatcher struct {
	w    *fsnotify.Watcher
	done chan struct{}
}

// restartSaveWatcher replaces any running watcher with one for the directory
// of path. A failure to start is non-fatal; save detection falls back to the
// per-cycle mtime comparison. Requires r.mu held.
func (r *Recorder) restartSaveWatcher(path string) {
	if r.watcher != nil {
		r.watcher.close()
		r.watcher = nil
	}
	if path == "" {
		return
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		r.warn("save watcher unavailable: " + err.Error())
		return
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		r.warn("save watcher unavailable: " + err.Error())
		w.Close()
		return
	}

	sw := &saveWatcher{w: w, done: make(chan struct{})}
	r.watcher = sw
	go r.runSaveWatcher(sw)
}

func (r *Recorder) runSaveWatcher(sw *saveWatcher) {
	for {
		select {
		case <-sw.done:
			return

		case event, ok := <-sw.w.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			r.mu.Lock()
			if r.state != stateStopped && event.Name == r.lastKnownPath {
				r.detectSaved(event.Name, time.Now())
			}
			r.mu.Unlock()

		case _, ok := <-sw.w.Errors:
			if !ok {
				return
			}
			// Watcher errors are non-fatal; keep watching.
		}
	}
}

func (sw *saveWatcher) close() {
	close(sw.done)
	sw.w.Close()
}
