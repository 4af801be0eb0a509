// Package recorder orchestrates one recording session. The host collaborator
// attaches by delivering notifications — one observe pass per recomputation
// cycle plus discrete lifecycle events — and the recorder routes them through
// document-identity resolution, change coalescing and classification into the
// session log. The recorder never reaches into the editor's object model.
package recorder

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gellab/graphlog/internal/classify"
	"github.com/gellab/graphlog/internal/coalesce"
	"github.com/gellab/graphlog/internal/config"
	"github.com/gellab/graphlog/internal/graph"
	"github.com/gellab/graphlog/internal/host"
	"github.com/gellab/graphlog/internal/identity"
	"github.com/gellab/graphlog/internal/sessionlog"
)

// sessionState is the recorder lifecycle: Uninitialized → Active → Stopped.
type sessionState int

const (
	stateUninitialized sessionState = iota
	stateActive
	stateStopped
)

// saveDetectBuffer absorbs editors that touch the file twice on one save.
const saveDetectBuffer = time.Second

// Options configures a Recorder.
type Options struct {
	Root        string         // log root; the session folder is created under Root/User/
	User        string         // user identity stamped on every line
	Window      *config.Window // optional activation window; nil records everything
	Sink        sessionlog.Sink
	DelayWindow time.Duration // change-coalescing window, default coalesce.DelayWindow
	Park        time.Duration // log writer idle park
	Sleep       func(time.Duration)
	WatchSaves  bool // watch the document file for saves via fsnotify
}

// Recorder is the session orchestrator. All host entry points are safe to
// call from the host's notification context; the recorder itself adds exactly
// one background consumer (the log writer) plus, optionally, the save
// watcher.
type Recorder struct {
	opts Options

	mu       sync.Mutex
	state    sessionState
	log      *sessionlog.Log
	coal     *coalesce.Coalescer
	resolver *identity.Resolver

	lastSources    map[graph.EntityID][]graph.EntityID
	disabledBefore map[graph.EntityID]struct{}
	lastEntities   []graph.Entity

	sessionID     string
	docName       string
	documents     []string
	sessionStart  time.Time
	lastKnownPath string
	lastWriteTime time.Time

	watcher  *saveWatcher
	warnings []string
}

// New returns a Recorder in the Uninitialized state. The session folder and
// log file are created on the first logged event or an explicit Start.
func New(opts Options) *Recorder {
	return &Recorder{
		opts:           opts,
		coal:           coalesce.New(opts.DelayWindow),
		resolver:       identity.New(),
		lastSources:    make(map[graph.EntityID][]graph.EntityID),
		disabledBefore: make(map[graph.EntityID]struct{}),
	}
}

// HandleNotification dispatches one host notification. Suitable as the
// callback for host.Decode.
func (r *Recorder) HandleNotification(n host.Notification) error {
	switch {
	case n.Cycle != nil:
		r.ObserveCycle(*n.Cycle, n.Time)
	case n.Lifecycle != nil:
		r.OnLifecycle(*n.Lifecycle, n.Time)
	}
	return nil
}

// Start forces the Uninitialized → Active transition. Idempotent; a stopped
// recorder stays stopped.
func (r *Recorder) Start(now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ensureSession(now)
}

// Stop logs the session end, flushes the final metadata snapshot, drains the
// log writer, and removes the session artifacts if nothing was recorded.
// Stopped is terminal.
func (r *Recorder) Stop(now time.Time) error {
	r.mu.Lock()
	if r.state == stateStopped {
		r.mu.Unlock()
		return nil
	}
	if r.state == stateActive {
		r.emit(classify.Event{Time: now, Action: classify.ActionSessionEnd,
			Detail: "User: " + r.opts.User})
		r.writeMeta(now)
	}
	r.state = stateStopped
	log := r.log
	if r.watcher != nil {
		r.watcher.close()
		r.watcher = nil
	}
	r.mu.Unlock()

	if log == nil {
		return nil
	}
	if err := log.Close(); err != nil {
		return err
	}
	return log.CleanupIfEmpty()
}

// OnLifecycle handles a discrete document or entity lifecycle event.
func (r *Recorder) OnLifecycle(ev host.LifecycleEvent, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == stateStopped {
		return
	}

	switch ev.Type {
	case host.DocumentAdded:
		r.onDocumentAdded(ev.Document, now)

	case host.DocumentRemoved:
		// Deletions fired by the internal close are not user deletes.
		r.resolver.MarkClosing()
		r.lastEntities = ev.Document.Entities
		r.writeMeta(now)

	case host.ContextChanged:
		r.emit(classify.Event{Time: now, Action: classify.ActionContextChanged,
			Detail: "Context: " + ev.Context})

	case host.ModifiedChanged:
		r.emit(classify.Event{Time: now, Action: classify.ActionModifiedChanged,
			Detail: fmt.Sprintf("Modified: %t", ev.Modified)})

	case host.EntitiesAdded:
		for _, e := range ev.Entities {
			r.emit(classify.EntityAdded(now, e))
		}

	case host.EntitiesRemoved:
		if r.resolver.SuppressDeletions() {
			return
		}
		for _, e := range ev.Entities {
			r.emit(classify.EntityDeleted(now, e))
			r.coal.Drop(e.ID)
			delete(r.lastSources, e.ID)
			delete(r.disabledBefore, e.ID)
		}

	case host.EntityRenamed:
		for _, e := range ev.Entities {
			r.emit(classify.EntityRenamed(now, e))
		}
	}
}

// onDocumentAdded classifies the incoming document and resets or carries over
// tracking accordingly.
func (r *Recorder) onDocumentAdded(doc graph.Document, now time.Time) {
	switch r.resolver.Resolve(&doc) {
	case identity.Renamed:
		// Same content under a new name; per-entity state carries over.
		r.emit(classify.Event{Time: now, Action: classify.ActionDocumentRenamed, Detail: doc.Name})

	case identity.Opened:
		r.resetTracking()
		r.emit(classify.Event{Time: now, Action: classify.ActionDocumentOpened, Detail: doc.Name})
		r.lastEntities = doc.Entities
		r.writeMeta(now)

	case identity.Created:
		r.resetTracking()
		r.emit(classify.Event{Time: now, Action: classify.ActionDocumentCreated, Detail: doc.Name})
		r.lastEntities = doc.Entities
		r.writeMeta(now)
	}

	r.docName = doc.Name
	r.touchDocument(doc.Name)
	r.baselineSavePath(doc.Path)
}

// ObserveCycle runs one observe pass over the document state after a
// recomputation cycle: coalesced value signals, immediate wiring diffs,
// immediate enable-state diffs, then save detection.
func (r *Recorder) ObserveCycle(cy host.CycleSnapshot, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == stateStopped {
		return
	}

	doc := cy.Document
	for _, e := range doc.Entities {
		if e.Kind.Watched() {
			if r.coal.Observe(e.ID, coalesce.SignalValue, e.Kind, e.Value, now) {
				r.emit(classify.ValueChanged(now, e))
			}
		}
		r.diffSources(e, now)
	}
	r.diffDisabled(doc.Disabled, now)
	r.lastEntities = doc.Entities
	r.docName = doc.Name
	r.detectSaved(doc.Path, now)
}

// diffSources logs wiring changes immediately. Topology changes are discrete,
// user-deliberate events; no debounce. The first sighting of an entity only
// records the baseline.
func (r *Recorder) diffSources(e graph.Entity, now time.Time) {
	current := append([]graph.EntityID(nil), e.Sources...)
	prev, seen := r.lastSources[e.ID]
	r.lastSources[e.ID] = current
	if !seen {
		return
	}

	for _, src := range current {
		if !containsID(prev, src) {
			r.emit(classify.WireConnected(now, src, e.ID))
		}
	}
	for _, src := range prev {
		if !containsID(current, src) {
			r.emit(classify.WireDisconnected(now, src, e.ID))
		}
	}
}

// diffDisabled logs enable-state transitions as a set difference against the
// previous cycle. Immediate; no debounce.
func (r *Recorder) diffDisabled(disabled []graph.EntityID, now time.Time) {
	current := make(map[graph.EntityID]struct{}, len(disabled))
	for _, id := range disabled {
		current[id] = struct{}{}
	}
	for id := range current {
		if _, ok := r.disabledBefore[id]; !ok {
			r.emit(classify.Disabled(now, id))
		}
	}
	for id := range r.disabledBefore {
		if _, ok := current[id]; !ok {
			r.emit(classify.Enabled(now, id))
		}
	}
	r.disabledBefore = current
}

// emit routes one classified event into the session log, creating the session
// on first use. Events outside the activation window are dropped here, after
// classification and coalescing have run.
func (r *Recorder) emit(ev classify.Event) {
	if r.state == stateStopped {
		return
	}
	if err := r.ensureSession(ev.Time); err != nil {
		r.warn(err.Error())
		return
	}
	if !r.opts.Window.Contains(ev.Time) {
		return
	}
	r.log.Record(ev.Time, ev.Action, ev.Detail)
}

// ensureSession performs the Uninitialized → Active transition: create the
// session folder and log file, write the header and the session start line.
// Idempotent.
func (r *Recorder) ensureSession(now time.Time) error {
	switch r.state {
	case stateActive:
		return nil
	case stateStopped:
		return fmt.Errorf("recorder is stopped")
	}

	stamp := now.Format("20060102_150405")
	dir := filepath.Join(r.opts.Root, r.opts.User, stamp)
	log, err := sessionlog.Open(dir, r.opts.User, sessionlog.Options{
		Sink:  r.opts.Sink,
		Park:  r.opts.Park,
		Sleep: r.opts.Sleep,
	})
	if err != nil {
		return fmt.Errorf("starting session: %w", err)
	}
	r.log = log
	r.state = stateActive
	r.sessionID = uuid.New().String()
	r.sessionStart = now
	if r.opts.Window.Contains(now) {
		r.log.Record(now, classify.ActionSessionStart, "User: "+r.opts.User)
	}
	r.writeMeta(now)
	return nil
}

// writeMeta rewrites the structured metadata snapshot. Requires an active
// session; silently skipped otherwise.
func (r *Recorder) writeMeta(now time.Time) {
	if r.log == nil {
		return
	}
	name := r.docName
	if name == "" {
		name = "Untitled"
	}
	m := sessionlog.Meta{
		SessionID:    r.sessionID,
		User:         r.opts.User,
		DocumentName: name,
		SessionStart: sessionlog.FormatMetaTime(r.sessionStart),
		LastUpdated:  sessionlog.FormatMetaTime(now),
		Documents:    append([]string(nil), r.documents...),
	}
	m.CountEntities(r.lastEntities)
	if err := r.log.WriteMeta(m); err != nil {
		r.warn(err.Error())
	}
}

// resetTracking drops all per-entity state. The old document's entities are
// gone; a replacement owns a fresh arena.
func (r *Recorder) resetTracking() {
	r.coal.Reset()
	r.lastSources = make(map[graph.EntityID][]graph.EntityID)
	r.disabledBefore = make(map[graph.EntityID]struct{})
}

func (r *Recorder) touchDocument(name string) {
	for _, d := range r.documents {
		if d == name {
			return
		}
	}
	r.documents = append(r.documents, name)
}

// baselineSavePath records the document's current path and mtime so the next
// delta reads as a save, not as the initial state.
func (r *Recorder) baselineSavePath(path string) {
	r.lastKnownPath = path
	r.lastWriteTime = time.Time{}
	if path != "" {
		if info, err := os.Stat(path); err == nil {
			r.lastWriteTime = info.ModTime()
		}
	}
	if r.opts.WatchSaves {
		r.restartSaveWatcher(path)
	}
}

// detectSaved compares the document file's path and mtime against the last
// known state: a path change is a save-as, a newer mtime on the same path is
// a plain save. Requires r.mu held.
func (r *Recorder) detectSaved(path string, now time.Time) {
	if path == "" {
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		return
	}

	if r.lastKnownPath == "" {
		r.lastKnownPath = path
		r.lastWriteTime = info.ModTime()
		return
	}
	if path != r.lastKnownPath {
		r.emit(classify.Event{Time: now, Action: classify.ActionDocumentSavedAs,
			Detail: filepath.Base(path)})
		r.lastKnownPath = path
		r.lastWriteTime = info.ModTime()
		r.writeMeta(now)
		return
	}
	if info.ModTime().After(r.lastWriteTime.Add(saveDetectBuffer)) {
		r.emit(classify.Event{Time: now, Action: classify.ActionDocumentSaved,
			Detail: filepath.Base(path)})
		r.lastWriteTime = info.ModTime()
		r.writeMeta(now)
	}
}

func (r *Recorder) warn(msg string) {
	r.warnings = append(r.warnings, msg)
}

// Warnings returns non-fatal issues from the recorder and the log writer.
func (r *Recorder) Warnings() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]string(nil), r.warnings...)
	if r.log != nil {
		out = append(out, r.log.Warnings()...)
	}
	return out
}

// SessionDir returns the active session folder, or "" before initialization.
func (r *Recorder) SessionDir() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.log == nil {
		return ""
	}
	return r.log.Dir
}

func containsID(ids []graph.EntityID, id graph.EntityID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
