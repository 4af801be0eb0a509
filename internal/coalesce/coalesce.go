// Package coalesce turns high-frequency raw value observations into a
// low-frequency stream of committed changes.
//
// Two policies are in force, fixed per signal class:
//
//   - Continuous scalar signals use a trailing quiet window: a burst of
//     changes commits once, DelayWindow after the last change in the burst.
//   - Discrete signals (toggles, text, option lists, composites) use leading
//     fixed latency: the window is measured from the first change, and the
//     value observed when the window elapses is the one committed.
//
// Observation is externally driven, once per document recomputation cycle, so
// effective latency is bounded by recompute frequency rather than wall-clock
// timer precision.
package coalesce

import (
	"time"

	"github.com/gellab/graphlog/internal/graph"
)

// DelayWindow is the default quiet/latency window.
const DelayWindow = 100 * time.Millisecond

// Signal distinguishes tracked signals of one entity. Only the value signal
// is coalesced today; wiring and enable state are immediate set-diffs owned
// by the recorder.
type Signal string

// SignalValue is the entity's primary observed value.
const SignalValue Signal = "value"

type key struct {
	id     graph.EntityID
	signal Signal
}

// state is the per-entity, per-signal coalescing record. pending is set only
// while the observed value differs from the committed one; commit clears it.
type state struct {
	kind          graph.Kind
	lastObserved  graph.Value
	observed      bool
	lastCommitted graph.Value
	committed     bool
	pendingSince  time.Time
	pending       bool
}

// Coalescer owns the coalescing table for all watched entities of the
// current document. It is not safe for concurrent use; the recorder drives
// it from a single producer context.
type Coalescer struct {
	window time.Duration
	states map[key]*state
}

// New returns a Coalescer with the given window. A non-positive window falls
// back to DelayWindow.
func New(window time.Duration) *Coalescer {
	if window <= 0 {
		window = DelayWindow
	}
	return &Coalescer{window: window, states: make(map[key]*state)}
}

// Observe feeds one observation of an entity's value at time now. It returns
// true when the change commits on this observation; the committed value is
// the one passed in.
func (c *Coalescer) Observe(id graph.EntityID, signal Signal, kind graph.Kind, value graph.Value, now time.Time) bool {
	k := key{id, signal}
	s, ok := c.states[k]
	if !ok {
		s = &state{kind: kind}
		c.states[k] = s
	}

	if kind.Continuous() {
		return c.observeTrailing(s, value, now)
	}
	return c.observeLeading(s, value, now)
}

// observeTrailing implements the trailing quiet-window policy: every change
// resets the window; the commit fires once the value has been quiet for a
// full window and still differs from the committed one.
func (c *Coalescer) observeTrailing(s *state, value graph.Value, now time.Time) bool {
	if !s.observed || !value.Equal(s.lastObserved, s.kind) {
		s.lastObserved = value
		s.observed = true
		s.pendingSince = now
		s.pending = true
	}

	if s.pending &&
		now.Sub(s.pendingSince) >= c.window &&
		(!s.committed || !value.Equal(s.lastCommitted, s.kind)) {
		s.lastCommitted = value
		s.committed = true
		s.pending = false
		return true
	}
	return false
}

// observeLeading implements the leading fixed-latency policy: the window is
// anchored at the first observation that differs from the committed value. A
// value that reverts to the committed state before the window elapses ends
// the run without a commit.
func (c *Coalescer) observeLeading(s *state, value graph.Value, now time.Time) bool {
	s.lastObserved = value
	s.observed = true

	if s.committed && value.Equal(s.lastCommitted, s.kind) {
		s.pending = false
		return false
	}

	if !s.pending {
		s.pendingSince = now
		s.pending = true
		return false
	}

	if now.Sub(s.pendingSince) >= c.window {
		s.lastCommitted = value
		s.committed = true
		s.pending = false
		return true
	}
	return false
}

// Drop removes all coalescing state for an entity, across signals. Called
// when the entity leaves the document.
func (c *Coalescer) Drop(id graph.EntityID) {
	for k := range c.states {
		if k.id == id {
			delete(c.states, k)
		}
	}
}

// Reset discards the whole table. Called when the tracked document is closed
// or replaced.
func (c *Coalescer) Reset() {
	c.states = make(map[key]*state)
}
