// Package identity decides what a newly-surfaced document actually is: a
// rename or save-as of the one we were already tracking, or a genuinely new
// document. Identity is structural — the ordered entity-id sequence — because
// a save-as changes both the file path and the document's own id while
// preserving graph content exactly.
package identity

import (
	"strings"

	"github.com/gellab/graphlog/internal/graph"
)

// Transition classifies a document-added event.
type Transition int

const (
	// Renamed means the incoming document is the same content under a new
	// name (rename or save-as); tracking carries over.
	Renamed Transition = iota
	// Opened means a new document with existing entities surfaced.
	Opened
	// Created means a new, empty document surfaced.
	Created
)

// Resolver tracks the previous document snapshot and the one-shot deletion
// suppression flag. It is owned by the recorder and driven from its single
// producer context.
type Resolver struct {
	prev        *graph.Snapshot
	suppressDel bool
}

// New returns a Resolver with no tracked document.
func New() *Resolver { return &Resolver{} }

// Resolve classifies the incoming document against the tracked snapshot and
// replaces the snapshot with the incoming one.
//
// Equivalence is deliberately best-effort: a coincidental new document whose
// entity-id sequence collides with the previous one is classified as a
// rename. Feeding the same name twice is never equivalent — name equality
// short-circuits — so a reopen of the same file reads as a fresh open.
func (r *Resolver) Resolve(doc *graph.Document) Transition {
	incoming := graph.TakeSnapshot(doc)
	prev := r.prev
	r.prev = &incoming

	if prev != nil && equivalent(*prev, incoming) {
		return Renamed
	}
	if len(doc.Entities) > 0 {
		return Opened
	}
	return Created
}

// equivalent reports whether next is the same underlying content as prev
// under a different name.
func equivalent(prev, next graph.Snapshot) bool {
	if strings.TrimSpace(prev.Name) == "" || strings.TrimSpace(next.Name) == "" {
		return false
	}
	if prev.Name == next.Name {
		return false
	}
	return prev.SameEntities(next.EntityIDs)
}

// MarkClosing arms the one-shot suppression flag. The entity deletions fired
// as an artifact of an internal document close are not user deletes and must
// not be logged.
func (r *Resolver) MarkClosing() { r.suppressDel = true }

// SuppressDeletions consumes the flag: it returns true for exactly the first
// deletion batch after MarkClosing, then clears.
func (r *Resolver) SuppressDeletions() bool {
	if r.suppressDel {
		r.suppressDel = false
		return true
	}
	return false
}

// Tracking returns the currently tracked snapshot, or nil before the first
// document.
func (r *Resolver) Tracking() *graph.Snapshot { return r.prev }
