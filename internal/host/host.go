// Package host defines the notification boundary between the editor and the
// recorder. The editor-side bridge serializes one Notification per line
// (JSONL); the recorder consumes them through a Stream. The recorder never
// talks to the editor's object model directly.
package host

import (
	"time"

	"github.com/gellab/graphlog/internal/graph"
)

// EventType identifies a discrete lifecycle event.
type EventType string

const (
	DocumentAdded   EventType = "document_added"
	DocumentRemoved EventType = "document_removed"
	ContextChanged  EventType = "context_changed"
	ModifiedChanged EventType = "modified_changed"
	EntitiesAdded   EventType = "entities_added"
	EntitiesRemoved EventType = "entities_removed"
	EntityRenamed   EventType = "entity_renamed"
)

// CycleSnapshot carries the full observed document state after one
// recomputation cycle. The recorder runs one observe pass per snapshot; the
// effective coalescing latency is therefore bounded by recompute frequency,
// not by a wall-clock timer.
type CycleSnapshot struct {
	Document graph.Document `json:"document"`
}

// LifecycleEvent is a discrete document or entity lifecycle transition.
// Document is set for document-level events; Entities is set for entity
// add/remove batches and renames.
type LifecycleEvent struct {
	Type     EventType      `json:"type"`
	Document graph.Document `json:"document,omitempty"`
	Entities []graph.Entity `json:"entities,omitempty"`
	Context  string         `json:"context,omitempty"`
	Modified bool           `json:"modified,omitempty"`
}

// Notification is one element of the host stream: either a recomputation
// cycle snapshot or a lifecycle event, never both.
type Notification struct {
	Time      time.Time       `json:"time"`
	Cycle     *CycleSnapshot  `json:"cycle,omitempty"`
	Lifecycle *LifecycleEvent `json:"lifecycle,omitempty"`
}
