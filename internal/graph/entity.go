// Package graph models the watched entities of an open parametric document:
// sliders, toggles, panels, value lists and wired parameters, each with a
// stable identity and a kind-specific observed value.
package graph

// EntityID is the stable, opaque identity of a watched entity. It survives
// recomputes of the same document instance but not a document reload.
type EntityID string

// Kind tags the signal class of an entity.
type Kind string

const (
	KindSlider      Kind = "slider"       // continuously-varying scalar
	KindToggle      Kind = "toggle"       // boolean
	KindPanel       Kind = "panel"        // free text
	KindValueList   Kind = "value_list"   // option list (composite)
	KindGraphMapper Kind = "graph_mapper" // curve-shaped input (composite)
	KindMDSlider    Kind = "md_slider"    // multi-dimensional input (composite)
	KindParam       Kind = "param"        // generic wired parameter
	KindComponent   Kind = "component"    // anything else in the graph
	KindNote        Kind = "note"
	KindGroup       Kind = "group"
	KindScript      Kind = "script"
)

// IsComposite reports whether values of this kind are compared by canonical
// serialized form rather than by scalar/boolean/text equality.
func (k Kind) IsComposite() bool {
	switch k {
	case KindValueList, KindGraphMapper, KindMDSlider:
		return true
	}
	return false
}

// Continuous reports whether the kind carries a continuously-varying scalar
// signal. Continuous signals are coalesced with the trailing quiet-window
// policy; everything else uses leading fixed-latency.
func (k Kind) Continuous() bool {
	return k == KindSlider
}

// Watched reports whether value changes of this kind are tracked at all.
func (k Kind) Watched() bool {
	switch k {
	case KindSlider, KindToggle, KindPanel, KindValueList, KindGraphMapper, KindMDSlider:
		return true
	}
	return false
}

// Entity is one watched node in the document graph.
type Entity struct {
	ID      EntityID   `json:"id"`
	Kind    Kind       `json:"kind"`
	Name    string     `json:"name"`
	Value   Value      `json:"value,omitempty"`
	Sources []EntityID `json:"sources,omitempty"` // upstream wiring, ordered
}

// Document is the observed state of the host's open document at one point in
// time: display name, file path (empty when never saved), the ordered entity
// collection and the currently disabled entity set.
type Document struct {
	Name     string     `json:"name"`
	Path     string     `json:"path,omitempty"`
	Entities []Entity   `json:"entities"`
	Disabled []EntityID `json:"disabled,omitempty"`
}

// EntityIDs returns the ordered identity sequence of the document's entities.
func (d *Document) EntityIDs() []EntityID {
	ids := make([]EntityID, len(d.Entities))
	for i, e := range d.Entities {
		ids[i] = e.ID
	}
	return ids
}

// Snapshot is an immutable identity snapshot of a document, used for
// save-as/rename equivalence checks. A new snapshot replaces the old one
// atomically; it is never mutated in place.
type Snapshot struct {
	Name      string
	EntityIDs []EntityID
}

// TakeSnapshot captures the document's name and ordered entity identities.
func TakeSnapshot(d *Document) Snapshot {
	return Snapshot{Name: d.Name, EntityIDs: d.EntityIDs()}
}

// SameEntities reports whether the snapshot's identity sequence is identical,
// element for element in order, to ids.
func (s Snapshot) SameEntities(ids []EntityID) bool {
	if len(s.EntityIDs) != len(ids) {
		return false
	}
	for i := range ids {
		if s.EntityIDs[i] != ids[i] {
			return false
		}
	}
	return true
}
