// Package classify maps observed mutations to semantic action labels and
// human-readable detail strings. It is stateless; coalescing and ordering are
// the caller's concern.
package classify

import (
	"fmt"
	"time"

	"github.com/gellab/graphlog/internal/graph"
)

// Action labels. These are the vocabulary of the activity log and are kept
// stable so existing analytics keep working across recorder versions.
const (
	ActionSessionStart      = "SessionStart"
	ActionSessionEnd        = "SessionEnd"
	ActionDocumentCreated   = "DocumentCreated"
	ActionDocumentOpened    = "DocumentOpened"
	ActionDocumentRenamed   = "DocumentRenamed"
	ActionDocumentSaved     = "DocumentSaved"
	ActionDocumentSavedAs   = "DocumentSavedAs"
	ActionContextChanged    = "ContextChanged"
	ActionModifiedChanged   = "ModifiedChanged"
	ActionObjectAdded       = "ObjectAdded"
	ActionObjectDeleted     = "ObjectDeleted"
	ActionObjectChanged     = "ObjectChanged"
	ActionSliderChanged     = "SliderChanged"
	ActionToggleChanged     = "ToggleChanged"
	ActionPanelChanged      = "PanelChanged"
	ActionValueListChanged  = "ValueListChanged"
	ActionGraphMapperChange = "GraphMapperChanged"
	ActionMDSliderChanged   = "MDSliderChanged"
	ActionWireConnected     = "WireConnected"
	ActionWireDisconnected  = "WireDisconnected"
	ActionEnabled           = "ComponentEnabled"
	ActionDisabled          = "ComponentDisabled"
)

// Event is one immutable classified activity record.
type Event struct {
	Time   time.Time
	Action string
	Detail string
}

// ValueChanged classifies a committed value change on a watched entity.
func ValueChanged(t time.Time, e graph.Entity) Event {
	switch e.Kind {
	case graph.KindSlider:
		return Event{t, ActionSliderChanged, fmt.Sprintf("%s, %s", e.Name, e.Value.Display(e.Kind))}
	case graph.KindToggle:
		return Event{t, ActionToggleChanged, fmt.Sprintf("%s, %s", e.Name, e.Value.Display(e.Kind))}
	case graph.KindPanel:
		return Event{t, ActionPanelChanged, fmt.Sprintf("%s, %s", e.Name, e.Value.Text)}
	case graph.KindValueList:
		return Event{t, ActionValueListChanged, fmt.Sprintf("%s, Items: %s", e.Name, e.Value.Display(e.Kind))}
	case graph.KindGraphMapper:
		return Event{t, ActionGraphMapperChange, e.Name}
	case graph.KindMDSlider:
		return Event{t, ActionMDSliderChanged, e.Name}
	default:
		return Event{t, ActionObjectChanged, fmt.Sprintf("%s, %s", e.Name, e.Kind)}
	}
}

// WireConnected classifies a new upstream source on a parameter.
func WireConnected(t time.Time, src, dst graph.EntityID) Event {
	return Event{t, ActionWireConnected, fmt.Sprintf("%s -> %s", src, dst)}
}

// WireDisconnected classifies a removed upstream source.
func WireDisconnected(t time.Time, src, dst graph.EntityID) Event {
	return Event{t, ActionWireDisconnected, fmt.Sprintf("%s -/-> %s", src, dst)}
}

// EntityAdded classifies an entity appearing in the document.
func EntityAdded(t time.Time, e graph.Entity) Event {
	return Event{t, ActionObjectAdded, fmt.Sprintf("%s, %s", e.Kind, e.Name)}
}

// EntityDeleted classifies a user-initiated entity removal.
func EntityDeleted(t time.Time, e graph.Entity) Event {
	return Event{t, ActionObjectDeleted, fmt.Sprintf("%s, %s", e.Kind, e.Name)}
}

// EntityRenamed is reported through the generic object-changed label so the
// action vocabulary stays closed.
func EntityRenamed(t time.Time, e graph.Entity) Event {
	return Event{t, ActionObjectChanged, fmt.Sprintf("%s, %s", e.Name, e.Kind)}
}

// Enabled classifies an entity leaving the disabled set.
func Enabled(t time.Time, id graph.EntityID) Event {
	return Event{t, ActionEnabled, string(id)}
}

// Disabled classifies an entity entering the disabled set.
func Disabled(t time.Time, id graph.EntityID) Event {
	return Event{t, ActionDisabled, string(id)}
}
