package graph

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"github.com/gowebpki/jcs"
)

// Epsilon is the minimum scalar difference that counts as a change.
const Epsilon = 1e-4

// Value is the kind-specific observed state of an entity. Exactly one of the
// fields is meaningful, selected by the owning entity's Kind.
type Value struct {
	Scalar    float64         `json:"scalar,omitempty"`
	Bool      bool            `json:"bool,omitempty"`
	Text      string          `json:"text,omitempty"`
	Composite json.RawMessage `json:"composite,omitempty"`
}

// ScalarValue wraps a float64.
func ScalarValue(f float64) Value { return Value{Scalar: f} }

// BoolValue wraps a bool.
func BoolValue(b bool) Value { return Value{Bool: b} }

// TextValue wraps a string.
func TextValue(s string) Value { return Value{Text: s} }

// CompositeValue wraps raw JSON describing a structured state (option list
// items, curve control points, multi-dimensional positions).
func CompositeValue(raw json.RawMessage) Value { return Value{Composite: raw} }

// Canonical returns the RFC 8785 canonical form of the composite payload, so
// that equality does not depend on incidental key order or whitespace. Inputs
// that are not valid JSON are returned unchanged; they still compare by byte
// equality.
func (v Value) Canonical() []byte {
	if len(v.Composite) == 0 {
		return nil
	}
	c, err := jcs.Transform(v.Composite)
	if err != nil {
		return v.Composite
	}
	return c
}

// Equal reports whether two values are meaningfully equal for the given kind.
// Scalars compare within Epsilon; composites compare by canonical bytes;
// everything else compares exactly.
func (v Value) Equal(o Value, k Kind) bool {
	switch {
	case k == KindSlider:
		return math.Abs(v.Scalar-o.Scalar) <= Epsilon
	case k == KindToggle:
		return v.Bool == o.Bool
	case k.IsComposite():
		return bytes.Equal(v.Canonical(), o.Canonical())
	default:
		return v.Text == o.Text
	}
}

// Display renders the value for a log detail field.
func (v Value) Display(k Kind) string {
	switch {
	case k == KindSlider:
		return strconv.FormatFloat(v.Scalar, 'g', -1, 64)
	case k == KindToggle:
		return strconv.FormatBool(v.Bool)
	case k.IsComposite():
		return string(v.Canonical())
	default:
		return v.Text
	}
}
