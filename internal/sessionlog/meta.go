package sessionlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gellab/graphlog/internal/graph"
)

// Meta is the structured snapshot of a session, rewritten in full on session
// start, document open, successful save, and session stop. Last write wins.
type Meta struct {
	SessionID      string   `json:"session_id"`
	User           string   `json:"user"`
	DocumentName   string   `json:"document_name"`
	SessionStart   string   `json:"session_start"`
	LastUpdated    string   `json:"last_updated"`
	Documents      []string `json:"documents"`
	ComponentCount int      `json:"component_count"`
	SliderCount    int      `json:"slider_count"`
	NoteCount      int      `json:"note_count"`
	GroupCount     int      `json:"group_count"`
	ScriptCount    int      `json:"script_count"`
}

// CountEntities fills the structural counts from a document's entity
// collection.
func (m *Meta) CountEntities(entities []graph.Entity) {
	m.ComponentCount = len(entities)
	m.SliderCount, m.NoteCount, m.GroupCount, m.ScriptCount = 0, 0, 0, 0
	for _, e := range entities {
		switch e.Kind {
		case graph.KindSlider, graph.KindMDSlider:
			m.SliderCount++
		case graph.KindNote:
			m.NoteCount++
		case graph.KindGroup:
			m.GroupCount++
		case graph.KindScript:
			m.ScriptCount++
		}
	}
}

// WriteMeta rewrites the metadata snapshot for m.DocumentName. The file is
// replaced atomically via a temp file and rename, so a concurrent reader
// never observes a partial snapshot.
func (l *Log) WriteMeta(m Meta) error {
	base := strings.TrimSuffix(m.DocumentName, filepath.Ext(m.DocumentName))
	if base == "" {
		base = "Untitled"
	}
	path := filepath.Join(l.Dir, fmt.Sprintf("%s_%s_Meta.json", l.user, base))

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session metadata: %w", err)
	}

	tmp, err := os.CreateTemp(l.Dir, "meta-*.json.tmp")
	if err != nil {
		return fmt.Errorf("writing session metadata: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing session metadata: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("writing session metadata: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("writing session metadata: %w", err)
	}

	l.metaMu.Lock()
	l.metaPaths[path] = struct{}{}
	l.metaMu.Unlock()
	return nil
}

// FormatMetaTime renders a metadata timestamp.
func FormatMetaTime(t time.Time) string { return t.Format(TimeLayout) }
