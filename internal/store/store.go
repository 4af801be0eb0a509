// Package store enumerates recorded sessions on disk and reads their logs
// back, for the listing and viewing commands.
package store

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gellab/graphlog/internal/sessionlog"
)

const logSuffix = "_GraphLog.csv"

// Summary describes one recorded session.
type Summary struct {
	ID         string    // session folder name (start timestamp)
	User       string
	Path       string    // session folder
	LogPath    string    // CSV file
	Start      time.Time
	End        time.Time
	EventCount int       // lines excluding the header
	Documents  []string  // document names from metadata snapshots
}

// ListResult contains session summaries and non-fatal warnings.
type ListResult struct {
	Summaries []Summary
	Warnings  []error
}

// ListSessions walks root and summarizes every session folder, newest first.
// Unreadable or malformed sessions become warnings, not failures.
func ListSessions(root string) (ListResult, error) {
	if root == "" {
		return ListResult{}, errors.New("log root is required")
	}

	var result ListResult
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			result.Warnings = append(result.Warnings, fmt.Errorf("walk %s: %w", path, walkErr))
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), logSuffix) {
			return nil
		}

		s, err := summarize(path)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Errorf("summarize %s: %w", path, err))
			return nil
		}
		result.Summaries = append(result.Summaries, s)
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("listing sessions under %s: %w", root, err)
	}

	sort.Slice(result.Summaries, func(i, j int) bool {
		return result.Summaries[i].Start.After(result.Summaries[j].Start)
	})
	return result, nil
}

func summarize(logPath string) (Summary, error) {
	dir := filepath.Dir(logPath)
	s := Summary{
		ID:      filepath.Base(dir),
		User:    strings.TrimSuffix(filepath.Base(logPath), logSuffix),
		Path:    dir,
		LogPath: logPath,
	}

	lines, err := ReadEvents(logPath)
	if err != nil {
		return Summary{}, err
	}
	s.EventCount = len(lines)
	if len(lines) > 0 {
		s.Start = lines[0].Timestamp
		s.End = lines[len(lines)-1].Timestamp
	}

	s.Documents = documentNames(dir)
	return s, nil
}

// documentNames collects document names from the session's metadata
// snapshots. Best-effort: unreadable metadata is simply skipped.
func documentNames(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	seen := make(map[string]struct{})
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), "_Meta.json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		var m sessionlog.Meta
		if err := json.Unmarshal(data, &m); err != nil {
			continue
		}
		for _, d := range append(m.Documents, m.DocumentName) {
			if d == "" {
				continue
			}
			if _, ok := seen[d]; !ok {
				seen[d] = struct{}{}
				names = append(names, d)
			}
		}
	}
	return names
}

// ReadEvents parses a session log back into ordered lines. The header is
// validated and skipped.
func ReadEvents(logPath string) ([]sessionlog.Line, error) {
	f, err := os.Open(logPath)
	if err != nil {
		return nil, fmt.Errorf("opening session log: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 4

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing session log: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("session log is empty")
	}
	if strings.Join(records[0], ",") != sessionlog.Header {
		return nil, fmt.Errorf("unexpected session log header %q", strings.Join(records[0], ","))
	}

	lines := make([]sessionlog.Line, 0, len(records)-1)
	for _, rec := range records[1:] {
		line, err := sessionlog.ParseRecord(rec)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// FindLog locates the session log inside a session folder.
func FindLog(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading session folder: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), logSuffix) {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", fmt.Errorf("no session log found in %s", dir)
}
