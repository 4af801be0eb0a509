package sessionlog

import (
	"fmt"
	"strings"
	"time"
)

// TimeLayout is the timestamp format used in log lines and metadata.
const TimeLayout = "2006-01-02 15:04:05"

// Header is the first line of every session log file.
const Header = "Timestamp,UserID,Action,Detail"

// Line is one formatted activity record.
type Line struct {
	Timestamp time.Time
	User      string
	Action    string
	Detail    string
}

// CSV renders the line in the log file format. The detail field is always
// double-quoted, with embedded quotes doubled, so commas inside details
// survive a round trip through any CSV reader.
func (l Line) CSV() string {
	return l.Timestamp.Format(TimeLayout) + "," + l.User + "," + l.Action + "," + quoteDetail(l.Detail)
}

func quoteDetail(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// ParseRecord converts one CSV record (as produced by encoding/csv reading a
// log file) back into a Line.
func ParseRecord(record []string) (Line, error) {
	if len(record) != 4 {
		return Line{}, fmt.Errorf("log record has %d fields, want 4", len(record))
	}
	ts, err := time.ParseInLocation(TimeLayout, record[0], time.Local)
	if err != nil {
		return Line{}, fmt.Errorf("parse log timestamp %q: %w", record[0], err)
	}
	return Line{Timestamp: ts, User: record[1], Action: record[2], Detail: record[3]}, nil
}
