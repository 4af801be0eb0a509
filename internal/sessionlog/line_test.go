package sessionlog_test

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/gellab/graphlog/internal/sessionlog"
)

// TestDetailAlwaysQuoted verifies the fixed line shape: the detail field is
// double-quoted even when it contains no commas.
func TestDetailAlwaysQuoted(t *testing.T) {
	line := sessionlog.Line{
		Timestamp: time.Date(2025, 5, 20, 14, 30, 5, 0, time.Local),
		User:      "alice",
		Action:    "Slider Changed",
		Detail:    "Radius, 42.5",
	}
	got := line.CSV()
	want := `2025-05-20 14:30:05,alice,Slider Changed,"Radius, 42.5"`
	if got != want {
		t.Fatalf("CSV() = %q, want %q", got, want)
	}
}

// TestEmbeddedQuotesDoubled verifies quote escaping in the detail field.
func TestEmbeddedQuotesDoubled(t *testing.T) {
	line := sessionlog.Line{
		Timestamp: time.Date(2025, 5, 20, 14, 30, 5, 0, time.Local),
		User:      "alice",
		Action:    "Panel Changed",
		Detail:    `note, say "hi"`,
	}
	if got := line.CSV(); !strings.HasSuffix(got, `"note, say ""hi"""`) {
		t.Fatalf("CSV() = %q, want doubled quotes in detail", got)
	}
}

// Property: any line survives a round trip through a standard CSV reader.
func TestLineRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		sec := rapid.Int64Range(1_600_000_000, 1_800_000_000).Draw(rt, "unix_sec")
		line := sessionlog.Line{
			Timestamp: time.Unix(sec, 0),
			User:      rapid.StringMatching(`[a-zA-Z0-9_.-]{1,24}`).Draw(rt, "user"),
			Action:    rapid.SampledFrom([]string{"Slider Changed", "Object Added", "Wire Connected"}).Draw(rt, "action"),
			Detail:    rapid.StringMatching(`[ -~]{0,80}`).Draw(rt, "detail"),
		}

		r := csv.NewReader(strings.NewReader(line.CSV()))
		record, err := r.Read()
		if err != nil {
			rt.Fatalf("csv read of %q: %v", line.CSV(), err)
		}
		got, err := sessionlog.ParseRecord(record)
		if err != nil {
			rt.Fatalf("ParseRecord: %v", err)
		}

		if !got.Timestamp.Equal(line.Timestamp) {
			rt.Errorf("Timestamp mismatch: got %v, want %v", got.Timestamp, line.Timestamp)
		}
		if got.User != line.User || got.Action != line.Action || got.Detail != line.Detail {
			rt.Errorf("round trip mismatch: got %+v, want %+v", got, line)
		}
	})
}
