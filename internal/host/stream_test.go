package host_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gellab/graphlog/internal/host"
)

// TestDecodeStreamOrder verifies that notifications are delivered in stream
// order and blank lines are skipped.
func TestDecodeStreamOrder(t *testing.T) {
	input := `
{"time":"2025-05-20T10:00:00Z","lifecycle":{"type":"document_added","document":{"name":"Foo.gh","entities":[]}}}

{"time":"2025-05-20T10:00:01Z","cycle":{"document":{"name":"Foo.gh","entities":[{"id":"a","kind":"slider","name":"Radius"}]}}}
{"time":"2025-05-20T10:00:02Z","lifecycle":{"type":"context_changed","context":"Foo.gh"}}
`

	var got []host.Notification
	err := host.Decode(strings.NewReader(input), func(n host.Notification) error {
		got = append(got, n)
		return nil
	})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("decoded %d notifications, want 3", len(got))
	}

	if got[0].Lifecycle == nil || got[0].Lifecycle.Type != host.DocumentAdded {
		t.Errorf("first notification = %+v, want document_added lifecycle", got[0])
	}
	if got[1].Cycle == nil || len(got[1].Cycle.Document.Entities) != 1 {
		t.Errorf("second notification = %+v, want cycle with one entity", got[1])
	}
	if got[2].Lifecycle == nil || got[2].Lifecycle.Context != "Foo.gh" {
		t.Errorf("third notification = %+v, want context_changed", got[2])
	}

	want := time.Date(2025, 5, 20, 10, 0, 1, 0, time.UTC)
	if !got[1].Time.Equal(want) {
		t.Errorf("second notification time = %v, want %v", got[1].Time, want)
	}
}

// TestDecodeMalformedLineNamesLineNumber verifies the error reports which line
// failed.
func TestDecodeMalformedLineNamesLineNumber(t *testing.T) {
	input := `{"time":"2025-05-20T10:00:00Z","lifecycle":{"type":"document_added"}}
{not json}
`
	err := host.Decode(strings.NewReader(input), func(host.Notification) error { return nil })
	if err == nil {
		t.Fatal("expected a decode error, got nil")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error = %q, want it to name line 2", err)
	}
}

// TestDecodeRejectsEmptyNotification verifies that a record carrying neither a
// cycle nor a lifecycle event is rejected.
func TestDecodeRejectsEmptyNotification(t *testing.T) {
	err := host.Decode(strings.NewReader(`{"time":"2025-05-20T10:00:00Z"}`), func(host.Notification) error { return nil })
	if err == nil || !strings.Contains(err.Error(), "neither cycle nor lifecycle") {
		t.Fatalf("err = %v, want neither-cycle-nor-lifecycle error", err)
	}
}

// TestDecodeStopsOnCallbackError verifies that fn aborting stops the stream.
func TestDecodeStopsOnCallbackError(t *testing.T) {
	input := `{"time":"2025-05-20T10:00:00Z","lifecycle":{"type":"document_added"}}
{"time":"2025-05-20T10:00:01Z","lifecycle":{"type":"context_changed","context":"x"}}
`
	calls := 0
	err := host.Decode(strings.NewReader(input), func(host.Notification) error {
		calls++
		return errTest
	})
	if err != errTest {
		t.Fatalf("err = %v, want the callback error", err)
	}
	if calls != 1 {
		t.Fatalf("callback invoked %d times after aborting, want 1", calls)
	}
}

var errTest = errors.New("boom")
