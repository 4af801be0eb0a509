package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// executeCommand runs a cobra command with the given args and captures
// combined output.
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	_, err = root.ExecuteC()
	return buf.String(), err
}

const testStream = `{"time":"2025-05-20T10:00:00Z","lifecycle":{"type":"document_added","document":{"name":"Foo.gh","entities":[{"id":"a","kind":"component","name":"Circle"}]}}}
{"time":"2025-05-20T10:00:01Z","lifecycle":{"type":"entities_added","entities":[{"id":"b","kind":"slider","name":"Radius"}]}}
{"time":"2025-05-20T10:00:02Z","lifecycle":{"type":"context_changed","context":"Foo.gh"}}
`

// TestRecordFromStreamFile verifies the full pipeline: stream file in,
// session folder with log and metadata out.
func TestRecordFromStreamFile(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	streamPath := filepath.Join(tmp, "stream.jsonl")
	if err := os.WriteFile(streamPath, []byte(testStream), 0o644); err != nil {
		t.Fatal(err)
	}
	root := filepath.Join(tmp, "logs")

	out, err := executeCommand(rootCmd, "record", "--user", "alice", "--root", root, streamPath)
	if err != nil {
		t.Fatalf("record: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Session recorded:") {
		t.Fatalf("output = %q, want a session path", out)
	}

	var logData []byte
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err == nil && strings.HasSuffix(path, "_GraphLog.csv") {
			logData, err = os.ReadFile(path)
		}
		return err
	})
	if err != nil || logData == nil {
		t.Fatalf("no log file under %s (err = %v)", root, err)
	}
	for _, want := range []string{"SessionStart", "DocumentOpened", "ObjectAdded", "ContextChanged", "SessionEnd"} {
		if !strings.Contains(string(logData), want) {
			t.Errorf("log missing %s:\n%s", want, logData)
		}
	}
}

// TestRecordRequiresUser verifies the error when no identity is stored and no
// --user flag is given.
func TestRecordRequiresUser(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	streamPath := filepath.Join(tmp, "stream.jsonl")
	if err := os.WriteFile(streamPath, []byte(testStream), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := executeCommand(rootCmd, "record", "--user", "", "--root", filepath.Join(tmp, "logs"), streamPath)
	if err == nil {
		t.Fatal("expected an error without a user identity")
	}
	if !strings.Contains(err.Error(), "no user identity") {
		t.Errorf("error = %q, want a no-user-identity message", err)
	}
}

// TestRecordEmptyStreamRecordsNothing verifies that a stream with no
// notifications leaves no artifacts behind.
func TestRecordEmptyStreamRecordsNothing(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	streamPath := filepath.Join(tmp, "stream.jsonl")
	if err := os.WriteFile(streamPath, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	root := filepath.Join(tmp, "logs")

	out, err := executeCommand(rootCmd, "record", "--user", "alice", "--root", root, streamPath)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !strings.Contains(out, "nothing recorded") {
		t.Errorf("output = %q, want a nothing-recorded notice", out)
	}
	if _, err := os.Stat(filepath.Join(root, "alice")); !os.IsNotExist(err) {
		t.Errorf("artifacts left behind for an empty stream (stat err = %v)", err)
	}
}

// TestSessionsAndStatusListRecorded verifies the listing commands over a
// freshly recorded session.
func TestSessionsAndStatusListRecorded(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	streamPath := filepath.Join(tmp, "stream.jsonl")
	if err := os.WriteFile(streamPath, []byte(testStream), 0o644); err != nil {
		t.Fatal(err)
	}
	root := filepath.Join(tmp, "logs")
	if out, err := executeCommand(rootCmd, "record", "--user", "alice", "--root", root, streamPath); err != nil {
		t.Fatalf("record: %v\n%s", err, out)
	}

	out, err := executeCommand(rootCmd, "sessions", "--root", root)
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if !strings.Contains(out, "alice") {
		t.Errorf("sessions output missing the user:\n%s", out)
	}

	out, err = executeCommand(rootCmd, "status", "--root", root)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "User: alice") || !strings.Contains(out, "Events:") {
		t.Errorf("status output = %q", out)
	}
}
