package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestWindowContains verifies the inclusive-through-end-of-day semantics of
// the activation window.
func TestWindowContains(t *testing.T) {
	w, err := NewWindow("2025-05-19", "2025-05-30")
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}

	cases := []struct {
		at   time.Time
		want bool
	}{
		{time.Date(2025, 5, 18, 23, 59, 59, 0, time.Local), false},
		{time.Date(2025, 5, 19, 0, 0, 0, 0, time.Local), true},
		{time.Date(2025, 5, 25, 12, 0, 0, 0, time.Local), true},
		// The configured end date counts through its whole day.
		{time.Date(2025, 5, 30, 23, 59, 59, 0, time.Local), true},
		{time.Date(2025, 5, 31, 0, 0, 0, 0, time.Local), false},
		{time.Date(2025, 6, 1, 9, 0, 0, 0, time.Local), false},
	}
	for _, tc := range cases {
		if got := w.Contains(tc.at); got != tc.want {
			t.Errorf("Contains(%v) = %v, want %v", tc.at, got, tc.want)
		}
	}
}

// TestNilWindowIsUnrestricted verifies that no window means everything is in.
func TestNilWindowIsUnrestricted(t *testing.T) {
	var w *Window
	if !w.Contains(time.Date(1999, 1, 1, 0, 0, 0, 0, time.Local)) {
		t.Error("nil window should contain every instant")
	}
}

// TestNewWindowRejectsBadInput verifies the error cases that callers turn
// into a fall-back to unrestricted recording.
func TestNewWindowRejectsBadInput(t *testing.T) {
	if _, err := NewWindow("not-a-date", "2025-05-30"); err == nil {
		t.Error("expected an error for an unparseable start date")
	}
	if _, err := NewWindow("2025-05-19", "19/05/2025"); err == nil {
		t.Error("expected an error for an unparseable end date")
	}
	if _, err := NewWindow("2025-05-30", "2025-05-19"); err == nil {
		t.Error("expected an error for end before start")
	}
}

// TestPeriodRoundTrip verifies save and load of the training period file.
func TestPeriodRoundTrip(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	p := &Period{
		UserName:  "alice",
		StartDate: "2025-05-19",
		EndDate:   "2025-05-30",
		ServerURL: "http://server:5000",
	}
	if err := SavePeriod(p); err != nil {
		t.Fatalf("SavePeriod: %v", err)
	}
	if p.CreatedAt == "" {
		t.Error("SavePeriod did not stamp CreatedAt")
	}

	loaded, err := LoadPeriod()
	if err != nil {
		t.Fatalf("LoadPeriod: %v", err)
	}
	if loaded == nil || loaded.UserName != "alice" || loaded.StartDate != "2025-05-19" {
		t.Fatalf("LoadPeriod = %+v, want the saved period", loaded)
	}

	w, err := loaded.Window()
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	if w == nil || !w.Contains(time.Date(2025, 5, 20, 10, 0, 0, 0, time.Local)) {
		t.Errorf("loaded window does not cover the period: %+v", w)
	}
}

// TestLoadPeriodMissingFileReturnsNil verifies recording runs unrestricted
// when no period file exists.
func TestLoadPeriodMissingFileReturnsNil(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	p, err := LoadPeriod()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != nil {
		t.Errorf("expected nil period, got %+v", p)
	}
}

// TestPeriodWithoutDatesYieldsNilWindow verifies that a period file that only
// pins the server produces no activation window.
func TestPeriodWithoutDatesYieldsNilWindow(t *testing.T) {
	p := &Period{UserName: "alice", ServerURL: "http://server:5000"}
	w, err := p.Window()
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	if w != nil {
		t.Errorf("expected nil window, got %+v", w)
	}
}

// TestUserRoundTrip verifies save, load and delete of the user identity.
func TestUserRoundTrip(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	if UserExists() {
		t.Fatal("UserExists before any save")
	}
	if _, err := LoadUser(); err == nil {
		t.Fatal("expected an error loading a missing identity")
	}

	if err := SaveUser(&User{ID: "alice", FullName: "Alice Example"}); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}
	if !UserExists() {
		t.Fatal("UserExists after save")
	}

	u, err := LoadUser()
	if err != nil {
		t.Fatalf("LoadUser: %v", err)
	}
	if u.ID != "alice" || u.FullName != "Alice Example" {
		t.Errorf("LoadUser = %+v", u)
	}

	if err := DeleteUser(); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if UserExists() {
		t.Error("identity still present after DeleteUser")
	}
	// Deleting again is not an error.
	if err := DeleteUser(); err != nil {
		t.Errorf("second DeleteUser: %v", err)
	}

	// An identity file without a user_id is rejected.
	p := filepath.Join(tmp, ".config", "graphlog", "user.json")
	if err := os.WriteFile(p, []byte(`{"full_name":"No ID"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadUser(); err == nil {
		t.Error("expected an error for an identity without a user_id")
	}
}
