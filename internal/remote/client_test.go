package remote_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gellab/graphlog/internal/remote"
	"github.com/gellab/graphlog/internal/sessionlog"
)

// TestSendUploadsServerSchema verifies the upload path and payload field
// names.
func TestSendUploadsServerSchema(t *testing.T) {
	var mu sync.Mutex
	var gotPath string
	var gotBody map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := remote.New(srv.URL + "/")
	line := sessionlog.Line{
		Timestamp: time.Date(2025, 5, 20, 14, 30, 5, 0, time.Local),
		User:      "alice",
		Action:    "Slider Changed",
		Detail:    "Radius, 1.5",
	}
	if err := c.Send(line); err != nil {
		t.Fatalf("Send: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if gotPath != "/api/log/upload" {
		t.Errorf("path = %q, want /api/log/upload", gotPath)
	}
	want := map[string]string{
		"Timestamp": "2025-05-20 14:30:05",
		"UserID":    "alice",
		"Action":    "Slider Changed",
		"Detail":    "Radius, 1.5",
	}
	for k, v := range want {
		if gotBody[k] != v {
			t.Errorf("payload[%q] = %q, want %q", k, gotBody[k], v)
		}
	}
}

// TestSendReportsServerError verifies that a non-2xx response surfaces as an
// error for the caller to discard or log.
func TestSendReportsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if err := remote.New(srv.URL).Send(sessionlog.Line{Timestamp: time.Now()}); err == nil {
		t.Fatal("expected an error for a 500 response")
	}
}

// TestUserInfoRegistered verifies decoding of a registration record.
func TestUserInfoRegistered(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/user/alice" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(remote.UserInfo{
			Username:   "alice",
			FullName:   "Alice Example",
			StartDate:  "2025-05-19",
			EndDate:    "2025-05-30",
			Registered: true,
		})
	}))
	defer srv.Close()

	info, err := remote.New(srv.URL).UserInfo("alice")
	if err != nil {
		t.Fatalf("UserInfo: %v", err)
	}
	if !info.Registered || info.StartDate != "2025-05-19" || info.EndDate != "2025-05-30" {
		t.Errorf("UserInfo = %+v", info)
	}
}

// TestUserInfoNotFoundIsUnregistered verifies that a 404 means "unknown user",
// not a hard failure.
func TestUserInfoNotFoundIsUnregistered(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	info, err := remote.New(srv.URL).UserInfo("ghost")
	if err != nil {
		t.Fatalf("UserInfo: %v", err)
	}
	if info.Registered {
		t.Error("404 should yield an unregistered record")
	}
	if info.Username != "ghost" {
		t.Errorf("Username = %q, want the requested id", info.Username)
	}
}

// TestUserInfoUnreachableServer verifies connection failures return an error
// that callers downgrade to local-only recording.
func TestUserInfoUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // closed before use

	if _, err := remote.New(srv.URL).UserInfo("alice"); err == nil {
		t.Fatal("expected an error for an unreachable server")
	}
}
