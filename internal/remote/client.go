// Package remote talks to the optional collection server. Everything here is
// best-effort: the recorder stays fully functional with no server at all.
package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gellab/graphlog/internal/sessionlog"
)

// UserInfo is the server's registration record for one user.
type UserInfo struct {
	Username     string `json:"username"`
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	Organization string `json:"organization"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Registered   bool   `json:"registered"`
}

// uploadPayload mirrors the server's log ingestion schema.
type uploadPayload struct {
	Timestamp string `json:"Timestamp"`
	UserID    string `json:"UserID"`
	Action    string `json:"Action"`
	Detail    string `json:"Detail"`
}

// Client is an HTTP client for the collection server. It implements
// sessionlog.Sink.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a Client for the given base URL, e.g. "http://host:5000".
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

// Send uploads one log line. Called fire-and-forget by the log writer; the
// error is returned for tests but callers in the write path discard it.
func (c *Client) Send(line sessionlog.Line) error {
	payload := uploadPayload{
		Timestamp: line.Timestamp.Format(sessionlog.TimeLayout),
		UserID:    line.User,
		Action:    line.Action,
		Detail:    line.Detail,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding log upload: %w", err)
	}
	resp, err := c.http.Post(c.baseURL+"/api/log/upload", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("uploading log line: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("uploading log line: server returned %s", resp.Status)
	}
	return nil
}

// UserInfo fetches the registration record for a user id.
func (c *Client) UserInfo(id string) (*UserInfo, error) {
	resp, err := c.http.Get(c.baseURL + "/api/user/" + id)
	if err != nil {
		return nil, fmt.Errorf("fetching user info: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return &UserInfo{Username: id}, nil
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetching user info: server returned %s", resp.Status)
	}
	var info UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decoding user info: %w", err)
	}
	return &info, nil
}
