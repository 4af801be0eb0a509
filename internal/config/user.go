package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// User is the stored identity of the person being recorded, created by the
// setup wizard and referenced on every recording run.
type User struct {
	ID       string `json:"user_id"`
	FullName string `json:"full_name,omitempty"`
}

func userPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "user.json"), nil
}

// UserExists reports whether a user identity file is present on disk.
func UserExists() bool {
	p, err := userPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

// LoadUser reads the stored user identity.
func LoadUser() (*User, error) {
	p, err := userPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("user identity not found — run 'graphlog setup' to configure: %w", err)
	}
	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("malformed user identity at %s: %w", p, err)
	}
	if u.ID == "" {
		return nil, fmt.Errorf("user identity at %s has no user_id", p)
	}
	return &u, nil
}

// SaveUser writes the user identity, creating the config directory if needed.
func SaveUser(u *User) error {
	p, err := userPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(u, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

// DeleteUser removes the stored identity. Recording is disabled until the
// next setup.
func DeleteUser() error {
	p, err := userPath()
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing user identity: %w", err)
	}
	return nil
}
