package gate

import (
	"encoding/json"
	"fmt"
	"os"
)

// sessionAllowFile is the process-local session allowlist: exact command
// strings the user has pinned as always-allowed for the current session.
type sessionAllowFile struct {
	Commands []string `json:"commands"`
}

// allowedBySession reports whether the command is pinned in the session
// allowlist. Any read or parse problem means "not allowed" — the allowlist
// only ever widens access when it is intact.
func allowedBySession(path, command string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var f sessionAllowFile
	if err := json.Unmarshal(data, &f); err != nil {
		return false
	}
	for _, c := range f.Commands {
		if c == command {
			return true
		}
	}
	return false
}

// PinSessionAllow appends a command to the session allowlist, creating the
// file if needed. Duplicates are ignored.
func PinSessionAllow(path, command string) error {
	var f sessionAllowFile
	if data, err := os.ReadFile(path); err == nil {
		_ = json.Unmarshal(data, &f)
	}

	for _, c := range f.Commands {
		if c == command {
			return nil
		}
	}
	f.Commands = append(f.Commands, command)

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session allowlist: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write session allowlist: %w", err)
	}
	return nil
}
