// Package session manages the lifecycle of an observation session: start,
// per-command recording, end or crash, and metrics persistence. Hook
// invocations are separate processes, so the current session id lives in a
// marker file under the state directory and the counters of record live in
// the shared store.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/bashbros/bashbros/internal/model"
	"github.com/bashbros/bashbros/internal/store"
)

// persistEvery is how often partial counters are flushed to the session
// row, so a crash loses at most a few counts.
const persistEvery = 10

// marker is the on-disk record of the currently open session.
type marker struct {
	SessionID string    `json:"session_id"`
	Agent     string    `json:"agent"`
	PID       int       `json:"pid"`
	StartedAt time.Time `json:"started_at"`
}

// Manager drives session lifecycle against the store and a marker file.
type Manager struct {
	st         *store.Store
	markerPath string
}

// NewManager creates a manager over an open store.
func NewManager(st *store.Store, markerPath string) *Manager {
	return &Manager{st: st, markerPath: markerPath}
}

// Start opens a new session and writes the marker file. Starting over an
// existing marker replaces it: the previous session is left unfinished and
// will be closed as crashed by a later sweep.
func (m *Manager) Start(agent, workingDir, repoName string) (string, error) {
	id, err := m.st.InsertSession(agent, os.Getpid(), workingDir, repoName)
	if err != nil {
		return "", fmt.Errorf("start session: %w", err)
	}

	mk := marker{SessionID: id, Agent: agent, PID: os.Getpid(), StartedAt: time.Now().UTC()}
	data, err := json.Marshal(mk)
	if err != nil {
		return "", fmt.Errorf("marshal session marker: %w", err)
	}
	if err := os.WriteFile(m.markerPath, data, 0600); err != nil {
		return "", fmt.Errorf("write session marker: %w", err)
	}

	_, _ = m.st.InsertEvent(id, "session_start", "")
	return id, nil
}

// CurrentID returns the open session id, or "" when no session is open.
func (m *Manager) CurrentID() string {
	data, err := os.ReadFile(m.markerPath)
	if err != nil {
		return ""
	}
	var mk marker
	if err := json.Unmarshal(data, &mk); err != nil {
		return ""
	}
	return mk.SessionID
}

// Record inserts a command row for the open session and periodically flushes
// aggregate counters to the session row. Out-of-session commands are still
// recorded, just unattached.
func (m *Manager) Record(rec model.CommandRecord) error {
	if rec.SessionID == "" {
		rec.SessionID = m.CurrentID()
	}

	if _, err := m.st.InsertCommand(rec); err != nil {
		return fmt.Errorf("record command: %w", err)
	}

	if rec.SessionID == "" {
		return nil
	}

	n, err := m.st.SessionCommandCount(rec.SessionID)
	if err != nil {
		return nil // counter flush is best-effort
	}
	if n%persistEvery == 0 {
		_ = m.flushCounters(rec.SessionID, nil)
	}
	return nil
}

// End closes the open session as completed and removes the marker.
func (m *Manager) End() error {
	return m.finish(model.StatusCompleted, "session_end")
}

// Crash closes the open session as crashed and removes the marker. Called
// when an unexpectedly terminated session is discovered.
func (m *Manager) Crash() error {
	return m.finish(model.StatusCrashed, "session_crash")
}

func (m *Manager) finish(status model.SessionStatus, eventKind string) error {
	id := m.CurrentID()
	if id == "" {
		return fmt.Errorf("no open session")
	}

	if err := m.flushCounters(id, &status); err != nil {
		return err
	}

	_, _ = m.st.InsertEvent(id, eventKind, "")

	if err := os.Remove(m.markerPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session marker: %w", err)
	}
	return nil
}

// flushCounters recomputes the session counters from the command rows and
// persists them, optionally closing the session. Recomputing instead of
// incrementing keeps the row consistent no matter how many hook processes
// interleaved.
func (m *Manager) flushCounters(id string, status *model.SessionStatus) error {
	metrics, err := m.st.GetSessionMetrics(id)
	if err != nil {
		return fmt.Errorf("session metrics: %w", err)
	}

	update := store.SessionUpdate{
		CommandCount: &metrics.TotalCommands,
		BlockedCount: &metrics.BlockedCommands,
		AvgRiskScore: &metrics.AvgRiskScore,
	}
	if status != nil {
		update.Status = status
		now := time.Now().UTC()
		update.EndTime = &now
	}

	if err := m.st.UpdateSession(id, update); err != nil {
		return fmt.Errorf("persist session counters: %w", err)
	}
	return nil
}
