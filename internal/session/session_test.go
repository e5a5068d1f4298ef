package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bashbros/bashbros/internal/model"
	"github.com/bashbros/bashbros/internal/store"
)

func newTestManager(t *testing.T) (*Manager, *store.Store) {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "dashboard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return NewManager(st, filepath.Join(dir, "session.json")), st
}

func TestStartWritesMarkerAndEvent(t *testing.T) {
	m, st := newTestManager(t)

	id, err := m.Start("clawd", "/work/repo", "repo")
	require.NoError(t, err)
	assert.Equal(t, id, m.CurrentID())

	sess, err := st.GetSession(id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRunning, sess.Status)
	assert.Equal(t, os.Getpid(), sess.PID)

	events, err := st.GetEvents(10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "session_start", events[0].Kind)
}

func TestCurrentIDWithoutMarker(t *testing.T) {
	m, _ := newTestManager(t)
	assert.Empty(t, m.CurrentID())
}

func TestRecordAttachesToOpenSession(t *testing.T) {
	m, st := newTestManager(t)
	id, err := m.Start("clawd", "/w", "")
	require.NoError(t, err)

	require.NoError(t, m.Record(model.CommandRecord{Command: "git status", Allowed: true, RiskScore: 1}))

	recs, err := st.GetCommands(id, 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, id, recs[0].SessionID)
}

func TestRecordWithoutSessionStillStores(t *testing.T) {
	m, st := newTestManager(t)
	require.NoError(t, m.Record(model.CommandRecord{Command: "ls", Allowed: true, RiskScore: 1}))

	total, err := st.TotalCommandCount()
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestPeriodicCounterFlush(t *testing.T) {
	m, st := newTestManager(t)
	id, err := m.Start("clawd", "/w", "")
	require.NoError(t, err)

	for i := 0; i < persistEvery; i++ {
		allowed := i%2 == 0
		require.NoError(t, m.Record(model.CommandRecord{Command: "x", Allowed: allowed, RiskScore: 2}))
	}

	// The 10th record triggers a flush.
	sess, err := st.GetSession(id)
	require.NoError(t, err)
	assert.Equal(t, persistEvery, sess.CommandCount)
	assert.Equal(t, persistEvery/2, sess.BlockedCount)
	assert.InDelta(t, 2.0, sess.AvgRiskScore, 0.001)
}

func TestEndClosesSession(t *testing.T) {
	m, st := newTestManager(t)
	id, err := m.Start("clawd", "/w", "")
	require.NoError(t, err)
	require.NoError(t, m.Record(model.CommandRecord{Command: "ls", Allowed: true, RiskScore: 1}))

	require.NoError(t, m.End())

	sess, err := st.GetSession(id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, sess.Status)
	require.NotNil(t, sess.EndTime)
	assert.Equal(t, 1, sess.CommandCount)
	assert.Empty(t, m.CurrentID(), "marker removed after end")
}

func TestCrashMarksSessionCrashed(t *testing.T) {
	m, st := newTestManager(t)
	id, err := m.Start("clawd", "/w", "")
	require.NoError(t, err)

	require.NoError(t, m.Crash())

	sess, err := st.GetSession(id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCrashed, sess.Status)
}

func TestEndWithoutSessionFails(t *testing.T) {
	m, _ := newTestManager(t)
	assert.Error(t, m.End())
}

func TestStartReplacesMarker(t *testing.T) {
	m, _ := newTestManager(t)
	first, err := m.Start("clawd", "/w", "")
	require.NoError(t, err)
	second, err := m.Start("clawd", "/w", "")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Equal(t, second, m.CurrentID())
}
