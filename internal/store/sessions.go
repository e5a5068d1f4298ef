package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bashbros/bashbros/internal/model"
)

// InsertSession creates a new running session and returns its id.
func (s *Store) InsertSession(agent string, pid int, workingDir, repoName string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(`
		INSERT INTO sessions (id, agent, pid, working_dir, repo_name, start_time, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, agent, pid, workingDir, repoName, millis(time.Now()), string(model.StatusRunning),
	)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return id, nil
}

// SessionUpdate holds the optional fields of a session update. Nil fields
// are left untouched.
type SessionUpdate struct {
	EndTime      *time.Time
	Status       *model.SessionStatus
	CommandCount *int
	BlockedCount *int
	AvgRiskScore *float64
	Metadata     map[string]string
}

// UpdateSession applies a partial update to a session row.
func (s *Store) UpdateSession(id string, u SessionUpdate) error {
	query := "UPDATE sessions SET id = id"
	var args []any

	if u.EndTime != nil {
		query += ", end_time = ?"
		args = append(args, millis(*u.EndTime))
	}
	if u.Status != nil {
		query += ", status = ?"
		args = append(args, string(*u.Status))
	}
	if u.CommandCount != nil {
		query += ", command_count = ?"
		args = append(args, *u.CommandCount)
	}
	if u.BlockedCount != nil {
		query += ", blocked_count = ?"
		args = append(args, *u.BlockedCount)
	}
	if u.AvgRiskScore != nil {
		query += ", avg_risk_score = ?"
		args = append(args, *u.AvgRiskScore)
	}
	if u.Metadata != nil {
		data, err := json.Marshal(u.Metadata)
		if err != nil {
			return fmt.Errorf("marshal session metadata: %w", err)
		}
		query += ", metadata = ?"
		args = append(args, string(data))
	}

	query += " WHERE id = ?"
	args = append(args, id)

	if _, err := s.db.Exec(query, args...); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

const sessionColumns = `id, agent, pid, working_dir, repo_name, start_time, end_time,
	status, command_count, blocked_count, avg_risk_score, metadata`

// GetSession returns one session by id.
func (s *Store) GetSession(id string) (*model.Session, error) {
	row := s.db.QueryRow("SELECT "+sessionColumns+" FROM sessions WHERE id = ?", id)
	sess, err := scanSession(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("session %s not found", id)
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// GetSessions returns sessions most-recent first, optionally filtered by agent.
func (s *Store) GetSessions(agent string, limit int) ([]*model.Session, error) {
	query := "SELECT " + sessionColumns + " FROM sessions"
	var args []any
	if agent != "" {
		query += " WHERE agent = ?"
		args = append(args, agent)
	}
	query += " ORDER BY start_time DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*model.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(r rowScanner) (*model.Session, error) {
	var sess model.Session
	var start int64
	var end sql.NullInt64
	var workingDir, repoName, metadata sql.NullString
	var status string

	err := r.Scan(&sess.ID, &sess.Agent, &sess.PID, &workingDir, &repoName, &start,
		&end, &status, &sess.CommandCount, &sess.BlockedCount, &sess.AvgRiskScore, &metadata)
	if err != nil {
		return nil, err
	}

	sess.WorkingDir = workingDir.String
	sess.RepoName = repoName.String
	sess.StartTime = fromMillis(start)
	sess.Status = model.SessionStatus(status)
	if end.Valid {
		t := fromMillis(end.Int64)
		sess.EndTime = &t
	}
	if metadata.Valid && metadata.String != "" {
		// Metadata that fails to decode is dropped, not fatal.
		_ = json.Unmarshal([]byte(metadata.String), &sess.Metadata)
	}
	return &sess, nil
}
