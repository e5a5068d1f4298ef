package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bashbros/bashbros/internal/model"
)

// InsertCommand inserts a command record and returns its id. A zero
// timestamp is filled with the current time; an empty id is generated.
func (s *Store) InsertCommand(rec model.CommandRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	if rec.RiskLevel == "" {
		rec.RiskLevel = model.LevelForScore(rec.RiskScore)
	}

	factors, _ := json.Marshal(rec.RiskFactors)
	violations, _ := json.Marshal(rec.Violations)

	_, err := s.db.Exec(`
		INSERT INTO commands (id, session_id, timestamp, command, allowed, risk_score,
			risk_level, risk_factors, duration_ms, violations)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, nullable(rec.SessionID), millis(rec.Timestamp), rec.Command, boolInt(rec.Allowed),
		rec.RiskScore, string(rec.RiskLevel), string(factors), rec.DurationMs, string(violations),
	)
	if err != nil {
		return "", fmt.Errorf("insert command: %w", err)
	}
	return rec.ID, nil
}

const commandColumns = `id, session_id, timestamp, command, allowed, risk_score,
	risk_level, risk_factors, duration_ms, violations`

// GetCommands returns command records most-recent first, optionally filtered
// by session.
func (s *Store) GetCommands(sessionID string, limit int) ([]model.CommandRecord, error) {
	query := "SELECT " + commandColumns + " FROM commands"
	var args []any
	if sessionID != "" {
		query += " WHERE session_id = ?"
		args = append(args, sessionID)
	}
	query += " ORDER BY timestamp DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return s.queryCommands(query, args...)
}

// SearchCommands returns commands whose text contains the query,
// case-insensitive, most-recent first.
func (s *Store) SearchCommands(q string, limit int) ([]model.CommandRecord, error) {
	query := "SELECT " + commandColumns + ` FROM commands
		WHERE command LIKE '%' || ? || '%' COLLATE NOCASE
		ORDER BY timestamp DESC`
	args := []any{q}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return s.queryCommands(query, args...)
}

// TotalCommandCount returns the number of command rows in the store.
func (s *Store) TotalCommandCount() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM commands").Scan(&n); err != nil {
		return 0, fmt.Errorf("count commands: %w", err)
	}
	return n, nil
}

// SessionCommandCount returns the number of commands recorded for a session.
func (s *Store) SessionCommandCount(sessionID string) (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM commands WHERE session_id = ?", sessionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count session commands: %w", err)
	}
	return n, nil
}

// CountCommandsSince returns the number of commands recorded at or after t,
// across all sessions.
func (s *Store) CountCommandsSince(t time.Time) (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM commands WHERE timestamp >= ?", millis(t)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count commands since: %w", err)
	}
	return n, nil
}

// RecentCommandTexts returns the text of the n most recent commands,
// newest first.
func (s *Store) RecentCommandTexts(n int) ([]string, error) {
	rows, err := s.db.Query("SELECT command FROM commands ORDER BY timestamp DESC, id LIMIT ?", n)
	if err != nil {
		return nil, fmt.Errorf("query recent commands: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var cmd string
		if err := rows.Scan(&cmd); err != nil {
			return nil, fmt.Errorf("scan command text: %w", err)
		}
		out = append(out, cmd)
	}
	return out, rows.Err()
}

// RecentSessionCommandTexts returns the text of the n most recent commands
// in one session, newest first. This is the loop detector's window.
func (s *Store) RecentSessionCommandTexts(sessionID string, n int) ([]string, error) {
	rows, err := s.db.Query(
		"SELECT command FROM commands WHERE session_id = ? ORDER BY timestamp DESC, id LIMIT ?",
		sessionID, n)
	if err != nil {
		return nil, fmt.Errorf("query session commands: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var cmd string
		if err := rows.Scan(&cmd); err != nil {
			return nil, fmt.Errorf("scan command text: %w", err)
		}
		out = append(out, cmd)
	}
	return out, rows.Err()
}

func (s *Store) queryCommands(query string, args ...any) ([]model.CommandRecord, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query commands: %w", err)
	}
	defer rows.Close()

	var records []model.CommandRecord
	for rows.Next() {
		var rec model.CommandRecord
		var sessionID, factors, violations sql.NullString
		var ts int64
		var allowed int

		err := rows.Scan(&rec.ID, &sessionID, &ts, &rec.Command, &allowed,
			&rec.RiskScore, &rec.RiskLevel, &factors, &rec.DurationMs, &violations)
		if err != nil {
			return nil, fmt.Errorf("scan command: %w", err)
		}

		rec.SessionID = sessionID.String
		rec.Timestamp = fromMillis(ts)
		rec.Allowed = allowed == 1
		if factors.Valid && factors.String != "" {
			_ = json.Unmarshal([]byte(factors.String), &rec.RiskFactors)
		}
		if violations.Valid && violations.String != "" {
			_ = json.Unmarshal([]byte(violations.String), &rec.Violations)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
