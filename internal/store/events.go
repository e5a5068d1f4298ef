package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bashbros/bashbros/internal/model"
)

// InsertToolUse inserts a generic tool-use record and returns its id.
func (s *Store) InsertToolUse(rec model.ToolUseRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	var exitCode, success any
	if rec.ExitCode != nil {
		exitCode = *rec.ExitCode
	}
	if rec.Success != nil {
		success = boolInt(*rec.Success)
	}

	_, err := s.db.Exec(`
		INSERT INTO tool_uses (id, session_id, timestamp, tool_name, input, output,
			exit_code, success, working_dir, repo_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, nullable(rec.SessionID), millis(rec.Timestamp), rec.ToolName,
		rec.Input, rec.Output, exitCode, success, rec.WorkingDir, rec.RepoName,
	)
	if err != nil {
		return "", fmt.Errorf("insert tool use: %w", err)
	}
	return rec.ID, nil
}

// InsertEgressBlock records a denied network command.
func (s *Store) InsertEgressBlock(sessionID, command, rule string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(`
		INSERT INTO egress_blocks (id, session_id, timestamp, command, rule)
		VALUES (?, ?, ?, ?, ?)`,
		id, nullable(sessionID), millis(time.Now()), command, rule,
	)
	if err != nil {
		return "", fmt.Errorf("insert egress block: %w", err)
	}
	return id, nil
}

// GetEgressBlocks returns recorded egress blocks most-recent first.
func (s *Store) GetEgressBlocks(limit int) ([]model.EgressBlock, error) {
	query := "SELECT id, COALESCE(session_id, ''), timestamp, command, rule FROM egress_blocks ORDER BY timestamp DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query egress blocks: %w", err)
	}
	defer rows.Close()

	var blocks []model.EgressBlock
	for rows.Next() {
		var b model.EgressBlock
		var ts int64
		if err := rows.Scan(&b.ID, &b.SessionID, &ts, &b.Command, &b.Rule); err != nil {
			return nil, fmt.Errorf("scan egress block: %w", err)
		}
		b.Timestamp = fromMillis(ts)
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

// InsertEvent appends an entry to the observability timeline.
func (s *Store) InsertEvent(sessionID, kind, payload string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(`
		INSERT INTO events (id, session_id, timestamp, kind, payload)
		VALUES (?, ?, ?, ?, ?)`,
		id, nullable(sessionID), millis(time.Now()), kind, payload,
	)
	if err != nil {
		return "", fmt.Errorf("insert event: %w", err)
	}
	return id, nil
}

// GetEvents returns timeline events most-recent first.
func (s *Store) GetEvents(limit int) ([]model.Event, error) {
	query := "SELECT id, COALESCE(session_id, ''), timestamp, kind, COALESCE(payload, '') FROM events ORDER BY timestamp DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		var ts int64
		if err := rows.Scan(&e.ID, &e.SessionID, &ts, &e.Kind, &e.Payload); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Timestamp = fromMillis(ts)
		events = append(events, e)
	}
	return events, rows.Err()
}

// Cleanup deletes command, prompt, and event rows older than retentionDays.
// Sessions are kept: they are small and anchor historical metrics.
func (s *Store) Cleanup(retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := millis(time.Now().AddDate(0, 0, -retentionDays))

	var total int64
	for _, table := range []string{"commands", "user_prompts", "events"} {
		res, err := s.db.Exec("DELETE FROM "+table+" WHERE timestamp < ?", cutoff)
		if err != nil {
			return total, fmt.Errorf("cleanup %s: %w", table, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			total += n
		}
	}
	return total, nil
}
