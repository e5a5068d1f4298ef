package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/bashbros/bashbros/internal/model"
)

// InsertPrompt inserts a user prompt record, capping the stored text at
// model.MaxPromptLength while preserving the original length.
func (s *Store) InsertPrompt(rec model.PromptRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	rec.OriginalLength = len(rec.Prompt)
	rec.CharLength = len(rec.Prompt)
	rec.WordCount = len(strings.Fields(rec.Prompt))
	if len(rec.Prompt) > model.MaxPromptLength {
		// Back off to a rune boundary so the cap never splits a multi-byte
		// character.
		cut := model.MaxPromptLength
		for cut > 0 && !utf8.RuneStart(rec.Prompt[cut]) {
			cut--
		}
		rec.Prompt = rec.Prompt[:cut]
	}

	_, err := s.db.Exec(`
		INSERT INTO user_prompts (id, session_id, timestamp, prompt, original_length,
			word_count, char_length, working_dir)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, nullable(rec.SessionID), millis(rec.Timestamp), rec.Prompt,
		rec.OriginalLength, rec.WordCount, rec.CharLength, rec.WorkingDir,
	)
	if err != nil {
		return "", fmt.Errorf("insert prompt: %w", err)
	}
	return rec.ID, nil
}

// GetPrompts returns prompt records most-recent first, with optional session
// and time filters.
func (s *Store) GetPrompts(sessionID string, since time.Time, limit int) ([]model.PromptRecord, error) {
	query := `SELECT id, session_id, timestamp, prompt, original_length, word_count,
		char_length, working_dir FROM user_prompts WHERE 1=1`
	var args []any
	if sessionID != "" {
		query += " AND session_id = ?"
		args = append(args, sessionID)
	}
	if !since.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, millis(since))
	}
	query += " ORDER BY timestamp DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query prompts: %w", err)
	}
	defer rows.Close()

	var records []model.PromptRecord
	for rows.Next() {
		var rec model.PromptRecord
		var sessionID, workingDir sql.NullString
		var ts int64
		err := rows.Scan(&rec.ID, &sessionID, &ts, &rec.Prompt, &rec.OriginalLength,
			&rec.WordCount, &rec.CharLength, &workingDir)
		if err != nil {
			return nil, fmt.Errorf("scan prompt: %w", err)
		}
		rec.SessionID = sessionID.String
		rec.WorkingDir = workingDir.String
		rec.Timestamp = fromMillis(ts)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// PromptStats aggregates the stored prompt corpus.
type PromptStats struct {
	TotalPrompts  int     `json:"total_prompts"`
	TotalWords    int     `json:"total_words"`
	TotalChars    int     `json:"total_chars"`
	AvgWordCount  float64 `json:"avg_word_count"`
	LongestPrompt int     `json:"longest_prompt"`
}

// GetPromptStats returns aggregate prompt statistics.
func (s *Store) GetPromptStats() (PromptStats, error) {
	var stats PromptStats
	err := s.db.QueryRow(`
		SELECT COUNT(*),
			COALESCE(SUM(word_count), 0),
			COALESCE(SUM(char_length), 0),
			COALESCE(AVG(word_count), 0),
			COALESCE(MAX(original_length), 0)
		FROM user_prompts`).Scan(
		&stats.TotalPrompts, &stats.TotalWords, &stats.TotalChars,
		&stats.AvgWordCount, &stats.LongestPrompt)
	if err != nil {
		return PromptStats{}, fmt.Errorf("prompt stats: %w", err)
	}
	return stats, nil
}
