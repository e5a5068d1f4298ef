package store

import (
	"fmt"

	"github.com/bashbros/bashbros/internal/model"
)

// CommandTally is one entry in a top-commands ranking.
type CommandTally struct {
	Command string `json:"command"`
	Count   int    `json:"count"`
}

// SessionMetrics is the aggregated view of one session's commands.
type SessionMetrics struct {
	TotalCommands    int                     `json:"total_commands"`
	AllowedCommands  int                     `json:"allowed_commands"`
	BlockedCommands  int                     `json:"blocked_commands"`
	AvgRiskScore     float64                 `json:"avg_risk_score"`
	RiskDistribution map[model.RiskLevel]int `json:"risk_distribution"`
	TopCommands      []CommandTally          `json:"top_commands"`
}

// GetSessionMetrics aggregates command records for one session.
func (s *Store) GetSessionMetrics(sessionID string) (*SessionMetrics, error) {
	m := &SessionMetrics{RiskDistribution: make(map[model.RiskLevel]int)}

	err := s.db.QueryRow(`
		SELECT COUNT(*),
			COALESCE(SUM(allowed), 0),
			COALESCE(AVG(risk_score), 0)
		FROM commands WHERE session_id = ?`, sessionID).Scan(
		&m.TotalCommands, &m.AllowedCommands, &m.AvgRiskScore)
	if err != nil {
		return nil, fmt.Errorf("session metrics: %w", err)
	}
	m.BlockedCommands = m.TotalCommands - m.AllowedCommands

	rows, err := s.db.Query(`
		SELECT risk_level, COUNT(*) FROM commands
		WHERE session_id = ? GROUP BY risk_level`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("risk distribution: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var level string
		var count int
		if err := rows.Scan(&level, &count); err != nil {
			return nil, fmt.Errorf("scan risk distribution: %w", err)
		}
		m.RiskDistribution[model.RiskLevel(level)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	top, err := s.db.Query(`
		SELECT command, COUNT(*) AS n FROM commands
		WHERE session_id = ? GROUP BY command ORDER BY n DESC LIMIT 10`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("top commands: %w", err)
	}
	defer top.Close()
	for top.Next() {
		var t CommandTally
		if err := top.Scan(&t.Command, &t.Count); err != nil {
			return nil, fmt.Errorf("scan top command: %w", err)
		}
		m.TopCommands = append(m.TopCommands, t)
	}
	return m, top.Err()
}
