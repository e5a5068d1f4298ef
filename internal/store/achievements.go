package store

import "fmt"

// AchievementStats are the aggregate counters the badge and XP read-models
// derive from. This owns no primary state.
type AchievementStats struct {
	TotalCommands     int `json:"total_commands"`
	AllowedCommands   int `json:"allowed_commands"`
	BlockedCommands   int `json:"blocked_commands"`
	TotalPrompts      int `json:"total_prompts"`
	TotalSessions     int `json:"total_sessions"`
	CompletedSessions int `json:"completed_sessions"`
	CriticalBlocked   int `json:"critical_blocked"`
}

// GetAchievementStats aggregates counters across the whole store.
func (s *Store) GetAchievementStats() (AchievementStats, error) {
	var stats AchievementStats

	err := s.db.QueryRow(`
		SELECT COUNT(*),
			COALESCE(SUM(allowed), 0),
			COALESCE(SUM(CASE WHEN allowed = 0 AND risk_level = 'critical' THEN 1 ELSE 0 END), 0)
		FROM commands`).Scan(&stats.TotalCommands, &stats.AllowedCommands, &stats.CriticalBlocked)
	if err != nil {
		return stats, fmt.Errorf("achievement command stats: %w", err)
	}
	stats.BlockedCommands = stats.TotalCommands - stats.AllowedCommands

	if err := s.db.QueryRow("SELECT COUNT(*) FROM user_prompts").Scan(&stats.TotalPrompts); err != nil {
		return stats, fmt.Errorf("achievement prompt stats: %w", err)
	}

	err = s.db.QueryRow(`
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0)
		FROM sessions`).Scan(&stats.TotalSessions, &stats.CompletedSessions)
	if err != nil {
		return stats, fmt.Errorf("achievement session stats: %w", err)
	}

	return stats, nil
}

// Badge is one earned achievement tier.
type Badge struct {
	Name string `json:"name"`
	Tier int    `json:"tier"` // 1 bronze, 2 silver, 3 gold
}

// TierLabel returns the metal name for a badge tier.
func TierLabel(tier int) string {
	switch tier {
	case 3:
		return "Gold"
	case 2:
		return "Silver"
	default:
		return "Bronze"
	}
}

// badgeRule defines a tiered achievement over a single counter.
type badgeRule struct {
	name       string
	counter    func(AchievementStats) int
	thresholds [3]int // bronze, silver, gold
}

var badgeRules = []badgeRule{
	{"commander", func(s AchievementStats) int { return s.TotalCommands }, [3]int{10, 100, 1000}},
	{"conversationalist", func(s AchievementStats) int { return s.TotalPrompts }, [3]int{1, 50, 500}},
	{"marathoner", func(s AchievementStats) int { return s.CompletedSessions }, [3]int{1, 25, 100}},
	{"gatekeeper", func(s AchievementStats) int { return s.BlockedCommands }, [3]int{1, 10, 100}},
	{"bomb defuser", func(s AchievementStats) int { return s.CriticalBlocked }, [3]int{1, 5, 25}},
}

// ComputeAchievements evaluates badge tiers from aggregate stats.
func ComputeAchievements(stats AchievementStats) []Badge {
	var badges []Badge
	for _, rule := range badgeRules {
		v := rule.counter(stats)
		tier := 0
		for i, threshold := range rule.thresholds {
			if v >= threshold {
				tier = i + 1
			}
		}
		if tier > 0 {
			badges = append(badges, Badge{Name: rule.name, Tier: tier})
		}
	}
	return badges
}

// ComputeXP turns stats and earned badges into an experience total.
// Commands are worth 1, prompts 2, completed sessions 25, and each badge
// tier 100 times its tier.
func ComputeXP(stats AchievementStats, badges []Badge) int {
	xp := stats.TotalCommands + 2*stats.TotalPrompts + 25*stats.CompletedSessions
	for _, b := range badges {
		xp += 100 * b.Tier
	}
	return xp
}
