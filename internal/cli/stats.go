package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bashbros/bashbros/internal/store"
)

var (
	statsSession string
	statsFormat  string
)

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVar(&statsSession, "session", "", "Show metrics for one session id")
	statsCmd.Flags().StringVarP(&statsFormat, "format", "f", "text", "Output format (text|json)")
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show session metrics, achievements, and XP",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, mgr, err := openSessionManager()
		if err != nil {
			return err
		}
		defer st.Close()

		sessionID := statsSession
		if sessionID == "" {
			sessionID = mgr.CurrentID()
		}

		if sessionID != "" {
			metrics, err := st.GetSessionMetrics(sessionID)
			if err != nil {
				return err
			}
			if statsFormat == "json" {
				return printJSON(metrics)
			}
			fmt.Printf("Session %s\n", sessionID)
			fmt.Printf("  commands: %d (%d allowed, %d blocked)\n",
				metrics.TotalCommands, metrics.AllowedCommands, metrics.BlockedCommands)
			fmt.Printf("  avg risk: %.1f\n", metrics.AvgRiskScore)
			for level, n := range metrics.RiskDistribution {
				fmt.Printf("  %s: %d\n", level, n)
			}
			if len(metrics.TopCommands) > 0 {
				fmt.Println("  top commands:")
				for _, t := range metrics.TopCommands {
					fmt.Printf("    %4d  %s\n", t.Count, t.Command)
				}
			}
			fmt.Println()
		}

		stats, err := st.GetAchievementStats()
		if err != nil {
			return err
		}
		badges := store.ComputeAchievements(stats)
		xp := store.ComputeXP(stats, badges)

		if statsFormat == "json" {
			return printJSON(map[string]any{
				"stats":  stats,
				"badges": badges,
				"xp":     xp,
			})
		}

		fmt.Printf("All time: %d commands, %d prompts, %d sessions, %d XP\n",
			stats.TotalCommands, stats.TotalPrompts, stats.TotalSessions, xp)
		for _, b := range badges {
			fmt.Printf("  [%s] %s\n", store.TierLabel(b.Tier), b.Name)
		}
		return nil
	},
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
