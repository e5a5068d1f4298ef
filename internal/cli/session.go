package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bashbros/bashbros/internal/config"
	"github.com/bashbros/bashbros/internal/session"
	"github.com/bashbros/bashbros/internal/statedir"
	"github.com/bashbros/bashbros/internal/store"
)

var sessionAgent string

func init() {
	rootCmd.AddCommand(sessionStartCmd, sessionEndCmd)
	sessionStartCmd.Flags().StringVar(&sessionAgent, "agent", "", "Agent label (default: from config)")
}

// openSessionManager is the shared setup for session lifecycle commands.
// The caller must Close the returned store.
func openSessionManager() (*store.Store, *session.Manager, error) {
	layout, err := statedir.Default()
	if err != nil {
		return nil, nil, fmt.Errorf("state dir: %w", err)
	}
	if err := layout.Ensure(); err != nil {
		return nil, nil, fmt.Errorf("state dir: %w", err)
	}

	st, err := store.Open(layout.DBPath())
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	return st, session.NewManager(st, layout.SessionStatePath()), nil
}

var sessionStartCmd = &cobra.Command{
	Use:   "session-start",
	Short: "Start a supervised session",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, mgr, err := openSessionManager()
		if err != nil {
			return err
		}
		defer st.Close()

		agent := sessionAgent
		if agent == "" {
			cfg, err := config.Load(flagConfig)
			if err == nil {
				agent = cfg.Agent
			} else {
				agent = "unknown"
			}
		}

		cwd, _ := os.Getwd()
		id, err := mgr.Start(agent, cwd, splitRepoName(cwd))
		if err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	},
}

var sessionEndCmd = &cobra.Command{
	Use:   "session-end",
	Short: "End the open session and persist its metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, mgr, err := openSessionManager()
		if err != nil {
			return err
		}
		defer st.Close()
		return mgr.End()
	},
}
