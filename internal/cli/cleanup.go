package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cleanupDays int

func init() {
	rootCmd.AddCommand(cleanupCmd)
	cleanupCmd.Flags().IntVar(&cleanupDays, "days", 90, "Delete records older than this many days")
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete database records past the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openSessionManager()
		if err != nil {
			return err
		}
		defer st.Close()

		removed, err := st.Cleanup(cleanupDays)
		if err != nil {
			return err
		}
		fmt.Printf("removed %d records older than %d days\n", removed, cleanupDays)
		return nil
	},
}
