package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bashbros/bashbros/internal/auditlog"
	"github.com/bashbros/bashbros/internal/statedir"
)

var auditTailN int

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditTailCmd, auditVerifyCmd)
	auditTailCmd.Flags().IntVarP(&auditTailN, "lines", "n", 20, "Number of entries to show")
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the audit log",
}

var auditTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Show the most recent audit entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		layout, err := statedir.Default()
		if err != nil {
			return err
		}
		entries, err := auditlog.Tail(layout.AuditLogPath(), auditTailN)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Print(auditlog.FormatLine(e))
		}
		return nil
	},
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check audit log integrity",
	RunE: func(cmd *cobra.Command, args []string) error {
		layout, err := statedir.Default()
		if err != nil {
			return err
		}
		result, err := auditlog.Verify(layout.AuditLogPath())
		if err != nil {
			return err
		}
		fmt.Printf("%d lines: %d allowed, %d blocked, %d malformed\n",
			result.Lines, result.Allowed, result.Blocked, result.Malformed)
		if result.Malformed > 0 {
			return fmt.Errorf("%d malformed lines", result.Malformed)
		}
		return nil
	},
}
