package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bashbros/bashbros/internal/model"
	"github.com/bashbros/bashbros/internal/session"
	"github.com/bashbros/bashbros/internal/statedir"
	"github.com/bashbros/bashbros/internal/store"
)

var recordExitCode int

func init() {
	rootCmd.AddCommand(recordCmd)
	recordCmd.Flags().IntVar(&recordExitCode, "exit-code", 0, "Exit code of the executed command")
}

var recordCmd = &cobra.Command{
	Use:   "record <command> [output]",
	Short: "Record a command's execution result (post-execution hook)",
	Long: "Called by the host after a command ran. Stores the execution result\n" +
		"as a tool-use row attached to the open session. No decision is made.",
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		layout, err := statedir.Default()
		if err != nil {
			return fmt.Errorf("state dir: %w", err)
		}
		if err := layout.Ensure(); err != nil {
			return fmt.Errorf("state dir: %w", err)
		}

		st, err := store.Open(layout.DBPath())
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		output := ""
		if len(args) > 1 {
			output = args[1]
		}
		cwd, _ := os.Getwd()

		input, _ := json.Marshal(map[string]string{"command": args[0]})
		outputJSON, _ := json.Marshal(map[string]string{"output": truncateOutput(output)})
		success := recordExitCode == 0

		mgr := session.NewManager(st, layout.SessionStatePath())
		_, err = st.InsertToolUse(model.ToolUseRecord{
			SessionID:  mgr.CurrentID(),
			ToolName:   "bash",
			Input:      string(input),
			Output:     string(outputJSON),
			ExitCode:   &recordExitCode,
			Success:    &success,
			WorkingDir: cwd,
		})
		if err != nil {
			return fmt.Errorf("record execution: %w", err)
		}
		return nil
	},
}

// truncateOutput keeps stored command output to a sane size.
func truncateOutput(s string) string {
	const max = 10000
	if len(s) <= max {
		return s
	}
	return s[:max] + "... [truncated " + fmt.Sprint(len(s)-max) + " bytes]"
}

// splitRepoName extracts a repo name from a working directory path.
func splitRepoName(cwd string) string {
	parts := strings.Split(strings.TrimSuffix(cwd, "/"), "/")
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}
