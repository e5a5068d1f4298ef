package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bashbros/bashbros/internal/model"
)

func init() {
	rootCmd.AddCommand(recordPromptCmd, recordToolCmd)
	recordToolCmd.Flags().StringVar(&toolInput, "input", "{}", "JSON-encoded tool input")
	recordToolCmd.Flags().StringVar(&toolOutput, "output", "{}", "JSON-encoded tool output")
}

var recordPromptCmd = &cobra.Command{
	Use:   "record-prompt [prompt]",
	Short: "Capture a user prompt (reads stdin when no argument)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var prompt string
		if len(args) > 0 {
			prompt = args[0]
		} else {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("read prompt from stdin: %w", err)
			}
			prompt = string(data)
		}

		st, mgr, err := openSessionManager()
		if err != nil {
			return err
		}
		defer st.Close()

		cwd, _ := os.Getwd()
		_, err = st.InsertPrompt(model.PromptRecord{
			SessionID:  mgr.CurrentID(),
			Prompt:     prompt,
			WorkingDir: cwd,
		})
		if err != nil {
			return fmt.Errorf("record prompt: %w", err)
		}
		return nil
	},
}

var (
	toolInput  string
	toolOutput string
)

var recordToolCmd = &cobra.Command{
	Use:   "record-tool <tool-name>",
	Short: "Capture a generic tool invocation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, mgr, err := openSessionManager()
		if err != nil {
			return err
		}
		defer st.Close()

		cwd, _ := os.Getwd()
		_, err = st.InsertToolUse(model.ToolUseRecord{
			SessionID:  mgr.CurrentID(),
			ToolName:   args[0],
			Input:      toolInput,
			Output:     toolOutput,
			WorkingDir: cwd,
			RepoName:   splitRepoName(cwd),
		})
		if err != nil {
			return fmt.Errorf("record tool use: %w", err)
		}
		return nil
	},
}
