package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bashbros/bashbros/internal/statedir"
	"github.com/bashbros/bashbros/internal/undo"
)

var (
	undoList    bool
	undoCommand string
)

func init() {
	rootCmd.AddCommand(undoCmd)
	undoCmd.AddCommand(undoRecordCmd)
	undoCmd.Flags().BoolVarP(&undoList, "list", "l", false, "List recorded operations without undoing")
	undoRecordCmd.Flags().StringVar(&undoCommand, "command", "", "Command responsible for the change")
}

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Reverse the most recent recorded file operation",
	RunE: func(cmd *cobra.Command, args []string) error {
		stack, err := openUndoStack()
		if err != nil {
			return err
		}

		if undoList {
			entries := stack.Entries()
			if len(entries) == 0 {
				fmt.Println("undo stack is empty")
				return nil
			}
			for i := len(entries) - 1; i >= 0; i-- {
				e := entries[i]
				fmt.Printf("%s  %-6s  %s\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.Operation, e.Path)
			}
			return nil
		}

		entry, err := stack.Undo()
		if err != nil {
			return err
		}
		fmt.Printf("reverted %s of %s\n", entry.Operation, entry.Path)
		return nil
	},
}

var undoRecordCmd = &cobra.Command{
	Use:   "record <create|modify|delete> <path>",
	Short: "Record a file operation before it happens",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		stack, err := openUndoStack()
		if err != nil {
			return err
		}

		path := args[1]
		switch undo.Operation(args[0]) {
		case undo.OpCreate:
			return stack.RecordCreate(path, undoCommand)
		case undo.OpModify:
			return stack.RecordModify(path, undoCommand)
		case undo.OpDelete:
			return stack.RecordDelete(path, undoCommand)
		default:
			return fmt.Errorf("unknown operation %q (want create, modify, or delete)", args[0])
		}
	},
}

func openUndoStack() (*undo.Stack, error) {
	layout, err := statedir.Default()
	if err != nil {
		return nil, fmt.Errorf("state dir: %w", err)
	}
	if err := layout.Ensure(); err != nil {
		return nil, fmt.Errorf("state dir: %w", err)
	}
	return undo.Open(layout.UndoDir())
}
