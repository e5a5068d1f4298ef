package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bashbros/bashbros/internal/config"
	"github.com/bashbros/bashbros/internal/statedir"
)

var initConfigStdout bool

func init() {
	rootCmd.AddCommand(initConfigCmd)
	initConfigCmd.Flags().BoolVar(&initConfigStdout, "stdout", false, "Print the template instead of writing it")
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write a commented starter config",
	RunE: func(cmd *cobra.Command, args []string) error {
		if initConfigStdout {
			fmt.Print(config.DefaultConfigYAML())
			return nil
		}

		layout, err := statedir.Default()
		if err != nil {
			return fmt.Errorf("state dir: %w", err)
		}
		if err := layout.Ensure(); err != nil {
			return fmt.Errorf("state dir: %w", err)
		}

		path := filepath.Join(layout.Root, "config.yml")
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists, not overwriting", path)
		}

		if err := os.WriteFile(path, []byte(config.DefaultConfigYAML()), 0600); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	},
}
