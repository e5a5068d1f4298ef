package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bashbros/bashbros/internal/secrets"
)

func init() {
	rootCmd.AddCommand(scanCmd)
}

var scanCmd = &cobra.Command{
	Use:   "scan [file]",
	Short: "Scan text for leaked credentials",
	Long: "Scans a file (or stdin) for known credential formats: AWS keys,\n" +
		"GitHub and Slack tokens, Stripe and OpenAI keys, private key headers,\n" +
		"JWTs, and generic api_key/password assignments. Findings are shown\n" +
		"with redacted previews; the input is never modified.\n\n" +
		"Exit code 1 when any finding exists.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if len(args) > 0 {
			data, err = os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
		} else {
			data, err = io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
		}

		result := secrets.ScanText(string(data))
		if result.Clean {
			fmt.Println("clean: no credentials found")
			return nil
		}

		for _, f := range result.Findings {
			fmt.Printf("line %d: %s (%s) %s\n", f.Line, f.Pattern, f.Severity, f.Redacted)
		}
		os.Exit(1)
		return nil
	},
}
