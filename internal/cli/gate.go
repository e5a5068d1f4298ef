package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bashbros/bashbros/internal/gate"
)

func init() {
	rootCmd.AddCommand(gateCmd)
}

var gateCmd = &cobra.Command{
	Use:   "gate <command>",
	Short: "Decide whether a proposed command is permitted",
	Long: "Runs the policy pipeline for one command. Exit 0 means allowed,\n" +
		"non-zero means denied; the reason is printed on stderr so the host\n" +
		"agent can surface it to the user.",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		decision := gate.Run(args[0], flagConfig)
		if !decision.Allowed {
			fmt.Fprintln(os.Stderr, decision.Reason)
			os.Exit(2)
		}
	},
}
