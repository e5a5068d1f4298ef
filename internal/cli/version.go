package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/bashbros/bashbros/internal/auditlog"
)

// version is set at build time with -ldflags "-X ...cli.version=v1.2.3".
var version = "dev"

func init() {
	auditlog.Version = version
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bashbros %s (%s, %s/%s)\n", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}
