package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"ely.by/tailor/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the Tailor version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "<unknown>"
		}

		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "Version:    %s\n", version.Version())
		_, _ = fmt.Fprintf(out, "Commit:     %s\n", version.Commit())
		_, _ = fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
		_, _ = fmt.Fprintf(out, "OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
		_, _ = fmt.Fprintf(out, "Hostname:   %s\n", hostname)
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
}
