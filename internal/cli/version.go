package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/gogpu/mandel"
)

var (
	commit string // git commit SHA
	date   string // build timestamp
)

// SetBuildInfo records the commit and build date shown by the version
// command. main sets them from values injected via ldflags.
func SetBuildInfo(c, d string) {
	commit = c
	date = d
}

func versionTemplate() string {
	return fmt.Sprintf("%s %s\ncommit: %s\nbuilt: %s\n", appName, mandel.Version, orUnknown(commit), orUnknown(date))
}

func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprint(out, versionTemplate())
			fmt.Fprintf(out, "go: %s %s/%s, %d CPUs\n", runtime.Version(), runtime.GOOS, runtime.GOARCH, runtime.NumCPU())
		},
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
