package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and source revision",
	Run: func(cmd *cobra.Command, args []string) {
		line := "laesemaskine " + version
		if rev := revision(); rev != "" {
			line += " (" + rev + ")"
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
	},
}

// revision returns the short VCS revision stamped by the go tool, with a
// "-dirty" suffix for modified trees. Test binaries carry none.
func revision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	var rev, dirty string
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			if s.Value == "true" {
				dirty = "-dirty"
			}
		}
	}
	if rev == "" {
		return ""
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	return rev + dirty
}
