package cli

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version is set via -ldflags for release builds; a plain `go install`
// falls back to the module version stamped by the toolchain.
var Version = ""

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the lawgraph version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("lawgraph " + resolveVersion())
	},
}

func resolveVersion() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "devel"
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
