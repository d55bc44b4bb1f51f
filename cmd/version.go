package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// inject version by '-X' flag
// go build -ldflags "-X romrelease/cmd.Version=${VERSION} -X romrelease/cmd.GitCommit=${COMMIT}"
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Print the version number of romrelease",
	// skip config loading, version must work without a valid config
	PersistentPreRun: func(cmd *cobra.Command, args []string) {},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "romrelease version: %s %s/%s\nBuildTime: %s, Commit: %s\n",
			Version, runtime.GOOS, runtime.GOARCH, BuildTime, GitCommit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
