package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"mercator-hq/ganymede/pkg/cli"
)

var (
	// Version is the semantic version (set by build flags)
	Version = "0.1.0"
	// GitCommit is the git commit hash (set by build flags)
	GitCommit = "unknown"
	// BuildDate is the build timestamp (set by build flags)
	BuildDate = "unknown"
)

var versionFlags struct {
	format string
}

type versionInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func (v versionInfo) String() string {
	return fmt.Sprintf("Mercator Ganymede %s\nGit Commit: %s\nBuild Date: %s\nGo Version: %s\nOS/Arch: %s",
		v.Version, v.GitCommit, v.BuildDate, v.GoVersion, v.Platform)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print detailed version information including Git commit and build date.`,
	RunE:  printVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().StringVar(&versionFlags.format, "format", "text", "output format (text, json)")
}

func printVersion(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(versionFlags.format)
	if err != nil {
		return cli.NewUsageError("version", err.Error())
	}

	info := versionInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}

	return cli.NewFormatter(format).FormatTo(os.Stdout, info)
}
