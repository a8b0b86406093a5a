package cli

import (
	"runtime"

	"github.com/spf13/cobra"
)

// Version information set via ldflags at build time
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of hypertop.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		short, _ := cmd.Flags().GetBool("short")
		printVersion(cmd, short)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().Bool("short", false, "Print only the version number")
}

func printVersion(cmd *cobra.Command, short bool) {
	if short {
		cmd.Println(version)
		return
	}
	cmd.Printf("hypertop %s\n", formatVersion(version))
	cmd.Printf("commit: %s\n", commit)
	cmd.Printf("built: %s\n", date)
	cmd.Printf("go: %s\n", runtime.Version())
	cmd.Printf("os/arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

// formatVersion ensures version has a 'v' prefix for display
func formatVersion(v string) string {
	if v == "" || v == "dev" {
		return v
	}
	if v[0] != 'v' {
		return "v" + v
	}
	return v
}

// SetVersionInfo sets the version information (called from main).
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = formatVersion(v)
}

// GetVersion returns the current version string.
func GetVersion() string {
	return version
}
