// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlags holds the persistent flags shared by every subcommand.
type rootFlags struct {
	configPath   string
	dir          string
	name         string
	julia        string
	juliaVersion string
	verbose      bool
}

// newRootCommand builds the command tree around app.
func newRootCommand(app *App) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "jlproject",
		Short: "Build and manage precompiled Julia system images",
		Long: TitleStyle.Render("jlproject") + SubtitleStyle.Render(" - Build and manage precompiled Julia system images") + `

jlproject turns the dependencies declared in a Project.toml into a single
compiled system image named after the project and the Julia version, e.g.
sys_myproject-1.10.4.so.

` + SubtitleStyle.Render("Examples:") + `
  jlproject compile            Resolve, instantiate and compile the image
  jlproject compile --dry-run  Show the julia invocations without running them
  jlproject update             Upgrade dependencies and regenerate Manifest.toml
  jlproject status             Show manifests and images in the build directory
  jlproject clean              Remove the lock manifest and the compiled image
  jlproject julia              Show the julia executable in use`,
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/jlproject/config.cue)")
	pf.StringVarP(&flags.dir, "dir", "d", "", "build directory holding Project.toml (default is the working directory)")
	pf.StringVar(&flags.name, "name", "", "project name (default is the Project.toml name)")
	pf.StringVar(&flags.julia, "julia", "", "path to the julia executable")
	pf.StringVar(&flags.juliaVersion, "julia-version", "", "julia version encoded in the image name (default is asked from julia)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(
		newCompileCommand(app, flags),
		newUpdateCommand(app, flags),
		newCleanCommand(app, flags),
		newStatusCommand(app, flags),
		newJuliaCommand(app, flags),
		newConfigCommand(app, flags),
	)

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI. This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		newRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
