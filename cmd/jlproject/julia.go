// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newJuliaCommand(app *App, root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "julia",
		Short: "Show the julia executable and its version",
		Long: `Locate the julia executable the same way compile does and print its path
and version. The lookup order is --julia, julia.executable, the environment
variable named by julia.env_var (JULIA by default), <search path>/bin/julia
for each julia.search_paths entry, and finally PATH.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return app.runJulia(cmd.Context(), root)
		},
	}
}

func (a *App) runJulia(ctx context.Context, root *rootFlags) error {
	s, err := a.newSession(ctx, root)
	if err != nil {
		return a.fail(err, root.verbose)
	}
	bridge, err := s.bridge()
	if err != nil {
		return a.fail(err, root.verbose)
	}
	version, err := bridge.Version(ctx)
	if err != nil {
		return a.fail(err, root.verbose)
	}

	fmt.Fprintf(a.stdout, "%s %s\n", SubtitleStyle.Render("executable:"), CmdStyle.Render(bridge.Executable()))
	fmt.Fprintf(a.stdout, "%s %s\n", SubtitleStyle.Render("version:   "), version)
	if pinned := s.configuredVersion(); pinned != "" && pinned != version {
		fmt.Fprintf(a.stdout, "%s %s\n", SubtitleStyle.Render("pinned:    "), WarningStyle.Render(pinned))
	}
	return nil
}
