// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newCleanCommand(app *App, root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove the lock manifest and the compiled image",
		Long: `Remove Manifest.toml and the image for the current julia version from the
build directory. Files that do not exist are skipped, so clean can be run
any number of times.

Julia is only started when no version is pinned with --julia-version or
julia.version.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return app.runClean(cmd.Context(), root)
		},
	}
}

func (a *App) runClean(ctx context.Context, root *rootFlags) error {
	s, err := a.newSession(ctx, root)
	if err != nil {
		return a.fail(err, root.verbose)
	}
	p, _, err := s.provisioner(ctx, false)
	if err != nil {
		return a.fail(err, root.verbose)
	}
	if err := p.Clean(); err != nil {
		return a.fail(err, root.verbose)
	}
	fmt.Fprintf(a.stdout, "%s Cleaned %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(s.dir))
	return nil
}
