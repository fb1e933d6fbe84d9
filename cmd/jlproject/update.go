// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newUpdateCommand(app *App, root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Upgrade dependencies and regenerate the lock manifest",
		Long: `Remove Manifest.toml and the image for the current julia version, then
upgrade every dependency to the newest version Project.toml allows and
instantiate the result. Run compile afterwards to build a new image.

When julia.registry_url is set, that registry is added before upgrading.`,
		Example: `  jlproject update
  jlproject update --dir ./sysimage && jlproject compile --dir ./sysimage`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return app.runUpdate(cmd.Context(), root)
		},
	}
}

func (a *App) runUpdate(ctx context.Context, root *rootFlags) error {
	s, err := a.newSession(ctx, root)
	if err != nil {
		return a.fail(err, root.verbose)
	}
	p, _, err := s.provisioner(ctx, true, a.phaseOptions(root)...)
	if err != nil {
		return a.fail(err, root.verbose)
	}
	if err := p.Update(ctx); err != nil {
		return a.fail(err, root.verbose)
	}
	cfg := p.Config()
	fmt.Fprintf(a.stdout, "%s Updated %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(cfg.ManifestPaths().Lock))
	return nil
}
