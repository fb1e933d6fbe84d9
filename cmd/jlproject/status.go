// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jlproject/jlproject/internal/provision"

	"github.com/spf13/cobra"
)

func newStatusCommand(app *App, root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show manifests and images in the build directory",
		Long: `Report which manifests and images exist in the build directory, the
dependencies declared in Project.toml and the packages recorded in the lock
manifest. Nothing is modified.

Without a pinned version, julia is asked for its version if it can be found;
otherwise the published image is reported as unknown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return app.runStatus(cmd.Context(), root)
		},
	}
}

func (a *App) runStatus(ctx context.Context, root *rootFlags) error {
	s, err := a.newSession(ctx, root)
	if err != nil {
		return a.fail(err, root.verbose)
	}

	version := s.configuredVersion()
	if version == "" {
		if bridge, bridgeErr := s.bridge(); bridgeErr == nil {
			if v, vErr := bridge.Version(ctx); vErr == nil {
				version = v
			} else {
				s.logger.Debug("cannot query julia version", "err", vErr)
			}
		} else {
			s.logger.Debug("julia not available", "err", bridgeErr)
		}
	}

	pc, err := s.projectConfig(version)
	if err != nil {
		return a.fail(err, root.verbose)
	}
	st := provision.NewProvisioner(pc, nil, provision.WithLogger(s.logger)).Status()
	renderStatus(a.stdout, pc, st)
	return nil
}

func renderStatus(w io.Writer, pc *provision.ProjectConfig, st provision.Status) {
	present := func(ok bool) string {
		if ok {
			return SuccessStyle.Render("present")
		}
		return SubtitleStyle.Render("absent")
	}
	row := func(label, value string) {
		fmt.Fprintf(w, "  %s %s\n", SubtitleStyle.Render(fmt.Sprintf("%-15s", label+":")), value)
	}

	fmt.Fprintln(w, TitleStyle.Render("System image status"))
	fmt.Fprintln(w)

	row("project", pc.Name)
	if st.BuildDirExists {
		row("build dir", CmdStyle.Render(st.BuildDir))
	} else {
		row("build dir", CmdStyle.Render(st.BuildDir)+" "+WarningStyle.Render("missing"))
	}

	if st.ProjectManifest != "" {
		row("manifest", CmdStyle.Render(st.ProjectManifest))
	} else {
		row("manifest", WarningStyle.Render("missing"))
	}
	if st.Project != nil {
		deps := st.Project.DependencyNames()
		if len(deps) == 0 {
			row("dependencies", SubtitleStyle.Render("none"))
		} else {
			row("dependencies", strings.Join(deps, ", "))
		}
	}

	lock := CmdStyle.Render(st.LockManifest) + " " + present(st.Lock != nil)
	if st.Lock != nil {
		lock += SubtitleStyle.Render(fmt.Sprintf(" (%d packages", len(st.Lock.Packages())))
		if st.Lock.JuliaVersion != "" {
			lock += SubtitleStyle.Render(", julia " + st.Lock.JuliaVersion)
		}
		lock += SubtitleStyle.Render(")")
	}
	row("lock", lock)

	row("compiled", CmdStyle.Render(st.CompiledImage)+" "+present(st.CompiledImageExists))

	switch {
	case st.TargetImage == "":
		row("image", WarningStyle.Render("unknown (julia version not available)"))
	case st.TargetImageExists:
		row("image", CmdStyle.Render(st.TargetImage)+" "+present(true))
		row("sha256", SubtitleStyle.Render(st.TargetSHA256))
	default:
		row("image", CmdStyle.Render(st.TargetImage)+" "+present(false))
	}

	if len(st.Problems) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, WarningStyle.Render("Problems:"))
		for _, p := range st.Problems {
			fmt.Fprintf(w, "  • %s\n", p)
		}
	}
}
