// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jlproject/jlproject/internal/juliabridge"
	"github.com/jlproject/jlproject/internal/provision"

	"github.com/spf13/cobra"
	"mvdan.cc/sh/v3/syntax"
)

type compileFlags struct {
	dryRun bool
	clean  bool
}

func newCompileCommand(app *App, root *rootFlags) *cobra.Command {
	flags := &compileFlags{}

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Resolve dependencies and compile the system image",
		Long: `Resolve and instantiate the dependencies declared in Project.toml, run the
compile script in the build directory and publish the resulting image under
its version-qualified name.

The lock manifest (Manifest.toml) is always regenerated. If resolution fails,
the registry is updated and resolution is attempted exactly once more.`,
		Example: `  jlproject compile
  jlproject compile --dir ./sysimage --julia-version 1.10.4
  jlproject compile --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return app.runCompile(cmd.Context(), root, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "print the julia invocations without running them")
	cmd.Flags().BoolVar(&flags.clean, "clean", false, "remove the lock manifest and a previous image first")

	return cmd
}

func (a *App) runCompile(ctx context.Context, root *rootFlags, flags *compileFlags) error {
	s, err := a.newSession(ctx, root)
	if err != nil {
		return a.fail(err, root.verbose)
	}

	p, bridge, err := s.provisioner(ctx, !flags.dryRun, a.phaseOptions(root)...)
	if err != nil {
		return a.fail(err, root.verbose)
	}

	if flags.dryRun {
		if bridge == nil {
			if bridge, err = s.bridge(); err != nil {
				return a.fail(err, root.verbose)
			}
		}
		cfg := p.Config()
		steps, err := compilePlan(ctx, &cfg, bridge)
		if err != nil {
			return a.fail(err, root.verbose)
		}
		renderPlan(a.stdout, steps)
		return nil
	}

	if flags.clean {
		if err := p.Clean(); err != nil {
			return a.fail(err, root.verbose)
		}
	}

	if err := p.Compile(ctx); err != nil {
		return a.fail(err, root.verbose)
	}

	cfg := p.Config()
	artifacts, _ := cfg.ArtifactPaths() //nolint:errcheck // Compile succeeded, so the version is valid
	fmt.Fprintf(a.stdout, "%s Compiled %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(artifacts.Target))
	return nil
}

// phaseOptions prints every phase transition in verbose mode.
func (a *App) phaseOptions(root *rootFlags) []provision.ProvisionerOption {
	if !root.verbose {
		return nil
	}
	return []provision.ProvisionerOption{provision.WithPhaseHook(func(phase provision.Phase) {
		fmt.Fprintf(a.stderr, "%s %s\n", VerboseStyle.Render("→"), VerboseHighlightStyle.Render(phase.String()))
	})}
}

// planStep is one action of a compile run as it would be executed.
type planStep struct {
	title string
	dir   string
	env   []string
	argv  []string
}

// compilePlan lists the actions Compile performs, expressed as shell commands.
func compilePlan(ctx context.Context, cfg *provision.ProjectConfig, bridge *juliabridge.ExecBridge) ([]planStep, error) {
	artifacts, err := cfg.ArtifactPaths()
	if err != nil {
		return nil, err
	}
	manifests := cfg.ManifestPaths()
	if err := bridge.Activate(ctx, cfg.BuildDir); err != nil {
		return nil, err
	}

	env := bridge.Env()

	julia := func(title, dir, code string) planStep {
		return planStep{title: title, dir: dir, env: env, argv: bridge.CommandLine(code)}
	}
	compileCode := juliabridge.IncludeCode(cfg.CompileScriptPath())
	if expr := cfg.HandshakeExpression(); expr != "" {
		compileCode = expr + "\n" + compileCode
	}

	steps := []planStep{
		{title: "remove the lock manifest", argv: []string{"rm", "-f", manifests.Lock}},
		{title: "remove a stale compiled image", argv: []string{"rm", "-f", artifacts.Compiled}},
	}
	if cfg.RegistryURL != "" {
		steps = append(steps, julia("add the package registry", "", juliabridge.RegistryCode(cfg.RegistryURL)))
	}
	return append(steps,
		julia("resolve dependencies", "", juliabridge.ResolveCode),
		julia("on failure, update the registry and resolve once more", "", juliabridge.UpdateCode),
		julia("instantiate dependencies", "", juliabridge.InstantiateCode),
		julia("run the compile script", cfg.BuildDir, compileCode),
		planStep{title: "publish the image", argv: []string{"mv", artifacts.Compiled, artifacts.Target}},
	), nil
}

func renderPlan(w io.Writer, steps []planStep) {
	fmt.Fprintln(w, TitleStyle.Render("Compile plan"))
	for i, step := range steps {
		fmt.Fprintf(w, "\n%s %s\n", SubtitleStyle.Render(strconv.Itoa(i+1)+"."), step.title)
		fmt.Fprintf(w, "   %s\n", CmdStyle.Render(shellLine(step)))
	}
}

// shellLine renders a step as a single bash command line.
func shellLine(step planStep) string {
	var parts []string
	if step.dir != "" {
		parts = append(parts, "cd", shellQuote(step.dir), "&&")
	}
	for _, kv := range step.env {
		key, value, _ := strings.Cut(kv, "=")
		parts = append(parts, key+"="+shellQuote(value))
	}
	for _, arg := range step.argv {
		parts = append(parts, shellQuote(arg))
	}
	return strings.Join(parts, " ")
}

func shellQuote(s string) string {
	q, err := syntax.Quote(s, syntax.LangBash)
	if err != nil {
		return strconv.Quote(s)
	}
	return q
}
