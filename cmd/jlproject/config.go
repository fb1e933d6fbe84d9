// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jlproject/jlproject/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `jlproject config` command tree.
// Subcommands that read configuration use the App's ConfigProvider.
func newConfigCommand(app *App, root *rootFlags) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage jlproject configuration",
		Long: `Manage jlproject configuration.

Configuration is read from the first file found among:
  - the file given with --config
  - the user config file:
      Linux: ~/.config/jlproject/config.cue
      macOS: ~/Library/Application Support/jlproject/config.cue
      Windows: %APPDATA%\jlproject\config.cue
  - jlproject.cue in the working directory

Every key can be overridden by a JLPROJECT_ environment variable, e.g.
JLPROJECT_JULIA_VERSION=1.10.4.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return app.showConfig(cmd.Context(), root)
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return app.initConfig(root, force)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration file")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return app.showConfigPath(root)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output merged configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			cfg, err := app.loadConfig(cmd.Context(), root)
			if err != nil {
				return app.fail(err, root.verbose)
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func loadOptions(root *rootFlags) config.LoadOptions {
	opts := config.LoadOptions{ConfigFilePath: root.configPath}
	if wd, err := os.Getwd(); err == nil {
		opts.WorkDir = wd
	}
	return opts
}

func (a *App) loadConfig(ctx context.Context, root *rootFlags) (*config.Config, error) {
	return a.Config.Load(ctx, loadOptions(root))
}

func (a *App) showConfig(ctx context.Context, root *rootFlags) error {
	cfg, err := a.loadConfig(ctx, root)
	if err != nil {
		return a.fail(err, root.verbose)
	}

	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	w := a.stdout
	value := func(v string) string {
		if v == "" {
			return SubtitleStyle.Render("(not set)")
		}
		return valueStyle.Render(v)
	}

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	source, err := a.Config.Source(loadOptions(root))
	if err != nil || source == "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), source)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("julia"))
	fmt.Fprintf(w, "  executable: %s\n", value(cfg.Julia.Executable))
	fmt.Fprintf(w, "  env_var: %s\n", value(cfg.Julia.EnvVar))
	fmt.Fprintf(w, "  search_paths: %s\n", value(strings.Join(cfg.Julia.SearchPaths, ", ")))
	fmt.Fprintf(w, "  version: %s\n", value(cfg.Julia.Version))
	fmt.Fprintf(w, "  depot: %s\n", value(cfg.Julia.Depot))
	fmt.Fprintf(w, "  registry_url: %s\n", value(cfg.Julia.RegistryURL))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("project"))
	fmt.Fprintf(w, "  name: %s\n", value(cfg.Project.Name))
	fmt.Fprintf(w, "  build_dir: %s\n", value(cfg.Project.BuildDir))
	fmt.Fprintf(w, "  artifact_base: %s\n", value(cfg.Project.ArtifactBase))
	fmt.Fprintf(w, "  compile_script: %s\n", value(cfg.Project.CompileScript))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("host"))
	fmt.Fprintf(w, "  callback_env_var: %s\n", value(cfg.Host.CallbackEnvVar))
	fmt.Fprintf(w, "  callback_executable: %s\n", value(cfg.Host.CallbackExecutable))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("log"))
	fmt.Fprintf(w, "  level: %s\n", value(cfg.Log.Level.String()))

	return nil
}

func (a *App) initConfig(root *rootFlags, force bool) error {
	cfgPath, err := config.ConfigFilePath()
	if err != nil {
		return a.fail(err, root.verbose)
	}

	if _, statErr := os.Stat(cfgPath); statErr == nil {
		if !force {
			fmt.Fprintf(a.stdout, "Config file already exists at: %s\n", cfgPath)
			return nil
		}
		if err := config.Save(config.DefaultConfig()); err != nil {
			return a.fail(err, root.verbose)
		}
		fmt.Fprintf(a.stdout, "%s Overwrote config file: %s\n", SuccessStyle.Render("✓"), cfgPath)
		return nil
	}

	created, err := config.CreateDefaultConfig()
	if err != nil {
		return a.fail(err, root.verbose)
	}
	fmt.Fprintf(a.stdout, "%s Created config file: %s\n", SuccessStyle.Render("✓"), created)
	return nil
}

func (a *App) showConfigPath(root *rootFlags) error {
	source, err := a.Config.Source(loadOptions(root))
	if err != nil {
		return a.fail(err, root.verbose)
	}
	if source != "" {
		fmt.Fprintln(a.stdout, source)
		return nil
	}
	cfgPath, err := config.ConfigFilePath()
	if err != nil {
		return a.fail(err, root.verbose)
	}
	fmt.Fprintln(a.stdout, cfgPath)
	return nil
}
