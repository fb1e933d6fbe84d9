// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/jlproject/jlproject/internal/issue"
	"github.com/jlproject/jlproject/pkg/cueutil"
	"github.com/jlproject/jlproject/pkg/platform"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "jlproject"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// LocalConfigFileName is looked up in the working directory.
	LocalConfigFileName = AppName + "." + ConfigFileExt
	// EnvPrefix prefixes environment overrides, e.g. JLPROJECT_JULIA_VERSION.
	EnvPrefix = "JLPROJECT"
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the jlproject configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case platform.Windows:
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case platform.Darwin:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// ConfigFilePath returns the path of the user config file.
func ConfigFilePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), nil
}

// resolveConfigPath returns the file loadWithOptions reads, or "" when none exists.
func resolveConfigPath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestions(
					"Verify the file path is correct",
					"Use 'jlproject config init' to create a config file",
				).
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}
	if p := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt); fileExists(p) {
		return p, nil
	}

	if p := filepath.Join(opts.WorkDir, LocalConfigFileName); fileExists(p) {
		return p, nil
	}
	return "", nil
}

// loadWithOptions performs option-driven config loading without mutating
// package-level state.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := newViper()

	path, err := resolveConfigPath(opts)
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestions(
					"Check that the file contains valid CUE syntax",
					"Verify the configuration values match the expected schema",
					"See 'jlproject config dump' for the defaults",
				).
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if valid, errs := cfg.IsValid(); !valid {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(path).
			WithSuggestion("Check JLPROJECT_* environment variables as well as the config file").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(errs[0]).
			BuildError()
	}

	return &cfg, path, nil
}

// newViper returns a Viper seeded with the defaults and bound to JLPROJECT_* variables.
func newViper() *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("julia.executable", defaults.Julia.Executable)
	v.SetDefault("julia.env_var", defaults.Julia.EnvVar)
	v.SetDefault("julia.search_paths", defaults.Julia.SearchPaths)
	v.SetDefault("julia.version", defaults.Julia.Version)
	v.SetDefault("julia.depot", defaults.Julia.Depot)
	v.SetDefault("julia.registry_url", defaults.Julia.RegistryURL)
	v.SetDefault("project.name", defaults.Project.Name)
	v.SetDefault("project.build_dir", defaults.Project.BuildDir)
	v.SetDefault("project.artifact_base", defaults.Project.ArtifactBase)
	v.SetDefault("project.compile_script", defaults.Project.CompileScript)
	v.SetDefault("host.callback_env_var", defaults.Host.CallbackEnvVar)
	v.SetDefault("host.callback_executable", defaults.Host.CallbackExecutable)
	v.SetDefault("log.level", string(defaults.Log.Level))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}
	return ConfigDir()
}

// loadCUEIntoViper validates a CUE file against #Config and merges it into Viper.
// Fields stay optional, so the result is decoded to a map rather than a struct.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	unified, err := cueutil.Unify(configSchema, "#Config", data, cueutil.WithFilename(path))
	if err != nil {
		return err
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return cueutil.FormatError(err, path)
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default config file if it does not exist and
// returns its path.
func CreateDefaultConfig() (string, error) {
	cfgPath, err := ConfigFilePath()
	if err != nil {
		return "", err
	}
	if fileExists(cfgPath) {
		return cfgPath, nil
	}
	if err := writeConfig(cfgPath, DefaultConfig()); err != nil {
		return "", err
	}
	return cfgPath, nil
}

// Save writes cfg to the user config file.
func Save(cfg *Config) error {
	cfgPath, err := ConfigFilePath()
	if err != nil {
		return err
	}
	return writeConfig(cfgPath, cfg)
}

func writeConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateCUE generates a CUE representation of the configuration. Empty
// optional strings are omitted.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// jlproject configuration file\n\n")

	sb.WriteString("julia: {\n")
	writeOptional(&sb, "\t", "executable", cfg.Julia.Executable)
	writeOptional(&sb, "\t", "env_var", cfg.Julia.EnvVar)
	if len(cfg.Julia.SearchPaths) > 0 {
		sb.WriteString("\tsearch_paths: [\n")
		for _, p := range cfg.Julia.SearchPaths {
			fmt.Fprintf(&sb, "\t\t%q,\n", p)
		}
		sb.WriteString("\t]\n")
	}
	writeOptional(&sb, "\t", "version", cfg.Julia.Version)
	writeOptional(&sb, "\t", "depot", cfg.Julia.Depot)
	writeOptional(&sb, "\t", "registry_url", cfg.Julia.RegistryURL)
	sb.WriteString("}\n")

	sb.WriteString("\nproject: {\n")
	writeOptional(&sb, "\t", "name", cfg.Project.Name)
	writeOptional(&sb, "\t", "build_dir", cfg.Project.BuildDir)
	writeOptional(&sb, "\t", "artifact_base", cfg.Project.ArtifactBase)
	writeOptional(&sb, "\t", "compile_script", cfg.Project.CompileScript)
	sb.WriteString("}\n")

	sb.WriteString("\nhost: {\n")
	writeOptional(&sb, "\t", "callback_env_var", cfg.Host.CallbackEnvVar)
	writeOptional(&sb, "\t", "callback_executable", cfg.Host.CallbackExecutable)
	sb.WriteString("}\n")

	sb.WriteString("\nlog: {\n")
	writeOptional(&sb, "\t", "level", string(cfg.Log.Level))
	sb.WriteString("}\n")

	return sb.String()
}

func writeOptional(sb *strings.Builder, indent, key, value string) {
	if value != "" {
		fmt.Fprintf(sb, "%s%s: %q\n", indent, key, value)
	}
}
