// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"

	// Defined locally to avoid coupling config to the provisioning packages.
	defaultJuliaEnvVar    = "JULIA"
	defaultCompileScript  = "compile_julia_project.jl"
	defaultCallbackEnvVar = "PYCALL_JL_RUNTIME_PYTHON"
)

var (
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidSearchPath is returned for empty or whitespace-only search paths.
	ErrInvalidSearchPath = errors.New("invalid search path")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// LogLevel is the minimum level written by the CLI logger.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	// It wraps ErrInvalidLogLevel for errors.Is() compatibility.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// InvalidConfigError collects the field errors of a Config.
	// It wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config is the root configuration.
	Config struct {
		Julia   JuliaConfig   `json:"julia" mapstructure:"julia"`
		Project ProjectConfig `json:"project" mapstructure:"project"`
		Host    HostConfig    `json:"host" mapstructure:"host"`
		Log     LogConfig     `json:"log" mapstructure:"log"`
	}

	// JuliaConfig selects and parameterizes the Julia runtime.
	JuliaConfig struct {
		// Executable is the julia path. Empty means discover it.
		Executable string `json:"executable" mapstructure:"executable"`
		// EnvVar is consulted for the executable before search paths.
		EnvVar string `json:"env_var" mapstructure:"env_var"`
		// SearchPaths are installation prefixes searched for bin/julia.
		SearchPaths []string `json:"search_paths" mapstructure:"search_paths"`
		// Version is encoded in the image name. Empty means ask julia.
		Version string `json:"version" mapstructure:"version"`
		// Depot is exported as JULIA_DEPOT_PATH when set.
		Depot string `json:"depot" mapstructure:"depot"`
		// RegistryURL is an extra package registry added before resolving.
		RegistryURL string `json:"registry_url" mapstructure:"registry_url"`
	}

	// ProjectConfig describes the system image project.
	ProjectConfig struct {
		// Name defaults to the build directory's base name.
		Name string `json:"name" mapstructure:"name"`
		// BuildDir defaults to the working directory.
		BuildDir string `json:"build_dir" mapstructure:"build_dir"`
		// ArtifactBase defaults to "sys_" + Name.
		ArtifactBase  string `json:"artifact_base" mapstructure:"artifact_base"`
		CompileScript string `json:"compile_script" mapstructure:"compile_script"`
	}

	// HostConfig is the callback handshake passed to the image.
	HostConfig struct {
		CallbackEnvVar string `json:"callback_env_var" mapstructure:"callback_env_var"`
		// CallbackExecutable defaults to python on PATH.
		CallbackExecutable string `json:"callback_executable" mapstructure:"callback_executable"`
	}

	// LogConfig configures the CLI logger.
	LogConfig struct {
		Level LogLevel `json:"level" mapstructure:"level"`
	}
)

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// IsValid returns whether the LogLevel is one of the defined levels.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

// Error implements the error interface for InvalidLogLevelError.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// IsValid returns whether the JuliaConfig has valid fields.
func (c JuliaConfig) IsValid() (bool, []error) {
	var errs []error
	for i, p := range c.SearchPaths {
		if strings.TrimSpace(p) == "" {
			errs = append(errs, fmt.Errorf("julia.search_paths[%d]: %w", i, ErrInvalidSearchPath))
		}
	}
	return len(errs) == 0, errs
}

// IsValid returns whether the Config has valid fields. It delegates to
// Julia.IsValid() and Log.Level.IsValid().
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Julia.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Log.Level.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig and the field errors.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Julia: JuliaConfig{
			EnvVar:      defaultJuliaEnvVar,
			SearchPaths: []string{},
		},
		Project: ProjectConfig{
			CompileScript: defaultCompileScript,
		},
		Host: HostConfig{
			CallbackEnvVar: defaultCallbackEnvVar,
		},
		Log: LogConfig{
			Level: LogLevelInfo,
		},
	}
}
