// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/jlproject/jlproject/pkg/platform"
)

// DefaultCallbackEnvVar is the Julia environment variable that tells PyCall-style
// bridges which host executable to call back into when the image is loaded.
const DefaultCallbackEnvVar = "PYCALL_JL_RUNTIME_PYTHON"

// DefaultCallbackInterpreter is looked up on PATH when no callback executable
// is configured.
const DefaultCallbackInterpreter = "python"

var (
	// ErrInvalidProjectName is returned when the project name is empty.
	ErrInvalidProjectName = errors.New("invalid project name")
	// ErrRelativeBuildDir is returned when the build directory is not absolute.
	ErrRelativeBuildDir = errors.New("build directory must be an absolute path")
)

type (
	// HostCallback describes the host executable the compiled image calls back into.
	HostCallback struct {
		// EnvVar is the Julia ENV key set during compilation.
		EnvVar string
		// Executable is the host executable path. Empty means the
		// DefaultCallbackInterpreter found on PATH.
		Executable string
	}

	// ProjectConfig is the immutable description of one system image build.
	ProjectConfig struct {
		// Name is the project name.
		Name string

		// BuildDir is the absolute directory holding the manifests, the compile
		// script and the produced images.
		BuildDir string

		// RuntimeVersion is the Julia version encoded in the artifact name.
		// It may be empty at construction but must be set before Compile or Clean.
		RuntimeVersion string

		// ArtifactBase prefixes the artifact file name. Default: "sys_" + Name.
		ArtifactBase string

		// CompileScript is the script file name inside BuildDir.
		// Default: compile_julia_project.jl
		CompileScript string

		// LibSuffix is the shared-library suffix. Default: the host platform's.
		LibSuffix string

		// Callback is the host handshake passed to the runtime before compiling.
		Callback HostCallback

		// RegistryURL is an extra package registry added before resolving.
		// Empty means only the runtime's default registries are used.
		RegistryURL string

		lookPath func(string) (string, error)
	}

	// Option is a functional option for configuring a ProjectConfig.
	Option func(*ProjectConfig)
)

// NewProjectConfig builds a ProjectConfig for name and buildDir, applying opts
// over the defaults and validating the result.
func NewProjectConfig(name, buildDir string, opts ...Option) (*ProjectConfig, error) {
	cfg := &ProjectConfig{
		Name:          name,
		BuildDir:      buildDir,
		ArtifactBase:  DefaultArtifactPrefix + name,
		CompileScript: DefaultCompileScript,
		LibSuffix:     platform.SharedLibSuffix(),
		Callback:      HostCallback{EnvVar: DefaultCallbackEnvVar},
	}
	cfg.Apply(opts...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.BuildDir = filepath.Clean(cfg.BuildDir)
	return cfg, nil
}

// WithRuntimeVersion returns an Option that sets RuntimeVersion.
func WithRuntimeVersion(version string) Option {
	return func(c *ProjectConfig) {
		c.RuntimeVersion = strings.TrimSpace(version)
	}
}

// WithArtifactBase returns an Option that overrides the artifact base name.
// An empty base keeps the default.
func WithArtifactBase(base string) Option {
	return func(c *ProjectConfig) {
		if base != "" {
			c.ArtifactBase = base
		}
	}
}

// WithCompileScript returns an Option that overrides the compile script name.
func WithCompileScript(script string) Option {
	return func(c *ProjectConfig) {
		if script != "" {
			c.CompileScript = script
		}
	}
}

// WithLibSuffix returns an Option that overrides the shared-library suffix.
// This is mainly for tests that need a suffix independent of the host.
func WithLibSuffix(suffix string) Option {
	return func(c *ProjectConfig) {
		c.LibSuffix = suffix
	}
}

// WithHostCallback returns an Option that sets the host handshake.
// Empty fields keep their defaults.
func WithHostCallback(cb HostCallback) Option {
	return func(c *ProjectConfig) {
		if cb.EnvVar != "" {
			c.Callback.EnvVar = cb.EnvVar
		}
		if cb.Executable != "" {
			c.Callback.Executable = cb.Executable
		}
	}
}

// WithRegistryURL returns an Option that sets the extra package registry.
func WithRegistryURL(url string) Option {
	return func(c *ProjectConfig) {
		c.RegistryURL = strings.TrimSpace(url)
	}
}

// Apply applies the given options to the config.
func (c *ProjectConfig) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Validate checks the fields that do not need the filesystem.
func (c *ProjectConfig) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrInvalidProjectName
	}
	if !filepath.IsAbs(c.BuildDir) {
		return fmt.Errorf("%w: %q", ErrRelativeBuildDir, c.BuildDir)
	}
	if err := platform.ValidateFileBase(c.ArtifactBase); err != nil {
		return fmt.Errorf("artifact base: %w", err)
	}
	if err := platform.ValidateFileBase(c.CompileScript); err != nil {
		return fmt.Errorf("compile script: %w", err)
	}
	return nil
}

// ManifestPaths returns the manifest paths inside the build directory.
func (c *ProjectConfig) ManifestPaths() ManifestPaths {
	return ManifestPathsFor(c.BuildDir)
}

// ArtifactPaths returns the image paths, or ErrInvalidVersion if no version is set.
func (c *ProjectConfig) ArtifactPaths() (ArtifactPaths, error) {
	return ArtifactPathsFor(c.BuildDir, c.ArtifactBase, c.RuntimeVersion, c.LibSuffix)
}

// CompileScriptPath returns the absolute path of the compile script.
func (c *ProjectConfig) CompileScriptPath() string {
	return filepath.Join(c.BuildDir, c.CompileScript)
}

// CallbackExecutable returns the configured host executable, falling back to
// DefaultCallbackInterpreter on PATH. It returns "" when neither is available.
func (c *ProjectConfig) CallbackExecutable() string {
	if c.Callback.Executable != "" {
		return c.Callback.Executable
	}
	lookPath := c.lookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	exe, err := lookPath(DefaultCallbackInterpreter)
	if err != nil {
		return ""
	}
	return exe
}

// HandshakeExpression renders the Julia expression that publishes the host
// executable to the runtime. It is empty when there is no executable to publish.
func (c *ProjectConfig) HandshakeExpression() string {
	exe := c.CallbackExecutable()
	if exe == "" {
		return ""
	}
	return fmt.Sprintf("ENV[%s] = %s", juliaString(c.Callback.EnvVar), juliaString(exe))
}

var juliaEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, `$`, `\$`)

// juliaString quotes s as a Julia string literal.
func juliaString(s string) string {
	return `"` + juliaEscaper.Replace(s) + `"`
}
