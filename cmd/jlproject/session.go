// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jlproject/jlproject/internal/config"
	"github.com/jlproject/jlproject/internal/issue"
	"github.com/jlproject/jlproject/internal/juliabridge"
	"github.com/jlproject/jlproject/internal/manifest"
	"github.com/jlproject/jlproject/internal/provision"

	"github.com/charmbracelet/log"
)

// session is the per-invocation state shared by the provisioning commands:
// the merged configuration, the logger and the resolved build directory.
type session struct {
	app    *App
	flags  *rootFlags
	cfg    *config.Config
	logger *log.Logger
	wd     string
	dir    string

	juliaPath string
}

func (a *App) newSession(ctx context.Context, flags *rootFlags) (*session, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("working directory: %w", err)
	}

	cfg, err := a.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: flags.configPath,
		WorkDir:        wd,
	})
	if err != nil {
		return nil, err
	}

	s := &session{app: a, flags: flags, cfg: cfg, wd: wd}
	s.logger = s.newLogger()
	s.dir = s.buildDir()
	s.logger.Debug("session ready", "build_dir", s.dir)
	return s, nil
}

func (s *session) newLogger() *log.Logger {
	logger := log.NewWithOptions(s.app.stderr, log.Options{Prefix: "jlproject"})
	level, err := log.ParseLevel(s.cfg.Log.Level.String())
	if err != nil {
		level = log.InfoLevel
	}
	if s.flags.verbose {
		level = log.DebugLevel
	}
	logger.SetLevel(level)
	return logger
}

// buildDir picks --dir, then project.build_dir, then the working directory.
// Relative paths are taken from the working directory.
func (s *session) buildDir() string {
	dir := s.flags.dir
	if dir == "" {
		dir = s.cfg.Project.BuildDir
	}
	if dir == "" {
		dir = s.wd
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(s.wd, dir)
	}
	return filepath.Clean(dir)
}

// projectName picks --name, then project.name, then the Project.toml name,
// then the build directory's base name.
func (s *session) projectName() string {
	if s.flags.name != "" {
		return s.flags.name
	}
	if s.cfg.Project.Name != "" {
		return s.cfg.Project.Name
	}
	if path, ok := provision.ManifestPathsFor(s.dir).ExistingProject(); ok {
		if proj, err := manifest.LoadProject(path); err == nil && proj.Name != "" {
			return proj.Name
		}
	}
	return filepath.Base(s.dir)
}

// configuredVersion returns the version pinned by flag or config, or "".
func (s *session) configuredVersion() string {
	v := s.flags.juliaVersion
	if v == "" {
		v = s.cfg.Julia.Version
	}
	return strings.TrimPrefix(strings.TrimSpace(v), "v")
}

// julia locates the julia executable once per session.
func (s *session) julia() (string, error) {
	if s.juliaPath != "" {
		return s.juliaPath, nil
	}

	explicit := s.flags.julia
	if explicit == "" {
		explicit = s.cfg.Julia.Executable
	}
	path, err := s.app.FindJulia(
		juliabridge.WithExplicitPath(explicit),
		juliabridge.WithEnvVar(s.cfg.Julia.EnvVar),
		juliabridge.WithSearchPaths(s.cfg.Julia.SearchPaths...),
	)
	if err != nil {
		ec := issue.NewErrorContext().
			WithOperation("locate julia").
			WithIssue(issue.JuliaNotFoundId).
			WithSuggestion("Pass the executable with --julia or set julia.executable in the config").
			Wrap(err)
		if envVar := s.cfg.Julia.EnvVar; envVar != "" {
			ec = ec.WithSuggestion("Export " + envVar + " with the path of the julia executable")
		}
		if explicit != "" {
			ec = ec.WithResource(explicit)
		}
		return "", ec.BuildError()
	}
	s.logger.Debug("using julia", "path", path)
	s.juliaPath = path
	return path, nil
}

// bridge creates the runtime bridge for the located julia.
func (s *session) bridge(opts ...juliabridge.Option) (*juliabridge.ExecBridge, error) {
	exe, err := s.julia()
	if err != nil {
		return nil, err
	}

	base := []juliabridge.Option{
		juliabridge.WithLogger(s.logger.WithPrefix("julia")),
		juliabridge.WithWorkingDirectory(s.wd),
	}
	if s.cfg.Julia.Depot != "" {
		base = append(base, juliabridge.WithDepot(s.cfg.Julia.Depot))
	}
	if s.flags.verbose {
		base = append(base, juliabridge.WithOutput(s.app.stderr, s.app.stderr))
	}
	return s.app.NewBridge(exe, append(base, opts...)...), nil
}

// runtimeVersion returns the pinned version, or asks julia when none is pinned.
// A pinned version whose minor release differs from the runtime's is reported.
func (s *session) runtimeVersion(ctx context.Context, bridge *juliabridge.ExecBridge) (string, error) {
	pinned := s.configuredVersion()
	if pinned != "" && bridge == nil {
		return pinned, nil
	}

	actual, err := bridge.Version(ctx)
	if err != nil {
		if pinned != "" {
			s.logger.Debug("cannot query julia version", "err", err)
			return pinned, nil
		}
		return "", issue.NewErrorContext().
			WithOperation("determine julia version").
			WithResource(bridge.Executable()).
			WithIssue(issue.InvalidVersionId).
			WithSuggestion("Pin the version with --julia-version or julia.version in the config").
			Wrap(err).
			BuildError()
	}
	if pinned == "" {
		return actual, nil
	}
	if !juliabridge.SameMinor(pinned, actual) {
		s.logger.Warn("pinned julia version differs from runtime", "pinned", pinned, "runtime", actual)
	}
	return pinned, nil
}

// projectConfig builds the provisioning description from the session.
func (s *session) projectConfig(version string) (*provision.ProjectConfig, error) {
	opts := []provision.Option{
		provision.WithRuntimeVersion(version),
		provision.WithArtifactBase(s.cfg.Project.ArtifactBase),
		provision.WithCompileScript(s.cfg.Project.CompileScript),
		provision.WithHostCallback(provision.HostCallback{
			EnvVar:     s.cfg.Host.CallbackEnvVar,
			Executable: s.cfg.Host.CallbackExecutable,
		}),
		provision.WithRegistryURL(s.cfg.Julia.RegistryURL),
	}
	pc, err := provision.NewProjectConfig(s.projectName(), s.dir, opts...)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("configure project").
			WithResource(s.dir).
			WithIssue(issue.ConfigLoadFailedId).
			WithSuggestion("Check project.name, project.artifact_base and project.compile_script").
			Wrap(err).
			BuildError()
	}
	return pc, nil
}

// provisioner assembles a Provisioner for the build directory. Julia is only
// started when needsRuntime is set or no version is pinned.
func (s *session) provisioner(ctx context.Context, needsRuntime bool, opts ...provision.ProvisionerOption) (*provision.Provisioner, *juliabridge.ExecBridge, error) {
	var bridge *juliabridge.ExecBridge
	if needsRuntime || s.configuredVersion() == "" {
		b, err := s.bridge()
		if err != nil {
			return nil, nil, err
		}
		bridge = b
	}

	version, err := s.runtimeVersion(ctx, bridge)
	if err != nil {
		return nil, nil, err
	}
	pc, err := s.projectConfig(version)
	if err != nil {
		return nil, nil, err
	}

	opts = append([]provision.ProvisionerOption{provision.WithLogger(s.logger)}, opts...)
	var rb provision.RuntimeBridge
	if bridge != nil {
		rb = bridge
	}
	return provision.NewProvisioner(pc, rb, opts...), bridge, nil
}
