// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/jlproject/jlproject/internal/manifest"
)

type (
	// Provisioner compiles a system image for one ProjectConfig. It is not
	// safe for concurrent use, and no two Provisioners may share a build directory
	// at the same time.
	Provisioner struct {
		cfg       ProjectConfig
		bridge    RuntimeBridge
		logger    *log.Logger
		publisher *Publisher
		onPhase   func(Phase)
		phase     Phase
	}

	// ProvisionerOption configures a Provisioner.
	ProvisionerOption func(*Provisioner)
)

// WithLogger returns a ProvisionerOption that sets the logger.
func WithLogger(logger *log.Logger) ProvisionerOption {
	return func(p *Provisioner) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithPhaseHook returns a ProvisionerOption that calls fn on every phase transition.
func WithPhaseHook(fn func(Phase)) ProvisionerOption {
	return func(p *Provisioner) {
		p.onPhase = fn
	}
}

// NewProvisioner creates a Provisioner. cfg is copied; later changes to it
// have no effect.
func NewProvisioner(cfg *ProjectConfig, bridge RuntimeBridge, opts ...ProvisionerOption) *Provisioner {
	p := &Provisioner{
		cfg:    *cfg,
		bridge: bridge,
		logger: log.NewWithOptions(os.Stderr, log.Options{Prefix: "provision"}),
		phase:  PhaseIdle,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.publisher = NewPublisher(p.logger)
	return p
}

// Config returns a copy of the provisioner's project configuration.
func (p *Provisioner) Config() ProjectConfig {
	return p.cfg
}

// Phase returns the phase the last Compile or Update call reached.
func (p *Provisioner) Phase() Phase {
	return p.phase
}

// Compile resolves and instantiates the project's dependencies, runs the
// compile script and publishes the image under its version-qualified name.
//
// The bridge's working directory and active environment are captured before
// anything else and restored on every return path. The returned error, if any,
// is an *Error whose Kind is one of the package sentinels.
func (p *Provisioner) Compile(ctx context.Context) (err error) {
	p.enter(PhaseSavingContext)
	saved, err := CaptureRestoreContext(ctx, p.bridge)
	if err != nil {
		p.enter(PhaseFailed)
		return newError(ErrRuntimeBridge, PhaseSavingContext, "", err)
	}
	defer func() {
		err = p.restore(ctx, saved, err)
	}()

	artifacts, err := p.validate()
	if err != nil {
		return err
	}
	manifests := p.cfg.ManifestPaths()

	if err := p.activate(ctx, manifests.Lock); err != nil {
		return err
	}
	if err := p.resolve(ctx); err != nil {
		return err
	}
	if err := p.instantiate(ctx, manifests.Lock); err != nil {
		return err
	}
	if err := p.compile(ctx, artifacts.Compiled); err != nil {
		return err
	}

	p.enter(PhasePublishing)
	if err := p.publisher.Publish(artifacts.Compiled, artifacts.Target); err != nil {
		return err
	}
	if sum, hashErr := FileSHA256(artifacts.Target); hashErr == nil {
		p.logger.Debug("image checksum", "sha256", sum)
	}
	return nil
}

// Update discards the lock manifest and the published image, then upgrades
// every dependency to the newest versions the project manifest allows and
// instantiates the result. The session is restored as in Compile.
func (p *Provisioner) Update(ctx context.Context) (err error) {
	p.enter(PhaseSavingContext)
	saved, err := CaptureRestoreContext(ctx, p.bridge)
	if err != nil {
		p.enter(PhaseFailed)
		return newError(ErrRuntimeBridge, PhaseSavingContext, "", err)
	}
	defer func() {
		err = p.restore(ctx, saved, err)
	}()

	artifacts, err := p.validate()
	if err != nil {
		return err
	}
	manifests := p.cfg.ManifestPaths()

	if err := p.activate(ctx, manifests.Lock); err != nil {
		return err
	}
	removed, err := removeIfExists(artifacts.Target)
	if err != nil {
		return newError(ErrRuntimeBridge, PhaseActivating, artifacts.Target, err)
	}
	if removed {
		p.logger.Info("removed system image", "path", artifacts.Target)
	}

	p.enter(PhaseUpdating)
	if err := p.bridge.Update(ctx); err != nil {
		return newError(ErrResolutionFailed, PhaseUpdating, p.cfg.BuildDir, err)
	}
	if err := p.bridge.Resolve(ctx); err != nil {
		return newError(ErrResolutionFailed, PhaseUpdating, p.cfg.BuildDir, err)
	}
	return p.instantiate(ctx, manifests.Lock)
}

// Clean removes the lock manifest and the published image for the configured
// version. It is idempotent.
func (p *Provisioner) Clean() error {
	artifacts, err := p.cfg.ArtifactPaths()
	if err != nil {
		return newError(ErrInvalidVersion, PhaseValidating, p.cfg.BuildDir, err)
	}
	return NewCleaner(p.logger, p.cfg.ManifestPaths().Lock, artifacts.Target).Clean()
}

func (p *Provisioner) enter(phase Phase) {
	p.phase = phase
	p.logger.Debug("phase", "name", phase.String())
	if p.onPhase != nil {
		p.onPhase(phase)
	}
}

// restore runs the Restoring phase and settles the terminal state. A restore
// failure only replaces err when everything else succeeded.
func (p *Provisioner) restore(ctx context.Context, saved RestoreContext, err error) error {
	p.enter(PhaseRestoring)
	if rerr := saved.Restore(context.WithoutCancel(ctx), p.bridge); rerr != nil {
		if err == nil {
			err = newError(ErrRuntimeBridge, PhaseRestoring, saved.WorkingDirectory, rerr)
		} else {
			p.logger.Error("failed to restore session", "dir", saved.WorkingDirectory,
				"env", saved.ActiveEnvironment, "err", rerr)
		}
	}

	if err != nil {
		p.enter(PhaseFailed)
		return err
	}
	p.enter(PhaseDone)
	return nil
}

func (p *Provisioner) validate() (ArtifactPaths, error) {
	p.enter(PhaseValidating)
	dir := p.cfg.BuildDir

	if !isDir(dir) {
		return ArtifactPaths{}, newError(ErrMissingDirectory, PhaseValidating, dir, nil)
	}

	manifests := p.cfg.ManifestPaths()
	projectPath, ok := manifests.ExistingProject()
	if !ok {
		return ArtifactPaths{}, newError(ErrMissingManifest, PhaseValidating, dir,
			fmt.Errorf("neither %s nor %s exists", manifests.Project, manifests.Alternate))
	}

	artifacts, err := p.cfg.ArtifactPaths()
	if err != nil {
		return ArtifactPaths{}, newError(ErrInvalidVersion, PhaseValidating, dir, err)
	}

	if proj, err := manifest.LoadProject(projectPath); err != nil {
		p.logger.Warn("cannot read project manifest", "path", projectPath, "err", err)
	} else {
		p.logger.Info("project manifest", "path", projectPath, "name", proj.Name,
			"deps", len(proj.Deps))
	}
	return artifacts, nil
}

func (p *Provisioner) activate(ctx context.Context, lock string) error {
	p.enter(PhaseActivating)

	removed, err := removeIfExists(lock)
	if err != nil {
		return newError(ErrRuntimeBridge, PhaseActivating, lock, err)
	}
	if removed {
		p.logger.Info("removed lock manifest", "path", lock)
	}

	if err := p.bridge.Activate(ctx, p.cfg.BuildDir); err != nil {
		return newError(ErrRuntimeBridge, PhaseActivating, p.cfg.BuildDir, err)
	}
	if env, err := p.bridge.ActiveEnvironment(ctx); err == nil {
		p.logger.Info("activated environment", "path", env)
	}

	if url := p.cfg.RegistryURL; url != "" {
		p.logger.Info("adding package registry", "url", url)
		if err := p.bridge.AddRegistry(ctx, url); err != nil {
			return newError(ErrRuntimeBridge, PhaseActivating, url, err)
		}
	}
	return nil
}

// resolve runs Resolve, and on failure exactly one Update followed by one more Resolve.
func (p *Provisioner) resolve(ctx context.Context) error {
	p.enter(PhaseResolving)
	firstErr := p.bridge.Resolve(ctx)
	if firstErr == nil {
		return nil
	}

	p.enter(PhaseUpdateThenRetry)
	p.logger.Warn("resolve failed, updating packages", "err", firstErr)
	if err := p.bridge.Update(ctx); err != nil {
		return newError(ErrResolutionFailed, PhaseUpdateThenRetry, p.cfg.BuildDir,
			errors.Join(firstErr, err))
	}
	if err := p.bridge.Resolve(ctx); err != nil {
		return newError(ErrResolutionFailed, PhaseUpdateThenRetry, p.cfg.BuildDir, err)
	}
	return nil
}

func (p *Provisioner) instantiate(ctx context.Context, lock string) error {
	p.enter(PhaseInstantiating)
	if err := p.bridge.Instantiate(ctx); err != nil {
		return newError(ErrInstantiationFailed, PhaseInstantiating, p.cfg.BuildDir, err)
	}

	resolved, err := manifest.LoadLock(lock)
	if err != nil {
		p.logger.Debug("lock manifest not readable", "path", lock, "err", err)
		return nil
	}
	p.logger.Info("dependencies instantiated", "packages", len(resolved.Packages()),
		"julia_version", resolved.JuliaVersion)
	if resolved.JuliaVersion != "" && resolved.JuliaVersion != p.cfg.RuntimeVersion {
		p.logger.Warn("lock manifest was resolved by a different julia version",
			"lock", resolved.JuliaVersion, "configured", p.cfg.RuntimeVersion)
	}
	return nil
}

func (p *Provisioner) compile(ctx context.Context, compiled string) error {
	p.enter(PhaseCompiling)
	dir := p.cfg.BuildDir
	script := p.cfg.CompileScriptPath()

	if !isFile(script) {
		return newError(ErrCompileScriptFailed, PhaseCompiling, script, errors.New("script not found"))
	}
	removed, err := removeIfExists(compiled)
	if err != nil {
		return newError(ErrCompileScriptFailed, PhaseCompiling, compiled, err)
	}
	if removed {
		p.logger.Info("removed stale compiled image", "path", compiled)
	}

	if err := p.bridge.ChangeDirectory(ctx, dir); err != nil {
		return newError(ErrRuntimeBridge, PhaseCompiling, dir, err)
	}
	if expr := p.cfg.HandshakeExpression(); expr == "" {
		p.logger.Info("no host executable found, skipping handshake",
			"interpreter", DefaultCallbackInterpreter)
	} else if err := p.bridge.Evaluate(ctx, expr); err != nil {
		return newError(ErrRuntimeBridge, PhaseCompiling, dir, err)
	}

	p.logger.Info("running compile script", "script", script)
	if err := p.bridge.RunScript(ctx, script); err != nil {
		return newError(ErrCompileScriptFailed, PhaseCompiling, script, err)
	}

	if !isFile(compiled) {
		return newError(ErrArtifactNotProduced, PhaseCompiling, compiled, nil)
	}
	return nil
}
