// SPDX-License-Identifier: MPL-2.0

package provision

import "context"

// RuntimeBridge is the set of Julia session capabilities the Provisioner needs.
// Every call blocks until the runtime has finished the step.
type RuntimeBridge interface {
	// Activate selects the dependency environment rooted at path.
	// An empty path selects the runtime's default environment.
	Activate(ctx context.Context, path string) error
	// ActiveEnvironment returns the currently active environment path.
	ActiveEnvironment(ctx context.Context) (string, error)

	// Resolve resolves the active environment's dependencies into a lock manifest.
	Resolve(ctx context.Context) error
	// Update upgrades the active environment's dependencies.
	Update(ctx context.Context) error
	// AddRegistry adds the package registry at url.
	AddRegistry(ctx context.Context, url string) error
	// Instantiate fetches and builds every dependency in the lock manifest.
	Instantiate(ctx context.Context) error

	// Evaluate runs a single expression in the session.
	Evaluate(ctx context.Context, expr string) error
	// RunScript executes the script file at path in the session.
	RunScript(ctx context.Context, path string) error

	// ChangeDirectory sets the session working directory.
	ChangeDirectory(ctx context.Context, path string) error
	// CurrentDirectory returns the session working directory.
	CurrentDirectory(ctx context.Context) (string, error)
}

// RestoreContext is the ambient session state saved at the start of Compile
// and put back on every exit path.
type RestoreContext struct {
	WorkingDirectory  string
	ActiveEnvironment string
}

// CaptureRestoreContext records the bridge's current working directory and
// active environment.
func CaptureRestoreContext(ctx context.Context, bridge RuntimeBridge) (RestoreContext, error) {
	dir, err := bridge.CurrentDirectory(ctx)
	if err != nil {
		return RestoreContext{}, err
	}
	env, err := bridge.ActiveEnvironment(ctx)
	if err != nil {
		return RestoreContext{}, err
	}
	return RestoreContext{WorkingDirectory: dir, ActiveEnvironment: env}, nil
}

// Restore sets the working directory and active environment back. Both steps
// are attempted even if the first fails; the first error is returned.
func (rc RestoreContext) Restore(ctx context.Context, bridge RuntimeBridge) error {
	dirErr := bridge.ChangeDirectory(ctx, rc.WorkingDirectory)
	envErr := bridge.Activate(ctx, rc.ActiveEnvironment)
	if dirErr != nil {
		return dirErr
	}
	return envErr
}
