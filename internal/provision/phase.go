// SPDX-License-Identifier: MPL-2.0

package provision

const (
	// PhaseIdle is the state before Compile starts.
	PhaseIdle Phase = iota
	// PhaseSavingContext captures the working directory and active environment.
	PhaseSavingContext
	// PhaseValidating checks the build directory, manifests and version.
	PhaseValidating
	// PhaseActivating removes the lock manifest, activates the build directory
	// and adds the configured package registry.
	PhaseActivating
	// PhaseResolving runs dependency resolution.
	PhaseResolving
	// PhaseUpdateThenRetry runs the single update-then-resolve fallback.
	PhaseUpdateThenRetry
	// PhaseInstantiating materializes resolved dependencies.
	PhaseInstantiating
	// PhaseCompiling runs the host handshake and the compile script.
	PhaseCompiling
	// PhaseUpdating upgrades dependencies during Update.
	PhaseUpdating
	// PhasePublishing renames the compiled image to its final name.
	PhasePublishing
	// PhaseRestoring puts the working directory and active environment back.
	PhaseRestoring
	// PhaseDone is the terminal success state.
	PhaseDone
	// PhaseFailed is the terminal failure state.
	PhaseFailed
)

// Phase is a state of the Compile and Update state machines.
type Phase int

// String returns a human-readable representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSavingContext:
		return "saving context"
	case PhaseValidating:
		return "validating"
	case PhaseActivating:
		return "activating"
	case PhaseResolving:
		return "resolving"
	case PhaseUpdateThenRetry:
		return "update then retry"
	case PhaseInstantiating:
		return "instantiating"
	case PhaseCompiling:
		return "compiling"
	case PhaseUpdating:
		return "updating"
	case PhasePublishing:
		return "publishing"
	case PhaseRestoring:
		return "restoring"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}
