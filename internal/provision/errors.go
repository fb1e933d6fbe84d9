// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"errors"
	"strings"
)

var (
	// ErrMissingDirectory is returned when the build directory does not exist.
	ErrMissingDirectory = errors.New("build directory not found")
	// ErrMissingManifest is returned when neither Project.toml nor JuliaProject.toml exists.
	ErrMissingManifest = errors.New("project manifest not found")
	// ErrResolutionFailed is returned when resolve fails after the single update
	// retry, or when Update cannot upgrade and resolve the dependencies.
	ErrResolutionFailed = errors.New("dependency resolution failed")
	// ErrInstantiationFailed is returned when resolved dependencies cannot be instantiated.
	ErrInstantiationFailed = errors.New("dependency instantiation failed")
	// ErrArtifactNotProduced is returned when the compile script left no compiled image behind.
	ErrArtifactNotProduced = errors.New("compiled image not produced")
	// ErrPublishVerificationFailed is returned when the renamed image is missing afterwards.
	ErrPublishVerificationFailed = errors.New("published image verification failed")
	// ErrInvalidVersion is returned when the runtime version is needed but unset.
	ErrInvalidVersion = errors.New("invalid runtime version")
	// ErrCompileScriptFailed is returned when the compile script is missing or raised an error.
	ErrCompileScriptFailed = errors.New("compile script failed")
	// ErrRuntimeBridge is returned when a runtime call outside resolution fails,
	// or when a stale artifact cannot be removed before activation. Covered calls:
	// activation, registry setup, directory changes, the host handshake, context
	// capture and restore.
	ErrRuntimeBridge = errors.New("runtime bridge call failed")
)

// Error is the typed error returned by Provisioner operations. Kind is one of
// the sentinel errors above, so callers can use errors.Is(err, ErrMissingManifest).
type Error struct {
	Kind  error
	Phase Phase
	Path  string
	Err   error
}

func newError(kind error, phase Phase, path string, cause error) *Error {
	return &Error{Kind: kind, Phase: phase, Path: path, Err: cause}
}

// Error returns "<phase>: <kind>: <path>: <cause>", omitting empty parts.
func (e *Error) Error() string {
	parts := []string{e.Phase.String(), e.Kind.Error()}
	if e.Path != "" {
		parts = append(parts, e.Path)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

// Unwrap exposes both the kind and the underlying cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindOf returns the sentinel kind carried by err, or nil.
func KindOf(err error) error {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return nil
}
