// SPDX-License-Identifier: MPL-2.0

package juliabridge

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/jlproject/jlproject/pkg/platform"
)

// DefaultEnvVar is the environment variable consulted for the julia executable.
const DefaultEnvVar = "JULIA"

// ErrJuliaNotFound is returned when no julia executable can be located.
var ErrJuliaNotFound = errors.New("julia executable not found")

type (
	// Finder locates a julia executable. Candidates are tried in order: the
	// explicit path, the environment variable, <search path>/bin/julia for each
	// search path, and finally PATH.
	Finder struct {
		Explicit    string
		EnvVar      string
		SearchPaths []string

		getenv   func(string) string
		lookPath func(string) (string, error)
	}

	// FinderOption configures a Finder.
	FinderOption func(*Finder)
)

// WithExplicitPath sets a path that is used without further lookup.
func WithExplicitPath(path string) FinderOption {
	return func(f *Finder) {
		f.Explicit = path
	}
}

// WithEnvVar overrides the environment variable name. Empty keeps the default.
func WithEnvVar(name string) FinderOption {
	return func(f *Finder) {
		if name != "" {
			f.EnvVar = name
		}
	}
}

// WithSearchPaths sets installation prefixes searched for bin/julia.
func WithSearchPaths(paths ...string) FinderOption {
	return func(f *Finder) {
		f.SearchPaths = append(f.SearchPaths, paths...)
	}
}

// NewFinder creates a Finder with the default environment variable.
func NewFinder(opts ...FinderOption) *Finder {
	f := &Finder{
		EnvVar:   DefaultEnvVar,
		getenv:   os.Getenv,
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Find returns the first usable julia executable.
func (f *Finder) Find() (string, error) {
	if f.Explicit != "" {
		if !isExecutableFile(f.Explicit) {
			return "", fmt.Errorf("%w: %s", ErrJuliaNotFound, f.Explicit)
		}
		return f.Explicit, nil
	}

	if f.EnvVar != "" {
		if p := f.getenv(f.EnvVar); p != "" && isExecutableFile(p) {
			return p, nil
		}
	}

	name := platform.ExecutableName("julia")
	for _, dir := range f.SearchPaths {
		candidate := filepath.Join(dir, "bin", name)
		if isExecutableFile(candidate) {
			return candidate, nil
		}
	}

	if p, err := f.lookPath(name); err == nil {
		return p, nil
	}
	return "", ErrJuliaNotFound
}

func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if platform.IsWindows() {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
