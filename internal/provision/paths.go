// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// ProjectManifestName is the primary dependency manifest.
	ProjectManifestName = "Project.toml"
	// AlternateManifestName is accepted when Project.toml is absent.
	AlternateManifestName = "JuliaProject.toml"
	// LockManifestName is the resolved dependency lock file.
	LockManifestName = "Manifest.toml"

	// CompiledImageBase is the name the compile script writes to, before the
	// platform suffix. It never depends on the project name.
	CompiledImageBase = "sys_julia_project"

	// DefaultCompileScript is the script run inside the build directory.
	DefaultCompileScript = "compile_julia_project.jl"

	// DefaultArtifactPrefix prefixes the project name to form the default artifact base.
	DefaultArtifactPrefix = "sys_"
)

type (
	// ManifestPaths are the dependency manifest locations inside a build directory.
	ManifestPaths struct {
		Project   string
		Alternate string
		Lock      string
	}

	// ArtifactPaths are the compiled image locations inside a build directory.
	ArtifactPaths struct {
		// Target is the published, version-qualified image.
		Target string
		// Compiled is where the compile script writes the image.
		Compiled string
	}
)

// ManifestPathsFor returns the manifest paths inside buildDir.
func ManifestPathsFor(buildDir string) ManifestPaths {
	return ManifestPaths{
		Project:   filepath.Join(buildDir, ProjectManifestName),
		Alternate: filepath.Join(buildDir, AlternateManifestName),
		Lock:      filepath.Join(buildDir, LockManifestName),
	}
}

// ArtifactFileName returns base-version+suffix.
func ArtifactFileName(base, version, suffix string) (string, error) {
	if strings.TrimSpace(version) == "" {
		return "", fmt.Errorf("%w: version is not set", ErrInvalidVersion)
	}
	return base + "-" + version + suffix, nil
}

// ArtifactPathsFor returns the target and compiled image paths inside buildDir.
func ArtifactPathsFor(buildDir, base, version, suffix string) (ArtifactPaths, error) {
	name, err := ArtifactFileName(base, version, suffix)
	if err != nil {
		return ArtifactPaths{}, err
	}
	return ArtifactPaths{
		Target:   filepath.Join(buildDir, name),
		Compiled: CompiledImagePath(buildDir, suffix),
	}, nil
}

// CompiledImagePath returns where the compile script writes the image. The
// name is fixed and shared by every project.
func CompiledImagePath(buildDir, suffix string) string {
	return filepath.Join(buildDir, CompiledImageBase+suffix)
}

// ExistingProject returns the first project manifest that exists on disk,
// preferring Project.toml.
func (m ManifestPaths) ExistingProject() (string, bool) {
	for _, path := range []string{m.Project, m.Alternate} {
		if isFile(path) {
			return path, true
		}
	}
	return "", false
}
