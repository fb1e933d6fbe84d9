// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"github.com/jlproject/jlproject/internal/manifest"
)

// Status is a read-only snapshot of a build directory.
type Status struct {
	BuildDir       string
	BuildDirExists bool

	// ProjectManifest is the manifest Compile would use, or "" if none exists.
	ProjectManifest string
	Project         *manifest.Project

	LockManifest string
	Lock         *manifest.Lock

	// CompiledImage is the fixed-name image left by the compile script.
	CompiledImage       string
	CompiledImageExists bool

	// TargetImage is empty when no runtime version is configured.
	TargetImage       string
	TargetImageExists bool
	TargetSHA256      string

	// Problems lists manifests that exist but could not be parsed.
	Problems []string
}

// Status inspects the build directory without touching the runtime.
func (p *Provisioner) Status() Status {
	dir := p.cfg.BuildDir
	manifests := p.cfg.ManifestPaths()
	st := Status{
		BuildDir:       dir,
		BuildDirExists: isDir(dir),
		LockManifest:   manifests.Lock,
		CompiledImage:  CompiledImagePath(dir, p.cfg.LibSuffix),
	}
	st.CompiledImageExists = isFile(st.CompiledImage)

	if path, ok := manifests.ExistingProject(); ok {
		st.ProjectManifest = path
		proj, err := manifest.LoadProject(path)
		if err != nil {
			st.Problems = append(st.Problems, err.Error())
		} else {
			st.Project = proj
		}
	}

	if isFile(manifests.Lock) {
		lock, err := manifest.LoadLock(manifests.Lock)
		if err != nil {
			st.Problems = append(st.Problems, err.Error())
		} else {
			st.Lock = lock
		}
	}

	if artifacts, err := p.cfg.ArtifactPaths(); err == nil {
		st.TargetImage = artifacts.Target
		if isFile(artifacts.Target) {
			st.TargetImageExists = true
			st.TargetSHA256, _ = FileSHA256(artifacts.Target) //nolint:errcheck // checksum is informational
		}
	}
	return st
}
