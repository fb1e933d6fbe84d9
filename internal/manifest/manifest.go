// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"

	"github.com/pelletier/go-toml/v2"
)

// ManifestFormatV2 is the lock format written by Julia 1.7 and later.
const ManifestFormatV2 = "2.0"

// ErrMalformed is returned when a manifest is not valid TOML for its kind.
var ErrMalformed = errors.New("malformed manifest")

type (
	// Project is the declared dependency set of a Julia project.
	Project struct {
		Name    string            `toml:"name"`
		UUID    string            `toml:"uuid"`
		Version string            `toml:"version"`
		Authors []string          `toml:"authors"`
		Deps    map[string]string `toml:"deps"`
		Compat  map[string]string `toml:"compat"`
	}

	// Entry is one resolved package in a lock manifest.
	Entry struct {
		UUID        string `toml:"uuid"`
		Version     string `toml:"version"`
		GitTreeSHA1 string `toml:"git-tree-sha1"`
		Path        string `toml:"path"`
		RepoURL     string `toml:"repo-url"`
	}

	// Lock is a resolved Manifest.toml.
	Lock struct {
		JuliaVersion   string             `toml:"julia_version"`
		ManifestFormat string             `toml:"manifest_format"`
		Deps           map[string][]Entry `toml:"deps"`
	}

	// Package is a flattened lock entry.
	Package struct {
		Name    string
		UUID    string
		Version string
	}
)

// ParseProject decodes a Project.toml document.
func ParseProject(data []byte) (*Project, error) {
	var p Project
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return &p, nil
}

// LoadProject reads and decodes the project manifest at path.
func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := ParseProject(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// DependencyNames returns the declared dependency names in sorted order.
func (p *Project) DependencyNames() []string {
	names := make([]string, 0, len(p.Deps))
	for name := range p.Deps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseLock decodes a Manifest.toml document. Format 1.0 manifests keep the
// package tables at the top level; they are moved under Deps.
func ParseLock(data []byte) (*Lock, error) {
	var l Lock
	if err := toml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if l.ManifestFormat != "" {
		return &l, nil
	}

	var v1 map[string][]Entry
	if err := toml.Unmarshal(data, &v1); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	l.Deps = v1
	return &l, nil
}

// LoadLock reads and decodes the lock manifest at path.
func LoadLock(path string) (*Lock, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	l, err := ParseLock(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

// Packages returns every resolved package sorted by name, then UUID.
func (l *Lock) Packages() []Package {
	var pkgs []Package
	for name, entries := range l.Deps {
		for _, e := range entries {
			pkgs = append(pkgs, Package{Name: name, UUID: e.UUID, Version: e.Version})
		}
	}
	slices.SortFunc(pkgs, func(a, b Package) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.UUID, b.UUID)
	})
	return pkgs
}
