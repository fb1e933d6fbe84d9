// SPDX-License-Identifier: MPL-2.0

// Package manifest reads Julia dependency manifests: the declared project
// (Project.toml or JuliaProject.toml) and the resolved lock file
// (Manifest.toml, formats 1.0 and 2.0).
package manifest
