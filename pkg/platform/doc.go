// SPDX-License-Identifier: MPL-2.0

// Package platform provides cross-platform compatibility utilities.
//
// It centralizes GOOS names and the shared-library suffix a compiled system
// image must carry on each host operating system.
package platform
