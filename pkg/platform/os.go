// SPDX-License-Identifier: MPL-2.0

package platform

import "runtime"

// OS name constants for runtime.GOOS comparisons.
// Centralizes the string literals to avoid scattered magic strings.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)

// Shared-library suffixes per platform family.
const (
	SuffixLinux   = ".so"
	SuffixDarwin  = ".dylib"
	SuffixWindows = ".dll"
)

// SharedLibSuffix returns the shared-library file extension for the host.
func SharedLibSuffix() string {
	return SharedLibSuffixFor(runtime.GOOS)
}

// SharedLibSuffixFor returns the shared-library file extension for goos.
// Unknown systems are treated like Linux and other ELF platforms.
func SharedLibSuffixFor(goos string) string {
	switch goos {
	case Windows:
		return SuffixWindows
	case Darwin, "ios":
		return SuffixDarwin
	default:
		return SuffixLinux
	}
}

// ExecutableName appends ".exe" on Windows.
func ExecutableName(name string) string {
	if runtime.GOOS == Windows {
		return name + ".exe"
	}
	return name
}

// IsWindows reports whether the host is Windows.
func IsWindows() bool {
	return runtime.GOOS == Windows
}
