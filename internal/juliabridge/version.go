// SPDX-License-Identifier: MPL-2.0

package juliabridge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// ErrUnparseableVersion is returned when `julia --version` output carries no
// valid semantic version.
var ErrUnparseableVersion = errors.New("unparseable julia version")

// ParseVersion extracts the version from `julia --version` output such as
// "julia version 1.10.4". Bare versions are accepted too. The result has no
// leading "v" and drops build metadata.
func ParseVersion(output string) (string, error) {
	fields := strings.Fields(output)
	if len(fields) == 0 {
		return "", fmt.Errorf("%w: empty output", ErrUnparseableVersion)
	}
	raw := fields[len(fields)-1]
	v := "v" + strings.TrimPrefix(raw, "v")
	if !semver.IsValid(v) {
		return "", fmt.Errorf("%w: %q", ErrUnparseableVersion, strings.TrimSpace(output))
	}
	return strings.TrimPrefix(semver.Canonical(v), "v"), nil
}

// SameMinor reports whether two versions share major and minor components.
// Invalid versions never match.
func SameMinor(a, b string) bool {
	va, vb := "v"+strings.TrimPrefix(a, "v"), "v"+strings.TrimPrefix(b, "v")
	if !semver.IsValid(va) || !semver.IsValid(vb) {
		return false
	}
	return semver.MajorMinor(va) == semver.MajorMinor(vb)
}

// Version runs `julia --version` and returns the parsed version.
func (b *ExecBridge) Version(ctx context.Context) (string, error) {
	b.mu.Lock()
	dir := b.dir
	b.mu.Unlock()

	cmd := b.command(ctx, dir, "--version")
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", &CommandError{Op: "version", Err: err}
	}
	return ParseVersion(out.String())
}
