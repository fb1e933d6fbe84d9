// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"testing"
)

func TestNewRootCommand_Subcommands(t *testing.T) {
	t.Parallel()

	root := newRootCommand(NewApp(Dependencies{Config: &stubConfigProvider{}}))
	for _, name := range []string{"compile", "update", "clean", "status", "julia", "config"} {
		if c, _, err := root.Find([]string{name}); err != nil || c.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	for _, flag := range []string{"config", "dir", "name", "julia", "julia-version", "verbose"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("persistent flag --%s missing", flag)
		}
	}
}

func TestExitError(t *testing.T) {
	t.Parallel()

	if got := (&ExitError{Code: 3}).Error(); got != "exit status 3" {
		t.Errorf("Error() = %q", got)
	}
	cause := errors.New("cause")
	e := &ExitError{Code: 1, Err: cause}
	if e.Error() != "cause" || !errors.Is(e, cause) {
		t.Errorf("ExitError does not expose its cause")
	}
}

//nolint:paralleltest // mutates package-level version variables
func TestGetVersionString(t *testing.T) {
	origVersion, origCommit, origDate := Version, Commit, BuildDate
	t.Cleanup(func() { Version, Commit, BuildDate = origVersion, origCommit, origDate })

	Version, Commit, BuildDate = "v1.2.3", "abc123", "2026-01-02"
	if got, want := getVersionString(), "v1.2.3 (commit: abc123, built: 2026-01-02)"; got != want {
		t.Errorf("getVersionString() = %q, want %q", got, want)
	}
}
