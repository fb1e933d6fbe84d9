// SPDX-License-Identifier: MPL-2.0

package juliabridge

import (
	"context"
	"errors"
	"testing"
)

func TestParseVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"julia version 1.10.4\n", "1.10.4", false},
		{"julia version 1.8.0", "1.8.0", false},
		{"1.9", "1.9.0", false},
		{"v1.6.7", "1.6.7", false},
		{"julia version 1.11.0-rc2", "1.11.0-rc2", false},
		{"julia version 1.10.0+0.x64.linux.gnu", "1.10.0", false},
		{"", "", true},
		{"julia version dev", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseVersion(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnparseableVersion) {
					t.Fatalf("ParseVersion(%q) error = %v, want ErrUnparseableVersion", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseVersion(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseVersion(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSameMinor(t *testing.T) {
	t.Parallel()

	if !SameMinor("1.10.4", "1.10.0") {
		t.Error("1.10.4 and 1.10.0 share a minor version")
	}
	if SameMinor("1.10.4", "1.9.4") {
		t.Error("1.10.4 and 1.9.4 differ")
	}
	if SameMinor("bogus", "1.9.4") {
		t.Error("invalid versions never match")
	}
}

func TestExecBridge_Version(t *testing.T) {
	t.Parallel()

	m := newMockCommandRecorder()
	m.stdout = "julia version 1.10.4\n"
	b := newTestBridge(t, m)

	got, err := b.Version(context.Background())
	if err != nil {
		t.Fatalf("Version() error: %v", err)
	}
	if got != "1.10.4" {
		t.Errorf("Version() = %q", got)
	}
	if inv := m.last(t); len(inv.args) != 1 || inv.args[0] != "--version" {
		t.Errorf("args = %v, want [--version]", inv.args)
	}
}

func TestExecBridge_VersionFailure(t *testing.T) {
	t.Parallel()

	m := newMockCommandRecorder()
	m.exitCode = 3
	b := newTestBridge(t, m)

	if _, err := b.Version(context.Background()); !errors.Is(err, ErrCommandFailed) {
		t.Fatalf("expected ErrCommandFailed, got %v", err)
	}
}
