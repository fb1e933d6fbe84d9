// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"
)

func TestFormatError(t *testing.T) {
	t.Parallel()

	t.Run("nil error returns nil", func(t *testing.T) {
		t.Parallel()
		if err := FormatError(nil, "test.cue"); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("non-CUE error is wrapped with filepath", func(t *testing.T) {
		t.Parallel()
		original := errors.New("some error")
		err := FormatError(original, "test.cue")
		if !errors.Is(err, original) {
			t.Errorf("expected wrapped original error, got %v", err)
		}
		if !strings.HasPrefix(err.Error(), "test.cue: ") {
			t.Errorf("error should start with filepath, got: %v", err)
		}
	})
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     []string
		expected string
	}{
		{"empty path", nil, ""},
		{"single element", []string{"julia"}, "julia"},
		{"nested path", []string{"julia", "version"}, "julia.version"},
		{"array index", []string{"julia", "search_paths", "0"}, "julia.search_paths[0]"},
		{"leading number", []string{"0", "name"}, "0.name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := formatPath(tt.path); got != tt.expected {
				t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.expected)
			}
		})
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	if err := CheckFileSize(make([]byte, 100), 100, "test.cue"); err != nil {
		t.Errorf("data at exact limit: expected nil, got %v", err)
	}
	if err := CheckFileSize(nil, 100, "test.cue"); err != nil {
		t.Errorf("empty data: expected nil, got %v", err)
	}

	err := CheckFileSize(make([]byte, 101), 100, "test.cue")
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
	for _, want := range []string{"test.cue", "101", "100"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should contain %q, got: %v", want, err)
		}
	}
}
