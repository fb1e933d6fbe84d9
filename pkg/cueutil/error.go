// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
)

// ErrFileTooLarge is returned by CheckFileSize.
var ErrFileTooLarge = errors.New("file too large")

// FormatError rewrites a CUE error as "<file>: <field path>: <message>", one
// line per underlying error. Non-CUE errors are wrapped with the file name.
func FormatError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	list := cueerrors.Errors(err)
	if len(list) == 0 {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	lines := make([]string, 0, len(list))
	for _, e := range list {
		path := formatPath(cueerrors.Path(e))
		msg := e.Error()
		if path != "" {
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, path), ":"))
			msg = path + ": " + msg
		}
		lines = append(lines, msg)
	}

	if len(lines) == 1 {
		return fmt.Errorf("%s: %s", filePath, lines[0])
	}
	return fmt.Errorf("%s: validation failed:\n  %s", filePath, strings.Join(lines, "\n  "))
}

// formatPath renders ["julia", "search_paths", "0"] as "julia.search_paths[0]".
func formatPath(path []string) string {
	var sb strings.Builder
	for i, part := range path {
		switch {
		case i > 0 && isIndex(part):
			sb.WriteString("[" + part + "]")
		case i > 0:
			sb.WriteString("." + part)
		default:
			sb.WriteString(part)
		}
	}
	return sb.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// CheckFileSize returns ErrFileTooLarge when data exceeds maxSize bytes.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return fmt.Errorf("%s: %w: %d bytes exceeds maximum %d bytes",
			filename, ErrFileTooLarge, len(data), maxSize)
	}
	return nil
}
