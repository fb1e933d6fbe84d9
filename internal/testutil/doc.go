// SPDX-License-Identifier: MPL-2.0

// Package testutil provides test helpers that fail the test on error instead
// of returning it, plus fixtures for system image build directories and a
// fake julia executable.
package testutil
