// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the jlproject CLI commands.
package cmd
