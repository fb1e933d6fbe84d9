// SPDX-License-Identifier: MPL-2.0

// Package config handles jlproject configuration using Viper with CUE as the file format.
//
// Configuration is read from the file given with --config, otherwise from
// config.cue in the user config directory ($XDG_CONFIG_HOME/jlproject on Linux,
// ~/Library/Application Support/jlproject on macOS, %APPDATA%\jlproject on
// Windows), otherwise from jlproject.cue in the working directory. Every key
// can be overridden with a JLPROJECT_ environment variable, e.g.
// JLPROJECT_JULIA_VERSION for julia.version.
//
// Files are validated against the embedded config_schema.cue before they are
// merged over the defaults.
package config
