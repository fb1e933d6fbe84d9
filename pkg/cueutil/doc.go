// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates CUE documents against an embedded schema and turns
// CUE errors into messages that name the offending field.
//
//	//go:embed config_schema.cue
//	var schema string
//
//	value, err := cueutil.Unify(schema, "#Config", data, cueutil.WithFilename("config.cue"))
//	if err != nil {
//	    return err // "config.cue: julia.version: conflicting values ..."
//	}
package cueutil
