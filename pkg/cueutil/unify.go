// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// DefaultMaxFileSize bounds the size of user-provided CUE files.
const DefaultMaxFileSize int64 = 1 << 20

type (
	// Option configures Unify.
	Option func(*options)

	options struct {
		filename    string
		maxFileSize int64
		concrete    bool
	}
)

// WithFilename sets the file name used in error messages.
func WithFilename(name string) Option {
	return func(o *options) {
		o.filename = name
	}
}

// WithMaxFileSize overrides DefaultMaxFileSize.
func WithMaxFileSize(size int64) Option {
	return func(o *options) {
		o.maxFileSize = size
	}
}

// WithConcrete requires every field of the result to be concrete.
// Configuration files leave most fields optional and do not set this.
func WithConcrete(concrete bool) Option {
	return func(o *options) {
		o.concrete = concrete
	}
}

// Unify compiles schema, unifies the definition at schemaPath with data and
// validates the result.
func Unify(schema, schemaPath string, data []byte, opts ...Option) (cue.Value, error) {
	o := options{filename: "input.cue", maxFileSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(&o)
	}

	if err := CheckFileSize(data, o.maxFileSize, o.filename); err != nil {
		return cue.Value{}, err
	}

	ctx := cuecontext.New()
	schemaValue := ctx.CompileString(schema)
	if err := schemaValue.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("internal error: compile schema: %w", err)
	}
	def := schemaValue.LookupPath(cue.ParsePath(schemaPath))
	if err := def.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("internal error: schema has no %s: %w", schemaPath, err)
	}

	userValue := ctx.CompileBytes(data, cue.Filename(o.filename))
	if err := userValue.Err(); err != nil {
		return cue.Value{}, FormatError(err, o.filename)
	}

	unified := def.Unify(userValue)
	if err := unified.Validate(cue.Concrete(o.concrete)); err != nil {
		return cue.Value{}, FormatError(err, o.filename)
	}
	return unified, nil
}
