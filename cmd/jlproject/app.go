// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/jlproject/jlproject/internal/config"
	"github.com/jlproject/jlproject/internal/juliabridge"
)

type (
	// App wires CLI services and shared dependencies. Every command handler
	// receives an App and reaches configuration and the Julia runtime through it.
	App struct {
		Config    ConfigProvider
		NewBridge BridgeFactory
		FindJulia JuliaLocator
		stdout    io.Writer
		stderr    io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil fields
	// are replaced with production defaults by NewApp.
	Dependencies struct {
		Config    ConfigProvider
		NewBridge BridgeFactory
		FindJulia JuliaLocator
		Stdout    io.Writer
		Stderr    io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
		Source(opts config.LoadOptions) (string, error)
	}

	// BridgeFactory creates the runtime bridge for a julia executable.
	BridgeFactory func(executable string, opts ...juliabridge.Option) *juliabridge.ExecBridge

	// JuliaLocator finds the julia executable.
	JuliaLocator func(opts ...juliabridge.FinderOption) (string, error)
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.NewBridge == nil {
		deps.NewBridge = juliabridge.NewExecBridge
	}
	if deps.FindJulia == nil {
		deps.FindJulia = func(opts ...juliabridge.FinderOption) (string, error) {
			return juliabridge.NewFinder(opts...).Find()
		}
	}

	return &App{
		Config:    deps.Config,
		NewBridge: deps.NewBridge,
		FindJulia: deps.FindJulia,
		stdout:    deps.Stdout,
		stderr:    deps.Stderr,
	}
}
