// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/jlproject/jlproject/internal/config"
)

type stubConfigProvider struct {
	cfg    *config.Config
	err    error
	source string
}

func (p *stubConfigProvider) Load(context.Context, config.LoadOptions) (*config.Config, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.cfg == nil {
		return config.DefaultConfig(), nil
	}
	return p.cfg, nil
}

func (p *stubConfigProvider) Source(config.LoadOptions) (string, error) {
	return p.source, nil
}

type cliResult struct {
	stdout string
	stderr string
	err    error
}

// runCLI executes the command tree with deps and captures its output.
// A nil deps.Config defaults to the built-in configuration.
func runCLI(t *testing.T, deps Dependencies, args ...string) cliResult {
	t.Helper()

	var stdout, stderr bytes.Buffer
	deps.Stdout = &stdout
	deps.Stderr = &stderr
	if deps.Config == nil {
		deps.Config = &stubConfigProvider{}
	}

	root := newRootCommand(NewApp(deps))
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.ExecuteContext(t.Context())

	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}
