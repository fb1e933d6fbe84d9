// SPDX-License-Identifier: MPL-2.0

package juliabridge

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

type (
	// mockCommandRecorder captures the commands built by the bridge. It uses the
	// TestHelperProcess pattern to simulate julia.
	mockCommandRecorder struct {
		invocations []*mockInvocation
		exitCode    int
		stdout      string
		stderr      string
	}

	mockInvocation struct {
		name string
		args []string
		cmd  *exec.Cmd
	}
)

func newMockCommandRecorder() *mockCommandRecorder {
	return &mockCommandRecorder{}
}

// commandFunc returns an ExecCommandFunc that records invocations and runs TestHelperProcess.
func (m *mockCommandRecorder) commandFunc(t *testing.T) ExecCommandFunc {
	t.Helper()
	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cs := []string{"-test.run=TestHelperProcess", "--", name}
		cs = append(cs, args...)
		//nolint:gosec // TestHelperProcess is a test-only pattern
		cmd := exec.CommandContext(ctx, os.Args[0], cs...)
		cmd.Env = []string{
			"GO_WANT_HELPER_PROCESS=1",
			fmt.Sprintf("GO_HELPER_EXIT_CODE=%d", m.exitCode),
			"GO_HELPER_STDOUT=" + m.stdout,
			"GO_HELPER_STDERR=" + m.stderr,
		}
		m.invocations = append(m.invocations, &mockInvocation{name: name, args: args, cmd: cmd})
		return cmd
	}
}

func (m *mockCommandRecorder) last(t *testing.T) *mockInvocation {
	t.Helper()
	if len(m.invocations) == 0 {
		t.Fatal("no commands were invoked")
	}
	return m.invocations[len(m.invocations)-1]
}

// program returns the code passed with -e.
func (inv *mockInvocation) program() string {
	for i, a := range inv.args {
		if a == "-e" && i+1 < len(inv.args) {
			return inv.args[i+1]
		}
	}
	return ""
}

func (inv *mockInvocation) hasArg(arg string) bool {
	for _, a := range inv.args {
		if a == arg {
			return true
		}
	}
	return false
}

func (inv *mockInvocation) hasArgPrefix(prefix string) bool {
	for _, a := range inv.args {
		if strings.HasPrefix(a, prefix) {
			return true
		}
	}
	return false
}

// TestHelperProcess is used by the mock to simulate julia.
// It is not a real test.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	if stdout := os.Getenv("GO_HELPER_STDOUT"); stdout != "" {
		fmt.Fprint(os.Stdout, stdout)
	}
	if stderr := os.Getenv("GO_HELPER_STDERR"); stderr != "" {
		fmt.Fprint(os.Stderr, stderr)
	}

	exitCode := 0
	if code := os.Getenv("GO_HELPER_EXIT_CODE"); code != "" {
		fmt.Sscanf(code, "%d", &exitCode)
	}
	os.Exit(exitCode)
}

func newTestBridge(t *testing.T, m *mockCommandRecorder, opts ...Option) *ExecBridge {
	t.Helper()
	base := []Option{
		WithExecCommand(m.commandFunc(t)),
		WithLogger(log.New(io.Discard)),
		WithWorkingDirectory(t.TempDir()),
	}
	return NewExecBridge("/opt/julia/bin/julia", append(base, opts...)...)
}
