// SPDX-License-Identifier: MPL-2.0

package juliabridge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// DepotEnvVar is the environment variable Julia reads its package depot from.
const DepotEnvVar = "JULIA_DEPOT_PATH"

// Code run by the package-manager operations.
const (
	ResolveCode     = "import Pkg; Pkg.resolve()"
	UpdateCode      = "import Pkg; Pkg.update()"
	InstantiateCode = "import Pkg; Pkg.instantiate()"
)

// stderrTail bounds how much of a failed invocation's stderr is kept in the error.
const stderrTail = 2048

var (
	// ErrCommandFailed is returned when a julia invocation exits unsuccessfully.
	ErrCommandFailed = errors.New("julia command failed")
	// ErrNotDirectory is returned by ChangeDirectory for paths that are not directories.
	ErrNotDirectory = errors.New("not a directory")
)

// baseFlags keep every invocation independent of the user's startup file and REPL history.
var baseFlags = []string{"--startup-file=no", "--history-file=no"}

type (
	// ExecCommandFunc is the function signature for creating exec.Cmd.
	// This allows injection of mock implementations for testing.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// Option configures an ExecBridge.
	Option func(*ExecBridge)

	// ExecBridge implements the provisioning runtime bridge on top of the julia CLI.
	ExecBridge struct {
		executable  string
		execCommand ExecCommandFunc
		env         []string
		stdout      io.Writer
		stderr      io.Writer
		logger      *log.Logger

		mu      sync.Mutex
		dir     string
		project string
		prelude []string
	}

	// CommandError describes a failed julia invocation.
	CommandError struct {
		Op     string
		Stderr string
		Err    error
	}
)

// WithExecCommand sets a custom exec command function for testing.
func WithExecCommand(fn ExecCommandFunc) Option {
	return func(b *ExecBridge) {
		b.execCommand = fn
	}
}

// WithEnv adds an environment variable to every julia invocation.
func WithEnv(key, value string) Option {
	return func(b *ExecBridge) {
		b.env = append(b.env, key+"="+value)
	}
}

// WithDepot points Julia at a private package depot. An empty path is ignored.
func WithDepot(path string) Option {
	return func(b *ExecBridge) {
		if path != "" {
			b.env = append(b.env, DepotEnvVar+"="+path)
		}
	}
}

// WithOutput forwards julia's stdout and stderr. Nil writers discard.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(b *ExecBridge) {
		b.stdout = stdout
		b.stderr = stderr
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(b *ExecBridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithWorkingDirectory sets the initial session working directory.
func WithWorkingDirectory(dir string) Option {
	return func(b *ExecBridge) {
		b.dir = dir
	}
}

// WithProject sets the initially active environment.
func WithProject(path string) Option {
	return func(b *ExecBridge) {
		b.project = path
	}
}

// NewExecBridge creates a bridge that runs the julia executable at path.
// The session starts in the process working directory with the default environment.
func NewExecBridge(executable string, opts ...Option) *ExecBridge {
	b := &ExecBridge{
		executable:  executable,
		execCommand: exec.CommandContext,
		stdout:      io.Discard,
		stderr:      io.Discard,
		logger:      log.NewWithOptions(os.Stderr, log.Options{Prefix: "julia"}),
	}
	if wd, err := os.Getwd(); err == nil {
		b.dir = wd
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.stdout == nil {
		b.stdout = io.Discard
	}
	if b.stderr == nil {
		b.stderr = io.Discard
	}
	return b
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("julia %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("julia %s: %v: %s", e.Op, e.Err, e.Stderr)
}

// Unwrap exposes both ErrCommandFailed and the underlying exec error.
func (e *CommandError) Unwrap() []error {
	return []error{ErrCommandFailed, e.Err}
}

// Executable returns the julia executable path.
func (b *ExecBridge) Executable() string {
	return b.executable
}

// Env returns the extra KEY=value pairs passed to every invocation.
func (b *ExecBridge) Env() []string {
	return slices.Clone(b.env)
}

// Activate selects the environment rooted at path. Relative paths resolve
// against the session working directory; an empty path selects the default
// environment.
func (b *ExecBridge) Activate(_ context.Context, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if path != "" && !filepath.IsAbs(path) {
		path = filepath.Join(b.dir, path)
	}
	b.project = path
	b.logger.Debug("activated environment", "project", path)
	return nil
}

// ActiveEnvironment returns the active environment path, empty for the default.
func (b *ExecBridge) ActiveEnvironment(context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.project, nil
}

// Resolve runs Pkg.resolve() in the active environment.
func (b *ExecBridge) Resolve(ctx context.Context) error {
	return b.run(ctx, "resolve", ResolveCode)
}

// Update runs Pkg.update() in the active environment.
func (b *ExecBridge) Update(ctx context.Context) error {
	return b.run(ctx, "update", UpdateCode)
}

// Instantiate runs Pkg.instantiate() in the active environment.
func (b *ExecBridge) Instantiate(ctx context.Context) error {
	return b.run(ctx, "instantiate", InstantiateCode)
}

// Evaluate runs expr once to check it and keeps it as setup for every later
// invocation in this session.
func (b *ExecBridge) Evaluate(ctx context.Context, expr string) error {
	if err := b.run(ctx, "evaluate", expr); err != nil {
		return err
	}
	b.mu.Lock()
	b.prelude = append(b.prelude, expr)
	b.mu.Unlock()
	return nil
}

// AddRegistry adds the package registry at url to the depot. Unlike Evaluate
// the call is not replayed by later invocations.
func (b *ExecBridge) AddRegistry(ctx context.Context, url string) error {
	return b.run(ctx, "registry", RegistryCode(url))
}

// RegistryCode returns the Julia code that adds the package registry at url.
func RegistryCode(url string) string {
	return "import Pkg; Pkg.Registry.add(Pkg.RegistrySpec(url = " + quoteString(url) + "))"
}

// RunScript includes the script at path. Relative paths resolve against the
// session working directory.
func (b *ExecBridge) RunScript(ctx context.Context, path string) error {
	b.mu.Lock()
	if !filepath.IsAbs(path) {
		path = filepath.Join(b.dir, path)
	}
	b.mu.Unlock()
	return b.run(ctx, "script", IncludeCode(path))
}

// IncludeCode returns the Julia code that runs the script at path.
func IncludeCode(path string) string {
	return "include(" + quoteString(path) + ")"
}

// ChangeDirectory sets the session working directory. The directory must exist.
func (b *ExecBridge) ChangeDirectory(_ context.Context, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !filepath.IsAbs(path) {
		path = filepath.Join(b.dir, path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("change directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("change directory: %w: %s", ErrNotDirectory, path)
	}
	b.dir = filepath.Clean(path)
	return nil
}

// CurrentDirectory returns the session working directory.
func (b *ExecBridge) CurrentDirectory(context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dir, nil
}

// CommandLine returns the full argv that would run code in the current
// session, setup expressions included.
func (b *ExecBridge) CommandLine(code string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string{b.executable}, b.argsLocked(code)...)
}

func (b *ExecBridge) argsLocked(code string) []string {
	args := append([]string(nil), baseFlags...)
	if b.project != "" {
		args = append(args, "--project="+b.project)
	}
	program := code
	if len(b.prelude) > 0 {
		program = strings.Join(b.prelude, "\n") + "\n" + code
	}
	return append(args, "-e", program)
}

func (b *ExecBridge) run(ctx context.Context, op, code string) error {
	b.mu.Lock()
	args := b.argsLocked(code)
	dir := b.dir
	b.mu.Unlock()

	cmd := b.command(ctx, dir, args...)
	cmd.Stdout = b.stdout
	var stderr bytes.Buffer
	cmd.Stderr = io.MultiWriter(b.stderr, &stderr)

	b.logger.Debug("running julia", "op", op, "dir", dir)
	if err := cmd.Run(); err != nil {
		return &CommandError{Op: op, Stderr: tail(stderr.String()), Err: err}
	}
	return nil
}

func (b *ExecBridge) command(ctx context.Context, dir string, args ...string) *exec.Cmd {
	cmd := b.execCommand(ctx, b.executable, args...)
	cmd.Dir = dir
	if len(b.env) > 0 {
		if cmd.Env == nil {
			cmd.Env = os.Environ()
		}
		cmd.Env = append(cmd.Env, b.env...)
	}
	return cmd
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > stderrTail {
		s = s[len(s)-stderrTail:]
	}
	return s
}

var juliaEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, `$`, `\$`)

// quoteString quotes s as a Julia string literal.
func quoteString(s string) string {
	return `"` + juliaEscaper.Replace(s) + `"`
}
