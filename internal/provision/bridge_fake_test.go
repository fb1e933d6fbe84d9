// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

const testSuffix = ".so"

// fakeBridge implements RuntimeBridge in memory. It records every call and
// lets tests fail individual steps.
type fakeBridge struct {
	dir string
	env string

	// resolveErrs is consumed one entry per Resolve call; nil entries succeed.
	resolveErrs    []error
	updateErr      error
	registryErr    error
	instantiateErr error
	evaluateErr    error
	scriptErr      error
	// activateFail is returned when Activate targets failPath.
	activateFail error
	failPath     string

	// honorCancel makes every recorded call fail once its context is done.
	honorCancel bool
	// onResolve runs at the start of every Resolve call.
	onResolve func()

	// writeImage makes RunScript create the compiled image in dir.
	writeImage bool

	calls       []string
	resolves    int
	updates     int
	instantiate int
	registries  []string
	evaluated   []string
	scripts     []string
}

var _ RuntimeBridge = (*fakeBridge)(nil)

func newFakeBridge(dir, env string) *fakeBridge {
	return &fakeBridge{dir: dir, env: env, writeImage: true}
}

// record appends name to calls and reports a done context when honorCancel is set.
func (f *fakeBridge) record(ctx context.Context, name string) error {
	f.calls = append(f.calls, name)
	if f.honorCancel {
		return ctx.Err()
	}
	return nil
}

func (f *fakeBridge) Activate(ctx context.Context, path string) error {
	if err := f.record(ctx, "activate"); err != nil {
		return err
	}
	if f.activateFail != nil && path == f.failPath {
		return f.activateFail
	}
	f.env = path
	return nil
}

func (f *fakeBridge) ActiveEnvironment(context.Context) (string, error) {
	return f.env, nil
}

func (f *fakeBridge) Resolve(ctx context.Context) error {
	if f.onResolve != nil {
		f.onResolve()
	}
	f.resolves++
	if err := f.record(ctx, "resolve"); err != nil {
		return err
	}
	if len(f.resolveErrs) == 0 {
		return nil
	}
	err := f.resolveErrs[0]
	f.resolveErrs = f.resolveErrs[1:]
	return err
}

func (f *fakeBridge) Update(ctx context.Context) error {
	f.updates++
	if err := f.record(ctx, "update"); err != nil {
		return err
	}
	return f.updateErr
}

func (f *fakeBridge) AddRegistry(ctx context.Context, url string) error {
	f.registries = append(f.registries, url)
	if err := f.record(ctx, "registry"); err != nil {
		return err
	}
	return f.registryErr
}

func (f *fakeBridge) Instantiate(ctx context.Context) error {
	f.instantiate++
	if err := f.record(ctx, "instantiate"); err != nil {
		return err
	}
	return f.instantiateErr
}

func (f *fakeBridge) Evaluate(ctx context.Context, expr string) error {
	f.evaluated = append(f.evaluated, expr)
	if err := f.record(ctx, "evaluate"); err != nil {
		return err
	}
	return f.evaluateErr
}

func (f *fakeBridge) RunScript(ctx context.Context, path string) error {
	f.scripts = append(f.scripts, path)
	if err := f.record(ctx, "script"); err != nil {
		return err
	}
	if f.scriptErr != nil {
		return f.scriptErr
	}
	if f.writeImage {
		return os.WriteFile(filepath.Join(f.dir, CompiledImageBase+testSuffix), []byte("image"), 0o644)
	}
	return nil
}

func (f *fakeBridge) ChangeDirectory(ctx context.Context, path string) error {
	if err := f.record(ctx, "cd"); err != nil {
		return err
	}
	f.dir = path
	return nil
}

func (f *fakeBridge) CurrentDirectory(context.Context) (string, error) {
	return f.dir, nil
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}

// newBuildDir creates a build directory with a Project.toml and a compile script.
func newBuildDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ProjectManifestName), "name = \"demo\"\n[deps]\nExample = \"7876af07-990d-54b4-ab0e-23690620f79a\"\n")
	writeFile(t, filepath.Join(dir, DefaultCompileScript), "# compile\n")
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}
