// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/jlproject/jlproject/internal/config"
	"github.com/jlproject/jlproject/internal/provision"
	"github.com/jlproject/jlproject/internal/testutil"
)

func skipUnlessLinux(t *testing.T) {
	t.Helper()
	if runtime.GOOS != "linux" {
		t.Skip("fake julia writes a .so image")
	}
}

func TestCompile_PublishesImage(t *testing.T) {
	t.Parallel()
	skipUnlessLinux(t)

	dir := testutil.NewBuildDir(t)
	julia := testutil.WriteFakeJulia(t, t.TempDir(), testutil.FakeJuliaOptions{Version: "1.10.4"})

	res := runCLI(t, Dependencies{}, "compile", "--dir", dir, "--julia", julia)
	if res.err != nil {
		t.Fatalf("compile: %v\nstderr:\n%s", res.err, res.stderr)
	}

	target := filepath.Join(dir, "sys_DemoImage-1.10.4.so")
	if !testutil.FileExists(target) {
		t.Errorf("image %s not published", target)
	}
	if testutil.FileExists(filepath.Join(dir, "sys_julia_project.so")) {
		t.Error("compiled image left behind after publishing")
	}
	if !testutil.FileExists(filepath.Join(dir, "Manifest.toml")) {
		t.Error("lock manifest not regenerated")
	}
	if !strings.Contains(res.stdout, target) {
		t.Errorf("stdout = %q, want it to mention %s", res.stdout, target)
	}
}

func TestCompile_NameFlagOverridesManifestName(t *testing.T) {
	t.Parallel()
	skipUnlessLinux(t)

	dir := testutil.NewBuildDir(t)
	julia := testutil.WriteFakeJulia(t, t.TempDir(), testutil.FakeJuliaOptions{Version: "1.9.3"})

	res := runCLI(t, Dependencies{}, "compile", "--dir", dir, "--julia", julia, "--name", "plots")
	if res.err != nil {
		t.Fatalf("compile: %v\nstderr:\n%s", res.err, res.stderr)
	}
	if !testutil.FileExists(filepath.Join(dir, "sys_plots-1.9.3.so")) {
		t.Error("image not named after --name")
	}
}

func TestCompile_MissingManifest(t *testing.T) {
	t.Parallel()
	skipUnlessLinux(t)

	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "compile_julia_project.jl"), testutil.CompileScript, 0o644)
	logPath := filepath.Join(t.TempDir(), "julia.log")
	julia := testutil.WriteFakeJulia(t, t.TempDir(), testutil.FakeJuliaOptions{Log: logPath})

	res := runCLI(t, Dependencies{}, "compile", "--dir", dir, "--julia", julia, "--name", "demo")
	if !errors.Is(res.err, provision.ErrMissingManifest) {
		t.Fatalf("err = %v, want ErrMissingManifest", res.err)
	}

	var exitErr *ExitError
	if !errors.As(res.err, &exitErr) || exitErr.Code != 1 {
		t.Errorf("err = %#v, want ExitError with code 1", res.err)
	}

	data, _ := os.ReadFile(logPath)
	if strings.Contains(string(data), "Pkg.") {
		t.Errorf("package manager invoked without a manifest:\n%s", data)
	}
}

func TestCompile_ResolveFailureRetriesOnce(t *testing.T) {
	t.Parallel()
	skipUnlessLinux(t)

	dir := testutil.NewBuildDir(t)
	logPath := filepath.Join(t.TempDir(), "julia.log")
	julia := testutil.WriteFakeJulia(t, t.TempDir(), testutil.FakeJuliaOptions{FailResolve: true, Log: logPath})

	res := runCLI(t, Dependencies{}, "compile", "--dir", dir, "--julia", julia)
	if !errors.Is(res.err, provision.ErrResolutionFailed) {
		t.Fatalf("err = %v, want ErrResolutionFailed", res.err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	log := string(data)
	if got := strings.Count(log, "Pkg.resolve()"); got != 2 {
		t.Errorf("resolve ran %d times, want 2", got)
	}
	if got := strings.Count(log, "Pkg.update()"); got != 1 {
		t.Errorf("update ran %d times, want 1", got)
	}
	if strings.Contains(log, "Pkg.instantiate()") {
		t.Error("instantiate ran after resolution failed")
	}
}

func TestCompile_ScriptWritesNothing(t *testing.T) {
	t.Parallel()
	skipUnlessLinux(t)

	dir := testutil.NewBuildDir(t)
	julia := testutil.WriteFakeJulia(t, t.TempDir(), testutil.FakeJuliaOptions{SkipImage: true})

	res := runCLI(t, Dependencies{}, "compile", "--dir", dir, "--julia", julia)
	if !errors.Is(res.err, provision.ErrArtifactNotProduced) {
		t.Fatalf("err = %v, want ErrArtifactNotProduced", res.err)
	}
}

func TestCompile_DryRunRunsNothing(t *testing.T) {
	t.Parallel()
	skipUnlessLinux(t)

	dir := testutil.NewBuildDir(t)
	logPath := filepath.Join(t.TempDir(), "julia.log")
	julia := testutil.WriteFakeJulia(t, t.TempDir(), testutil.FakeJuliaOptions{Log: logPath})

	res := runCLI(t, Dependencies{}, "compile", "--dry-run", "--dir", dir, "--julia", julia, "--julia-version", "1.10.4")
	if res.err != nil {
		t.Fatalf("compile --dry-run: %v\nstderr:\n%s", res.err, res.stderr)
	}

	for _, want := range []string{
		"Pkg.resolve()",
		"Pkg.update()",
		"Pkg.instantiate()",
		"--project=" + dir,
		"sys_DemoImage-1.10.4.so",
	} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("plan does not mention %q:\n%s", want, res.stdout)
		}
	}
	if testutil.FileExists(logPath) {
		t.Error("julia was invoked during a dry run")
	}
	if testutil.FileExists(filepath.Join(dir, "Manifest.toml")) {
		t.Error("dry run wrote a lock manifest")
	}
}

func TestCompile_DryRunListsRegistry(t *testing.T) {
	t.Parallel()
	skipUnlessLinux(t)

	dir := testutil.NewBuildDir(t)
	julia := testutil.WriteFakeJulia(t, t.TempDir(), testutil.FakeJuliaOptions{})

	cfg := config.DefaultConfig()
	cfg.Julia.RegistryURL = "https://example.com/Registry"
	res := runCLI(t, Dependencies{Config: &stubConfigProvider{cfg: cfg}},
		"compile", "--dry-run", "--dir", dir, "--julia", julia, "--julia-version", "1.10.4")
	if res.err != nil {
		t.Fatalf("compile --dry-run: %v\nstderr:\n%s", res.err, res.stderr)
	}

	registry := strings.Index(res.stdout, "Pkg.Registry.add")
	if registry < 0 || registry > strings.Index(res.stdout, "Pkg.resolve()") {
		t.Errorf("plan should add the registry before resolving:\n%s", res.stdout)
	}
}

func TestShellLine(t *testing.T) {
	t.Parallel()

	step := planStep{
		dir:  "/tmp/build dir",
		env:  []string{"JULIA_DEPOT_PATH=/opt/depot"},
		argv: []string{"julia", "-e", `ENV["X"] = "y"`},
	}
	got := shellLine(step)
	want := `cd '/tmp/build dir' && JULIA_DEPOT_PATH=/opt/depot julia -e 'ENV["X"] = "y"'`
	if got != want {
		t.Errorf("shellLine() = %q, want %q", got, want)
	}
}
