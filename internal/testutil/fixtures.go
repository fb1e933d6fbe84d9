// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// ProjectManifest is a minimal Project.toml.
const ProjectManifest = `name = "DemoImage"
uuid = "8f6a7b1c-3c9e-4a57-9d0a-2f1e6a0b4c11"

[deps]
JSON = "682c06a0-de6a-54ab-a142-c8b1cf79cde6"
`

// CompileScript is a placeholder compile script.
const CompileScript = "# compile the system image\n"

// NewBuildDir creates a build directory with a Project.toml and a compile script.
func NewBuildDir(t testing.TB) string {
	t.Helper()
	dir := t.TempDir()
	MustWriteFile(t, filepath.Join(dir, "Project.toml"), ProjectManifest, 0o644)
	MustWriteFile(t, filepath.Join(dir, "compile_julia_project.jl"), CompileScript, 0o644)
	return dir
}

// FakeJuliaOptions tune WriteFakeJulia.
type FakeJuliaOptions struct {
	// Version is printed by --version.
	Version string
	// FailResolve makes every Pkg.resolve() exit non-zero.
	FailResolve bool
	// SkipImage makes the compile script step write nothing.
	SkipImage bool
	// Log, when set, receives one line per invocation.
	Log string
}

// WriteFakeJulia writes a POSIX shell script that mimics the julia CLI closely
// enough for the provisioning flow: it answers --version, writes Manifest.toml
// on Pkg.resolve() and writes sys_julia_project.so in its working directory
// when asked to include a script. The test is skipped on Windows.
func WriteFakeJulia(t testing.TB, dir string, opts FakeJuliaOptions) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake julia is a POSIX shell script")
	}
	if opts.Version == "" {
		opts.Version = "1.10.4"
	}

	var sb strings.Builder
	sb.WriteString("#!/bin/sh\n")
	if opts.Log != "" {
		sb.WriteString("echo \"$*\" >> '" + opts.Log + "'\n")
	}
	sb.WriteString(`if [ "$1" = "--version" ]; then echo "julia version ` + opts.Version + `"; exit 0; fi
project=""
code=""
while [ $# -gt 0 ]; do
  case "$1" in
    --project=*) project="${1#--project=}" ;;
    -e) shift; code="$1" ;;
  esac
  shift
done
case "$code" in
  *Pkg.resolve*)
`)
	if opts.FailResolve {
		sb.WriteString("    echo 'ERROR: Unsatisfiable requirements' >&2; exit 1 ;;\n")
	} else {
		sb.WriteString(`    printf 'julia_version = "` + opts.Version + `"\nmanifest_format = "2.0"\n' > "$project/Manifest.toml" ;;
`)
	}
	sb.WriteString("  *include*)\n")
	if opts.SkipImage {
		sb.WriteString("    : ;;\n")
	} else {
		sb.WriteString("    echo image > sys_julia_project.so ;;\n")
	}
	sb.WriteString("esac\nexit 0\n")

	path := filepath.Join(dir, "julia")
	MustWriteFile(t, path, sb.String(), 0o755)
	return path
}
