// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/jlproject/jlproject/internal/juliabridge"
	"github.com/jlproject/jlproject/internal/testutil"
)

func noJulia(...juliabridge.FinderOption) (string, error) {
	return "", juliabridge.ErrJuliaNotFound
}

func TestClean_IsIdempotent(t *testing.T) {
	t.Parallel()

	dir := testutil.NewBuildDir(t)
	lock := filepath.Join(dir, "Manifest.toml")
	image := filepath.Join(dir, "sys_DemoImage-1.10.4.so")
	testutil.MustWriteFile(t, lock, "julia_version = \"1.10.4\"\n", 0o644)
	testutil.MustWriteFile(t, image, "image", 0o644)

	// A pinned version must not need julia at all.
	deps := Dependencies{FindJulia: noJulia}
	for i := range 3 {
		res := runCLI(t, deps, "clean", "--dir", dir, "--julia-version", "1.10.4")
		if res.err != nil {
			t.Fatalf("clean #%d: %v\nstderr:\n%s", i+1, res.err, res.stderr)
		}
	}

	if testutil.FileExists(lock) || testutil.FileExists(image) {
		t.Error("clean left the lock manifest or the image behind")
	}
	if !testutil.FileExists(filepath.Join(dir, "Project.toml")) {
		t.Error("clean removed Project.toml")
	}
}

func TestClean_KeepsOtherVersions(t *testing.T) {
	t.Parallel()

	dir := testutil.NewBuildDir(t)
	other := filepath.Join(dir, "sys_DemoImage-1.9.0.so")
	testutil.MustWriteFile(t, other, "image", 0o644)

	res := runCLI(t, Dependencies{FindJulia: noJulia}, "clean", "--dir", dir, "--julia-version", "1.10.4")
	if res.err != nil {
		t.Fatalf("clean: %v", res.err)
	}
	if !testutil.FileExists(other) {
		t.Error("clean removed the image of another julia version")
	}
}

func TestClean_NeedsJuliaWithoutPinnedVersion(t *testing.T) {
	t.Parallel()

	dir := testutil.NewBuildDir(t)
	res := runCLI(t, Dependencies{FindJulia: noJulia}, "clean", "--dir", dir)
	if !errors.Is(res.err, juliabridge.ErrJuliaNotFound) {
		t.Fatalf("err = %v, want ErrJuliaNotFound", res.err)
	}
}
