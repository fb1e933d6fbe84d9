// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestPublisher_Publish(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	compiled := filepath.Join(dir, "sys_julia_project.so")
	target := filepath.Join(dir, "sys_demo-1.8.0.so")
	writeFile(t, compiled, "image")

	if err := NewPublisher(discardLogger()).Publish(compiled, target); err != nil {
		t.Fatalf("Publish() error: %v", err)
	}
	if fileExists(compiled) {
		t.Error("compiled image should no longer exist after publishing")
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("failed to read target: %v", err)
	}
	if string(data) != "image" {
		t.Errorf("target content = %q, want %q", data, "image")
	}
}

func TestPublisher_Publish_MissingCompiled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	err := NewPublisher(discardLogger()).Publish(filepath.Join(dir, "nope.so"), filepath.Join(dir, "t.so"))
	if !errors.Is(err, ErrArtifactNotProduced) {
		t.Fatalf("expected ErrArtifactNotProduced, got %v", err)
	}
}

func TestPublisher_Publish_VerificationFailed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	compiled := filepath.Join(dir, "sys_julia_project.so")
	target := filepath.Join(dir, "sys_demo-1.8.0.so")
	writeFile(t, compiled, "image")

	// Simulates a rename that reports success while the target never appears.
	p := NewPublisher(discardLogger())
	p.rename = func(string, string) error { return nil }

	err := p.Publish(compiled, target)
	if !errors.Is(err, ErrPublishVerificationFailed) {
		t.Fatalf("expected ErrPublishVerificationFailed, got %v", err)
	}
	if !errors.Is(err, ErrPublishVerificationFailed) || KindOf(err) != ErrPublishVerificationFailed {
		t.Errorf("KindOf() = %v", KindOf(err))
	}
}

func TestPublisher_Publish_RenameError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	compiled := filepath.Join(dir, "sys_julia_project.so")
	writeFile(t, compiled, "image")

	p := NewPublisher(discardLogger())
	p.rename = func(string, string) error { return os.ErrPermission }

	err := p.Publish(compiled, filepath.Join(dir, "t.so"))
	if !errors.Is(err, ErrPublishVerificationFailed) || !errors.Is(err, os.ErrPermission) {
		t.Fatalf("expected verification failure wrapping ErrPermission, got %v", err)
	}
}

func TestCleaner_Idempotent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	lock := filepath.Join(dir, "Manifest.toml")
	target := filepath.Join(dir, "sys_demo-1.8.0.so")
	keep := filepath.Join(dir, "Project.toml")
	writeFile(t, lock, "")
	writeFile(t, keep, "")

	c := NewCleaner(discardLogger(), lock, target)
	for i := range 3 {
		if err := c.Clean(); err != nil {
			t.Fatalf("Clean() call %d error: %v", i+1, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "Project.toml" {
		t.Errorf("unexpected directory state: %v", entries)
	}
}
