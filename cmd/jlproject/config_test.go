// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/jlproject/jlproject/internal/config"
)

func TestConfigDump(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Julia.Version = "1.9.4"
	cfg.Julia.Depot = "/opt/depot"

	res := runCLI(t, Dependencies{Config: &stubConfigProvider{cfg: cfg}}, "config", "dump")
	if res.err != nil {
		t.Fatalf("config dump: %v", res.err)
	}
	for _, want := range []string{`version: "1.9.4"`, `depot: "/opt/depot"`, `env_var: "JULIA"`} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("dump does not contain %q:\n%s", want, res.stdout)
		}
	}
}

func TestConfigShow(t *testing.T) {
	t.Parallel()

	provider := &stubConfigProvider{source: "/etc/jlproject.cue"}
	res := runCLI(t, Dependencies{Config: provider}, "config", "show")
	if res.err != nil {
		t.Fatalf("config show: %v", res.err)
	}
	for _, want := range []string{"/etc/jlproject.cue", "compile_julia_project.jl", "PYCALL_JL_RUNTIME_PYTHON"} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("show does not mention %q:\n%s", want, res.stdout)
		}
	}
}

func TestConfigPath_PrefersLoadedSource(t *testing.T) {
	t.Parallel()

	provider := &stubConfigProvider{source: "/work/jlproject.cue"}
	res := runCLI(t, Dependencies{Config: provider}, "config", "path")
	if res.err != nil {
		t.Fatalf("config path: %v", res.err)
	}
	if strings.TrimSpace(res.stdout) != "/work/jlproject.cue" {
		t.Errorf("config path = %q", res.stdout)
	}
}

func TestConfigLoadFailure(t *testing.T) {
	t.Parallel()

	loadErr := errors.New("boom")
	res := runCLI(t, Dependencies{Config: &stubConfigProvider{err: loadErr}}, "config", "show")
	if !errors.Is(res.err, loadErr) {
		t.Fatalf("err = %v, want %v", res.err, loadErr)
	}
}
