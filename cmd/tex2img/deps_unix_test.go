//go:build !windows

package main

// Notes:
// - runDeps: PATH points at a directory of stub executables, so the probe
//   sees exactly the tools each case installs. Nothing is executed.
// - Tests use t.Setenv("PATH") which prevents t.Parallel().
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-tex2img"
	"github.com/alnah/go-tex2img/internal/config"
)

// installStubs puts empty executables named bins on a fresh PATH.
func installStubs(t *testing.T, bins ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, b := range bins {
		if err := os.WriteFile(filepath.Join(dir, b), []byte("#!/bin/sh\n"), 0o755); err != nil { // #nosec G306 -- test executable
			t.Fatal(err)
		}
	}
	t.Setenv("PATH", dir)
	return dir
}

var allTools = []string{"latex", "dvips", "ps2pdf", "dvisvgm", "gs", "scour"}

// ---------------------------------------------------------------------------
// TestRunDeps - Toolchain report
// ---------------------------------------------------------------------------

func TestRunDeps_AllPresent(t *testing.T) {
	dir := installStubs(t, allTools...)

	te := newTestEnv("")
	code := run([]string{"deps"}, te.Environment)

	if code != ExitSuccess {
		t.Fatalf("exit = %d, stderr = %s", code, te.stderr)
	}
	out := te.stdout.String()
	if !strings.Contains(out, "Status: Ready") {
		t.Errorf("stdout = %q", out)
	}
	if !strings.Contains(out, filepath.Join(dir, "dvisvgm")) {
		t.Errorf("stdout missing resolved path: %q", out)
	}
	if strings.Contains(out, "[MISSING]") {
		t.Errorf("unexpected missing tool: %q", out)
	}
}

func TestRunDeps_JSON(t *testing.T) {
	installStubs(t, "latex", "dvips", "ps2pdf", "dvisvgm", "gs")

	te := newTestEnv("")
	code := run([]string{"--check-deps", "--json"}, te.Environment)

	if code != ExitSuccess {
		t.Fatalf("exit = %d, stderr = %s", code, te.stderr)
	}

	var report depsReport
	if err := json.Unmarshal(te.stdout.Bytes(), &report); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, te.stdout)
	}
	if report.Status != "warnings" {
		t.Errorf("status = %q, want warnings (scour is optional)", report.Status)
	}
	if len(report.Dependencies) != len(tex2img.DefaultRegistry().Names()) {
		t.Errorf("dependencies = %d, want one per stage", len(report.Dependencies))
	}
	for _, d := range report.Dependencies {
		if d.Stage == tex2img.StageSVGOptimize && (d.Found || d.Path != tex2img.NotFound) {
			t.Errorf("scour reported as %+v", d)
		}
	}
}

func TestRunDeps_MissingRequired(t *testing.T) {
	installStubs(t, "latex", "dvips", "ps2pdf", "scour")

	te := newTestEnv("")
	code := run([]string{"deps"}, te.Environment)

	if code != ExitDependency {
		t.Errorf("exit = %d, want %d", code, ExitDependency)
	}
	out := te.stdout.String()
	if strings.Count(out, "[MISSING]") != 4 {
		t.Errorf("want 4 missing rows (dvisvgm + 3 gs stages):\n%s", out)
	}
	if !strings.Contains(out, "Status: Not ready") {
		t.Errorf("stdout = %q", out)
	}
	if strings.Contains(te.stderr.String(), "error:") {
		t.Errorf("report printed twice: %q", te.stderr)
	}
}

func TestRunDeps_ArgumentsFromConfig(t *testing.T) {
	installStubs(t, allTools...)
	cfgPath := filepath.Join(t.TempDir(), "deps.yaml")
	cfg := "arguments:\n  to-png: \"-r300 ${ps_file}\"\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	te := newTestEnv("")
	code := run([]string{"deps", "--json", "-c", cfgPath}, te.Environment)
	if code != ExitSuccess {
		t.Fatalf("exit = %d, stderr = %s", code, te.stderr)
	}

	var report depsReport
	if err := json.Unmarshal(te.stdout.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	for _, d := range report.Dependencies {
		if d.Stage == tex2img.StageToPNG && d.Args != "-r300 ${ps_file}" {
			t.Errorf("to-png args = %q", d.Args)
		}
	}
}

func TestRunDeps_ReturnsMissingDependency(t *testing.T) {
	installStubs(t)

	te := newTestEnv("")
	err := runDeps(mustLoadDefaults(t), false, te.Environment, newLogger(te.stderr, false, false))
	if !errors.Is(err, tex2img.ErrMissingDependency) {
		t.Errorf("error = %v, want ErrMissingDependency", err)
	}
}

func mustLoadDefaults(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := loadConfig("", "")
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}
