package main

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/alnah/go-tex2img"
	"github.com/alnah/go-tex2img/internal/config"
	"github.com/alnah/go-tex2img/internal/hints"
)

// depsReport holds the toolchain probe results.
type depsReport struct {
	Status       string               `json:"status"` // "ready", "warnings", "errors"
	OS           string               `json:"os"`
	Dependencies []tex2img.Dependency `json:"dependencies"`
	LibGS        string               `json:"libgs,omitempty"`
}

// optionalStages may be missing without blocking other formats.
var optionalStages = map[string]bool{tex2img.StageSVGOptimize: true}

// runDeps reports where each toolchain binary resolves. Missing required
// tools make it fail with ErrMissingDependency.
func runDeps(cfg *config.Config, jsonOutput bool, env *Environment, log logrus.FieldLogger) error {
	reg, err := tex2img.DefaultRegistry().WithArguments(knownStages(cfg.Arguments, log))
	if err != nil {
		return err
	}

	report := &depsReport{
		Status:       "ready",
		OS:           runtime.GOOS,
		Dependencies: reg.Probe(),
	}
	if r, err := tex2img.NewRenderer(tex2img.WithLibGS(cfg.LibGS)); err == nil {
		report.LibGS = r.LibGS()
	}

	var missing *multierror.Error
	for _, d := range report.Dependencies {
		if d.Found {
			continue
		}
		if optionalStages[d.Stage] {
			if report.Status == "ready" {
				report.Status = "warnings"
			}
			continue
		}
		report.Status = "errors"
		missing = multierror.Append(missing, &tex2img.MissingDependencyError{Stage: d.Stage, Binary: d.Binary})
	}

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		printDepsReport(env.Stdout, report)
	}

	if err := missing.ErrorOrNil(); err != nil {
		return reportedError{err}
	}
	return nil
}

// printDepsReport outputs a human-readable toolchain table.
func printDepsReport(w io.Writer, r *depsReport) {
	ok := color.New(color.FgGreen).SprintFunc()
	bad := color.New(color.FgRed).SprintFunc()
	warn := color.New(color.FgYellow).SprintFunc()

	fmt.Fprintln(w, "tex2img dependencies")
	fmt.Fprintln(w)

	for _, d := range r.Dependencies {
		switch {
		case d.Found:
			fmt.Fprintf(w, "  %s %-13s %-8s %s\n", ok(fmt.Sprintf("%-9s", "[OK]")), d.Stage, d.Binary, d.Path)
		case optionalStages[d.Stage]:
			fmt.Fprintf(w, "  %s %-13s %-8s %s%s\n", warn(fmt.Sprintf("%-9s", "[WARN]")), d.Stage, d.Binary, d.Path, hints.ForMissingBinary(d.Binary))
		default:
			fmt.Fprintf(w, "  %s %-13s %-8s %s%s\n", bad(fmt.Sprintf("%-9s", "[MISSING]")), d.Stage, d.Binary, d.Path, hints.ForMissingBinary(d.Binary))
		}
	}
	fmt.Fprintln(w)

	if r.OS == "darwin" {
		if r.LibGS != "" {
			fmt.Fprintf(w, "Ghostscript library: %s\n\n", r.LibGS)
		} else {
			fmt.Fprintln(w, "Ghostscript library: found by the system loader")
			fmt.Fprintln(w)
		}
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to render every format")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready (svg optimization unavailable)")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see missing tools above)")
	}
}
