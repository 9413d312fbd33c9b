package main

// Notes:
// - exitCodeFor: we test the sentinel errors of the library, config and CLI,
//   plus wrapped and aggregated errors to verify the errors.Is() chain.
// - Exit code constants: we verify Unix conventions (0=success, 1=general, 2=usage)
//   and custom codes are below 126.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/hashicorp/go-multierror"

	"github.com/alnah/go-tex2img"
	"github.com/alnah/go-tex2img/internal/config"
	"github.com/alnah/go-tex2img/internal/fileutil"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error to exit code mapping
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	stageErr := &tex2img.StageError{Stage: tex2img.StageCompile, Binary: "latex", ExitCode: 1}
	missing := &tex2img.MissingDependencyError{Stage: tex2img.StageToSVG, Binary: "dvisvgm"}

	tests := []struct {
		name string
		err  error
		want int
	}{
		// Success
		{"nil error", nil, ExitSuccess},

		// Toolchain errors (exit 4)
		{"missing dependency", tex2img.ErrMissingDependency, ExitDependency},
		{"missing dependency error", missing, ExitDependency},
		{"optimizer unavailable", fmt.Errorf("%w: %w", tex2img.ErrOptimizationUnavailable, missing), ExitDependency},

		// Stage errors (exit 5)
		{"stage failed", tex2img.ErrStageFailed, ExitStage},
		{"stage error", stageErr, ExitStage},
		{"stage timeout", &tex2img.StageError{Stage: tex2img.StageToPNG, Binary: "gs", ExitCode: -1, Err: context.DeadlineExceeded}, ExitStage},

		// I/O errors (exit 3)
		{"file not exist", os.ErrNotExist, ExitIO},
		{"permission denied", os.ErrPermission, ExitIO},
		{"not regular file", fileutil.ErrNotRegularFile, ExitIO},
		{"file too large", fileutil.ErrFileTooLarge, ExitIO},
		{"read input", ErrReadInput, ExitIO},
		{"write source", tex2img.ErrWriteSource, ExitIO},
		{"workspace", tex2img.ErrWorkspace, ExitIO},
		{"wrapped file not exist", fmt.Errorf("reading: %w", os.ErrNotExist), ExitIO},

		// Usage/config/validation errors (exit 2)
		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"field too long", config.ErrFieldTooLong, ExitUsage},
		{"invalid value", config.ErrInvalidValue, ExitUsage},
		{"empty config name", config.ErrEmptyConfigName, ExitUsage},
		{"unsupported format", tex2img.ErrUnsupportedFormat, ExitUsage},
		{"template", tex2img.ErrTemplate, ExitUsage},
		{"unknown stage", tex2img.ErrUnknownStage, ExitUsage},
		{"empty output", tex2img.ErrEmptyOutput, ExitUsage},
		{"invalid flag", ErrInvalidFlag, ExitUsage},
		{"no input", ErrNoInput, ExitUsage},
		{"no output", ErrNoOutput, ExitUsage},
		{"unknown command", ErrUnknownCommand, ExitUsage},
		{"wrapped config parse", fmt.Errorf("loading: %w", config.ErrConfigParse), ExitUsage},

		// General errors (exit 1)
		{"unknown error", errors.New("something unexpected"), ExitGeneral},
		{"canceled", context.Canceled, ExitGeneral},
		{"wrapped unknown", fmt.Errorf("context: %w", errors.New("unknown")), ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := exitCodeFor(tt.err)
			if got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitCodeFor_Aggregated(t *testing.T) {
	t.Parallel()

	t.Run("dependency outranks stage", func(t *testing.T) {
		t.Parallel()

		var errs *multierror.Error
		errs = multierror.Append(errs, &tex2img.StageError{Stage: tex2img.StageCompile, Binary: "latex", ExitCode: 1})
		errs = multierror.Append(errs, &tex2img.MissingDependencyError{Stage: tex2img.StageToSVG, Binary: "dvisvgm"})

		if got := exitCodeFor(reportedError{errs}); got != ExitDependency {
			t.Errorf("exitCodeFor = %d, want %d", got, ExitDependency)
		}
	})

	t.Run("reported stage failure", func(t *testing.T) {
		t.Parallel()

		errs := multierror.Append(nil, &tex2img.StageError{Stage: tex2img.StageToPNG, Binary: "gs", ExitCode: 1})
		if got := exitCodeFor(reportedError{errs}); got != ExitStage {
			t.Errorf("exitCodeFor = %d, want %d", got, ExitStage)
		}
	})
}

// ---------------------------------------------------------------------------
// TestExitCodeConstants - Unix convention compliance
// ---------------------------------------------------------------------------

func TestExitCodeConstants(t *testing.T) {
	t.Parallel()

	if ExitSuccess != 0 {
		t.Errorf("ExitSuccess = %d, want 0", ExitSuccess)
	}
	if ExitGeneral != 1 {
		t.Errorf("ExitGeneral = %d, want 1", ExitGeneral)
	}
	if ExitUsage != 2 {
		t.Errorf("ExitUsage = %d, want 2", ExitUsage)
	}

	codes := []int{ExitSuccess, ExitGeneral, ExitUsage, ExitIO, ExitDependency, ExitStage}
	seen := map[int]bool{}
	for _, c := range codes {
		if c >= 126 {
			t.Errorf("exit code %d conflicts with shell-reserved codes", c)
		}
		if seen[c] {
			t.Errorf("exit code %d used twice", c)
		}
		seen[c] = true
	}
}
