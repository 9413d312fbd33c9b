package main

import (
	"errors"
	"os"

	"github.com/alnah/go-tex2img"
	"github.com/alnah/go-tex2img/internal/config"
	"github.com/alnah/go-tex2img/internal/fileutil"
)

// Exit codes for tex2img CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess    = 0 // Successful render
	ExitGeneral    = 1 // General/unexpected error
	ExitUsage      = 2 // Invalid flags, config, format or template
	ExitIO         = 3 // File not found, permission denied
	ExitDependency = 4 // Toolchain binary missing
	ExitStage      = 5 // A conversion tool failed
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Toolchain errors (exit 4)
	if errors.Is(err, tex2img.ErrMissingDependency) {
		return ExitDependency
	}

	// Tool failures (exit 5)
	if errors.Is(err, tex2img.ErrStageFailed) {
		return ExitStage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, fileutil.ErrNotRegularFile) ||
		errors.Is(err, fileutil.ErrFileTooLarge) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, tex2img.ErrWriteSource) ||
		errors.Is(err, tex2img.ErrWorkspace) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, tex2img.ErrUnsupportedFormat) ||
		errors.Is(err, tex2img.ErrTemplate) ||
		errors.Is(err, tex2img.ErrUnknownStage) ||
		errors.Is(err, tex2img.ErrEmptyOutput) ||
		errors.Is(err, ErrInvalidFlag) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrNoOutput) ||
		errors.Is(err, ErrUnknownCommand) {
		return ExitUsage
	}

	return ExitGeneral
}
