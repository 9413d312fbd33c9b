package tex2img

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for library operations.
var (
	ErrUnsupportedFormat       = errors.New("unsupported output format")
	ErrMissingDependency       = errors.New("missing external dependency")
	ErrTemplate                = errors.New("invalid command template")
	ErrStageFailed             = errors.New("conversion stage failed")
	ErrOptimizationUnavailable = errors.New("svg optimizer not available")
	ErrUnknownStage            = errors.New("unknown stage")
	ErrEmptyOutput             = errors.New("output path cannot be empty")

	// Filesystem errors around the workspace.
	ErrWorkspace   = errors.New("workspace error")
	ErrWriteSource = errors.New("failed to write TeX source")
)

// stderrExcerptLimit caps how much captured stderr ends up in error messages.
const stderrExcerptLimit = 2048

// StageError reports an external tool that exited non-zero, could not be
// started, or was stopped by a timeout or cancellation.
type StageError struct {
	Stage    string
	Binary   string
	Args     []string
	ExitCode int // -1 when the process never produced an exit status
	Stderr   string
	Err      error
}

func (e *StageError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "stage %s: %s", e.Stage, e.Binary)
	if e.ExitCode >= 0 {
		fmt.Fprintf(&b, " exited with code %d", e.ExitCode)
	} else if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if s := excerpt(e.Stderr); s != "" {
		b.WriteString(": ")
		b.WriteString(s)
	}
	return b.String()
}

// Unwrap exposes both ErrStageFailed and the underlying cause.
func (e *StageError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrStageFailed}
	}
	return []error{ErrStageFailed, e.Err}
}

// MissingDependencyError names a stage whose binary is not on PATH.
type MissingDependencyError struct {
	Stage  string
	Binary string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("%v: %s (needed by stage %s)", ErrMissingDependency, e.Binary, e.Stage)
}

func (e *MissingDependencyError) Unwrap() error {
	return ErrMissingDependency
}

// excerpt trims captured output to its tail, which is where TeX and
// Ghostscript print the actual failure.
func excerpt(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= stderrExcerptLimit {
		return s
	}
	return "..." + s[len(s)-stderrExcerptLimit:]
}
