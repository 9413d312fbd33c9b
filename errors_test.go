package tex2img

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestStageError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *StageError
		want []string
	}{
		{
			name: "exit code with stderr",
			err:  &StageError{Stage: StageCompile, Binary: "latex", ExitCode: 1, Stderr: "  ! Emergency stop.\n"},
			want: []string{"stage compile: latex exited with code 1", ": ! Emergency stop."},
		},
		{
			name: "start failure",
			err:  &StageError{Stage: StageToPNG, Binary: "gs", ExitCode: -1, Err: errors.New("exec format error")},
			want: []string{"stage to-png: gs: exec format error"},
		},
		{
			name: "timeout",
			err:  &StageError{Stage: StageToPDF, Binary: "ps2pdf", ExitCode: -1, Err: context.DeadlineExceeded},
			want: []string{"ps2pdf: context deadline exceeded"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			msg := tt.err.Error()
			for _, w := range tt.want {
				if !strings.Contains(msg, w) {
					t.Errorf("Error() = %q, want substring %q", msg, w)
				}
			}
			if !errors.Is(tt.err, ErrStageFailed) {
				t.Error("should match ErrStageFailed")
			}
			if tt.err.Err != nil && !errors.Is(tt.err, tt.err.Err) {
				t.Error("should match its cause")
			}
		})
	}
}

func TestStageError_LongStderrKeepsTail(t *testing.T) {
	t.Parallel()

	stderr := strings.Repeat("a", 3*stderrExcerptLimit) + "THE END"
	msg := (&StageError{Stage: StageCompile, Binary: "latex", ExitCode: 1, Stderr: stderr}).Error()

	if !strings.HasSuffix(msg, "THE END") {
		t.Errorf("tail lost: %q", msg[len(msg)-20:])
	}
	if !strings.Contains(msg, "...") {
		t.Error("truncation not marked")
	}
	if len(msg) > stderrExcerptLimit+100 {
		t.Errorf("message length = %d, want about %d", len(msg), stderrExcerptLimit)
	}
}

func TestMissingDependencyError(t *testing.T) {
	t.Parallel()

	err := &MissingDependencyError{Stage: StageToSVG, Binary: "dvisvgm"}
	if !errors.Is(err, ErrMissingDependency) {
		t.Error("should match ErrMissingDependency")
	}
	if msg := err.Error(); !strings.Contains(msg, "dvisvgm") || !strings.Contains(msg, "to-svg") {
		t.Errorf("Error() = %q", msg)
	}
}
