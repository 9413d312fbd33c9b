package tex2img

import (
	"bytes"
	"context"
	"errors"
	"os/exec"

	"github.com/alnah/go-tex2img/internal/process"
)

// invocation is one resolved external tool call.
type invocation struct {
	Stage  string
	Path   string   // resolved binary path
	Args   []string // rendered arguments
	Dir    string   // working directory (the workspace)
	Env    []string // full child environment
	Output string   // file the stage is expected to write
}

// commandRunner abstracts process execution to enable testing without real
// TeX or Ghostscript installs.
type commandRunner interface {
	Run(ctx context.Context, inv invocation) (stdout, stderr []byte, err error)
}

// execRunner implements commandRunner with os/exec.
type execRunner struct{}

// Run starts the tool in its own process group and waits for it. Context
// cancellation kills the whole group.
func (execRunner) Run(ctx context.Context, inv invocation) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, inv.Path, inv.Args...) // #nosec G204 -- binary and args come from the command registry
	cmd.Dir = inv.Dir
	cmd.Env = inv.Env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	process.Configure(cmd)

	err := cmd.Run()
	if err != nil && ctx.Err() != nil {
		// Report why the process was killed rather than "signal: killed".
		err = errors.Join(ctx.Err(), err)
	}
	return stdout.Bytes(), stderr.Bytes(), err
}

// exitCode extracts the exit status from err, or -1 when there is none.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
