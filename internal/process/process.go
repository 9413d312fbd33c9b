// Package process isolates external tools in their own process group so a
// timeout or cancellation takes down the whole tree (ps2pdf, for one, is a
// shell script that spawns gs).
package process

import (
	"os/exec"
	"time"
)

// WaitDelay bounds how long Wait keeps reading pipes after the process group
// was killed. Orphaned grandchildren may hold them open.
const WaitDelay = 2 * time.Second

// Configure places cmd in a new process group and makes context
// cancellation kill that group instead of only the direct child.
// Call before cmd.Start.
func Configure(cmd *exec.Cmd) {
	setProcessGroup(cmd)
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return KillProcessGroup(cmd.Process.Pid)
	}
	cmd.WaitDelay = WaitDelay
}
