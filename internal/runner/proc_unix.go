//go:build !windows

package runner

import (
	"os/exec"
	"syscall"
)

// configureProcessGroup starts the runner in its own process group and makes
// cancellation kill the group.
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
