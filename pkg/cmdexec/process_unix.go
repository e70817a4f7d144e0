//go:build unix

package cmdexec

import (
	"os/exec"
	"syscall"
)

// setProcGroup runs the command in its own process group so that pip's
// build subprocesses can be terminated together.
func setProcGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}

// killProcGroup sends SIGKILL to the command's whole process group.
//
// Returns:
//   - error: Error if the kill fails, nil if successful or the process never started
func killProcGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	// Negative PID targets the process group.
	return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
}
