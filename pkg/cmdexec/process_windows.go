//go:build windows

package cmdexec

import (
	"os/exec"
)

// setProcGroup is a no-op on Windows; killing the parent is sufficient there.
func setProcGroup(cmd *exec.Cmd) {}

// killProcGroup kills the process on Windows.
func killProcGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
