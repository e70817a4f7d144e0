package preflight

import (
	"os"

	"github.com/kballard/go-shellquote"
)

// getShellCommandCheck returns the shell and args for checking if a command exists.
//
// The user's $SHELL (or sh) is started as a login shell running
// 'command -v', which detects executables, aliases and shell functions.
//
// Returns:
//   - shell: The shell executable to use
//   - args: Arguments that run 'command -v <cmd>'
func getShellCommandCheck(cmd string) (shell string, args []string) {
	shell = os.Getenv("SHELL")
	if shell == "" {
		shell = "sh"
	}
	return shell, []string{"-l", "-c", "command -v " + shellquote.Join(cmd)}
}
