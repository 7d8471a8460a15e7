//go:build !windows

package utils

import (
	"os"
	"os/exec"
	"syscall"
)

// SetProcessGroupAttr places the child in its own process group so the whole tree
// can be signaled at once.
func SetProcessGroupAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// KillProcessTree terminates the process and all of its descendants by sending
// SIGKILL to the process group.
func KillProcessTree(p *os.Process) {
	if p == nil {
		return
	}
	_ = syscall.Kill(-p.Pid, syscall.SIGKILL)
}
