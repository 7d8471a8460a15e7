//go:build windows

package utils

import (
	"os"
	"os/exec"
	"unsafe"

	"golang.org/x/sys/windows"
)

// SetProcessGroupAttr is a no-op on Windows, descendants are terminated by
// walking the process snapshot instead.
func SetProcessGroupAttr(_ *exec.Cmd) {}

// KillProcessTree terminates the process and all of its descendants.
func KillProcessTree(p *os.Process) {
	if p == nil {
		return
	}
	killChildProcesses(uint32(p.Pid))
	_ = p.Kill()
}

func killChildProcesses(parentPID uint32) {
	snapshot, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return
	}
	defer windows.CloseHandle(snapshot)

	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))
	if err := windows.Process32First(snapshot, &entry); err != nil {
		return
	}

	for {
		if entry.ParentProcessID == parentPID {
			killChildProcesses(entry.ProcessID)
			if child, err := os.FindProcess(int(entry.ProcessID)); err == nil {
				_ = child.Kill()
			}
		}
		if err := windows.Process32Next(snapshot, &entry); err != nil {
			break
		}
	}
}
