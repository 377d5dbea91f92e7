//go:build windows

package launcher

import (
	"os"
	"os/exec"
	"syscall"
)

// setupProcessGroup configures the command for proper process management on Windows
func setupProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}

	cmd.Cancel = func() error {
		return terminateProcess(cmd.Process)
	}
}

func terminateProcess(p *os.Process) error {
	if p == nil {
		return nil
	}
	return p.Kill()
}
