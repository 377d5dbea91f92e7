//go:build !windows

package launcher

import (
	"log"
	"os"
	"os/exec"
	"syscall"
)

// setupProcessGroup puts the child in its own process group so that
// terminating it also stops the tools it spawned
func setupProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}

	cmd.Cancel = func() error {
		return terminateProcess(cmd.Process)
	}
}

// terminateProcess kills the whole process group (negative PID)
func terminateProcess(p *os.Process) error {
	if p == nil {
		return nil
	}
	if err := syscall.Kill(-p.Pid, syscall.SIGTERM); err != nil {
		log.Printf("[LAUNCH] SIGTERM failed for group %d, using SIGKILL: %v", p.Pid, err)
		return syscall.Kill(-p.Pid, syscall.SIGKILL)
	}
	return nil
}
