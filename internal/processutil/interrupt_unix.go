//go:build !windows

package processutil

import (
	"os/exec"
	"syscall"
)

// GracefulInterrupt asks the process to shut down cleanly. ffmpeg treats
// SIGINT like a quit request and finalizes its output before exiting.
func GracefulInterrupt(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	return cmd.Process.Signal(syscall.SIGINT)
}
