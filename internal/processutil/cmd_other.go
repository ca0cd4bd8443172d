//go:build !windows

package processutil

import (
	"os/exec"
)

// HideConsoleWindow is a no-op outside Windows.
func HideConsoleWindow(_ *exec.Cmd) {}
