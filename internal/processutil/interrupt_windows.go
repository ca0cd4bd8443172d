//go:build windows

package processutil

import (
	"errors"
	"os/exec"
)

// GracefulInterrupt is unsupported on Windows: there is no SIGINT delivery to
// a detached console process. Callers fall back to the encoder's stdin quit
// command.
func GracefulInterrupt(_ *exec.Cmd) error {
	return errors.ErrUnsupported
}
