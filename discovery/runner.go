package discovery

import (
	"context"
	"os/exec"
	"time"

	"github.com/deskrec/deskrec/internal/processutil"
)

// runner is the seam between the enumerators and the OS helper tools, so the
// parsers can be exercised without shelling out.
type runner interface {
	// output runs a helper and returns its stdout.
	output(ctx context.Context, name string, args ...string) ([]byte, error)
	// combinedOutput runs a helper and returns stdout+stderr, ignoring the
	// exit status. ffmpeg's device listing writes to stderr and exits
	// non-zero even on success.
	combinedOutput(ctx context.Context, name string, args ...string) []byte
}

type execRunner struct {
	timeout time.Duration
}

func (r execRunner) output(ctx context.Context, name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	processutil.HideConsoleWindow(cmd)
	return cmd.Output()
}

func (r execRunner) combinedOutput(ctx context.Context, name string, args ...string) []byte {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	processutil.HideConsoleWindow(cmd)
	out, _ := cmd.CombinedOutput()
	return out
}
