// Package encoder resolves the external ffmpeg binary and translates
// recording requests into fully-specified ffmpeg invocations. It never
// launches a recording itself; that is the record package's job.
package encoder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/deskrec/deskrec/internal/processutil"
)

const defaultProbeTimeout = 10 * time.Second

// ErrNotFound means no usable ffmpeg binary exists on PATH or in the
// well-known install locations. Recording is blocked until the binary is
// installed and a re-probe succeeds.
var ErrNotFound = errors.New("ffmpeg not found; install ffmpeg and make sure it is on PATH")

// Info describes the resolved encoder binary.
type Info struct {
	Path    string
	Version string
}

// ProberOptions configures a Prober.
type ProberOptions struct {
	// Path overrides binary resolution entirely when set.
	Path    string
	Timeout time.Duration
	Logger  *slog.Logger
}

// Prober locates ffmpeg and verifies it answers a version query. The result
// (success or failure) is cached for the process lifetime; Reprobe forces a
// fresh check after the user fixes their installation.
type Prober struct {
	path    string
	timeout time.Duration
	log     *slog.Logger

	mu     sync.Mutex
	probed bool
	info   Info
	err    error
}

func NewProber(options *ProberOptions) *Prober {
	opts := ProberOptions{}
	if options != nil {
		opts = *options
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultProbeTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Prober{
		path:    opts.Path,
		timeout: opts.Timeout,
		log:     opts.Logger,
	}
}

// Probe returns the cached encoder info, running the version query on first
// use.
func (p *Prober) Probe(ctx context.Context) (Info, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.probed {
		p.info, p.err = p.probe(ctx)
		p.probed = true
	}
	return p.info, p.err
}

// Reprobe discards the cached result and probes again.
func (p *Prober) Reprobe(ctx context.Context) (Info, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.info, p.err = p.probe(ctx)
	p.probed = true
	return p.info, p.err
}

func (p *Prober) probe(ctx context.Context) (Info, error) {
	path, err := p.locate()
	if err != nil {
		return Info{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, path, "-version")
	processutil.HideConsoleWindow(cmd)
	out, err := cmd.Output()
	if ctx.Err() != nil {
		return Info{}, fmt.Errorf("ffmpeg version query timed out after %s", p.timeout)
	}
	if err != nil {
		return Info{}, fmt.Errorf("ffmpeg version query failed: %w", err)
	}

	info := Info{Path: path, Version: parseVersionLine(string(out))}
	p.log.Info("encoder probed", "path", info.Path, "version", info.Version)
	return info, nil
}

func (p *Prober) locate() (string, error) {
	if p.path != "" {
		if _, err := os.Stat(p.path); err != nil {
			return "", fmt.Errorf("%w: configured path %q: %v", ErrNotFound, p.path, err)
		}
		return p.path, nil
	}

	if path, err := exec.LookPath(binaryName()); err == nil {
		return path, nil
	}

	for _, dir := range wellKnownDirs() {
		candidate := filepath.Join(dir, binaryName())
		if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
			return candidate, nil
		}
	}
	return "", ErrNotFound
}

func binaryName() string {
	if runtime.GOOS == "windows" {
		return "ffmpeg.exe"
	}
	return "ffmpeg"
}

func wellKnownDirs() []string {
	if runtime.GOOS == "windows" {
		return []string{
			`C:\ffmpeg\bin`,
			`C:\Program Files\ffmpeg\bin`,
			`C:\Program Files (x86)\ffmpeg\bin`,
		}
	}
	return []string{
		"/usr/local/bin",
		"/opt/ffmpeg/bin",
		"/opt/homebrew/bin",
	}
}

// parseVersionLine returns the first line of `ffmpeg -version` output, e.g.
// "ffmpeg version 6.1.1 Copyright ...".
func parseVersionLine(out string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	return strings.TrimSpace(line)
}
