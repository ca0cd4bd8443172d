// Package discovery enumerates capturable screens, windows and audio devices
// and normalizes them into platform-neutral descriptors. Exactly one platform
// backend is compiled in (see discovery_linux.go / discovery_windows.go); the
// rest of the system never branches on the OS.
package discovery

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

const (
	defaultToolTimeout = 5 * time.Second
	maxLabelRunes      = 60
)

// ErrUnavailable marks a soft discovery failure: a window-listing helper is
// missing or the session cannot be enumerated. Callers still receive a usable
// target list (full desktop only) alongside this error.
var ErrUnavailable = errors.New("window discovery unavailable")

// TargetKind distinguishes full-desktop capture from single-window capture.
type TargetKind string

const (
	KindDesktop TargetKind = "desktop"
	KindWindow  TargetKind = "window"
)

// Platform identifies which backend produced a target. The command builder
// keys its input construction on this value.
type Platform string

const (
	PlatformLinux   Platform = "linux"
	PlatformWindows Platform = "windows"
)

// Geometry is a window's position and size, snapshotted at discovery time.
type Geometry struct {
	X      int
	Y      int
	Width  int
	Height int
}

// TargetHandle carries the platform-specific capture coordinates of a target.
// It is opaque to everything except this package and the encoder command
// builder.
type TargetHandle struct {
	Platform Platform

	// Desktop capture.
	Display    string // X11 display, e.g. ":0"
	ScreenSize string // full virtual display size, e.g. "1920x1080"

	// Window capture.
	WindowID    string
	WindowTitle string
	Geometry    Geometry
}

// Target is a selectable recording source. Immutable once discovered; each
// refresh produces a fresh list that replaces the previous one.
type Target struct {
	ID     string
	Kind   TargetKind
	Label  string
	Handle TargetHandle
}

// AudioDeviceKind splits capture devices into microphones and system-audio
// loopback sources.
type AudioDeviceKind string

const (
	KindMicrophone AudioDeviceKind = "microphone"
	KindLoopback   AudioDeviceKind = "loopback"
)

// AudioDevice describes one audio input usable by the encoder.
type AudioDevice struct {
	ID    string
	Label string
	Kind  AudioDeviceKind
}

// Enumerator lists capture targets and audio devices for the current
// platform.
type Enumerator interface {
	Targets(ctx context.Context) ([]Target, error)
	AudioDevices(ctx context.Context) ([]AudioDevice, error)
}

// Options configures an Enumerator.
type Options struct {
	// FFmpegPath is required on Windows for DirectShow device listing.
	FFmpegPath string
	// ToolTimeout bounds each external enumeration helper invocation.
	ToolTimeout time.Duration
	Logger      *slog.Logger
}

func normalizeOptions(options *Options) *Options {
	opts := Options{}
	if options != nil {
		opts = *options
	}
	if opts.ToolTimeout <= 0 {
		opts.ToolTimeout = defaultToolTimeout
	}
	if opts.FFmpegPath == "" {
		opts.FFmpegPath = "ffmpeg"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &opts
}

// New returns the enumerator for the OS this binary was built for.
func New(options *Options) Enumerator {
	return newEnumerator(normalizeOptions(options))
}
