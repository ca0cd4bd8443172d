//go:build linux

package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

const (
	defaultDisplay    = ":0"
	defaultScreenSize = "1920x1080"
	maxXdotoolWindows = 30
)

type linuxEnumerator struct {
	run     runner
	display string
	log     *slog.Logger
}

func newEnumerator(opts *Options) Enumerator {
	display := os.Getenv("DISPLAY")
	if display == "" {
		display = defaultDisplay
	}
	return &linuxEnumerator{
		run:     execRunner{timeout: opts.ToolTimeout},
		display: display,
		log:     opts.Logger,
	}
}

func (e *linuxEnumerator) Targets(ctx context.Context) ([]Target, error) {
	targets := []Target{e.desktopTarget(ctx)}

	if waylandSession() {
		e.log.Warn("wayland session detected, window capture via x11grab unavailable",
			"screencast_portal", screencastPortalVersion())
		return targets, fmt.Errorf("%w: wayland session", ErrUnavailable)
	}

	windows, err := e.listWindows(ctx)
	if err != nil {
		e.log.Warn("window enumeration failed, desktop capture only", "err", err)
		return targets, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	for _, win := range windows {
		geo, ok := e.windowGeometry(ctx, win.ID)
		if !ok {
			continue
		}
		targets = append(targets, Target{
			ID:    "window:" + win.ID,
			Kind:  KindWindow,
			Label: truncateLabel(win.Title),
			Handle: TargetHandle{
				Platform:    PlatformLinux,
				Display:     e.display,
				WindowID:    win.ID,
				WindowTitle: win.Title,
				Geometry:    geo,
			},
		})
	}

	return dedupeLabels(targets), nil
}

func (e *linuxEnumerator) AudioDevices(ctx context.Context) ([]AudioDevice, error) {
	out, err := e.run.output(ctx, "pactl", "list", "sources", "short")
	if err != nil {
		e.log.Warn("pactl source listing failed, using pulse defaults", "err", err)
		return defaultPulseDevices(), nil
	}

	mics, monitors := parsePactlSources(string(out))
	devices := append(mics, monitors...)
	if len(devices) == 0 {
		return defaultPulseDevices(), nil
	}
	return devices, nil
}

func (e *linuxEnumerator) desktopTarget(ctx context.Context) Target {
	size := defaultScreenSize
	label := "Full Desktop (Default)"
	if out, err := e.run.output(ctx, "xdpyinfo"); err == nil {
		if parsed, ok := parseXdpyinfoSize(string(out)); ok {
			size = parsed
			label = fmt.Sprintf("Full Desktop (%s)", size)
		}
	}
	return Target{
		ID:    "desktop",
		Kind:  KindDesktop,
		Label: label,
		Handle: TargetHandle{
			Platform:   PlatformLinux,
			Display:    e.display,
			ScreenSize: size,
		},
	}
}

// listWindows prefers wmctrl and falls back to xdotool. Both missing is a
// soft failure handled by the caller.
func (e *linuxEnumerator) listWindows(ctx context.Context) ([]windowEntry, error) {
	out, wmctrlErr := e.run.output(ctx, "wmctrl", "-l")
	if wmctrlErr == nil {
		return parseWmctrlList(string(out)), nil
	}

	out, xdotoolErr := e.run.output(ctx, "xdotool", "search", "--name", "")
	if xdotoolErr != nil {
		return nil, fmt.Errorf("wmctrl: %v; xdotool: %v", wmctrlErr, xdotoolErr)
	}

	var windows []windowEntry
	ids := strings.Fields(strings.TrimSpace(string(out)))
	if len(ids) > maxXdotoolWindows {
		ids = ids[:maxXdotoolWindows]
	}
	for _, wid := range ids {
		name, err := e.run.output(ctx, "xdotool", "getwindowname", wid)
		if err != nil {
			continue
		}
		title := strings.TrimSpace(string(name))
		if title == "" {
			continue
		}
		windows = append(windows, windowEntry{ID: wid, Title: title})
	}
	return windows, nil
}

func (e *linuxEnumerator) windowGeometry(ctx context.Context, wid string) (Geometry, bool) {
	out, err := e.run.output(ctx, "xwininfo", "-id", wid)
	if err != nil {
		return Geometry{}, false
	}
	return parseXwininfo(string(out))
}

func defaultPulseDevices() []AudioDevice {
	return []AudioDevice{
		{ID: "default", Label: "default", Kind: KindMicrophone},
		{ID: "@DEFAULT_MONITOR@", Label: "System Audio (Default Monitor)", Kind: KindLoopback},
	}
}
