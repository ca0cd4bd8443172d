//go:build windows

package discovery

import (
	"context"
	"fmt"
	"log/slog"
)

// PowerShell one-liner listing the main window title of every process that
// has one. Good enough for gdigrab, which addresses windows by title.
const windowTitleScript = `Get-Process | Where-Object {$_.MainWindowTitle -ne ""} | Select-Object -ExpandProperty MainWindowTitle`

type windowsEnumerator struct {
	run        runner
	ffmpegPath string
	log        *slog.Logger
}

func newEnumerator(opts *Options) Enumerator {
	return &windowsEnumerator{
		run:        execRunner{timeout: opts.ToolTimeout},
		ffmpegPath: opts.FFmpegPath,
		log:        opts.Logger,
	}
}

func (e *windowsEnumerator) Targets(ctx context.Context) ([]Target, error) {
	targets := []Target{{
		ID:    "desktop",
		Kind:  KindDesktop,
		Label: "Full Desktop",
		Handle: TargetHandle{
			Platform: PlatformWindows,
			Display:  "desktop",
		},
	}}

	out, err := e.run.output(ctx, "powershell", "-NoProfile", "-Command", windowTitleScript)
	if err != nil {
		e.log.Warn("window enumeration failed, desktop capture only", "err", err)
		return targets, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	for _, title := range parseWindowTitles(string(out)) {
		targets = append(targets, Target{
			ID:    "window:" + title,
			Kind:  KindWindow,
			Label: truncateLabel(title),
			Handle: TargetHandle{
				Platform:    PlatformWindows,
				WindowTitle: title,
			},
		})
	}

	return dedupeLabels(targets), nil
}

func (e *windowsEnumerator) AudioDevices(ctx context.Context) ([]AudioDevice, error) {
	// ffmpeg prints the device list on stderr and exits non-zero; treat the
	// combined output as the listing.
	out := e.run.combinedOutput(ctx, e.ffmpegPath, "-list_devices", "true", "-f", "dshow", "-i", "dummy")

	var devices []AudioDevice
	for _, name := range parseDShowDevices(string(out), "audio") {
		kind := KindMicrophone
		label := name
		if isLoopbackDevice(name) {
			kind = KindLoopback
			label = name + " (System Audio)"
		}
		devices = append(devices, AudioDevice{ID: name, Label: label, Kind: kind})
	}

	if len(devices) == 0 {
		e.log.Warn("no DirectShow audio devices found, using defaults")
		return []AudioDevice{
			{ID: "Microphone", Label: "Default Microphone", Kind: KindMicrophone},
			{ID: "Stereo Mix", Label: "Stereo Mix (Enable in Sound Settings)", Kind: KindLoopback},
		}, nil
	}
	return devices, nil
}
