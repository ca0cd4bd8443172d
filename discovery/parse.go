package discovery

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// System windows that should never appear in the capture list (Windows).
var skipWindowTitles = []string{
	"Program Manager",
	"MSCTFIME",
	"Default IME",
	"Windows Input Experience",
	"TextInputHost",
}

type windowEntry struct {
	ID    string
	Title string
}

// parseWmctrlList parses `wmctrl -l` output: one window per line, columns are
// window id, desktop number, host, title (title may contain spaces).
func parseWmctrlList(out string) []windowEntry {
	var windows []windowEntry
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		parts := strings.SplitN(line, " ", 4)
		if len(parts) < 4 {
			continue
		}
		id := strings.TrimSpace(parts[0])
		title := strings.TrimSpace(parts[3])
		if id == "" || title == "" || title == "N/A" {
			continue
		}
		windows = append(windows, windowEntry{ID: id, Title: title})
	}
	return windows
}

var xwininfoFieldRe = regexp.MustCompile(`:\s*(-?\d+)`)

// parseXwininfo extracts position and size from `xwininfo -id <wid>` output.
func parseXwininfo(out string) (Geometry, bool) {
	geo := Geometry{}
	found := 0
	for _, line := range strings.Split(out, "\n") {
		m := xwininfoFieldRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		v, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		switch {
		case strings.Contains(line, "Absolute upper-left X:"):
			geo.X = v
			found++
		case strings.Contains(line, "Absolute upper-left Y:"):
			geo.Y = v
			found++
		case strings.Contains(line, "Width:"):
			geo.Width = v
			found++
		case strings.Contains(line, "Height:"):
			geo.Height = v
			found++
		}
	}
	return geo, found == 4 && geo.Width > 0 && geo.Height > 0
}

var xdpyinfoSizeRe = regexp.MustCompile(`(\d+x\d+)`)

// parseXdpyinfoSize extracts the virtual display size from xdpyinfo output.
func parseXdpyinfoSize(out string) (string, bool) {
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "dimensions:") {
			continue
		}
		if m := xdpyinfoSizeRe.FindStringSubmatch(line); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// parsePactlSources splits `pactl list sources short` output into microphone
// sources and monitor (system audio loopback) sources.
func parsePactlSources(out string) (mics, monitors []AudioDevice) {
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		parts := strings.Split(line, "\t")
		if len(parts) < 2 {
			continue
		}
		id := strings.TrimSpace(parts[1])
		if id == "" {
			continue
		}
		if strings.Contains(id, ".monitor") {
			monitors = append(monitors, AudioDevice{
				ID:    id,
				Label: strings.ReplaceAll(id, ".monitor", " (System)"),
				Kind:  KindLoopback,
			})
		} else {
			mics = append(mics, AudioDevice{ID: id, Label: id, Kind: KindMicrophone})
		}
	}
	return mics, monitors
}

var dshowDeviceRe = regexp.MustCompile(`"([^"]+)"`)

// parseDShowDevices extracts device names from ffmpeg's
// `-list_devices true -f dshow` stderr for the given section ("audio" or
// "video"). Alternative names (starting with @) are skipped.
func parseDShowDevices(out, section string) []string {
	var devices []string
	inSection := false
	header := strings.ToLower(fmt.Sprintf("directshow %s devices", section))

	for _, line := range strings.Split(out, "\n") {
		lower := strings.ToLower(line)
		if strings.Contains(lower, header) {
			inSection = true
			continue
		}
		if inSection && strings.Contains(lower, "directshow") && !strings.Contains(lower, section) {
			break
		}
		if !inSection {
			continue
		}
		m := dshowDeviceRe.FindStringSubmatch(line)
		if m == nil || strings.HasPrefix(m[1], "@") {
			continue
		}
		devices = append(devices, m[1])
	}
	return devices
}

// Loopback-capable DirectShow device name fragments.
var loopbackKeywords = []string{"stereo mix", "what u hear", "loopback", "wave out", "mix"}

func isLoopbackDevice(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range loopbackKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// parseWindowTitles parses PowerShell window-title listing output: one title
// per line, system windows skipped, duplicates removed.
func parseWindowTitles(out string) []string {
	var titles []string
	seen := make(map[string]struct{})
outer:
	for _, line := range strings.Split(out, "\n") {
		title := strings.TrimSpace(line)
		if title == "" {
			continue
		}
		if _, ok := seen[title]; ok {
			continue
		}
		for _, kw := range skipWindowTitles {
			if strings.Contains(title, kw) {
				continue outer
			}
		}
		seen[title] = struct{}{}
		titles = append(titles, title)
	}
	return titles
}

// truncateLabel shortens display labels the way the capture list renders
// them, keeping IDs and handles intact.
func truncateLabel(s string) string {
	runes := []rune(s)
	if len(runes) <= maxLabelRunes {
		return s
	}
	return string(runes[:maxLabelRunes]) + "..."
}

// dedupeLabels disambiguates targets that share a display label by suffixing
// an ordinal, so two browser windows with the same title stay selectable.
func dedupeLabels(targets []Target) []Target {
	counts := make(map[string]int, len(targets))
	for _, t := range targets {
		counts[t.Label]++
	}

	seen := make(map[string]int, len(targets))
	for i := range targets {
		label := targets[i].Label
		if counts[label] < 2 {
			continue
		}
		seen[label]++
		if seen[label] > 1 {
			targets[i].Label = fmt.Sprintf("%s #%d", label, seen[label])
		}
	}
	return targets
}
