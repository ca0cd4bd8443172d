package discovery

import (
	"strings"
	"testing"
)

func TestParseWmctrlList(t *testing.T) {
	out := `0x03600004  0 myhost Firefox - Mozilla Firefox
0x04a00001  0 myhost Terminal
0x05000007 -1 myhost N/A
garbage line`

	windows := parseWmctrlList(out)
	if len(windows) != 2 {
		t.Fatalf("got %d windows, want 2: %+v", len(windows), windows)
	}
	if windows[0].ID != "0x03600004" || windows[0].Title != "Firefox - Mozilla Firefox" {
		t.Errorf("unexpected first window: %+v", windows[0])
	}
	if windows[1].Title != "Terminal" {
		t.Errorf("unexpected second window: %+v", windows[1])
	}
}

func TestParseXwininfo(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want Geometry
		ok   bool
	}{
		{
			name: "complete",
			out: `xwininfo: Window id: 0x3600004 "Firefox"

  Absolute upper-left X:  64
  Absolute upper-left Y:  27
  Relative upper-left X:  0
  Relative upper-left Y:  0
  Width: 1280
  Height: 720
`,
			want: Geometry{X: 64, Y: 27, Width: 1280, Height: 720},
			ok:   true,
		},
		{
			name: "negative position",
			out: `  Absolute upper-left X:  -8
  Absolute upper-left Y:  0
  Width: 800
  Height: 600`,
			want: Geometry{X: -8, Y: 0, Width: 800, Height: 600},
			ok:   true,
		},
		{
			name: "missing height",
			out: `  Absolute upper-left X:  0
  Absolute upper-left Y:  0
  Width: 800`,
			ok: false,
		},
		{
			name: "zero size",
			out: `  Absolute upper-left X:  0
  Absolute upper-left Y:  0
  Width: 0
  Height: 0`,
			ok: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			geo, ok := parseXwininfo(tc.out)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if ok && geo != tc.want {
				t.Errorf("geometry = %+v, want %+v", geo, tc.want)
			}
		})
	}
}

func TestParseXdpyinfoSize(t *testing.T) {
	out := `screen #0:
  dimensions:    2560x1440 pixels (677x381 millimeters)
  resolution:    96x96 dots per inch`

	size, ok := parseXdpyinfoSize(out)
	if !ok || size != "2560x1440" {
		t.Fatalf("got %q ok=%v, want 2560x1440", size, ok)
	}

	if _, ok := parseXdpyinfoSize("no dimensions here"); ok {
		t.Error("expected failure on output without dimensions")
	}
}

func TestParsePactlSources(t *testing.T) {
	out := "1\talsa_output.pci-0000_00_1f.3.analog-stereo.monitor\tmodule-alsa-card.c\ts16le 2ch 44100Hz\tIDLE\n" +
		"2\talsa_input.pci-0000_00_1f.3.analog-stereo\tmodule-alsa-card.c\ts16le 2ch 44100Hz\tRUNNING\n"

	mics, monitors := parsePactlSources(out)
	if len(mics) != 1 || len(monitors) != 1 {
		t.Fatalf("got %d mics, %d monitors, want 1 and 1", len(mics), len(monitors))
	}
	if mics[0].Kind != KindMicrophone {
		t.Errorf("mic kind = %q", mics[0].Kind)
	}
	if monitors[0].Kind != KindLoopback {
		t.Errorf("monitor kind = %q", monitors[0].Kind)
	}
	if !strings.Contains(monitors[0].Label, "(System)") {
		t.Errorf("monitor label %q missing system marker", monitors[0].Label)
	}
	if monitors[0].ID != "alsa_output.pci-0000_00_1f.3.analog-stereo.monitor" {
		t.Errorf("monitor ID = %q", monitors[0].ID)
	}
}

func TestParseDShowDevices(t *testing.T) {
	out := `[dshow @ 000001] DirectShow video devices (some may be both video and audio devices)
[dshow @ 000001]  "Integrated Camera"
[dshow @ 000001]     Alternative name "@device_pnp_\\?\usb#vid"
[dshow @ 000001] DirectShow audio devices
[dshow @ 000001]  "Microphone (Realtek Audio)"
[dshow @ 000001]     Alternative name "@device_cm_{333}"
[dshow @ 000001]  "Stereo Mix (Realtek Audio)"
dummy: Immediate exit requested`

	audio := parseDShowDevices(out, "audio")
	if len(audio) != 2 {
		t.Fatalf("got %d audio devices, want 2: %v", len(audio), audio)
	}
	if audio[0] != "Microphone (Realtek Audio)" || audio[1] != "Stereo Mix (Realtek Audio)" {
		t.Errorf("unexpected devices: %v", audio)
	}

	video := parseDShowDevices(out, "video")
	if len(video) != 1 || video[0] != "Integrated Camera" {
		t.Errorf("unexpected video devices: %v", video)
	}
}

func TestIsLoopbackDevice(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Stereo Mix (Realtek Audio)", true},
		{"What U Hear (Sound Blaster)", true},
		{"Microphone (USB Audio)", false},
		{"Headset Microphone", false},
	}
	for _, tc := range tests {
		if got := isLoopbackDevice(tc.name); got != tc.want {
			t.Errorf("isLoopbackDevice(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestParseWindowTitles(t *testing.T) {
	out := `Firefox
Program Manager

Terminal
Firefox
Windows Input Experience`

	titles := parseWindowTitles(out)
	want := []string{"Firefox", "Terminal"}
	if len(titles) != len(want) {
		t.Fatalf("got %v, want %v", titles, want)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Errorf("titles[%d] = %q, want %q", i, titles[i], want[i])
		}
	}
}

func TestTruncateLabel(t *testing.T) {
	long := strings.Repeat("a", maxLabelRunes+10)
	got := truncateLabel(long)
	if len([]rune(got)) != maxLabelRunes+3 {
		t.Errorf("truncated length = %d", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("missing ellipsis: %q", got)
	}
	if short := truncateLabel("hello"); short != "hello" {
		t.Errorf("short label modified: %q", short)
	}
}

func TestDedupeLabels(t *testing.T) {
	targets := []Target{
		{ID: "a", Label: "Browser"},
		{ID: "b", Label: "Browser"},
		{ID: "c", Label: "Terminal"},
		{ID: "d", Label: "Browser"},
	}

	out := dedupeLabels(targets)
	labels := make([]string, len(out))
	for i, t2 := range out {
		labels[i] = t2.Label
	}
	want := []string{"Browser", "Browser #2", "Terminal", "Browser #3"}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("labels[%d] = %q, want %q", i, labels[i], want[i])
		}
	}
	if out[1].ID != "b" {
		t.Errorf("IDs must be untouched, got %q", out[1].ID)
	}
}
