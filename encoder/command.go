package encoder

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/deskrec/deskrec/discovery"
)

const (
	defaultFrameRate = 30

	// Fixed screen-content tradeoff: visually lossless enough for UI text,
	// fast enough to keep up with live capture.
	videoCodec  = "libx264"
	videoCRF    = "23"
	videoPreset = "veryfast"

	audioCodec      = "aac"
	audioBitrate    = "192k"
	audioSampleRate = "44100"
)

// AudioOptions selects which audio paths feed the recording. Both flags set
// means the two streams are mixed into one output track.
type AudioOptions struct {
	Microphone  bool
	SystemAudio bool

	// Optional explicit device IDs; empty picks the first device of the
	// matching kind from the discovery list.
	MicDevice    string
	SystemDevice string
}

// Request is a validated capture intent: one target, an audio selection and a
// destination path. It is consumed to build exactly one Command.
type Request struct {
	Target     discovery.Target
	Audio      AudioOptions
	OutputPath string
	FrameRate  int
}

// Command is the fully resolved encoder invocation. Immutable once built; one
// instance per session.
type Command struct {
	Path string
	Args []string
}

func (c *Command) String() string {
	return c.Path + " " + strings.Join(c.Args, " ")
}

// ValidationError rejects a request before any process is spawned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid recording request: %s: %s", e.Field, e.Reason)
}

// Build translates a request into an encoder invocation: video input for the
// target, zero to two audio inputs, the mixing filter graph when both audio
// paths are enabled, and fixed output codec settings.
func Build(req Request, devices []discovery.AudioDevice, info Info) (*Command, error) {
	if err := validateOutputPath(req.OutputPath); err != nil {
		return nil, err
	}

	frameRate := req.FrameRate
	if frameRate <= 0 {
		frameRate = defaultFrameRate
	}

	video, err := videoInputArgs(req.Target, frameRate)
	if err != nil {
		return nil, err
	}

	audioIDs, err := resolveAudioInputs(req.Audio, devices)
	if err != nil {
		return nil, err
	}

	args := []string{"-y", "-hide_banner"}
	args = append(args, video...)
	for _, id := range audioIDs {
		args = append(args, audioInputArgs(req.Target.Handle.Platform, id)...)
	}
	args = append(args, mapArgs(len(audioIDs))...)
	args = append(args,
		"-c:v", videoCodec,
		"-crf", videoCRF,
		"-preset", videoPreset,
		"-pix_fmt", "yuv420p",
	)
	if len(audioIDs) > 0 {
		args = append(args,
			"-c:a", audioCodec,
			"-b:a", audioBitrate,
			"-ar", audioSampleRate,
		)
	}
	args = append(args, req.OutputPath)

	return &Command{Path: info.Path, Args: args}, nil
}

func validateOutputPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return &ValidationError{Field: "outputPath", Reason: "must not be empty"}
	}

	dir := filepath.Dir(path)
	fi, err := os.Stat(dir)
	if err != nil || !fi.IsDir() {
		return &ValidationError{Field: "outputPath", Reason: fmt.Sprintf("directory %q does not exist", dir)}
	}

	// The only portable writability check is writing.
	probe, err := os.CreateTemp(dir, ".deskrec-*")
	if err != nil {
		return &ValidationError{Field: "outputPath", Reason: fmt.Sprintf("directory %q is not writable", dir)}
	}
	probe.Close()
	os.Remove(probe.Name())
	return nil
}

func videoInputArgs(target discovery.Target, frameRate int) ([]string, error) {
	fps := strconv.Itoa(frameRate)
	h := target.Handle

	switch h.Platform {
	case discovery.PlatformLinux:
		if target.Kind == discovery.KindWindow {
			geo, err := usableGeometry(h.Geometry)
			if err != nil {
				return nil, err
			}
			return []string{
				"-f", "x11grab",
				"-framerate", fps,
				"-video_size", fmt.Sprintf("%dx%d", geo.Width, geo.Height),
				"-i", fmt.Sprintf("%s+%d,%d", h.Display, geo.X, geo.Y),
			}, nil
		}
		size := h.ScreenSize
		if size == "" {
			return nil, &ValidationError{Field: "target", Reason: "desktop target has no screen size"}
		}
		return []string{
			"-f", "x11grab",
			"-framerate", fps,
			"-video_size", size,
			"-i", h.Display + "+0,0",
		}, nil

	case discovery.PlatformWindows:
		if target.Kind == discovery.KindWindow {
			if h.WindowTitle == "" {
				return nil, &ValidationError{Field: "target", Reason: "window target has no title"}
			}
			return []string{
				"-f", "gdigrab",
				"-framerate", fps,
				"-i", "title=" + h.WindowTitle,
			}, nil
		}
		return []string{
			"-f", "gdigrab",
			"-framerate", fps,
			"-i", "desktop",
		}, nil

	default:
		return nil, &ValidationError{Field: "target", Reason: fmt.Sprintf("unsupported platform %q", h.Platform)}
	}
}

// usableGeometry rounds window dimensions up to even values (required by
// yuv420p) and rejects degenerate regions.
func usableGeometry(geo discovery.Geometry) (discovery.Geometry, error) {
	if geo.Width <= 0 || geo.Height <= 0 {
		return discovery.Geometry{}, &ValidationError{Field: "target", Reason: "window has no usable geometry"}
	}
	geo.Width += geo.Width % 2
	geo.Height += geo.Height % 2
	if geo.X < 0 {
		geo.X = 0
	}
	if geo.Y < 0 {
		geo.Y = 0
	}
	return geo, nil
}

func audioInputArgs(platform discovery.Platform, deviceID string) []string {
	if platform == discovery.PlatformWindows {
		return []string{"-f", "dshow", "-i", "audio=" + deviceID}
	}
	return []string{"-f", "pulse", "-i", deviceID}
}

// resolveAudioInputs picks the concrete device for each enabled audio path,
// microphone first. The returned order fixes the ffmpeg input indices.
func resolveAudioInputs(audio AudioOptions, devices []discovery.AudioDevice) ([]string, error) {
	var ids []string
	if audio.Microphone {
		id, err := resolveDevice(devices, discovery.KindMicrophone, audio.MicDevice)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if audio.SystemAudio {
		id, err := resolveDevice(devices, discovery.KindLoopback, audio.SystemDevice)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func resolveDevice(devices []discovery.AudioDevice, kind discovery.AudioDeviceKind, requested string) (string, error) {
	if requested != "" {
		for _, d := range devices {
			if d.ID == requested {
				return d.ID, nil
			}
		}
		return "", &ValidationError{Field: "audio", Reason: fmt.Sprintf("device %q not present", requested)}
	}
	for _, d := range devices {
		if d.Kind == kind {
			return d.ID, nil
		}
	}
	return "", &ValidationError{Field: "audio", Reason: fmt.Sprintf("no %s device available", kind)}
}

// mapArgs wires the stream mapping: plain maps for zero or one audio input,
// the amix filter graph for two.
func mapArgs(audioInputs int) []string {
	switch audioInputs {
	case 0:
		return []string{"-map", "0:v"}
	case 1:
		return []string{"-map", "0:v", "-map", "1:a"}
	default:
		return []string{
			"-filter_complex", mixFilter(audioInputs),
			"-map", "0:v",
			"-map", "[aout]",
		}
	}
}

// mixFilter builds the audio mixing filter graph. amix with normalize=1
// scales every input by 1/n, so the theoretical peak of the summed signal
// never exceeds full scale.
func mixFilter(inputs int) string {
	var b strings.Builder
	for i := 1; i <= inputs; i++ {
		fmt.Fprintf(&b, "[%d:a]", i)
	}
	fmt.Fprintf(&b, "amix=inputs=%d:duration=longest:dropout_transition=2:normalize=1[aout]", inputs)
	return b.String()
}
