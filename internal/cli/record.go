package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/deskrec/deskrec/discovery"
	"github.com/deskrec/deskrec/encoder"
	"github.com/deskrec/deskrec/record"
)

type recordFlags struct {
	window       string
	output       string
	mic          bool
	systemAudio  bool
	micDevice    string
	systemDevice string
	frameRate    int
}

func newRecordCommand(deps *Dependencies) *cobra.Command {
	flags := &recordFlags{}

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record the desktop or a window until interrupted",
		Long: `Record starts an ffmpeg capture of the full desktop, or of a single
window selected with --window, and writes an MP4 file. Press Ctrl+C to stop
and finalize the recording.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRecord(cmd, deps, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.window, "window", "w", "", "record the window whose title contains this text")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file path (default: timestamped file in the output directory)")
	cmd.Flags().BoolVar(&flags.mic, "mic", false, "capture the microphone")
	cmd.Flags().BoolVar(&flags.systemAudio, "system-audio", false, "capture system audio")
	cmd.Flags().StringVar(&flags.micDevice, "mic-device", "", "microphone device ID (default: first microphone)")
	cmd.Flags().StringVar(&flags.systemDevice, "system-device", "", "system audio device ID (default: first loopback)")
	cmd.Flags().IntVar(&flags.frameRate, "framerate", 0, "capture frame rate (default: from config)")
	return cmd
}

func runRecord(cmd *cobra.Command, deps *Dependencies, flags *recordFlags) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	info, err := deps.Prober.Probe(ctx)
	if err != nil {
		return err
	}

	targets, err := deps.Enumerator.Targets(ctx)
	if err != nil && !errors.Is(err, discovery.ErrUnavailable) {
		return err
	}
	target, err := selectTarget(targets, flags.window)
	if err != nil {
		return err
	}

	var devices []discovery.AudioDevice
	if flags.mic || flags.systemAudio {
		devices, err = deps.Enumerator.AudioDevices(ctx)
		if err != nil && !errors.Is(err, discovery.ErrUnavailable) {
			return err
		}
	}

	outputPath := flags.output
	if outputPath == "" {
		if err := os.MkdirAll(deps.Config.OutputDir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
		name := "deskrec-" + time.Now().Format("2006-01-02-150405") + ".mp4"
		outputPath = filepath.Join(deps.Config.OutputDir, name)
	}

	frameRate := flags.frameRate
	if frameRate <= 0 {
		frameRate = deps.Config.FrameRate
	}

	req := encoder.Request{
		Target: target,
		Audio: encoder.AudioOptions{
			Microphone:   flags.mic,
			SystemAudio:  flags.systemAudio,
			MicDevice:    flags.micDevice,
			SystemDevice: flags.systemDevice,
		},
		OutputPath: outputPath,
		FrameRate:  frameRate,
	}

	deps.Recorder.SetTargets(targets)
	if err := deps.Recorder.Start(req, devices, info); err != nil {
		return err
	}
	fmt.Fprintf(out, "recording %s -> %s\n", target.Label, outputPath)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	for {
		select {
		case <-interrupt:
			fmt.Fprintln(out, "\nstopping...")
			deps.Recorder.Stop()
		case ev := <-deps.Recorder.Events():
			switch {
			case ev.Kind == record.EventProgress:
				fmt.Fprintf(out, "\rrecorded %s", ev.Elapsed.Round(time.Second))
			case ev.State == record.Stopped:
				fmt.Fprintf(out, "\nsaved %s\n", outputPath)
				return nil
			case ev.State == record.Failed:
				return fmt.Errorf("recording failed: %s", ev.Diagnostic)
			default:
				fmt.Fprintf(out, "%s\n", ev.State)
			}
		}
	}
}

// selectTarget picks the full desktop by default, or the first window whose
// label contains the given text, case-insensitively.
func selectTarget(targets []discovery.Target, window string) (discovery.Target, error) {
	if window == "" {
		for _, t := range targets {
			if t.Kind == discovery.KindDesktop {
				return t, nil
			}
		}
		return discovery.Target{}, errors.New("no desktop target available")
	}

	needle := strings.ToLower(window)
	for _, t := range targets {
		if t.Kind == discovery.KindWindow && strings.Contains(strings.ToLower(t.Label), needle) {
			return t, nil
		}
	}
	return discovery.Target{}, fmt.Errorf("no window matching %q; run `deskrec targets` to list them", window)
}
