package cli

import (
	"errors"
	"fmt"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/spf13/cobra"

	"github.com/deskrec/deskrec/discovery"
)

func newDoctorCommand(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the recording environment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if hi, err := host.InfoWithContext(ctx); err == nil {
				fmt.Fprintf(out, "host:     %s %s (%s)\n", hi.Platform, hi.PlatformVersion, hi.KernelArch)
			}

			info, err := deps.Prober.Reprobe(ctx)
			if err != nil {
				fmt.Fprintf(out, "encoder:  NOT AVAILABLE: %v\n", err)
			} else {
				fmt.Fprintf(out, "encoder:  %s\n          %s\n", info.Path, info.Version)
			}

			targets, terr := deps.Enumerator.Targets(ctx)
			fmt.Fprintf(out, "targets:  %d discovered\n", len(targets))
			if errors.Is(terr, discovery.ErrUnavailable) {
				fmt.Fprintf(out, "          degraded: %v\n", terr)
			} else if terr != nil {
				fmt.Fprintf(out, "          error: %v\n", terr)
			}

			devices, derr := deps.Enumerator.AudioDevices(ctx)
			fmt.Fprintf(out, "audio:    %d devices\n", len(devices))
			if derr != nil && !errors.Is(derr, discovery.ErrUnavailable) {
				fmt.Fprintf(out, "          error: %v\n", derr)
			}

			if err != nil {
				return errors.New("environment is not ready to record")
			}
			return nil
		},
	}
}
