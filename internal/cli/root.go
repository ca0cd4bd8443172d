// Package cli wires the recorder's components behind a cobra command tree.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/deskrec/deskrec/config"
	"github.com/deskrec/deskrec/discovery"
	"github.com/deskrec/deskrec/encoder"
	"github.com/deskrec/deskrec/internal/version"
	"github.com/deskrec/deskrec/record"
)

// Dependencies carries the shared components every subcommand needs.
type Dependencies struct {
	Config     config.Config
	Logger     *slog.Logger
	Enumerator discovery.Enumerator
	Prober     *encoder.Prober
	Recorder   *record.Recorder
}

func NewRootCommand(deps *Dependencies) *cobra.Command {
	root := &cobra.Command{
		Use:           "deskrec",
		Short:         "Desktop screen and audio recorder driven by ffmpeg",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newRecordCommand(deps),
		newTargetsCommand(deps),
		newDevicesCommand(deps),
		newDoctorCommand(deps),
	)
	return root
}
