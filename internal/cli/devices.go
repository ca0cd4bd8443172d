package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deskrec/deskrec/discovery"
)

func newDevicesCommand(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List audio capture devices",
		RunE: func(cmd *cobra.Command, _ []string) error {
			devices, err := deps.Enumerator.AudioDevices(cmd.Context())
			if err != nil && !errors.Is(err, discovery.ErrUnavailable) {
				return err
			}
			if errors.Is(err, discovery.ErrUnavailable) {
				fmt.Fprintf(cmd.OutOrStdout(), "note: %v\n", err)
			}
			for _, d := range devices {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-40s %s\n", d.Kind, d.Label, d.ID)
			}
			return nil
		},
	}
}
