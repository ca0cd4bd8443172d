package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deskrec/deskrec/discovery"
)

func newTargetsCommand(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List recordable capture targets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			targets, err := deps.Enumerator.Targets(cmd.Context())
			if err != nil && !errors.Is(err, discovery.ErrUnavailable) {
				return err
			}
			if errors.Is(err, discovery.ErrUnavailable) {
				fmt.Fprintf(cmd.OutOrStdout(), "note: %v\n", err)
			}
			for _, t := range targets {
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %-40s %s\n", t.Kind, t.Label, t.ID)
			}
			return nil
		},
	}
}
