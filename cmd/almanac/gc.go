package main

import (
	"github.com/spf13/cobra"

	"github.com/phrazzld/almanac/internal/service/gc"
)

func newGCCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "gc",
		Short: "Archive done tasks and purge rows confirmed archived remotely",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}

			svc := gc.NewService(a.txm, a.mirrorClient(), a.logger)
			report, err := svc.Run(ctx, gc.RunOptions{})
			if err != nil {
				return err
			}
			cmd.Printf("archived %d, purged %d, failed %d\n",
				report.Archived, report.Purged, report.Failed)
			return nil
		},
	}
}
