package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phrazzld/almanac/internal/domain"
	"github.com/phrazzld/almanac/internal/service/syncer"
)

func newSyncCmd(a *app) *cobra.Command {
	var (
		kindNames []string
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile local entities with the remote workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			kinds := make([]domain.EntityKind, 0, len(kindNames))
			for _, name := range kindNames {
				kind, err := domain.ParseEntityKind(name)
				if err != nil {
					return err
				}
				kinds = append(kinds, kind)
			}

			if err := a.connect(ctx); err != nil {
				return err
			}
			client := a.mirrorClient()
			if client == nil {
				return fmt.Errorf("no remote workspace configured (set remote.base_url)")
			}

			svc := syncer.NewService(a.txm, client, a.logger)
			report, err := svc.Run(ctx, syncer.RunOptions{Kinds: kinds, DryRun: dryRun})
			if err != nil {
				return err
			}
			if dryRun {
				cmd.Println("dry run, nothing written")
			}
			cmd.Printf("pushed %d, pulled %d, adopted %d, archived %d, repaired %d, unchanged %d, failed %d\n",
				report.Pushed, report.Pulled, report.Adopted, report.Archived,
				report.Repaired, report.Unchanged, report.Failed)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&kindNames, "kind", nil, "restrict the run to the given kinds (repeatable)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what the run would do without writing")
	return cmd
}
