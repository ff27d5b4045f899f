package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/phrazzld/almanac/internal/domain"
	"github.com/phrazzld/almanac/internal/service/generation"
)

func newGenCmd(a *app) *cobra.Command {
	var (
		dateFlag    string
		periodFlags []string
		targetFlags []string
		projectFlags []string
	)

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate inbox tasks for the current period intervals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}

			opts := generation.RunOptions{ProjectNames: projectFlags}

			if dateFlag != "" {
				date, err := time.ParseInLocation("2006-01-02", dateFlag, a.loc)
				if err != nil {
					return fmt.Errorf("invalid --date %q: %w", dateFlag, err)
				}
				opts.Date = date
			}
			for _, p := range periodFlags {
				period, err := domain.ParsePeriod(p)
				if err != nil {
					return err
				}
				opts.Periods = append(opts.Periods, period)
			}
			for _, t := range targetFlags {
				target, err := generation.ParseTarget(t)
				if err != nil {
					return err
				}
				opts.Targets = append(opts.Targets, target)
			}

			svc := generation.NewService(a.txm, a.loc, a.logger)
			report, err := svc.Run(ctx, opts)
			if err != nil {
				return err
			}
			cmd.Printf("created %d, updated %d, skipped %d, failed %d\n",
				report.Created, report.Updated, report.Skipped, report.Failed)
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "target date (YYYY-MM-DD, default today)")
	cmd.Flags().StringSliceVar(&periodFlags, "period", nil, "restrict to periods (daily, weekly, monthly, quarterly, yearly)")
	cmd.Flags().StringSliceVar(&targetFlags, "target", nil, "restrict to template kinds (habits, chores, metrics, persons)")
	cmd.Flags().StringSliceVar(&projectFlags, "project", nil, "restrict to projects by name")
	return cmd
}
