package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/phrazzld/almanac/internal/domain"
	"github.com/phrazzld/almanac/internal/events"
	"github.com/phrazzld/almanac/internal/store"
)

func newMetricCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metric",
		Short: "Manage metrics",
	}

	var (
		createProject string
		createUnit    string
	)
	createFlags := &recurrenceFlags{}
	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a metric; give --period to collect it on a cadence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			project, err := requireProject(ctx, a, createProject)
			if err != nil {
				return err
			}
			var collection *domain.RecurringParams
			if createFlags.period != "" {
				params, err := createFlags.params()
				if err != nil {
					return err
				}
				collection = &params
			}
			metric, err := domain.NewMetric(project.ID, args[0], createUnit, collection)
			if err != nil {
				return err
			}
			err = a.txm.WithinTx(ctx, func(ctx context.Context, tx store.Stores) error {
				if err := tx.Metrics.Create(ctx, metric); err != nil {
					return err
				}
				return recordMutation(ctx, tx, domain.KindMetric, metric.ID, events.OpCreate, metric)
			})
			if err != nil {
				return err
			}
			cmd.Printf("created metric %s (%s)\n", metric.Name, metric.ID)
			return nil
		},
	}
	create.Flags().StringVar(&createProject, "project", "", "project the metric belongs to")
	create.Flags().StringVar(&createUnit, "unit", "", "unit of measurement")
	createFlags.register(create)
	cmd.AddCommand(create)

	var (
		updateName string
		updateUnit string
	)
	updateFlags := &recurrenceFlags{}
	update := &cobra.Command{
		Use:   "update ID",
		Short: "Update a metric; omit --period to stop collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			id, err := uuid.Parse(args[0])
			if err != nil {
				return err
			}
			metric, err := a.txm.Stores().Metrics.GetByID(ctx, id)
			if err != nil {
				return err
			}
			var collection *domain.RecurringParams
			if updateFlags.period != "" {
				params, err := updateFlags.params()
				if err != nil {
					return err
				}
				collection = &params
			}
			name := updateName
			if name == "" {
				name = metric.Name
			}
			unit := updateUnit
			if unit == "" {
				unit = metric.Unit
			}
			if err := metric.Update(name, unit, collection); err != nil {
				return err
			}
			return a.txm.WithinTx(ctx, func(ctx context.Context, tx store.Stores) error {
				if err := tx.Metrics.Update(ctx, metric); err != nil {
					return err
				}
				return recordMutation(ctx, tx, domain.KindMetric, metric.ID, events.OpUpdate, metric)
			})
		},
	}
	update.Flags().StringVar(&updateName, "name", "", "new metric name")
	update.Flags().StringVar(&updateUnit, "unit", "", "new unit of measurement")
	updateFlags.register(update)
	cmd.AddCommand(update)

	cmd.AddCommand(&cobra.Command{
		Use:   "archive ID",
		Short: "Archive a metric",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			id, err := uuid.Parse(args[0])
			if err != nil {
				return err
			}
			return a.txm.WithinTx(ctx, func(ctx context.Context, tx store.Stores) error {
				if err := tx.Metrics.Archive(ctx, id); err != nil {
					return err
				}
				return recordMutation(ctx, tx, domain.KindMetric, id, events.OpArchive, nil)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show ID",
		Short: "Show a metric",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			id, err := uuid.Parse(args[0])
			if err != nil {
				return err
			}
			metric, err := a.txm.Stores().Metrics.GetByID(ctx, id)
			if err != nil {
				return err
			}
			cmd.Printf("name:\t%s\n", metric.Name)
			cmd.Printf("project:\t%s\n", metric.ProjectID)
			if metric.Unit != "" {
				cmd.Printf("unit:\t%s\n", metric.Unit)
			}
			if metric.CollectionParams != nil {
				printRecurrence(cmd, *metric.CollectionParams)
			} else {
				cmd.Println("not collected")
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			metrics, err := a.txm.Stores().Metrics.List(ctx, store.TemplateFilter{})
			if err != nil {
				return err
			}
			for _, metric := range metrics {
				cadence := "not collected"
				if metric.CollectionParams != nil {
					cadence = string(metric.CollectionParams.Period)
				}
				cmd.Printf("%s\t%s\t%s\t%s\n", metric.ID, metric.Name, metric.Unit, cadence)
			}
			return nil
		},
	})

	return cmd
}
