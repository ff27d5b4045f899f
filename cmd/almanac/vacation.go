package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/phrazzld/almanac/internal/domain"
	"github.com/phrazzld/almanac/internal/events"
	"github.com/phrazzld/almanac/internal/store"
)

func newVacationCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vacation",
		Short: "Manage vacations",
	}

	var createFrom, createTo string
	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a vacation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			start, end, err := parseDateRange(createFrom, createTo, a.loc)
			if err != nil {
				return err
			}
			vacation, err := domain.NewVacation(args[0], start, end)
			if err != nil {
				return err
			}
			err = a.txm.WithinTx(ctx, func(ctx context.Context, tx store.Stores) error {
				if err := tx.Vacations.Create(ctx, vacation); err != nil {
					return err
				}
				return recordMutation(ctx, tx, domain.KindVacation, vacation.ID, events.OpCreate, vacation)
			})
			if err != nil {
				return err
			}
			cmd.Printf("created vacation %s (%s)\n", vacation.Name, vacation.ID)
			return nil
		},
	}
	create.Flags().StringVar(&createFrom, "from", "", "first day (YYYY-MM-DD)")
	create.Flags().StringVar(&createTo, "to", "", "last day, inclusive (YYYY-MM-DD)")
	cmd.AddCommand(create)

	var updateName, updateFrom, updateTo string
	update := &cobra.Command{
		Use:   "update ID",
		Short: "Update a vacation",
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
			vacation, err := a.txm.Stores().Vacations.GetByID(ctx, id)
			if err != nil {
				return err
			}
			name := updateName
			if name == "" {
				name = vacation.Name
			}
			start, end := vacation.StartDate, vacation.EndDate
			if updateFrom != "" || updateTo != "" {
				start, end, err = parseDateRange(updateFrom, updateTo, a.loc)
				if err != nil {
					return err
				}
			}
			if err := vacation.Update(name, start, end); err != nil {
				return err
			}
			return a.txm.WithinTx(ctx, func(ctx context.Context, tx store.Stores) error {
				if err := tx.Vacations.Update(ctx, vacation); err != nil {
					return err
				}
				return recordMutation(ctx, tx, domain.KindVacation, vacation.ID, events.OpUpdate, vacation)
			})
		},
	}
	update.Flags().StringVar(&updateName, "name", "", "new vacation name")
	update.Flags().StringVar(&updateFrom, "from", "", "first day (YYYY-MM-DD)")
	update.Flags().StringVar(&updateTo, "to", "", "last day, inclusive (YYYY-MM-DD)")
	cmd.AddCommand(update)

	cmd.AddCommand(&cobra.Command{
		Use:   "archive ID",
		Short: "Archive a vacation",
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
				if err := tx.Vacations.Archive(ctx, id); err != nil {
					return err
				}
				return recordMutation(ctx, tx, domain.KindVacation, id, events.OpArchive, nil)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List vacations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			vacations, err := a.txm.Stores().Vacations.List(ctx, false)
			if err != nil {
				return err
			}
			for _, vacation := range vacations {
				cmd.Printf("%s\t%s\t%s .. %s\n", vacation.ID, vacation.Name,
					vacation.StartDate.Format("2006-01-02"), vacation.EndDate.Format("2006-01-02"))
			}
			return nil
		},
	})

	return cmd
}

func parseDateRange(from, to string, loc *time.Location) (time.Time, time.Time, error) {
	if from == "" || to == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("both --from and --to are required")
	}
	start, err := time.ParseInLocation("2006-01-02", from, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --from %q: %w", from, err)
	}
	end, err := time.ParseInLocation("2006-01-02", to, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --to %q: %w", to, err)
	}
	return start, end, nil
}
