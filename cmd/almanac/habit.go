package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/phrazzld/almanac/internal/domain"
	"github.com/phrazzld/almanac/internal/events"
	"github.com/phrazzld/almanac/internal/store"
)

func newHabitCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "habit",
		Short: "Manage habit templates",
	}

	var createProject string
	createFlags := &recurrenceFlags{}
	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a habit",
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
			params, err := createFlags.params()
			if err != nil {
				return err
			}
			habit, err := domain.NewHabit(project.ID, args[0], params)
			if err != nil {
				return err
			}
			err = a.txm.WithinTx(ctx, func(ctx context.Context, tx store.Stores) error {
				if err := tx.Habits.Create(ctx, habit); err != nil {
					return err
				}
				return recordMutation(ctx, tx, domain.KindHabit, habit.ID, events.OpCreate, habit)
			})
			if err != nil {
				return err
			}
			cmd.Printf("created habit %s (%s)\n", habit.Name, habit.ID)
			return nil
		},
	}
	create.Flags().StringVar(&createProject, "project", "", "project the habit belongs to")
	createFlags.register(create)
	cmd.AddCommand(create)

	var updateName string
	updateFlags := &recurrenceFlags{}
	update := &cobra.Command{
		Use:   "update ID",
		Short: "Update a habit's name and recurrence",
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
			habit, err := a.txm.Stores().Habits.GetByID(ctx, id)
			if err != nil {
				return err
			}
			params, err := updateFlags.params()
			if err != nil {
				return err
			}
			name := updateName
			if name == "" {
				name = habit.Name
			}
			if err := habit.Update(name, params); err != nil {
				return err
			}
			return a.txm.WithinTx(ctx, func(ctx context.Context, tx store.Stores) error {
				if err := tx.Habits.Update(ctx, habit); err != nil {
					return err
				}
				return recordMutation(ctx, tx, domain.KindHabit, habit.ID, events.OpUpdate, habit)
			})
		},
	}
	update.Flags().StringVar(&updateName, "name", "", "new habit name")
	updateFlags.register(update)
	cmd.AddCommand(update)

	cmd.AddCommand(habitToggleCmd(a, "suspend", "Pause generation for a habit", func(h *domain.Habit) { h.Suspend() }))
	cmd.AddCommand(habitToggleCmd(a, "unsuspend", "Resume generation for a habit", func(h *domain.Habit) { h.Unsuspend() }))

	cmd.AddCommand(&cobra.Command{
		Use:   "archive ID",
		Short: "Archive a habit",
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
				if err := tx.Habits.Archive(ctx, id); err != nil {
					return err
				}
				return recordMutation(ctx, tx, domain.KindHabit, id, events.OpArchive, nil)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show ID",
		Short: "Show a habit",
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
			habit, err := a.txm.Stores().Habits.GetByID(ctx, id)
			if err != nil {
				return err
			}
			cmd.Printf("name:\t%s\n", habit.Name)
			cmd.Printf("project:\t%s\n", habit.ProjectID)
			printRecurrence(cmd, habit.Params)
			if habit.Suspended {
				cmd.Println("suspended")
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List habits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			habits, err := a.txm.Stores().Habits.List(ctx, store.TemplateFilter{})
			if err != nil {
				return err
			}
			for _, habit := range habits {
				suspended := ""
				if habit.Suspended {
					suspended = "\t(suspended)"
				}
				cmd.Printf("%s\t%s\t%s%s\n", habit.ID, habit.Name, habit.Params.Period, suspended)
			}
			return nil
		},
	})

	return cmd
}

func habitToggleCmd(a *app, use, short string, toggle func(*domain.Habit)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID",
		Short: short,
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
			habit, err := a.txm.Stores().Habits.GetByID(ctx, id)
			if err != nil {
				return err
			}
			toggle(habit)
			return a.txm.WithinTx(ctx, func(ctx context.Context, tx store.Stores) error {
				if err := tx.Habits.Update(ctx, habit); err != nil {
					return err
				}
				return recordMutation(ctx, tx, domain.KindHabit, habit.ID, events.OpUpdate, habit)
			})
		},
	}
}
