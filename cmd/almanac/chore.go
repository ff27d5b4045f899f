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

func newChoreCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chore",
		Short: "Manage chore templates",
	}

	var (
		createProject string
		createMustDo  bool
		createFrom    string
		createUntil   string
	)
	createFlags := &recurrenceFlags{}
	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a chore",
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
			chore, err := domain.NewChore(project.ID, args[0], params)
			if err != nil {
				return err
			}
			activeFrom, err := parseOptionalDate(createFrom, a.loc)
			if err != nil {
				return err
			}
			activeUntil, err := parseOptionalDate(createUntil, a.loc)
			if err != nil {
				return err
			}
			if err := chore.Update(chore.Name, params, createMustDo, activeFrom, activeUntil); err != nil {
				return err
			}
			err = a.txm.WithinTx(ctx, func(ctx context.Context, tx store.Stores) error {
				if err := tx.Chores.Create(ctx, chore); err != nil {
					return err
				}
				return recordMutation(ctx, tx, domain.KindChore, chore.ID, events.OpCreate, chore)
			})
			if err != nil {
				return err
			}
			cmd.Printf("created chore %s (%s)\n", chore.Name, chore.ID)
			return nil
		},
	}
	create.Flags().StringVar(&createProject, "project", "", "project the chore belongs to")
	create.Flags().BoolVar(&createMustDo, "must-do", false, "generate even during vacations")
	create.Flags().StringVar(&createFrom, "active-from", "", "start of the active range (YYYY-MM-DD)")
	create.Flags().StringVar(&createUntil, "active-until", "", "end of the active range (YYYY-MM-DD)")
	createFlags.register(create)
	cmd.AddCommand(create)

	var (
		updateName   string
		updateMustDo bool
		updateFrom   string
		updateUntil  string
	)
	updateFlags := &recurrenceFlags{}
	update := &cobra.Command{
		Use:   "update ID",
		Short: "Update a chore",
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
			chore, err := a.txm.Stores().Chores.GetByID(ctx, id)
			if err != nil {
				return err
			}
			params, err := updateFlags.params()
			if err != nil {
				return err
			}
			name := updateName
			if name == "" {
				name = chore.Name
			}
			activeFrom, err := parseOptionalDate(updateFrom, a.loc)
			if err != nil {
				return err
			}
			activeUntil, err := parseOptionalDate(updateUntil, a.loc)
			if err != nil {
				return err
			}
			if err := chore.Update(name, params, updateMustDo, activeFrom, activeUntil); err != nil {
				return err
			}
			return a.txm.WithinTx(ctx, func(ctx context.Context, tx store.Stores) error {
				if err := tx.Chores.Update(ctx, chore); err != nil {
					return err
				}
				return recordMutation(ctx, tx, domain.KindChore, chore.ID, events.OpUpdate, chore)
			})
		},
	}
	update.Flags().StringVar(&updateName, "name", "", "new chore name")
	update.Flags().BoolVar(&updateMustDo, "must-do", false, "generate even during vacations")
	update.Flags().StringVar(&updateFrom, "active-from", "", "start of the active range (YYYY-MM-DD)")
	update.Flags().StringVar(&updateUntil, "active-until", "", "end of the active range (YYYY-MM-DD)")
	updateFlags.register(update)
	cmd.AddCommand(update)

	cmd.AddCommand(choreToggleCmd(a, "suspend", "Pause generation for a chore", func(c *domain.Chore) { c.Suspend() }))
	cmd.AddCommand(choreToggleCmd(a, "unsuspend", "Resume generation for a chore", func(c *domain.Chore) { c.Unsuspend() }))

	cmd.AddCommand(&cobra.Command{
		Use:   "archive ID",
		Short: "Archive a chore",
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
				if err := tx.Chores.Archive(ctx, id); err != nil {
					return err
				}
				return recordMutation(ctx, tx, domain.KindChore, id, events.OpArchive, nil)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show ID",
		Short: "Show a chore",
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
			chore, err := a.txm.Stores().Chores.GetByID(ctx, id)
			if err != nil {
				return err
			}
			cmd.Printf("name:\t%s\n", chore.Name)
			cmd.Printf("project:\t%s\n", chore.ProjectID)
			printRecurrence(cmd, chore.Params)
			if chore.MustDo {
				cmd.Println("must-do")
			}
			if chore.ActiveFrom != nil {
				cmd.Printf("active from:\t%s\n", chore.ActiveFrom.Format("2006-01-02"))
			}
			if chore.ActiveUntil != nil {
				cmd.Printf("active until:\t%s\n", chore.ActiveUntil.Format("2006-01-02"))
			}
			if chore.Suspended {
				cmd.Println("suspended")
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List chores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			chores, err := a.txm.Stores().Chores.List(ctx, store.TemplateFilter{})
			if err != nil {
				return err
			}
			for _, chore := range chores {
				flags := ""
				if chore.MustDo {
					flags += "\t(must-do)"
				}
				if chore.Suspended {
					flags += "\t(suspended)"
				}
				cmd.Printf("%s\t%s\t%s%s\n", chore.ID, chore.Name, chore.Params.Period, flags)
			}
			return nil
		},
	})

	return cmd
}

func choreToggleCmd(a *app, use, short string, toggle func(*domain.Chore)) *cobra.Command {
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
			chore, err := a.txm.Stores().Chores.GetByID(ctx, id)
			if err != nil {
				return err
			}
			toggle(chore)
			return a.txm.WithinTx(ctx, func(ctx context.Context, tx store.Stores) error {
				if err := tx.Chores.Update(ctx, chore); err != nil {
					return err
				}
				return recordMutation(ctx, tx, domain.KindChore, chore.ID, events.OpUpdate, chore)
			})
		},
	}
}

func parseOptionalDate(s string, loc *time.Location) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return &t, nil
}
