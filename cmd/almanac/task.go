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

func newTaskCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage inbox tasks",
	}

	var (
		addProject    string
		addActionable string
		addDue        string
	)
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a manual inbox task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			project, err := requireProject(ctx, a, addProject)
			if err != nil {
				return err
			}
			actionable, err := parseOptionalDate(addActionable, a.loc)
			if err != nil {
				return err
			}
			due, err := parseOptionalDate(addDue, a.loc)
			if err != nil {
				return err
			}
			var dueAt time.Time
			if due != nil {
				dueAt = *due
			}
			task, err := domain.NewManualTask(project.ID, args[0], actionable, dueAt)
			if err != nil {
				return err
			}
			err = a.txm.WithinTx(ctx, func(ctx context.Context, tx store.Stores) error {
				if err := tx.Tasks.Create(ctx, task); err != nil {
					return err
				}
				return recordMutation(ctx, tx, domain.KindInboxTask, task.ID, events.OpCreate, task)
			})
			if err != nil {
				return err
			}
			cmd.Printf("added task %s (%s)\n", task.Name, task.ID)
			return nil
		},
	}
	add.Flags().StringVar(&addProject, "project", "", "project the task belongs to")
	add.Flags().StringVar(&addActionable, "actionable", "", "actionable date (YYYY-MM-DD)")
	add.Flags().StringVar(&addDue, "due", "", "due date (YYYY-MM-DD)")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "done ID",
		Short: "Mark a task done",
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
			task, err := a.txm.Stores().Tasks.GetByID(ctx, id)
			if err != nil {
				return err
			}
			task.MarkDone()
			return a.txm.WithinTx(ctx, func(ctx context.Context, tx store.Stores) error {
				if err := tx.Tasks.Update(ctx, task); err != nil {
					return err
				}
				return recordMutation(ctx, tx, domain.KindInboxTask, task.ID, events.OpUpdate, task)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "archive ID",
		Short: "Archive a task; its interval is never regenerated",
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
			task, err := a.txm.Stores().Tasks.GetByID(ctx, id)
			if err != nil {
				return err
			}
			task.Archive()
			return a.txm.WithinTx(ctx, func(ctx context.Context, tx store.Stores) error {
				if err := tx.Tasks.Update(ctx, task); err != nil {
					return err
				}
				return recordMutation(ctx, tx, domain.KindInboxTask, task.ID, events.OpArchive, nil)
			})
		},
	})

	var (
		updateName       string
		updateActionable string
		updateDue        string
	)
	update := &cobra.Command{
		Use:   "update ID",
		Short: "Update a task's name or dates",
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
			task, err := a.txm.Stores().Tasks.GetByID(ctx, id)
			if err != nil {
				return err
			}
			changed := false
			if cmd.Flags().Changed("name") {
				task.Name = updateName
				changed = true
			}
			if cmd.Flags().Changed("actionable") {
				actionable, err := parseOptionalDate(updateActionable, a.loc)
				if err != nil {
					return err
				}
				task.ActionableDate = actionable
				changed = true
			}
			if cmd.Flags().Changed("due") {
				due, err := parseOptionalDate(updateDue, a.loc)
				if err != nil {
					return err
				}
				if due == nil {
					return fmt.Errorf("--due requires a date")
				}
				task.DueDate = *due
				changed = true
			}
			if !changed {
				return nil
			}
			task.UpdatedAt = time.Now().UTC()
			if err := task.Validate(); err != nil {
				return err
			}
			return a.txm.WithinTx(ctx, func(ctx context.Context, tx store.Stores) error {
				if err := tx.Tasks.Update(ctx, task); err != nil {
					return err
				}
				return recordMutation(ctx, tx, domain.KindInboxTask, task.ID, events.OpUpdate, task)
			})
		},
	}
	update.Flags().StringVar(&updateName, "name", "", "new task name")
	update.Flags().StringVar(&updateActionable, "actionable", "", "actionable date (YYYY-MM-DD, empty clears)")
	update.Flags().StringVar(&updateDue, "due", "", "due date (YYYY-MM-DD)")
	cmd.AddCommand(update)

	cmd.AddCommand(&cobra.Command{
		Use:   "show ID",
		Short: "Show a task",
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
			task, err := a.txm.Stores().Tasks.GetByID(ctx, id)
			if err != nil {
				return err
			}
			cmd.Printf("name:\t%s\n", task.Name)
			cmd.Printf("status:\t%s\n", task.Status)
			cmd.Printf("origin:\t%s\n", task.Origin)
			if task.IsGenerated() {
				cmd.Printf("template:\t%s\n", task.TemplateID)
				cmd.Printf("interval:\t%s\n", task.IntervalID)
			}
			if task.ActionableDate != nil {
				cmd.Printf("actionable:\t%s\n", task.ActionableDate.Format("2006-01-02"))
			}
			cmd.Printf("due:\t%s\n", task.DueDate.Format("2006-01-02 15:04"))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List open tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			tasks, err := a.txm.Stores().Tasks.List(ctx, store.TaskFilter{
				Statuses: []domain.TaskStatus{domain.TaskStatusOpen},
			})
			if err != nil {
				return err
			}
			for _, task := range tasks {
				cmd.Printf("%s\t%s\tdue %s\n", task.ID, task.Name, task.DueDate.Format("2006-01-02"))
			}
			return nil
		},
	})

	return cmd
}
