package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/phrazzld/almanac/internal/domain"
	"github.com/phrazzld/almanac/internal/events"
	"github.com/phrazzld/almanac/internal/store"
)

func newProjectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create NAME",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			project, err := domain.NewProject(args[0])
			if err != nil {
				return err
			}
			err = a.txm.WithinTx(ctx, func(ctx context.Context, tx store.Stores) error {
				if err := tx.Projects.Create(ctx, project); err != nil {
					return err
				}
				return recordMutation(ctx, tx, domain.KindProject, project.ID, events.OpCreate, project)
			})
			if err != nil {
				return err
			}
			cmd.Printf("created project %s (%s)\n", project.Name, project.ID)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename NAME NEW_NAME",
		Short: "Rename a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			project, err := a.txm.Stores().Projects.GetByName(ctx, args[0])
			if err != nil {
				return err
			}
			if err := project.Rename(args[1]); err != nil {
				return err
			}
			return a.txm.WithinTx(ctx, func(ctx context.Context, tx store.Stores) error {
				if err := tx.Projects.Update(ctx, project); err != nil {
					return err
				}
				return recordMutation(ctx, tx, domain.KindProject, project.ID, events.OpUpdate, project)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "archive NAME",
		Short: "Archive a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			project, err := a.txm.Stores().Projects.GetByName(ctx, args[0])
			if err != nil {
				return err
			}
			return a.txm.WithinTx(ctx, func(ctx context.Context, tx store.Stores) error {
				if err := tx.Projects.Archive(ctx, project.ID); err != nil {
					return err
				}
				return recordMutation(ctx, tx, domain.KindProject, project.ID, events.OpArchive, nil)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			projects, err := a.txm.Stores().Projects.List(ctx, false)
			if err != nil {
				return err
			}
			for _, project := range projects {
				cmd.Printf("%s\t%s\n", project.ID, project.Name)
			}
			return nil
		},
	})

	return cmd
}
