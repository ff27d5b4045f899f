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

func newPersonCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "person",
		Short: "Manage persons",
	}

	var (
		createProject      string
		createRelationship string
		createBirthday     string
	)
	createFlags := &recurrenceFlags{}
	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a person; give --period for a catch-up cadence",
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
			var catchUp *domain.RecurringParams
			if createFlags.period != "" {
				params, err := createFlags.params()
				if err != nil {
					return err
				}
				catchUp = &params
			}
			birthday, err := parseBirthday(createBirthday)
			if err != nil {
				return err
			}
			person, err := domain.NewPerson(project.ID, args[0], createRelationship, catchUp, birthday)
			if err != nil {
				return err
			}
			err = a.txm.WithinTx(ctx, func(ctx context.Context, tx store.Stores) error {
				if err := tx.Persons.Create(ctx, person); err != nil {
					return err
				}
				return recordMutation(ctx, tx, domain.KindPerson, person.ID, events.OpCreate, person)
			})
			if err != nil {
				return err
			}
			cmd.Printf("created person %s (%s)\n", person.Name, person.ID)
			return nil
		},
	}
	create.Flags().StringVar(&createProject, "project", "", "project the person belongs to")
	create.Flags().StringVar(&createRelationship, "relationship", "", "relationship to the person")
	create.Flags().StringVar(&createBirthday, "birthday", "", "birthday (MM-DD)")
	createFlags.register(create)
	cmd.AddCommand(create)

	var (
		updateName         string
		updateRelationship string
		updateBirthday     string
	)
	updateFlags := &recurrenceFlags{}
	update := &cobra.Command{
		Use:   "update ID",
		Short: "Update a person; omit --period to stop catch-ups",
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
			person, err := a.txm.Stores().Persons.GetByID(ctx, id)
			if err != nil {
				return err
			}
			var catchUp *domain.RecurringParams
			if updateFlags.period != "" {
				params, err := updateFlags.params()
				if err != nil {
					return err
				}
				catchUp = &params
			}
			birthday := person.Birthday
			if updateBirthday != "" {
				birthday, err = parseBirthday(updateBirthday)
				if err != nil {
					return err
				}
			}
			name := updateName
			if name == "" {
				name = person.Name
			}
			relationship := updateRelationship
			if relationship == "" {
				relationship = person.Relationship
			}
			if err := person.Update(name, relationship, catchUp, birthday); err != nil {
				return err
			}
			return a.txm.WithinTx(ctx, func(ctx context.Context, tx store.Stores) error {
				if err := tx.Persons.Update(ctx, person); err != nil {
					return err
				}
				return recordMutation(ctx, tx, domain.KindPerson, person.ID, events.OpUpdate, person)
			})
		},
	}
	update.Flags().StringVar(&updateName, "name", "", "new person name")
	update.Flags().StringVar(&updateRelationship, "relationship", "", "new relationship")
	update.Flags().StringVar(&updateBirthday, "birthday", "", "new birthday (MM-DD)")
	updateFlags.register(update)
	cmd.AddCommand(update)

	cmd.AddCommand(&cobra.Command{
		Use:   "archive ID",
		Short: "Archive a person",
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
				if err := tx.Persons.Archive(ctx, id); err != nil {
					return err
				}
				return recordMutation(ctx, tx, domain.KindPerson, id, events.OpArchive, nil)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show ID",
		Short: "Show a person",
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
			person, err := a.txm.Stores().Persons.GetByID(ctx, id)
			if err != nil {
				return err
			}
			cmd.Printf("name:\t%s\n", person.Name)
			cmd.Printf("project:\t%s\n", person.ProjectID)
			if person.Relationship != "" {
				cmd.Printf("relationship:\t%s\n", person.Relationship)
			}
			if person.CatchUpParams != nil {
				printRecurrence(cmd, *person.CatchUpParams)
			}
			if person.Birthday != nil {
				cmd.Printf("birthday:\t%02d-%02d\n", person.Birthday.Month, person.Birthday.Day)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List persons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			persons, err := a.txm.Stores().Persons.List(ctx, store.TemplateFilter{})
			if err != nil {
				return err
			}
			for _, person := range persons {
				details := ""
				if person.CatchUpParams != nil {
					details += "\tcatch-up " + string(person.CatchUpParams.Period)
				}
				if person.Birthday != nil {
					details += fmt.Sprintf("\tbirthday %02d-%02d", person.Birthday.Month, person.Birthday.Day)
				}
				cmd.Printf("%s\t%s%s\n", person.ID, person.Name, details)
			}
			return nil
		},
	})

	return cmd
}

func parseBirthday(s string) (*domain.Birthday, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("01-02", s)
	if err != nil {
		return nil, fmt.Errorf("invalid birthday %q (want MM-DD): %w", s, err)
	}
	return &domain.Birthday{Month: t.Month(), Day: t.Day()}, nil
}
