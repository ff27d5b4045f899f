package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/phrazzld/almanac/internal/domain"
	"github.com/phrazzld/almanac/internal/events"
	"github.com/phrazzld/almanac/internal/store"
)

// recurrenceFlags collects the recurrence configuration shared by every
// template command.
type recurrenceFlags struct {
	period          string
	skip            string
	actionableDay   int
	actionableMonth int
	dueDay          int
	dueMonth        int
	dueTime         string
	difficulty      string
	eisenhower      string
}

func (f *recurrenceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.period, "period", "", "recurrence period (daily, weekly, monthly, quarterly, yearly)")
	cmd.Flags().StringVar(&f.skip, "skip", "", "skip rule: odd, even, or interval numbers like 1,3")
	cmd.Flags().IntVar(&f.actionableDay, "actionable-day", 0, "day offset into the interval the task becomes actionable")
	cmd.Flags().IntVar(&f.actionableMonth, "actionable-month", 0, "month offset into the interval the task becomes actionable")
	cmd.Flags().IntVar(&f.dueDay, "due-day", 0, "day offset into the interval the task is due")
	cmd.Flags().IntVar(&f.dueMonth, "due-month", 0, "month offset into the interval the task is due")
	cmd.Flags().StringVar(&f.dueTime, "due-time", "", "due time of day (HH:MM)")
	cmd.Flags().StringVar(&f.difficulty, "difficulty", "", "difficulty grade (easy, medium, hard)")
	cmd.Flags().StringVar(&f.eisenhower, "eisenhower", "", "eisenhower placement (important, urgent, regular)")
}

func (f *recurrenceFlags) params() (domain.RecurringParams, error) {
	period, err := domain.ParsePeriod(f.period)
	if err != nil {
		return domain.RecurringParams{}, err
	}
	skip, err := domain.ParseSkipRule(f.skip)
	if err != nil {
		return domain.RecurringParams{}, err
	}
	params := domain.RecurringParams{
		Period:              period,
		Skip:                skip,
		ActionableFromDay:   f.actionableDay,
		ActionableFromMonth: f.actionableMonth,
		DueAtDay:            f.dueDay,
		DueAtMonth:          f.dueMonth,
		DueAtTime:           f.dueTime,
		Difficulty:          domain.Difficulty(f.difficulty),
		Eisenhower:          domain.Eisenhower(f.eisenhower),
	}
	if err := params.Validate(); err != nil {
		return domain.RecurringParams{}, err
	}
	return params, nil
}

// printRecurrence renders a template's recurrence configuration for the
// show subcommands, skipping zero-valued fields.
func printRecurrence(cmd *cobra.Command, params domain.RecurringParams) {
	cmd.Printf("period:\t%s\n", params.Period)
	if !params.Skip.IsZero() {
		cmd.Printf("skip:\t%s\n", params.Skip)
	}
	if params.ActionableFromDay > 0 || params.ActionableFromMonth > 0 {
		cmd.Printf("actionable:\tmonth %d, day %d\n", params.ActionableFromMonth, params.ActionableFromDay)
	}
	if params.DueAtDay > 0 || params.DueAtMonth > 0 {
		cmd.Printf("due offset:\tmonth %d, day %d\n", params.DueAtMonth, params.DueAtDay)
	}
	if params.DueAtTime != "" {
		cmd.Printf("due time:\t%s\n", params.DueAtTime)
	}
	if params.Difficulty != "" {
		cmd.Printf("difficulty:\t%s\n", params.Difficulty)
	}
	if params.Eisenhower != "" {
		cmd.Printf("eisenhower:\t%s\n", params.Eisenhower)
	}
}

// requireProject resolves a project name for template commands.
func requireProject(ctx context.Context, a *app, name string) (*domain.Project, error) {
	if name == "" {
		return nil, fmt.Errorf("--project is required")
	}
	project, err := a.txm.Stores().Projects.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project %q: %w", name, err)
	}
	return project, nil
}

// recordMutation appends the event for a mutation in the same
// transaction.
func recordMutation(ctx context.Context, tx store.Stores, kind domain.EntityKind, id uuid.UUID, op events.Op, payload any) error {
	event, err := events.New(kind, id, op, payload)
	if err != nil {
		return err
	}
	return tx.Events.Append(ctx, event)
}
