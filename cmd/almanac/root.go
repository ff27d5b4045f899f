package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/phrazzld/almanac/internal/config"
	"github.com/phrazzld/almanac/internal/platform/logger"
	"github.com/phrazzld/almanac/internal/platform/notionapi"
	"github.com/phrazzld/almanac/internal/platform/postgres"
	"github.com/phrazzld/almanac/internal/remote"
	"github.com/phrazzld/almanac/internal/store"
)

// app carries the wired dependencies shared by all commands. Config and
// logging are set up before any command runs; the database connection is
// opened on demand.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	loc    *time.Location
	db     *sql.DB
	txm    store.TxManager
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "almanac",
		Short:         "Recurring task generation and remote workspace sync",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	root.AddCommand(
		newInitCmd(a),
		newGenCmd(a),
		newSyncCmd(a),
		newGCCmd(a),
		newProjectCmd(a),
		newHabitCmd(a),
		newChoreCmd(a),
		newMetricCmd(a),
		newPersonCmd(a),
		newVacationCmd(a),
		newTaskCmd(a),
	)
	return root
}

// setup loads configuration, initializes logging and resolves the
// workspace timezone.
func (a *app) setup() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger.Setup(cfg.Log.Level)

	loc, err := time.LoadLocation(cfg.Workspace.Timezone)
	if err != nil {
		return fmt.Errorf("invalid workspace timezone %q: %w", cfg.Workspace.Timezone, err)
	}
	a.loc = loc
	return nil
}

// connect opens the database and builds the transaction manager.
func (a *app) connect(ctx context.Context) error {
	if a.db != nil {
		return nil
	}
	db, err := postgres.Open(ctx, a.cfg.Database.URL)
	if err != nil {
		return err
	}
	a.db = db
	a.txm = postgres.NewTxManager(db)
	return nil
}

// mirrorClient returns the remote workspace client, or nil when no
// remote is configured.
func (a *app) mirrorClient() remote.MirrorClient {
	if a.cfg.Remote.BaseURL == "" {
		return nil
	}
	timeout := time.Duration(a.cfg.Remote.TimeoutSeconds) * time.Second
	return notionapi.NewClient(a.cfg.Remote.BaseURL, a.cfg.Remote.Token, timeout, a.logger)
}

func (a *app) close() {
	if a.db != nil {
		_ = a.db.Close()
		a.db = nil
	}
}
