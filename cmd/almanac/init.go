package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/phrazzld/almanac/internal/platform/postgres"
	"github.com/phrazzld/almanac/migrations"
)

const defaultConfig = `# almanac configuration. Environment variables with the ALMANAC_ prefix
# override any value here, e.g. ALMANAC_DATABASE_URL.
database:
  url: postgres://localhost:5432/almanac?sslmode=disable
workspace:
  timezone: UTC
log:
  level: info
# remote:
#   base_url: https://api.example.com
#   token: ""
`

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config and create or upgrade the database schema",
		Args:  cobra.NoArgs,
		// Overrides the root hook so the default config exists before
		// configuration is loaded. Every other command requires a
		// working config up front; init is how you get one.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path, created, err := writeDefaultConfig()
			if err != nil {
				return err
			}
			if created {
				cmd.Printf("wrote default config to %s\n", path)
			}
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			if err := postgres.MigrateUp(ctx, a.db, migrations.FS, "."); err != nil {
				return err
			}
			cmd.Println("database schema is up to date")
			return nil
		},
	}
}

// writeDefaultConfig creates $HOME/.config/almanac/almanac.yaml unless a
// config file already exists in either search location. An existing file
// is never touched.
func writeDefaultConfig() (string, bool, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve home directory: %w", err)
	}
	dir := filepath.Join(home, ".config", "almanac")
	path := filepath.Join(dir, "almanac.yaml")

	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	} else if !os.IsNotExist(err) {
		return "", false, err
	}
	if _, err := os.Stat("almanac.yaml"); err == nil {
		return "almanac.yaml", false, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfig), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write default config: %w", err)
	}
	return path, true, nil
}
