package main

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/flownest/flownest-server/internal/config"
	"github.com/flownest/flownest-server/internal/storage"
)

type migrationOutput struct {
	Version  int64  `json:"version"`
	Source   string `json:"source"`
	State    string `json:"state"`
	Duration string `json:"duration,omitempty"`
}

func newMigrateCmd(load func() (*config.Config, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	open := func() (*storage.PostgresStore, error) {
		cfg, err := load()
		if err != nil {
			return nil, err
		}
		if cfg.Database.DSN == "" {
			return nil, errors.New("database.dsn is required")
		}
		return storage.NewPostgresStore(cfg.Database)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open()
			if err != nil {
				return err
			}
			defer store.Close()

			results, err := storage.Migrate(cmd.Context(), store.DB())
			out := make([]migrationOutput, 0, len(results))
			for _, r := range results {
				out = append(out, migrationOutput{
					Version:  r.Source.Version,
					Source:   r.Source.Path,
					State:    "applied",
					Duration: r.Duration.Round(time.Millisecond).String(),
				})
			}
			if werr := writeJSON(cmd.OutOrStdout(), out); werr != nil && err == nil {
				err = werr
			}
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open()
			if err != nil {
				return err
			}
			defer store.Close()

			statuses, err := storage.MigrationStatus(cmd.Context(), store.DB())
			if err != nil {
				return err
			}
			out := make([]migrationOutput, 0, len(statuses))
			for _, s := range statuses {
				out = append(out, migrationOutput{
					Version: s.Source.Version,
					Source:  s.Source.Path,
					State:   string(s.State),
				})
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	})

	return cmd
}
