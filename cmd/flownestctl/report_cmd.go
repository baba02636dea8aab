package main

import (
	"github.com/spf13/cobra"

	"github.com/flownest/flownest-server/internal/bootstrap"
	"github.com/flownest/flownest-server/internal/config"
	"github.com/flownest/flownest-server/internal/scheduler"
)

func newReportCmd(load func() (*config.Config, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Daily sales report",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "send",
		Short: "Send today's report to every owner now",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			store, err := bootstrap.OpenStore(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer store.Close()

			dispatcher, cleanup := bootstrap.NewDispatcher(cfg, store, nil)
			defer cleanup()

			job := scheduler.NewDailyReport(store, dispatcher, nil, cfg.Report.Location(), nil)
			result, err := job.RunOnce(cmd.Context())
			if werr := writeJSON(cmd.OutOrStdout(), result); werr != nil && err == nil {
				err = werr
			}
			return err
		},
	})

	return cmd
}
