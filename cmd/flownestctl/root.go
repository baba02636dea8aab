package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flownest/flownest-server/internal/bootstrap"
	"github.com/flownest/flownest-server/internal/config"
)

const defaultConfigFile = "config/flownest.yml"

func newRootCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:           "flownestctl",
		Short:         "FlowNest administration tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configFile, "config", defaultConfigFile, "Configuration file path")

	load := func() (*config.Config, error) {
		return loadConfig(configFile)
	}
	cmd.AddCommand(newMigrateCmd(load))
	cmd.AddCommand(newSeedCmd(load))
	cmd.AddCommand(newReportCmd(load))
	return cmd
}

// loadConfig reads the config file. A missing default file falls back to
// built-in defaults so the tool also works from a bare checkout.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		bootstrap.SetupLogging(cfg.Log, "flownestctl")
		return cfg, nil
	}
	if path != defaultConfigFile || !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	cfg = config.Default()
	bootstrap.SetupLogging(cfg.Log, "flownestctl")
	return cfg, nil
}

func execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
