package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/flownest/flownest-server/internal/bootstrap"
	"github.com/flownest/flownest-server/internal/config"
	"github.com/flownest/flownest-server/internal/scheduler"
	"github.com/flownest/flownest-server/internal/server"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config", "config/flownest.yml", "Configuration file path")
	flag.Parse()

	cfg, err := config.Load(configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	bootstrap.SetupLogging(cfg.Log, "worker")

	log.Info().Msg("FlowNest worker starting...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := bootstrap.OpenStore(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open store")
	}
	defer store.Close()

	m, _ := bootstrap.NewMetrics()

	dispatcher, closeDispatcher := bootstrap.NewDispatcher(cfg, store, m)
	defer closeDispatcher()

	var wg sync.WaitGroup

	// Event consumer
	nc, err := bootstrap.ConnectNATS(cfg.NATS, "flownest-worker")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to NATS")
	}
	if nc != nil {
		defer nc.Close()

		subscriber := server.NewNATSSubscriber(nc, dispatcher, cfg.NATS)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := subscriber.Start(ctx); err != nil {
				log.Error().Err(err).Msg("NATS subscriber stopped")
			}
		}()
	} else {
		log.Info().Msg("NATS not configured, event consumer disabled")
	}

	// Daily report
	job := scheduler.NewDailyReport(store, dispatcher, nil, cfg.Report.Location(), m)
	sched, err := scheduler.New(cfg.Report, job)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create report scheduler")
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := sched.Start(ctx); err != nil {
			log.Error().Err(err).Msg("Report scheduler stopped")
		}
	}()

	// Wait for signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received signal, shutting down")

	cancel()
	wg.Wait()

	log.Info().Msg("Worker stopped")
}
