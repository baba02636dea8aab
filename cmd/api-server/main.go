package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/flownest/flownest-server/internal/api"
	"github.com/flownest/flownest-server/internal/bootstrap"
	"github.com/flownest/flownest-server/internal/config"
	"github.com/flownest/flownest-server/internal/events"
	"github.com/flownest/flownest-server/internal/scheduler"
)

func main() {
	// Command line flags
	var configFile string
	flag.StringVar(&configFile, "config", "config/flownest.yml", "Configuration file path")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	bootstrap.SetupLogging(cfg.Log, "api-server")
	if cfg.IsDevelopment() {
		cfg.PrintConfigSummary()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := bootstrap.OpenStore(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open store")
	}
	defer store.Close()

	m, registry := bootstrap.NewMetrics()

	rdb, err := bootstrap.ConnectRedis(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	dispatcher, closeDispatcher := bootstrap.NewDispatcher(cfg, store, m)
	defer closeDispatcher()

	// Domain events go to the worker over NATS, or are handled in-process.
	var publisher events.Publisher
	var inline *events.InlinePublisher
	nc, err := bootstrap.ConnectNATS(cfg.NATS, "flownest-api-server")
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to NATS, handling events in-process")
	}
	if nc != nil {
		defer nc.Close()
		publisher = events.NewNATSPublisher(nc, cfg.NATS.SubjectPrefix, m)
	} else {
		inline = events.NewInlinePublisher(dispatcher, m)
		publisher = inline
	}

	apiServer, err := api.NewRESTServer(cfg, store,
		api.WithPublisher(publisher),
		api.WithMetrics(m, registry),
		api.WithRedis(rdb),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create API server")
	}

	// WaitGroup for services
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		if err := apiServer.ListenAndServe(addr); err != nil {
			log.Fatal().Err(err).Msg("REST API server failed")
		}
	}()

	if cfg.Report.Embedded {
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
	}

	// Wait for signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received signal, shutting down")

	cancel()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.API.ShutdownTimeout)
	defer cancelShutdown()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown API server gracefully")
	}

	wg.Wait()
	if inline != nil {
		inline.Wait()
	}

	log.Info().Msg("API server stopped")
}
