// Package bootstrap wires configuration into the shared dependencies of the
// FlowNest binaries.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/flownest/flownest-server/internal/config"
	"github.com/flownest/flownest-server/internal/integration"
	"github.com/flownest/flownest-server/internal/metrics"
	"github.com/flownest/flownest-server/internal/storage"
)

// SetupLogging configures the global zerolog logger. Console output is used
// unless the format is "json".
func SetupLogging(cfg config.LogConfig, service string) {
	setupLogging(os.Stderr, cfg, service)
}

func setupLogging(out io.Writer, cfg config.LogConfig, service string) {
	zerolog.TimeFieldFormat = time.RFC3339

	var w io.Writer = out
	if cfg.Format != "json" {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Str("service", service).Logger()

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

// OpenStore connects to PostgreSQL, applying migrations when configured.
// Without a DSN an in-memory store is returned; nothing it holds survives a
// restart.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig) (storage.Store, error) {
	if cfg.DSN == "" {
		log.Warn().Msg("No database configured, using in-memory store")
		return storage.NewMemoryStore(), nil
	}

	store, err := storage.NewPostgresStore(cfg)
	if err != nil {
		return nil, err
	}
	log.Info().Msg("Connected to database")

	if cfg.AutoMigrate {
		results, err := storage.Migrate(ctx, store.DB())
		if err != nil {
			store.Close()
			return nil, err
		}
		log.Info().Int("applied", len(results)).Msg("Database migrations applied")
	}
	return store, nil
}

// ConnectNATS dials the event bus. It returns nil without error when no URL
// is configured.
func ConnectNATS(cfg config.NATSConfig, name string) (*nats.Conn, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	log.Info().Str("url", cfg.URL).Msg("Connecting to NATS...")

	opts := []nats.Option{
		nats.Name(name),
		nats.ReconnectWait(cfg.ReconnectInterval),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn().Err(err).Msg("Disconnected from NATS")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Msg("Reconnected to NATS")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			ev := log.Error().Err(err)
			if sub != nil {
				ev = ev.Str("subject", sub.Subject)
			}
			ev.Msg("NATS error")
		}),
	}
	if cfg.Username != "" {
		opts = append(opts, nats.UserInfo(cfg.Username, cfg.Password))
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", cfg.URL, err)
	}
	log.Info().Msg("Connected to NATS")
	return nc, nil
}

// ConnectRedis returns a pinged client, or nil when no address is set.
func ConnectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	log.Info().Str("addr", cfg.Addr).Msg("Connected to Redis")
	return client, nil
}

// NewMetrics registers the application collectors together with the Go
// runtime and process collectors on a fresh registry.
func NewMetrics() (*metrics.Metrics, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return metrics.New(reg), reg
}

// NewDispatcher builds the notification dispatcher with the configured mail
// transport and, when a broker is set, the MQTT push channel. The returned
// func releases the broker connection.
func NewDispatcher(cfg *config.Config, store integration.Store, m *metrics.Metrics) (*integration.Dispatcher, func()) {
	opts := []integration.DispatcherOption{
		integration.WithTrialDays(int(cfg.Subscription.TrialPeriod / (24 * time.Hour))),
	}
	cleanup := func() {}

	if cfg.MQTT.Broker != "" {
		pusher, err := integration.NewMQTTPusher(cfg.MQTT)
		if err != nil {
			log.Warn().Err(err).Msg("MQTT unavailable, realtime push disabled")
		} else {
			opts = append(opts, integration.WithPusher(pusher))
			cleanup = pusher.Close
		}
	}

	return integration.NewDispatcher(store, integration.NewMailer(cfg.Mail), m, opts...), cleanup
}
