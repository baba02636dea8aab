package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/flownest/flownest-server/internal/config"
)

const runTimeout = 30 * time.Minute

// Scheduler runs the daily report on its cron schedule
type Scheduler struct {
	cron     *cron.Cron
	job      *DailyReport
	schedule string
}

// New registers the daily report job.
func New(cfg config.ReportConfig, job *DailyReport) (*Scheduler, error) {
	loc := cfg.Location()
	logger := cronLogger{}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	s := &Scheduler{cron: c, job: job, schedule: cfg.Schedule}
	if _, err := c.AddFunc(cfg.Schedule, s.run); err != nil {
		return nil, fmt.Errorf("schedule daily report %q: %w", cfg.Schedule, err)
	}
	return s, nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if _, err := s.job.RunOnce(ctx); err != nil {
		log.Error().Err(err).Msg("Daily report run failed")
	}
}

// Next returns the next scheduled run after now.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Start runs the scheduler until ctx is done, then waits for a running
// job to finish.
func (s *Scheduler) Start(ctx context.Context) error {
	s.cron.Start()
	log.Info().
		Str("schedule", s.schedule).
		Time("next", s.Next()).
		Msg("Daily report scheduler started")

	<-ctx.Done()

	<-s.cron.Stop().Done()
	log.Info().Msg("Daily report scheduler stopped")
	return nil
}

// cronLogger routes cron's logging to zerolog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
