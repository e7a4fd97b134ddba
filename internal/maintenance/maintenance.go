// Package maintenance runs the periodic housekeeping jobs: currently a daily
// prune of old delivery log entries.
package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/shaharia-lab/formrelay/internal/storage"
)

// Config holds the maintenance job configuration.
type Config struct {
	Store     storage.DeliveryStore
	Retention time.Duration
	Interval  time.Duration // defaults to 24h
	Logger    *slog.Logger
}

// Runner owns the gocron scheduler for housekeeping jobs.
type Runner struct {
	cron gocron.Scheduler
	cfg  Config
}

// New creates a Runner with the prune job registered but not started.
func New(cfg Config) (*Runner, error) {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}

	cron, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("creating scheduler: %w", err)
	}

	r := &Runner{cron: cron, cfg: cfg}
	if _, err := cron.NewJob(
		gocron.DurationJob(cfg.Interval),
		gocron.NewTask(r.pruneDeliveries),
	); err != nil {
		return nil, fmt.Errorf("registering prune job: %w", err)
	}
	return r, nil
}

// Start begins running the registered jobs.
func (r *Runner) Start() {
	r.cron.Start()
}

// Stop shuts the scheduler down, waiting for a running job to finish.
func (r *Runner) Stop() {
	if err := r.cron.Shutdown(); err != nil {
		r.cfg.Logger.Warn("maintenance scheduler shutdown", "error", err)
	}
}

// pruneDeliveries removes delivery log entries older than the retention.
func (r *Runner) pruneDeliveries() {
	cutoff := time.Now().UTC().Add(-r.cfg.Retention)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := r.cfg.Store.PruneDeliveries(ctx, cutoff)
	if err != nil {
		r.cfg.Logger.Error("delivery log prune failed", "error", err)
		return
	}
	if n > 0 {
		r.cfg.Logger.Info("pruned delivery log", "removed", n, "cutoff", cutoff)
	}
}
