// Package cronjobs schedules the periodic climate refresh and news polling.
package cronjobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"climateguard/internal/climate"
	"climateguard/internal/news"
)

const (
	DefaultRefreshSchedule = "*/10 * * * *"
	DefaultNewsSchedule    = "*/30 * * * *"

	jobTimeout = 2 * time.Minute
)

type Config struct {
	RefreshSchedule string
	NewsSchedule    string
	Feeds           []news.Feed
}

type Jobs struct {
	log      logrus.FieldLogger
	registry *climate.Registry
	news     *news.Service
	feeds    []news.Feed
	cron     *cron.Cron
}

// New registers the jobs without starting them. The news job is only
// scheduled when feeds are configured.
func New(log logrus.FieldLogger, reg *climate.Registry, ns *news.Service, cfg Config) (*Jobs, error) {
	if cfg.RefreshSchedule == "" {
		cfg.RefreshSchedule = DefaultRefreshSchedule
	}
	if cfg.NewsSchedule == "" {
		cfg.NewsSchedule = DefaultNewsSchedule
	}

	cl := cron.PrintfLogger(log)
	j := &Jobs{
		log:      log,
		registry: reg,
		news:     ns,
		feeds:    cfg.Feeds,
		cron:     cron.New(cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
	}

	if _, err := j.cron.AddFunc(cfg.RefreshSchedule, j.run("refresh", j.RefreshAll)); err != nil {
		return nil, fmt.Errorf("schedule refresh %q: %w", cfg.RefreshSchedule, err)
	}
	if len(j.feeds) > 0 {
		if _, err := j.cron.AddFunc(cfg.NewsSchedule, j.run("news", j.PollNews)); err != nil {
			return nil, fmt.Errorf("schedule news %q: %w", cfg.NewsSchedule, err)
		}
	}
	return j, nil
}

func (j *Jobs) run(name string, fn func(context.Context) int) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		start := time.Now()
		n := fn(ctx)
		j.log.WithFields(logrus.Fields{
			"job":      name,
			"count":    n,
			"duration": time.Since(start).String(),
		}).Info("cron job finished")
	}
}

// RefreshAll re-resolves every registered user's location and refreshes
// their state. It returns how many refreshes ran.
func (j *Jobs) RefreshAll(ctx context.Context) int {
	n := 0
	err := j.registry.Each(ctx, func(a *climate.Aggregator) error {
		a.Invalidate(ctx)
		if a.Refresh(ctx) {
			n++
		}
		return nil
	})
	if err != nil {
		j.log.WithError(err).Warn("scheduled refresh interrupted")
	}
	return n
}

// PollNews ingests the configured feeds and returns how many items were new.
func (j *Jobs) PollNews(ctx context.Context) int {
	return j.news.IngestAll(ctx, j.feeds)
}

func (j *Jobs) Entries() int { return len(j.cron.Entries()) }

func (j *Jobs) Start() {
	j.log.WithField("jobs", j.Entries()).Info("starting cron jobs")
	j.cron.Start()
}

// Stop halts scheduling and waits for running jobs until ctx is done.
func (j *Jobs) Stop(ctx context.Context) {
	select {
	case <-j.cron.Stop().Done():
	case <-ctx.Done():
	}
}
