package main

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"climateguard/internal/climate"
	"climateguard/internal/community"
	"climateguard/internal/cronjobs"
	"climateguard/internal/environment"
	"climateguard/internal/location"
	"climateguard/internal/logger"
	"climateguard/internal/metrics"
	"climateguard/internal/news"
	"climateguard/internal/store"
)

// Location tier timeouts: a reported device fix first, then a lookup of the
// user's own client address.
const (
	deviceTierTimeout = 8 * time.Second
	ipTierTimeout     = 5 * time.Second
)

type App struct {
	cfg      Config
	log      *logger.Logger
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	validate *validator.Validate

	store    *store.Fallback
	catalog  *community.Catalog
	env      *environment.Service
	users    *climate.Registry
	news     *news.Service
	jobs     *cronjobs.Jobs
	redis    *redis.Client
	geocoder location.Geocoder
	ip       *location.BigDataCloud
}

func newApp(ctx context.Context, cfg Config, log *logger.Logger) (*App, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(reg)

	app := &App{
		cfg:      cfg,
		log:      log,
		metrics:  m,
		gatherer: reg,
		validate: validator.New(),
	}

	var connect store.Connector
	if cfg.MongoURI != "" {
		connect = func(ctx context.Context) (store.Backend, error) {
			mg, err := store.DialMongo(ctx, cfg.MongoURI, cfg.MongoDB)
			if err != nil {
				return nil, err
			}
			return mg, nil
		}
	}
	app.store = store.NewFallback(log, m, store.NewMemory(), connect)
	// Dial now so the first request does not pay for it.
	app.store.Connected(ctx)

	envOpts := []environment.Option{}
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			log.WithError(err).Warn("redis unavailable, caching readings in process")
			_ = client.Close()
		} else {
			app.redis = client
			envOpts = append(envOpts, environment.WithCache(environment.NewRedisCache(client)))
		}
	}
	app.env = environment.NewService(log, envOpts...)

	app.ip = location.NewBigDataCloud(cfg.ReverseGeocodeURL, cfg.IPGeoURL)
	app.ip.APIKey = cfg.IPGeoAPIKey
	app.geocoder = app.ip
	if cfg.GoogleMapsAPIKey != "" {
		g, err := location.NewGoogleGeocoder(cfg.GoogleMapsAPIKey)
		if err != nil {
			return nil, err
		}
		app.geocoder = g
	}

	app.catalog = community.NewCatalog(log, community.WithRemote(app.store))
	app.users = climate.NewRegistry(app.newAggregator)
	app.news = news.NewService(log, news.WithMetrics(m))

	jobs, err := cronjobs.New(log, app.users, app.news, cronjobs.Config{
		RefreshSchedule: cfg.RefreshSchedule,
		NewsSchedule:    cfg.NewsSchedule,
		Feeds:           cfg.NewsFeeds,
	})
	if err != nil {
		return nil, err
	}
	app.jobs = jobs
	return app, nil
}

// newAggregator gives every user their own device fix, client address,
// resolver and reading cache key on top of the shared services.
func (a *App) newAggregator(userID string) *climate.Aggregator {
	log := a.log.WithUserID(userID)
	device := location.NewFixProvider("device", a.geocoder)
	client := location.NewClientIP("ip", a.ip)
	resolver := location.NewResolver(log, a.metrics,
		location.Tier{Provider: device, Timeout: deviceTierTimeout},
		location.Tier{Provider: client, Timeout: ipTierTimeout},
	)
	return climate.New(userID, climate.Deps{
		Store:   a.store,
		Catalog: a.catalog,
		Log:     a.log,
		Metrics: a.metrics,
	}, climate.Sources{
		Location:    resolver,
		Environment: a.env.Source(userID, resolver),
		Fix:         device,
		ClientIP:    client,
	})
}

func (a *App) close(ctx context.Context) {
	a.jobs.Stop(ctx)
	if err := a.store.Close(ctx); err != nil {
		a.log.WithError(err).Warn("closing store")
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
