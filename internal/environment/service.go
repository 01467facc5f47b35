// Package environment synthesizes air quality, weather and climate risk
// readings for a location and caches them per user.
package environment

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"climateguard/models"
)

const (
	CacheTTL           = 5 * time.Minute
	DefaultHistoryDays = 7
	MaxHistoryDays     = 90
)

// Locator resolves the location a reading is generated for.
type Locator interface {
	CurrentLocation(ctx context.Context) (models.Location, error)
}

type Service struct {
	cache Cache
	ttl   time.Duration
	now   func() time.Time
	log   logrus.FieldLogger

	mu  sync.Mutex // guards rng
	rng Rand
}

type Option func(*Service)

func WithCache(c Cache) Option              { return func(s *Service) { s.cache = c } }
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }
func WithRand(r Rand) Option                { return func(s *Service) { s.rng = r } }
func WithTTL(d time.Duration) Option        { return func(s *Service) { s.ttl = d } }

func NewService(log logrus.FieldLogger, opts ...Option) *Service {
	s := &Service{
		ttl: CacheTTL,
		now: time.Now,
		log: log,
	}
	for _, o := range opts {
		o(s)
	}
	if s.cache == nil {
		s.cache = NewMemoryCache(s.now)
	}
	if s.rng == nil {
		seed := uint64(s.now().UnixNano())
		s.rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return s
}

// Reading returns the cached reading for key or generates a fresh one for the
// located position. A location failure falls back to the default location;
// only a cancelled context is reported as an error.
func (s *Service) Reading(ctx context.Context, key string, loc Locator) (models.EnvironmentalReading, error) {
	if r, ok, err := s.cache.Get(ctx, key); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("environment cache read failed")
	} else if ok {
		return r, nil
	}

	where, err := loc.CurrentLocation(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return models.EnvironmentalReading{}, ctx.Err()
		}
		s.log.WithError(err).Warn("location unavailable, generating reading for default location")
		return s.generate(models.DefaultLocation()), nil
	}

	r := s.generate(where)
	if err := s.cache.Set(ctx, key, r, s.ttl); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("environment cache write failed")
	}
	return r, nil
}

// Invalidate drops the cached reading for key.
func (s *Service) Invalidate(ctx context.Context, key string) {
	if err := s.cache.Delete(ctx, key); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("environment cache delete failed")
	}
}

// History returns one synthesized point per day for the last days days,
// oldest first.
func (s *Service) History(ctx context.Context, loc Locator, days int) ([]models.HistoricalPoint, error) {
	if days <= 0 {
		days = DefaultHistoryDays
	}
	if days > MaxHistoryDays {
		days = MaxHistoryDays
	}
	where, err := loc.CurrentLocation(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		where = models.DefaultLocation()
	}

	now := s.now()
	out := make([]models.HistoricalPoint, 0, days)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := days - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		air, weather := Synthesize(where, day, s.rng)
		out = append(out, models.HistoricalPoint{
			Date:        day.Format("2006-01-02"),
			AQI:         air.AQI,
			Temperature: weather.Temperature,
			Humidity:    weather.Humidity,
		})
	}
	return out, nil
}

func (s *Service) generate(where models.Location) models.EnvironmentalReading {
	now := s.now()
	s.mu.Lock()
	air, weather := Synthesize(where, now, s.rng)
	s.mu.Unlock()
	return models.EnvironmentalReading{
		AirQuality:  air,
		Weather:     weather,
		Risks:       Risks(weather, air),
		Location:    where,
		LastUpdated: now,
	}
}

// Source binds the service to one user's cache key and locator.
type Source struct {
	svc *Service
	key string
	loc Locator
}

func (s *Service) Source(key string, loc Locator) *Source {
	return &Source{svc: s, key: key, loc: loc}
}

func (src *Source) Fetch(ctx context.Context) (models.EnvironmentalReading, error) {
	return src.svc.Reading(ctx, src.key, src.loc)
}

func (src *Source) History(ctx context.Context, days int) ([]models.HistoricalPoint, error) {
	return src.svc.History(ctx, src.loc, days)
}

func (src *Source) Invalidate(ctx context.Context) { src.svc.Invalidate(ctx, src.key) }
