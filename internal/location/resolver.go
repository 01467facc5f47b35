// Package location resolves a user's position through an ordered chain of
// sources: reported device fixes, IP geolocation, then a fixed default.
package location

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"climateguard/internal/metrics"
	"climateguard/models"
)

var ErrNoFix = errors.New("location: no fix reported")

// Provider is one resolution tier.
type Provider interface {
	Name() string
	Locate(ctx context.Context) (models.Location, error)
}

// Tier bounds a provider with its own timeout.
type Tier struct {
	Provider Provider
	Timeout  time.Duration
}

// Resolver walks its tiers in order and caches the first success until
// Invalidate is called. It never fails: the default location closes the chain.
type Resolver struct {
	tiers   []Tier
	log     logrus.FieldLogger
	metrics *metrics.Metrics

	mu     sync.Mutex
	cached *models.Location
}

func NewResolver(log logrus.FieldLogger, m *metrics.Metrics, tiers ...Tier) *Resolver {
	return &Resolver{tiers: tiers, log: log, metrics: m}
}

func (r *Resolver) CurrentLocation(ctx context.Context) (models.Location, error) {
	r.mu.Lock()
	if r.cached != nil {
		loc := *r.cached
		r.mu.Unlock()
		return loc, nil
	}
	r.mu.Unlock()

	for _, t := range r.tiers {
		loc, err := r.try(ctx, t)
		if err != nil {
			if !errors.Is(err, ErrNoFix) {
				r.log.WithError(err).WithField("tier", t.Provider.Name()).Info("location tier failed, trying next")
			}
			r.metrics.ObserveLocation(t.Provider.Name(), "failed")
			continue
		}
		r.metrics.ObserveLocation(t.Provider.Name(), "ok")
		r.store(loc)
		return loc, nil
	}

	def := models.DefaultLocation()
	r.metrics.ObserveLocation("default", "ok")
	if ctx.Err() == nil {
		r.store(def)
	}
	return def, nil
}

func (r *Resolver) try(ctx context.Context, t Tier) (models.Location, error) {
	if err := ctx.Err(); err != nil {
		return models.Location{}, err
	}
	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}
	return t.Provider.Locate(ctx)
}

func (r *Resolver) store(loc models.Location) {
	r.mu.Lock()
	r.cached = &loc
	r.mu.Unlock()
}

// Cached returns the last resolved location without resolving.
func (r *Resolver) Cached() (models.Location, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cached == nil {
		return models.Location{}, false
	}
	return *r.cached, true
}

// Invalidate forces the next CurrentLocation call to walk the tiers again.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	r.cached = nil
	r.mu.Unlock()
}
