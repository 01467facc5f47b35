package location

import (
	"context"
	"fmt"
	"sync"

	"climateguard/models"
)

// Geocoder turns coordinates into a named place.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (models.Location, error)
}

// FixProvider serves the last coordinates a client reported, reverse
// geocoded on demand.
type FixProvider struct {
	name     string
	geocoder Geocoder

	mu  sync.Mutex
	fix *models.Coordinates
}

func NewFixProvider(name string, g Geocoder) *FixProvider {
	return &FixProvider{name: name, geocoder: g}
}

func (p *FixProvider) Name() string { return p.name }

// Report records a new fix.
func (p *FixProvider) Report(lat, lon float64) error {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return fmt.Errorf("coordinates out of range: %f, %f", lat, lon)
	}
	p.mu.Lock()
	p.fix = &models.Coordinates{Latitude: lat, Longitude: lon}
	p.mu.Unlock()
	return nil
}

func (p *FixProvider) Clear() {
	p.mu.Lock()
	p.fix = nil
	p.mu.Unlock()
}

func (p *FixProvider) Locate(ctx context.Context) (models.Location, error) {
	p.mu.Lock()
	fix := p.fix
	p.mu.Unlock()
	if fix == nil {
		return models.Location{}, ErrNoFix
	}
	if p.geocoder == nil {
		return coordinatesOnly(fix.Latitude, fix.Longitude), nil
	}
	loc, err := p.geocoder.Reverse(ctx, fix.Latitude, fix.Longitude)
	if err != nil {
		return coordinatesOnly(fix.Latitude, fix.Longitude), nil
	}
	return loc, nil
}

// coordinatesOnly names a fix whose reverse geocoding failed.
func coordinatesOnly(lat, lon float64) models.Location {
	return models.Location{
		Latitude:  lat,
		Longitude: lon,
		City:      "Current Location",
		State:     "Unknown",
		Country:   "Unknown",
		Address:   fmt.Sprintf("%.4f, %.4f", lat, lon),
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
