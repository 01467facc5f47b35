package location

import (
	"context"
	"fmt"
	"slices"

	"googlemaps.github.io/maps"

	"climateguard/models"
)

// GoogleGeocoder reverse geocodes through the Google Maps Geocoding API.
type GoogleGeocoder struct {
	client *maps.Client
}

func NewGoogleGeocoder(apiKey string, opts ...maps.ClientOption) (*GoogleGeocoder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("google maps api key not set")
	}
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return &GoogleGeocoder{client: client}, nil
}

func (g *GoogleGeocoder) Reverse(ctx context.Context, lat, lon float64) (models.Location, error) {
	results, err := g.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: lat, Lng: lon},
	})
	if err != nil {
		return models.Location{}, fmt.Errorf("reverse geocode: %w", err)
	}
	if len(results) == 0 {
		return models.Location{}, fmt.Errorf("reverse geocode: no results for %.4f, %.4f", lat, lon)
	}

	var city, state, country string
	for _, c := range results[0].AddressComponents {
		switch {
		case city == "" && slices.Contains(c.Types, "locality"):
			city = c.LongName
		case state == "" && slices.Contains(c.Types, "administrative_area_level_1"):
			state = c.ShortName
		case country == "" && slices.Contains(c.Types, "country"):
			country = c.LongName
		}
	}
	city = orDefault(city, "Current Location")
	state = orDefault(state, "Unknown")
	return models.Location{
		Latitude:  lat,
		Longitude: lon,
		City:      city,
		State:     state,
		Country:   orDefault(country, "Unknown"),
		Address:   orDefault(results[0].FormattedAddress, city+", "+state),
	}, nil
}
