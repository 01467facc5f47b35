package location

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"climateguard/models"
)

const (
	DefaultReverseGeocodeURL = "https://api.bigdatacloud.net/data/reverse-geocode-client"
	DefaultIPGeoURL          = "https://api-bdc.net/data/ip-geolocation"
)

// BigDataCloud is a reverse geocoder and IP geolocation client. Reverse
// geocoding is keyless; IP lookups send APIKey when it is set.
type BigDataCloud struct {
	ReverseURL string
	IPURL      string
	APIKey     string
	HTTP       *http.Client
}

func NewBigDataCloud(reverseURL, ipURL string) *BigDataCloud {
	if reverseURL == "" {
		reverseURL = DefaultReverseGeocodeURL
	}
	if ipURL == "" {
		ipURL = DefaultIPGeoURL
	}
	return &BigDataCloud{
		ReverseURL: reverseURL,
		IPURL:      ipURL,
		HTTP:       &http.Client{Timeout: 10 * time.Second},
	}
}

type reverseResp struct {
	City                 string `json:"city"`
	Locality             string `json:"locality"`
	PrincipalSubdivision string `json:"principalSubdivision"`
	CountryName          string `json:"countryName"`
}

// Reverse implements Geocoder.
func (c *BigDataCloud) Reverse(ctx context.Context, lat, lon float64) (models.Location, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("localityLanguage", "en")

	var out reverseResp
	if err := c.getJSON(ctx, c.ReverseURL+"?"+q.Encode(), &out); err != nil {
		return models.Location{}, err
	}
	city := orDefault(out.City, orDefault(out.Locality, "Current Location"))
	state := orDefault(out.PrincipalSubdivision, "Unknown")
	return models.Location{
		Latitude:  lat,
		Longitude: lon,
		City:      city,
		State:     state,
		Country:   orDefault(out.CountryName, "Unknown"),
		Address:   city + ", " + state,
	}, nil
}

type ipResp struct {
	Location *struct {
		Latitude             float64 `json:"latitude"`
		Longitude            float64 `json:"longitude"`
		City                 string  `json:"city"`
		PrincipalSubdivision string  `json:"principalSubdivision"`
		CountryName          string  `json:"countryName"`
	} `json:"location"`
	Country struct {
		Name string `json:"name"`
	} `json:"country"`
}

// LocateIP implements IPLocator.
func (c *BigDataCloud) LocateIP(ctx context.Context, ip string) (models.Location, error) {
	q := url.Values{}
	q.Set("ip", ip)
	q.Set("localityLanguage", "en")
	if c.APIKey != "" {
		q.Set("key", c.APIKey)
	}

	var out ipResp
	if err := c.getJSON(ctx, c.IPURL+"?"+q.Encode(), &out); err != nil {
		return models.Location{}, err
	}
	if out.Location == nil {
		return models.Location{}, fmt.Errorf("ip geolocation: no location in response")
	}
	def := models.DefaultLocation()
	l := out.Location
	lat, lon := l.Latitude, l.Longitude
	if lat == 0 && lon == 0 {
		lat, lon = def.Latitude, def.Longitude
	}
	city := orDefault(l.City, def.City)
	state := orDefault(l.PrincipalSubdivision, def.State)
	return models.Location{
		Latitude:  lat,
		Longitude: lon,
		City:      city,
		State:     state,
		Country:   orDefault(l.CountryName, orDefault(out.Country.Name, def.Country)),
		Address:   city + ", " + state,
	}, nil
}

func (c *BigDataCloud) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("bigdatacloud call failed: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("bigdatacloud non-2xx: %s, body: %s", resp.Status, string(data))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode bigdatacloud resp: %w", err)
	}
	return nil
}
