package location

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"

	"climateguard/internal/metrics"
	"climateguard/models"
)

type stubProvider struct {
	name  string
	loc   models.Location
	err   error
	delay time.Duration
	calls int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Locate(ctx context.Context) (models.Location, error) {
	s.calls++
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return models.Location{}, ctx.Err()
		}
	}
	return s.loc, s.err
}

type stubGeocoder struct {
	loc models.Location
	err error
}

func (g stubGeocoder) Reverse(_ context.Context, lat, lon float64) (models.Location, error) {
	if g.err != nil {
		return models.Location{}, g.err
	}
	l := g.loc
	l.Latitude, l.Longitude = lat, lon
	return l, nil
}

func quietLogger() logrus.FieldLogger {
	l, _ := test.NewNullLogger()
	return l
}

func TestResolver_FirstSuccessfulTierWins(t *testing.T) {
	gps := &stubProvider{name: "gps", err: ErrNoFix}
	ip := &stubProvider{name: "ip", loc: models.Location{City: "Austin", State: "TX"}}
	never := &stubProvider{name: "never", loc: models.Location{City: "Nowhere"}}

	r := NewResolver(quietLogger(), nil,
		Tier{Provider: gps, Timeout: time.Second},
		Tier{Provider: ip, Timeout: time.Second},
		Tier{Provider: never},
	)

	loc, err := r.CurrentLocation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Austin", loc.City)
	assert.Equal(t, 1, gps.calls)
	assert.Equal(t, 1, ip.calls)
	assert.Equal(t, 0, never.calls)
}

func TestResolver_CachesUntilInvalidated(t *testing.T) {
	ip := &stubProvider{name: "ip", loc: models.Location{City: "Austin"}}
	r := NewResolver(quietLogger(), nil, Tier{Provider: ip})

	_, _ = r.CurrentLocation(context.Background())
	_, _ = r.CurrentLocation(context.Background())
	assert.Equal(t, 1, ip.calls)

	cached, ok := r.Cached()
	require.True(t, ok)
	assert.Equal(t, "Austin", cached.City)

	r.Invalidate()
	_, ok = r.Cached()
	assert.False(t, ok)

	_, _ = r.CurrentLocation(context.Background())
	assert.Equal(t, 2, ip.calls)
}

func TestResolver_TimeoutFallsThrough(t *testing.T) {
	slow := &stubProvider{name: "gps", delay: time.Second, loc: models.Location{City: "Late"}}
	ip := &stubProvider{name: "ip", loc: models.Location{City: "Denver"}}
	r := NewResolver(quietLogger(), nil,
		Tier{Provider: slow, Timeout: 10 * time.Millisecond},
		Tier{Provider: ip},
	)

	loc, err := r.CurrentLocation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Denver", loc.City)
}

func TestResolver_DefaultWhenAllFail(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	r := NewResolver(quietLogger(), m,
		Tier{Provider: &stubProvider{name: "gps", err: ErrNoFix}},
		Tier{Provider: &stubProvider{name: "ip", err: errors.New("boom")}},
	)

	loc, err := r.CurrentLocation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultLocation(), loc)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LocationTiers.WithLabelValues("ip", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LocationTiers.WithLabelValues("default", "ok")))
}

func TestResolver_CancelledContextNotCached(t *testing.T) {
	ip := &stubProvider{name: "ip", loc: models.Location{City: "Austin"}}
	r := NewResolver(quietLogger(), nil, Tier{Provider: ip})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	loc, err := r.CurrentLocation(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultLocation(), loc)
	assert.Equal(t, 0, ip.calls)

	_, ok := r.Cached()
	assert.False(t, ok)
}

func TestFixProvider(t *testing.T) {
	t.Run("no fix", func(t *testing.T) {
		p := NewFixProvider("gps", nil)
		_, err := p.Locate(context.Background())
		assert.ErrorIs(t, err, ErrNoFix)
	})

	t.Run("rejects out of range", func(t *testing.T) {
		p := NewFixProvider("gps", nil)
		assert.Error(t, p.Report(91, 0))
		assert.Error(t, p.Report(0, -181))
	})

	t.Run("geocoded", func(t *testing.T) {
		p := NewFixProvider("gps", stubGeocoder{loc: models.Location{City: "Seattle", State: "WA"}})
		require.NoError(t, p.Report(47.6, -122.3))
		loc, err := p.Locate(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Seattle", loc.City)
		assert.Equal(t, 47.6, loc.Latitude)
	})

	t.Run("geocode failure keeps coordinates", func(t *testing.T) {
		p := NewFixProvider("gps", stubGeocoder{err: errors.New("down")})
		require.NoError(t, p.Report(47.6062, -122.3321))
		loc, err := p.Locate(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Current Location", loc.City)
		assert.Equal(t, "Unknown", loc.State)
		assert.Equal(t, "47.6062, -122.3321", loc.Address)
	})

	t.Run("clear", func(t *testing.T) {
		p := NewFixProvider("browser", nil)
		require.NoError(t, p.Report(1, 2))
		p.Clear()
		_, err := p.Locate(context.Background())
		assert.ErrorIs(t, err, ErrNoFix)
	})
}

func TestBigDataCloud_Reverse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "40.7", r.URL.Query().Get("latitude"))
		assert.Equal(t, "-74", r.URL.Query().Get("longitude"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"city":"","locality":"Manhattan","principalSubdivision":"New York","countryName":"United States"}`))
	}))
	defer srv.Close()

	c := NewBigDataCloud(srv.URL, srv.URL)
	loc, err := c.Reverse(context.Background(), 40.7, -74)
	require.NoError(t, err)
	assert.Equal(t, "Manhattan", loc.City)
	assert.Equal(t, "New York", loc.State)
	assert.Equal(t, "Manhattan, New York", loc.Address)
}

func TestBigDataCloud_LocateIP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1.2.3.4", r.URL.Query().Get("ip"))
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(`{"ip":"1.2.3.4","location":{"latitude":30.27,"longitude":-97.74,"city":"Austin","principalSubdivision":"Texas"},"country":{"name":"United States"}}`))
	}))
	defer srv.Close()

	c := NewBigDataCloud(srv.URL, srv.URL)
	c.APIKey = "secret"
	loc, err := c.LocateIP(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, 30.27, loc.Latitude)
	assert.Equal(t, "Austin, Texas", loc.Address)
	assert.Equal(t, "United States", loc.Country)
}

// ipCities answers IP lookups from a fixed table.
type ipCities map[string]string

func (m ipCities) LocateIP(_ context.Context, ip string) (models.Location, error) {
	city, ok := m[ip]
	if !ok {
		return models.Location{}, errors.New("unknown ip")
	}
	return models.Location{City: city, Address: city}, nil
}

func TestClientIP(t *testing.T) {
	lookup := ipCities{"203.0.113.7": "Denver", "198.51.100.4": "Boston"}
	a := NewClientIP("ip", lookup)
	b := NewClientIP("ip", lookup)
	assert.Equal(t, "ip", a.Name())

	_, err := a.Locate(context.Background())
	require.ErrorIs(t, err, ErrNoFix)

	for _, ip := range []string{"", "not-an-ip", "127.0.0.1", "10.1.2.3", "192.168.0.9", "::1", "fe80::1"} {
		assert.False(t, a.SetIP(ip), ip)
	}
	assert.Empty(t, a.IP())

	assert.True(t, a.SetIP("203.0.113.7"))
	assert.False(t, a.SetIP("203.0.113.7"))
	assert.True(t, b.SetIP("::ffff:198.51.100.4"))
	assert.Equal(t, "198.51.100.4", b.IP())

	la, err := a.Locate(context.Background())
	require.NoError(t, err)
	lb, err := b.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Denver", la.City)
	assert.Equal(t, "Boston", lb.City)
}

func TestResolver_ClientIPTier(t *testing.T) {
	p := NewClientIP("ip", ipCities{"203.0.113.7": "Denver"})
	r := NewResolver(quietLogger(), nil, Tier{Provider: p, Timeout: time.Second})

	loc, err := r.CurrentLocation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultLocation().City, loc.City)

	require.True(t, p.SetIP("203.0.113.7"))
	r.Invalidate()
	loc, err = r.CurrentLocation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Denver", loc.City)
}

func TestBigDataCloud_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewBigDataCloud(srv.URL, srv.URL)
	_, err := c.LocateIP(context.Background(), "1.2.3.4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestGoogleGeocoder_Reverse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/geocode/json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"results": [{
				"formatted_address": "Portland, OR, USA",
				"address_components": [
					{"long_name": "Portland", "short_name": "Portland", "types": ["locality", "political"]},
					{"long_name": "Oregon", "short_name": "OR", "types": ["administrative_area_level_1", "political"]},
					{"long_name": "United States", "short_name": "US", "types": ["country", "political"]}
				]
			}]
		}`))
	}))
	defer srv.Close()

	g, err := NewGoogleGeocoder("test-key", maps.WithBaseURL(srv.URL))
	require.NoError(t, err)

	loc, err := g.Reverse(context.Background(), 45.52, -122.68)
	require.NoError(t, err)
	assert.Equal(t, "Portland", loc.City)
	assert.Equal(t, "OR", loc.State)
	assert.Equal(t, "United States", loc.Country)
	assert.Equal(t, "Portland, OR, USA", loc.Address)
}

func TestGoogleGeocoder_RequiresKey(t *testing.T) {
	_, err := NewGoogleGeocoder("")
	assert.Error(t, err)
}
