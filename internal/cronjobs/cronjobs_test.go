package cronjobs

import (
	"context"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"climateguard/internal/climate"
	"climateguard/internal/community"
	"climateguard/internal/environment"
	"climateguard/internal/location"
	"climateguard/internal/news"
	"climateguard/internal/store"
)

const rss = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Climate Desk</title>
<item><title>Heat advisory issued</title><link>https://example.org/a</link></item>
<item><title>New solar farm online</title><link>https://example.org/b</link></item>
</channel></rss>`

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newRegistry(log logrus.FieldLogger, c *clock) *climate.Registry {
	env := environment.NewService(log,
		environment.WithClock(c.now),
		environment.WithRand(rand.New(rand.NewPCG(3, 5))),
	)
	deps := climate.Deps{
		Store:   store.NewMemory(),
		Catalog: community.NewCatalog(log, community.WithClock(c.now), community.WithRand(rand.New(rand.NewPCG(1, 2)))),
		Log:     log,
		Now:     c.now,
	}
	return climate.NewRegistry(func(userID string) *climate.Aggregator {
		resolver := location.NewResolver(log, nil)
		return climate.New(userID, deps, climate.Sources{
			Location:    resolver,
			Environment: env.Source(userID, resolver),
		})
	})
}

func TestNewSchedules(t *testing.T) {
	log, _ := test.NewNullLogger()
	c := &clock{t: time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC)}
	reg := newRegistry(log, c)
	ns := news.NewService(log)

	j, err := New(log, reg, ns, Config{})
	require.NoError(t, err)
	assert.Equal(t, 1, j.Entries())

	j, err = New(log, reg, ns, Config{Feeds: []news.Feed{{URL: "https://example.org/rss", Category: "research"}}})
	require.NoError(t, err)
	assert.Equal(t, 2, j.Entries())

	_, err = New(log, reg, ns, Config{RefreshSchedule: "every now and then"})
	require.Error(t, err)
}

func TestRefreshAll(t *testing.T) {
	log, _ := test.NewNullLogger()
	c := &clock{t: time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC)}
	reg := newRegistry(log, c)
	ctx := context.Background()

	for _, name := range []string{"Sam", "Ada"} {
		_, err := reg.Onboard(ctx, name)
		require.NoError(t, err)
	}

	j, err := New(log, reg, news.NewService(log), Config{})
	require.NoError(t, err)

	assert.Zero(t, j.RefreshAll(ctx))

	c.advance(10 * time.Minute)
	assert.Equal(t, 2, j.RefreshAll(ctx))

	require.NoError(t, reg.Each(ctx, func(a *climate.Aggregator) error {
		s := a.Snapshot()
		require.NotNil(t, s.Environment)
		assert.Equal(t, c.now(), s.Environment.LastUpdated)
		return nil
	}))
}

func TestPollNews(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rss))
	}))
	defer srv.Close()

	log, _ := test.NewNullLogger()
	c := &clock{t: time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC)}
	ns := news.NewService(log, news.WithClock(c.now))
	j, err := New(log, newRegistry(log, c), ns, Config{Feeds: news.ParseFeeds("weather_alert=" + srv.URL)})
	require.NoError(t, err)

	assert.Equal(t, 2, j.PollNews(context.Background()))
	assert.Zero(t, j.PollNews(context.Background()))
	assert.Len(t, ns.List(news.Filter{Category: "weather_alert"}), 4)
}

func TestStartStop(t *testing.T) {
	log, _ := test.NewNullLogger()
	c := &clock{t: time.Now()}
	j, err := New(log, newRegistry(log, c), news.NewService(log), Config{})
	require.NoError(t, err)

	j.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	j.Stop(ctx)
	assert.NoError(t, ctx.Err())
}
