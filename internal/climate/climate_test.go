package climate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"climateguard/internal/assistant"
	"climateguard/internal/community"
	"climateguard/internal/metrics"
	"climateguard/internal/store"
	"climateguard/models"
)

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

type fakeLocator struct {
	loc         models.Location
	invalidated int
}

func (f *fakeLocator) CurrentLocation(context.Context) (models.Location, error) { return f.loc, nil }
func (f *fakeLocator) Invalidate()                                              { f.invalidated++ }

type fakeEnv struct {
	mu          sync.Mutex
	reading     models.EnvironmentalReading
	err         error
	fetches     int
	invalidated int
}

func (f *fakeEnv) Fetch(context.Context) (models.EnvironmentalReading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	return f.reading, f.err
}

func (f *fakeEnv) History(context.Context, int) ([]models.HistoricalPoint, error) {
	return []models.HistoricalPoint{{Date: "2025-07-09"}, {Date: "2025-07-10"}}, nil
}

func (f *fakeEnv) Invalidate(context.Context) { f.invalidated++ }

func (f *fakeEnv) set(r models.EnvironmentalReading, err error) {
	f.mu.Lock()
	f.reading, f.err = r, err
	f.mu.Unlock()
}

type fakeFix struct{ lat, lon float64 }

func (f *fakeFix) Report(lat, lon float64) error {
	f.lat, f.lon = lat, lon
	return nil
}

var start = time.Date(2025, time.July, 10, 9, 0, 0, 0, time.UTC)

func hotReading() models.EnvironmentalReading {
	return models.EnvironmentalReading{
		AirQuality: models.AirQuality{
			AQI:                  180,
			Status:               "Unhealthy",
			HealthRecommendation: "Everyone should reduce outdoor activities.",
		},
		Weather:  models.Weather{Temperature: 96, Humidity: 20},
		Risks:    models.ClimateRisks{Wildfire: 2},
		Location: models.DefaultLocation(),
	}
}

func testProjects() []models.CommunityProject {
	sf := models.DefaultLocation().Coordinates()
	return []models.CommunityProject{
		{ID: "open", Title: "River Cleanup Drive", Type: models.ProjectCleanup, Participants: 3, MaxParticipants: 10,
			Date: "2025-07-20", Location: "Ocean Beach", Coordinates: sf, Status: models.ProjectActive},
		{ID: "full", Title: "Urban Forest Initiative", Type: models.ProjectTreePlanting, Participants: 5, MaxParticipants: 5,
			Date: "2025-07-21", Coordinates: sf, Status: models.ProjectActive},
	}
}

type harness struct {
	clock   *clock
	store   *store.Memory
	catalog *community.Catalog
	metrics *metrics.Metrics
	env     *fakeEnv
	loc     *fakeLocator
	fix     *fakeFix
	deps    Deps
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log, _ := test.NewNullLogger()
	h := &harness{
		clock:   &clock{t: start},
		store:   store.NewMemory(),
		metrics: metrics.NewMetrics(prometheus.NewRegistry()),
		env:     &fakeEnv{reading: hotReading()},
		loc:     &fakeLocator{loc: models.DefaultLocation()},
		fix:     &fakeFix{},
	}
	h.catalog = community.NewCatalog(log,
		community.WithClock(h.clock.now),
		community.WithProjects(testProjects()...),
	)
	h.deps = Deps{Store: h.store, Catalog: h.catalog, Log: log, Metrics: h.metrics, Now: h.clock.now}
	return h
}

func (h *harness) aggregator(userID string) *Aggregator {
	return New(userID, h.deps, Sources{Location: h.loc, Environment: h.env, Fix: h.fix})
}

func (h *harness) onboarded(t *testing.T) *Aggregator {
	t.Helper()
	a := h.aggregator("u1")
	_, err := a.InitializeUser(context.Background(), "Sam")
	require.NoError(t, err)
	return a
}

func titles(alerts []models.Alert) []string {
	var out []string
	for _, a := range alerts {
		out = append(out, a.Title)
	}
	return out
}

func TestAlerts(t *testing.T) {
	at := start

	r := hotReading()
	got := Alerts(r, at)
	require.Len(t, got, 2)
	assert.Equal(t, "Unhealthy Air Quality", got[0].Title)
	assert.Equal(t, models.SeverityHigh, got[0].Severity)
	assert.Equal(t, "air-quality", got[0].Type)
	assert.Equal(t, "#ef4444", got[0].Color)
	assert.Equal(t, "AQI is 180. Everyone should reduce outdoor activities.", got[0].Message)
	assert.Equal(t, "Extreme Heat Warning", got[1].Title)
	assert.Equal(t, "weather", got[1].Type)
	assert.Contains(t, got[1].Message, "96°F")

	r.AirQuality.AQI, r.Weather.Temperature = 120, 95
	got = Alerts(r, at)
	require.Len(t, got, 1)
	assert.Equal(t, "Air Quality Advisory", got[0].Title)
	assert.Equal(t, models.SeverityModerate, got[0].Severity)
	assert.Equal(t, "#f59e0b", got[0].Color)

	r.AirQuality.AQI = 100
	assert.Empty(t, Alerts(r, at))

	r.Risks.Wildfire = 7
	assert.Empty(t, Alerts(r, at))
	r.Risks.Wildfire = 8
	got = Alerts(r, at)
	require.Len(t, got, 1)
	assert.Equal(t, "High Wildfire Risk", got[0].Title)
	assert.Equal(t, "emergency", got[0].Type)
}

func TestThrottle(t *testing.T) {
	c := &clock{t: start}
	th := NewThrottle(MinRefreshInterval, c.now)

	ok, _ := th.Begin()
	require.True(t, ok)
	ok, reason := th.Begin()
	assert.False(t, ok)
	assert.Equal(t, "busy", reason)
	th.End()

	c.advance(4 * time.Second)
	ok, reason = th.Begin()
	assert.False(t, ok)
	assert.Equal(t, "throttled", reason)

	c.advance(time.Second)
	ok, _ = th.Begin()
	assert.True(t, ok)
	th.End()
}

func TestInitializeUser(t *testing.T) {
	h := newHarness(t)
	a := h.onboarded(t)

	s := a.Snapshot()
	require.NotNil(t, s.Profile)
	assert.Equal(t, "u1", s.Profile.ID)
	assert.Equal(t, "Sam", s.Profile.Name)
	assert.Equal(t, "San Francisco, CA", s.Profile.Location)
	assert.Equal(t, "2025-07-10", s.Profile.JoinDate)
	assert.Equal(t, 1, s.Profile.Level)
	assert.Equal(t, []string{WelcomeAchievement}, s.Profile.Achievements)
	assert.True(t, s.Profile.OnboardingCompleted)

	assert.Equal(t, PhaseOnboarded, s.Phase)
	assert.True(t, s.Onboarded)
	assert.False(t, s.Loading)
	assert.Empty(t, s.Error)

	require.Len(t, s.Kit, 6)
	assert.Equal(t, "kit_1", s.Kit[0].ID)
	assert.Equal(t, "Water (1 gallon/person/day)", s.Kit[0].ItemName)
	stored, _ := h.store.Kit(context.Background(), "u1")
	assert.Len(t, stored, 6)

	require.Len(t, s.Goals, 3)
	for _, g := range s.Goals {
		assert.Equal(t, "2025-07", g.MonthYear)
		assert.False(t, g.Completed)
	}

	require.NotNil(t, s.Environment)
	assert.Equal(t, 180, s.Environment.AirQuality.AQI)
	assert.Equal(t, []string{"Unhealthy Air Quality", "Extreme Heat Warning"}, titles(s.Alerts))
	assert.Len(t, s.Projects, 2)
	require.NotNil(t, s.Stats)
	assert.Equal(t, 2, s.Stats.TotalProjects)
}

func TestInitializeUserRejectsReentry(t *testing.T) {
	h := newHarness(t)
	a := h.aggregator("u1")
	a.initing.Store(true)
	_, err := a.InitializeUser(context.Background(), "Sam")
	require.ErrorIs(t, err, ErrBusy)
}

func TestRefreshThrottled(t *testing.T) {
	h := newHarness(t)
	a := h.onboarded(t)
	ctx := context.Background()
	fetches := h.env.fetches

	h.clock.advance(2 * time.Second)
	assert.False(t, a.Refresh(ctx))
	assert.Equal(t, fetches, h.env.fetches)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Refreshes.WithLabelValues("throttled")))

	h.clock.advance(3 * time.Second)
	assert.True(t, a.Refresh(ctx))
	assert.Equal(t, fetches+1, h.env.fetches)
}

func TestRefreshKeepsStaleReadingOnFailure(t *testing.T) {
	h := newHarness(t)
	a := h.onboarded(t)

	h.env.set(models.EnvironmentalReading{}, errors.New("sensor offline"))
	h.clock.advance(MinRefreshInterval)
	require.True(t, a.Refresh(context.Background()))

	s := a.Snapshot()
	assert.Equal(t, ErrMsgEnvironment, s.Error)
	require.NotNil(t, s.Environment)
	assert.Equal(t, 180, s.Environment.AirQuality.AQI)
	assert.Len(t, s.Alerts, 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Refreshes.WithLabelValues("stale")))

	cool := hotReading()
	cool.AirQuality.AQI, cool.Weather.Temperature = 40, 70
	h.env.set(cool, nil)
	h.clock.advance(MinRefreshInterval)
	require.True(t, a.Refresh(context.Background()))
	s = a.Snapshot()
	assert.Empty(t, s.Error)
	assert.Empty(t, s.Alerts)
}

func TestDismissedAlertReturnsWhileConditionHolds(t *testing.T) {
	h := newHarness(t)
	a := h.onboarded(t)

	id := a.Snapshot().Alerts[0].ID
	assert.True(t, a.DismissAlert(id))
	assert.False(t, a.DismissAlert(id))
	assert.Equal(t, []string{"Extreme Heat Warning"}, titles(a.Snapshot().Alerts))

	h.clock.advance(MinRefreshInterval)
	require.True(t, a.Refresh(context.Background()))
	assert.Equal(t, []string{"Unhealthy Air Quality", "Extreme Heat Warning"}, titles(a.Snapshot().Alerts))
}

func TestJoinAndLeaveProject(t *testing.T) {
	h := newHarness(t)
	a := h.onboarded(t)
	ctx := context.Background()

	assert.False(t, a.JoinProject(ctx, "full"))
	full, _ := h.catalog.Project("u1", "full")
	assert.Equal(t, 5, full.Participants)

	require.True(t, a.JoinProject(ctx, "open"))
	assert.False(t, a.JoinProject(ctx, "open"))

	s := a.Snapshot()
	assert.Equal(t, []string{"open"}, s.JoinedProjects)
	assert.Equal(t, 1, s.Profile.ActionsCompleted)
	assert.Equal(t, 3.0, s.Profile.VolunteerHours)
	require.Len(t, s.Actions, 1)
	assert.Equal(t, "Joined project: River Cleanup Drive", s.Actions[0].Description)
	assert.Equal(t, models.ActionCleanup, s.Actions[0].ActionType)
	assert.Equal(t, "project joined", s.Actions[0].ImpactUnit)
	for _, p := range s.Projects {
		if p.ID == "open" {
			assert.Equal(t, 4, p.Participants)
			assert.True(t, p.IsJoined)
		}
	}

	ids, _ := h.store.Memberships(ctx, "u1")
	assert.Equal(t, []string{"open"}, ids)
	recent, _ := h.store.RecentActions(ctx, "u1")
	require.Len(t, recent, 1)
	assert.Equal(t, "cleanup", recent[0].ActionType)

	require.True(t, a.LeaveProject(ctx, "open"))
	assert.False(t, a.LeaveProject(ctx, "open"))
	s = a.Snapshot()
	assert.Empty(t, s.JoinedProjects)
	open, _ := h.catalog.Project("u1", "open")
	assert.Equal(t, 3, open.Participants)
	assert.Equal(t, 2.0, testutil.ToFloat64(h.metrics.Memberships.WithLabelValues("join", "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Memberships.WithLabelValues("leave", "ok")))
}

func TestMutationsWithoutProfile(t *testing.T) {
	h := newHarness(t)
	a := h.aggregator("nobody")
	ctx := context.Background()

	assert.False(t, a.JoinProject(ctx, "open"))
	assert.False(t, a.LeaveProject(ctx, "open"))
	assert.False(t, a.UpdateUserProfile(ctx, models.ProfileUpdate{}))
	_, ok := a.AddUserAction(ctx, models.ActionInput{ActionType: models.ActionCleanup, Description: "x"})
	assert.False(t, ok)
	assert.False(t, a.UpdateEmergencyKit(ctx, "kit_1", models.KitUpdate{}))
	_, ok = a.AddProject(ctx, models.ProjectInput{Title: "Garden"})
	assert.False(t, ok)
	assert.False(t, a.UpdateMonthlyGoals(ctx))
	assert.Empty(t, a.AIRecommendations())
	_, ok = a.Achievements("")
	assert.False(t, ok)

	open, _ := h.catalog.Project("nobody", "open")
	assert.Equal(t, 3, open.Participants)
}

func TestAddUserAction(t *testing.T) {
	h := newHarness(t)
	a := h.onboarded(t)
	ctx := context.Background()

	act, ok := a.AddUserAction(ctx, models.ActionInput{
		ActionType:  models.ActionTreePlanting,
		Description: "Planted native oak trees",
		ImpactValue: 60,
	})
	require.True(t, ok)
	assert.Equal(t, "lbs CO₂/year", act.ImpactUnit)
	assert.Equal(t, "2025-07-10", act.DateCompleted)
	assert.NotEmpty(t, act.ID)

	_, ok = a.AddUserAction(ctx, models.ActionInput{
		ActionType:  models.ActionCleanup,
		Description: "Beach cleanup",
		ImpactValue: 25,
	})
	require.True(t, ok)

	s := a.Snapshot()
	assert.Equal(t, 2, s.Profile.ActionsCompleted)
	assert.Equal(t, 60.0, s.Profile.CarbonSaved)
	require.Len(t, s.Actions, 2)
	assert.Equal(t, "Beach cleanup", s.Actions[0].Description)

	for _, g := range s.Goals {
		switch g.GoalType {
		case models.GoalCarbonSaved:
			assert.Equal(t, 60.0, g.CurrentValue)
			assert.True(t, g.Completed)
		case models.GoalActionsCompleted:
			assert.Equal(t, 2.0, g.CurrentValue)
			assert.False(t, g.Completed)
		}
	}
	saved, _ := h.store.Goals(ctx, "u1", "2025-07")
	require.Len(t, saved, 3)

	view, ok := a.Achievements("")
	require.True(t, ok)
	assert.Contains(t, view.Earned, "first_action")
	assert.Positive(t, view.TotalPoints)
	assert.NotNil(t, view.Next.NextAchievement)
	assert.Equal(t, "Milestones", view.Categories[models.CategoryMilestone])

	milestones, ok := a.Achievements(models.CategoryMilestone)
	require.True(t, ok)
	require.Len(t, milestones.Achievements, 3)
	for _, st := range milestones.Achievements {
		assert.Equal(t, models.CategoryMilestone, st.Type)
		assert.NotEmpty(t, st.RequirementText)
	}
	assert.Equal(t, view.TotalPoints, milestones.TotalPoints)
	assert.Equal(t, view.Earned, milestones.Earned)
}

func TestUpdateEmergencyKit(t *testing.T) {
	h := newHarness(t)
	a := h.onboarded(t)
	ctx := context.Background()

	done := models.KitComplete
	qty := "3 days"
	require.True(t, a.UpdateEmergencyKit(ctx, "kit_2", models.KitUpdate{Status: &done, Quantity: &qty}))
	assert.False(t, a.UpdateEmergencyKit(ctx, "kit_9", models.KitUpdate{Status: &done}))

	kit := a.Snapshot().Kit
	assert.Equal(t, models.KitComplete, kit[1].Status)
	assert.Equal(t, "3 days", kit[1].Quantity)
}

func TestAddProject(t *testing.T) {
	h := newHarness(t)
	a := h.onboarded(t)
	ctx := context.Background()

	p, ok := a.AddProject(ctx, models.ProjectInput{Title: "Pollinator Garden", Type: models.ProjectConservation})
	require.True(t, ok)
	assert.Equal(t, 1, p.Participants)
	assert.Equal(t, "Sam", p.Organizer)
	assert.True(t, p.IsJoined)

	s := a.Snapshot()
	assert.Equal(t, p.ID, s.Projects[0].ID)
	assert.Contains(t, s.JoinedProjects, p.ID)

	remote, _ := h.store.ActiveProjects(ctx)
	require.Len(t, remote, 1)
	assert.Equal(t, "Pollinator Garden", remote[0].Title)
	assert.False(t, a.JoinProject(ctx, p.ID))
}

func TestLoad(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	a := h.aggregator("ghost")
	require.ErrorIs(t, a.Load(ctx), ErrNoProfile)
	assert.Equal(t, PhaseNotOnboarded, a.Snapshot().Phase)

	_, err := h.store.CreateProfile(ctx, models.UserProfile{ID: "u2", Name: "Ada", Level: 2, ActionsCompleted: 24})
	require.NoError(t, err)
	require.NoError(t, h.store.JoinProject(ctx, models.ProjectParticipation{UserID: "u2", ProjectID: "open"}))

	b := h.aggregator("u2")
	require.NoError(t, b.Load(ctx))
	s := b.Snapshot()
	assert.Equal(t, PhaseOnboarded, s.Phase)
	assert.Equal(t, []string{"open"}, s.JoinedProjects)
	assert.Len(t, s.Kit, 6)
	require.Len(t, s.Goals, 3)
	assert.True(t, s.Goals[0].Completed)
	assert.NotNil(t, s.Environment)

	open, _ := h.catalog.Project("u2", "open")
	assert.True(t, open.IsJoined)
}

func TestReportLocationInvalidates(t *testing.T) {
	h := newHarness(t)
	a := h.onboarded(t)

	require.NoError(t, a.ReportLocation(context.Background(), 40.7, -74.0))
	assert.Equal(t, 40.7, h.fix.lat)
	assert.Equal(t, 1, h.loc.invalidated)
	assert.Equal(t, 1, h.env.invalidated)

	pts, err := a.History(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, pts, 2)
}

func TestAIRecommendationsAndChat(t *testing.T) {
	h := newHarness(t)
	a := h.onboarded(t)

	recs := a.AIRecommendations()
	assert.NotEmpty(t, recs)
	assert.LessOrEqual(t, len(recs), 6)

	resp, history := a.Chat("How is the air quality today?")
	assert.NotEmpty(t, resp.Message)
	require.Len(t, history, 2)
	assert.True(t, history[0].IsUser)
	assert.False(t, history[1].IsUser)

	_, history = a.Chat("thanks")
	assert.Len(t, history, 4)
}

func TestRegistry(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	reg := NewRegistry(h.aggregator)

	a, err := reg.Onboard(ctx, "Sam")
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len())

	got, err := reg.Get(ctx, a.UserID())
	require.NoError(t, err)
	assert.Same(t, a, got)

	_, err = reg.Get(ctx, "ghost")
	require.ErrorIs(t, err, ErrNoProfile)
	assert.Equal(t, 1, reg.Len())

	_, err = h.store.CreateProfile(ctx, models.UserProfile{ID: "u2", Name: "Ada", Level: 1})
	require.NoError(t, err)
	b, err := reg.Get(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, "u2", b.UserID())
	assert.Equal(t, 2, reg.Len())

	var seen []string
	require.NoError(t, reg.Each(ctx, func(a *Aggregator) error {
		seen = append(seen, a.UserID())
		return nil
	}))
	assert.Len(t, seen, 2)
	assert.Contains(t, seen, "u2")
}

func TestConcurrentJoinsAreAllCredited(t *testing.T) {
	h := newHarness(t)
	log, _ := test.NewNullLogger()
	sf := models.DefaultLocation().Coordinates()
	var projects []models.CommunityProject
	for i := range 20 {
		projects = append(projects, models.CommunityProject{
			ID: fmt.Sprintf("p%02d", i), Title: fmt.Sprintf("Cleanup %d", i), Type: models.ProjectCleanup,
			MaxParticipants: 50, Date: "2025-07-20", Coordinates: sf, Status: models.ProjectActive,
		})
	}
	h.catalog = community.NewCatalog(log, community.WithClock(h.clock.now), community.WithProjects(projects...))
	h.deps.Catalog = h.catalog
	a := h.onboarded(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, p := range projects {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			assert.True(t, a.JoinProject(ctx, id))
		}(p.ID)
	}
	wg.Wait()

	s := a.Snapshot()
	assert.Equal(t, 20, s.Profile.ActionsCompleted)
	assert.Equal(t, 60.0, s.Profile.VolunteerHours)
	assert.Len(t, s.Actions, 20)
	assert.Len(t, s.JoinedProjects, 20)

	stored, err := h.store.Profile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 20, stored.ActionsCompleted)
	assert.Equal(t, 60.0, stored.VolunteerHours)
}

func TestConcurrentActionsAreAllCredited(t *testing.T) {
	h := newHarness(t)
	a := h.onboarded(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 25 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := a.AddUserAction(ctx, models.ActionInput{
				ActionType:  models.ActionTreePlanting,
				Description: "Planted a tree",
				ImpactValue: 2,
			})
			assert.True(t, ok)
		}()
	}
	wg.Wait()

	p := a.Snapshot().Profile
	assert.Equal(t, 25, p.ActionsCompleted)
	assert.Equal(t, 50.0, p.CarbonSaved)
}

func TestBatchJoin(t *testing.T) {
	h := newHarness(t)
	a := h.onboarded(t)
	ctx := context.Background()

	ok, failed := a.BatchJoin(ctx, []string{"open", "full", "missing"})
	assert.Equal(t, []string{"open"}, ok)
	assert.Equal(t, []string{"full", "missing"}, failed)

	s := a.Snapshot()
	assert.Equal(t, []string{"open"}, s.JoinedProjects)
	assert.Equal(t, 1, s.Profile.ActionsCompleted)
	assert.Equal(t, 3.0, s.Profile.VolunteerHours)
	require.Len(t, s.Actions, 1)
	ids, _ := h.store.Memberships(ctx, "u1")
	assert.Equal(t, []string{"open"}, ids)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Memberships.WithLabelValues("join", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(h.metrics.Memberships.WithLabelValues("join", "rejected")))

	_, failed = h.aggregator("nobody").BatchJoin(ctx, []string{"open"})
	assert.Equal(t, []string{"open"}, failed)
}

func TestChatHistoryIsBounded(t *testing.T) {
	h := newHarness(t)
	a := h.onboarded(t)

	var history []assistant.Message
	for i := range MaxChatMessages {
		_, history = a.Chat(fmt.Sprintf("question %d", i))
	}
	require.Len(t, history, MaxChatMessages)
	assert.Equal(t, fmt.Sprintf("question %d", MaxChatMessages-MaxChatMessages/2), history[0].Text)
	assert.Equal(t, fmt.Sprintf("question %d", MaxChatMessages-1), history[len(history)-2].Text)
}

type fakeClientIP struct {
	mu  sync.Mutex
	ips []string
}

func (f *fakeClientIP) SetIP(ip string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n := len(f.ips); n > 0 && f.ips[n-1] == ip {
		return false
	}
	f.ips = append(f.ips, ip)
	return true
}

func TestRegistryHandsClientIPToAggregator(t *testing.T) {
	h := newHarness(t)
	ips := &fakeClientIP{}
	reg := NewRegistry(func(userID string) *Aggregator {
		return New(userID, h.deps, Sources{Location: h.loc, Environment: h.env, Fix: h.fix, ClientIP: ips})
	})

	a, err := reg.Onboard(WithClientIP(context.Background(), "203.0.113.7"), "Sam")
	require.NoError(t, err)
	assert.Equal(t, []string{"203.0.113.7"}, ips.ips)
	invalidated := h.loc.invalidated

	_, err = reg.Get(WithClientIP(context.Background(), "203.0.113.7"), a.UserID())
	require.NoError(t, err)
	assert.Equal(t, invalidated, h.loc.invalidated)

	_, err = reg.Get(WithClientIP(context.Background(), "198.51.100.4"), a.UserID())
	require.NoError(t, err)
	assert.Equal(t, []string{"203.0.113.7", "198.51.100.4"}, ips.ips)
	assert.Equal(t, invalidated+1, h.loc.invalidated)

	_, err = reg.Get(context.Background(), a.UserID())
	require.NoError(t, err)
	assert.Len(t, ips.ips, 2)
	assert.Empty(t, ClientIPFrom(context.Background()))
}

// gatedStore blocks the first profile read until released and fails it
// when the context it was given is done.
type gatedStore struct {
	store.Backend
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedStore) Profile(ctx context.Context, userID string) (models.UserProfile, error) {
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
	if err := ctx.Err(); err != nil {
		return models.UserProfile{}, err
	}
	return g.Backend.Profile(ctx, userID)
}

func TestRegistryLoadSurvivesFirstCallerCancel(t *testing.T) {
	h := newHarness(t)
	_, err := h.store.CreateProfile(context.Background(), models.UserProfile{ID: "u2", Name: "Ada", Level: 1})
	require.NoError(t, err)
	gs := &gatedStore{Backend: h.store, entered: make(chan struct{}), release: make(chan struct{})}
	h.deps.Store = gs
	reg := NewRegistry(h.aggregator)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := reg.Get(ctx, "u2")
		first <- err
	}()
	<-gs.entered
	cancel()
	require.ErrorIs(t, <-first, context.Canceled)

	close(gs.release)
	a, err := reg.Get(context.Background(), "u2")
	require.NoError(t, err)
	assert.Equal(t, "u2", a.UserID())
	assert.Equal(t, "Ada", a.Snapshot().Profile.Name)
	assert.Equal(t, 1, reg.Len())
}
