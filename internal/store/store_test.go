package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"climateguard/internal/metrics"
	"climateguard/models"
)

var (
	errBoom = errors.New("connection reset")
	day     = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
)

func ptr[T any](v T) *T { return &v }

// flaky is a remote backend whose overridden methods fail while down is set.
type flaky struct {
	*Memory
	down atomic.Bool
}

func (f *flaky) Profile(ctx context.Context, id string) (models.UserProfile, error) {
	if f.down.Load() {
		return models.UserProfile{}, errBoom
	}
	return f.Memory.Profile(ctx, id)
}

func (f *flaky) AddAction(ctx context.Context, a models.UserAction) error {
	if f.down.Load() {
		return errBoom
	}
	return f.Memory.AddAction(ctx, a)
}

func (f *flaky) ActiveProjects(ctx context.Context) ([]models.CommunityProject, error) {
	if f.down.Load() {
		return nil, errBoom
	}
	return f.Memory.ActiveProjects(ctx)
}

func TestMemoryProfiles(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	p, err := m.CreateProfile(ctx, models.UserProfile{Name: "Sam", Level: 1, Achievements: []string{"Welcome to ClimateGuard!"}})
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)

	_, err = m.CreateProfile(ctx, p)
	require.ErrorIs(t, err, ErrDuplicate)

	_, err = m.Profile(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	up, err := m.UpdateProfile(ctx, p.ID, models.ProfileUpdate{ActionsCompleted: ptr(42)}, day)
	require.NoError(t, err)
	assert.Equal(t, 4, up.Level)
	assert.Equal(t, day, up.UpdatedAt)

	_, err = m.UpdateProfile(ctx, "missing", models.ProfileUpdate{}, day)
	require.ErrorIs(t, err, ErrNotFound)

	got, err := m.Profile(ctx, p.ID)
	require.NoError(t, err)
	got.Achievements[0] = "mutated"
	again, _ := m.Profile(ctx, p.ID)
	assert.Equal(t, "Welcome to ClimateGuard!", again.Achievements[0])
}

func TestMemoryProfilesLeaderboard(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for i, lvl := range []int{2, 5, 3, 5} {
		_, err := m.CreateProfile(ctx, models.UserProfile{ID: fmt.Sprintf("u%d", i), Level: lvl, ActionsCompleted: lvl*10 + i})
		require.NoError(t, err)
	}

	all, err := m.Profiles(ctx, 0)
	require.NoError(t, err)
	var ids []string
	for _, p := range all {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"u3", "u1", "u2", "u0"}, ids)

	top, err := m.Profiles(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, top, 2)
}

func TestMemoryActions(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for i := range 60 {
		require.NoError(t, m.AddAction(ctx, models.UserAction{
			UserID:        "u1",
			ActionType:    models.ActionCleanup,
			DateCompleted: day.AddDate(0, 0, -i).Format("2006-01-02"),
		}))
	}
	require.NoError(t, m.AddAction(ctx, models.UserAction{UserID: "u2"}))

	got, err := m.Actions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, MaxActions)
	assert.Equal(t, "2025-06-15", got[0].DateCompleted)
	assert.NotEmpty(t, got[0].ID)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].DateCompleted, got[i].DateCompleted)
	}
}

func TestMemoryRecentActionsKeepsTen(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for i := range 12 {
		require.NoError(t, m.AddRecentAction(ctx, models.RecentAction{
			UserID:      "u1",
			Description: fmt.Sprintf("action %d", i),
			CreatedAt:   day.Add(time.Duration(i) * time.Minute),
		}))
	}
	got, err := m.RecentActions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, MaxRecentActions)
	assert.Equal(t, "action 11", got[0].Description)
	assert.Equal(t, "action 2", got[9].Description)
}

func TestMemoryParticipation(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.JoinProject(ctx, models.ProjectParticipation{UserID: "u1", ProjectID: "p1", JoinedAt: day}))
	require.NoError(t, m.JoinProject(ctx, models.ProjectParticipation{UserID: "u1", ProjectID: "p2", JoinedAt: day}))
	require.ErrorIs(t, m.JoinProject(ctx, models.ProjectParticipation{UserID: "u1", ProjectID: "p1"}), ErrDuplicate)

	ids, err := m.Memberships(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, ids)

	require.NoError(t, m.LeaveProject(ctx, "u1", "p1"))
	require.ErrorIs(t, m.LeaveProject(ctx, "u1", "p1"), ErrNotFound)

	ids, _ = m.Memberships(ctx, "u1")
	assert.Equal(t, []string{"p2"}, ids)
	parts, _ := m.Participations(ctx, "u1")
	require.Len(t, parts, 1)
	assert.Equal(t, "p2", parts[0].ProjectID)
}

func TestMemoryKit(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.SaveKit(ctx, []models.EmergencyKitItem{
		{ID: "kit_2", UserID: "u1", ItemName: "Food", Status: models.KitIncomplete},
		{ID: "kit_1", UserID: "u1", ItemName: "Water", Status: models.KitComplete},
		{ID: "kit_1", UserID: "u2", ItemName: "Water", Status: models.KitComplete},
	}))

	kit, err := m.Kit(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, kit, 2)
	assert.Equal(t, "kit_1", kit[0].ID)

	it, err := m.UpdateKitItem(ctx, "u1", "kit_2", models.KitUpdate{Status: ptr(models.KitComplete), Quantity: ptr("3 days")}, day)
	require.NoError(t, err)
	assert.Equal(t, models.KitComplete, it.Status)
	assert.Equal(t, "3 days", it.Quantity)
	assert.Equal(t, day, it.LastUpdated)

	_, err = m.UpdateKitItem(ctx, "u1", "kit_9", models.KitUpdate{}, day)
	require.ErrorIs(t, err, ErrNotFound)

	other, _ := m.Kit(ctx, "u2")
	assert.Equal(t, models.KitComplete, other[0].Status)
}

func TestMemoryGoals(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	g := models.MonthlyGoal{ID: "g1", UserID: "u1", GoalType: models.GoalActionsCompleted, TargetValue: 10, MonthYear: "2025-06"}
	old := models.MonthlyGoal{ID: "g0", UserID: "u1", GoalType: models.GoalActionsCompleted, TargetValue: 10, MonthYear: "2025-05"}
	require.NoError(t, m.SaveGoals(ctx, []models.MonthlyGoal{g, old}))

	g.CurrentValue, g.Completed = 12, true
	require.NoError(t, m.SaveGoals(ctx, []models.MonthlyGoal{g}))

	got, err := m.Goals(ctx, "u1", "2025-06")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 12.0, got[0].CurrentValue)
	assert.True(t, got[0].Completed)
}

func TestMemoryProjects(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.AddProject(ctx, models.CommunityProject{ID: "a", Status: models.ProjectActive, IsJoined: true, Distance: 3}))
	require.NoError(t, m.AddProject(ctx, models.CommunityProject{ID: "b", Status: models.ProjectCancelled}))
	require.NoError(t, m.AddProject(ctx, models.CommunityProject{ID: "c", Status: models.ProjectActive}))
	require.ErrorIs(t, m.AddProject(ctx, models.CommunityProject{ID: "a"}), ErrDuplicate)

	got, err := m.ActiveProjects(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].ID)
	assert.False(t, got[1].IsJoined)
	assert.Zero(t, got[1].Distance)
}

func TestFallbackWithoutConnectorUsesMirror(t *testing.T) {
	ctx := context.Background()
	log, _ := test.NewNullLogger()
	mirror := NewMemory()
	f := NewFallback(log, nil, mirror, nil)

	p, err := f.CreateProfile(ctx, models.UserProfile{Name: "Sam"})
	require.NoError(t, err)
	assert.False(t, f.Connected(ctx))

	got, err := mirror.Profile(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sam", got.Name)
	require.NoError(t, f.Close(ctx))
}

func TestFallbackConnectsOnce(t *testing.T) {
	ctx := context.Background()
	log, _ := test.NewNullLogger()
	var dials atomic.Int32
	f := NewFallback(log, nil, nil, func(context.Context) (Backend, error) {
		dials.Add(1)
		return nil, errBoom
	})

	for range 3 {
		_, err := f.Profiles(ctx, 10)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), dials.Load())
	assert.False(t, f.Connected(ctx))
}

func TestFallbackAnswersFromMirrorOnRemoteFailure(t *testing.T) {
	ctx := context.Background()
	log, _ := test.NewNullLogger()
	m := metrics.NewMetrics(prometheus.NewRegistry())
	remote := &flaky{Memory: NewMemory()}
	mirror := NewMemory()
	f := NewFallback(log, m, mirror, func(context.Context) (Backend, error) { return remote, nil })
	require.True(t, f.Connected(ctx))

	require.NoError(t, f.AddAction(ctx, models.UserAction{UserID: "u1", Description: "remote"}))
	onRemote, _ := remote.Actions(ctx, "u1")
	assert.Len(t, onRemote, 1)
	onMirror, _ := mirror.Actions(ctx, "u1")
	assert.Empty(t, onMirror)

	remote.down.Store(true)
	require.NoError(t, f.AddAction(ctx, models.UserAction{UserID: "u1", Description: "mirror"}))
	onMirror, _ = mirror.Actions(ctx, "u1")
	require.Len(t, onMirror, 1)
	assert.Equal(t, "mirror", onMirror[0].Description)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreFallbacks.WithLabelValues("add_action")))

	require.NoError(t, mirror.AddProject(ctx, models.CommunityProject{ID: "p1", Status: models.ProjectActive}))
	projects, err := f.ActiveProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "p1", projects[0].ID)
}

func TestFallbackNotFoundIsAnAnswer(t *testing.T) {
	ctx := context.Background()
	log, _ := test.NewNullLogger()
	m := metrics.NewMetrics(prometheus.NewRegistry())
	remote := &flaky{Memory: NewMemory()}
	mirror := NewMemory()
	_, err := mirror.CreateProfile(ctx, models.UserProfile{ID: "u1"})
	require.NoError(t, err)

	f := NewFallback(log, m, mirror, func(context.Context) (Backend, error) { return remote, nil })
	_, err = f.Profile(ctx, "u1")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, testutil.ToFloat64(m.StoreFallbacks.WithLabelValues("profile")))

	require.NoError(t, f.JoinProject(ctx, models.ProjectParticipation{UserID: "u1", ProjectID: "p1"}))
	require.ErrorIs(t, f.JoinProject(ctx, models.ProjectParticipation{UserID: "u1", ProjectID: "p1"}), ErrDuplicate)
	ids, _ := mirror.Memberships(ctx, "u1")
	assert.Empty(t, ids)
}

func TestMongoBackend(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	m, err := DialMongo(ctx, uri, "climateguard_test_"+uuid.NewString()[:8])
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = m.db.Drop(context.Background())
		_ = m.Close(context.Background())
	})

	p, err := m.CreateProfile(ctx, models.UserProfile{Name: "Sam", Level: 1})
	require.NoError(t, err)
	up, err := m.UpdateProfile(ctx, p.ID, models.ProfileUpdate{ActionsCompleted: ptr(25)}, day)
	require.NoError(t, err)
	assert.Equal(t, 2, up.Level)
	_, err = m.Profile(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.JoinProject(ctx, models.ProjectParticipation{UserID: p.ID, ProjectID: "p1", JoinedAt: day}))
	require.ErrorIs(t, m.JoinProject(ctx, models.ProjectParticipation{UserID: p.ID, ProjectID: "p1", JoinedAt: day}), ErrDuplicate)
	ids, err := m.Memberships(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, ids)
	require.NoError(t, m.LeaveProject(ctx, p.ID, "p1"))
	require.ErrorIs(t, m.LeaveProject(ctx, p.ID, "p1"), ErrNotFound)

	require.NoError(t, m.SaveKit(ctx, []models.EmergencyKitItem{{ID: "kit_1", UserID: p.ID, ItemName: "Water", Status: models.KitIncomplete}}))
	it, err := m.UpdateKitItem(ctx, p.ID, "kit_1", models.KitUpdate{Status: ptr(models.KitComplete)}, day)
	require.NoError(t, err)
	assert.Equal(t, models.KitComplete, it.Status)

	require.NoError(t, m.AddProject(ctx, models.CommunityProject{ID: "p9", Title: "Cleanup", Status: models.ProjectActive}))
	projects, err := m.ActiveProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Cleanup", projects[0].Title)
}
