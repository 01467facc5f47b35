package achievement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"climateguard/models"
)

func TestCatalog(t *testing.T) {
	all := All()
	require.Len(t, all, 12)

	seen := map[string]bool{}
	for _, a := range all {
		assert.False(t, seen[a.ID], a.ID)
		seen[a.ID] = true
		assert.Contains(t, Categories(), a.Type)
		assert.Positive(t, a.Requirement.Value)
	}

	all[0].Name = "mutated"
	first, ok := ByID("first_action")
	require.True(t, ok)
	assert.Equal(t, "First Action", first.Name)

	_, ok = ByID("nope")
	assert.False(t, ok)

	assert.Len(t, ByCategory(models.CategoryMilestone), 3)
	assert.Len(t, ByCategory(models.CategoryActionSpecific), 3)
}

func TestFirstActionEarnedAtOne(t *testing.T) {
	a, _ := ByID("first_action")
	assert.False(t, Earned(a, Stats{StatActionsCompleted: 0}))
	assert.True(t, Earned(a, Stats{StatActionsCompleted: 1}))
	assert.False(t, Earned(a, Stats{}))
}

func TestEligibleIsMonotonic(t *testing.T) {
	keys := []string{
		StatActionsCompleted, StatCarbonSaved, StatVolunteerHours, StatProjectsJoined,
		StatTreePlantingActions, StatDailyStreak, StatMeasurementsLogged,
	}
	for _, key := range keys {
		prev := map[string]bool{}
		for v := 0.0; v <= 120; v++ {
			now := map[string]bool{}
			for _, a := range Eligible(Stats{key: v}) {
				now[a.ID] = true
			}
			for id := range prev {
				assert.True(t, now[id], "%s un-earned at %s=%v", id, key, v)
			}
			prev = now
		}
	}
}

func TestNext(t *testing.T) {
	stats := Stats{StatActionsCompleted: 8, StatProjectsJoined: 2}

	// eco_warrior gap 2 vs community_builder gap 1
	next, ok := Next(stats, nil)
	require.True(t, ok)
	assert.Equal(t, "community_builder", next.ID)

	next, ok = Next(stats, []string{"community_builder"})
	require.True(t, ok)
	assert.Equal(t, "eco_warrior", next.ID)

	// ties resolve to catalog order
	next, _ = Next(Stats{StatTreePlantingActions: 4, StatCleanupActions: 4}, nil)
	assert.Equal(t, "first_action", next.ID)
	next, _ = Next(Stats{StatActionsCompleted: 1000, StatTreePlantingActions: 4, StatCleanupActions: 4, StatProjectsJoined: 2, StatDailyStreak: 6, StatUsersMentored: 4, StatMeasurementsLogged: 19, StatEnergySavingActions: 4}, nil)
	assert.Equal(t, "tree_hugger", next.ID)

	done := Stats{}
	for _, a := range All() {
		done[a.Requirement.Type] = 1e6
	}
	_, ok = Next(done, nil)
	assert.False(t, ok)
}

func TestProgress(t *testing.T) {
	a, _ := ByID("carbon_saver")
	assert.InDelta(t, 25, Progress(a, Stats{StatCarbonSaved: 25}), 1e-9)
	assert.Equal(t, 100.0, Progress(a, Stats{StatCarbonSaved: 400}))
	assert.Zero(t, Progress(a, Stats{}))

	p := ProgressToNext(Stats{StatActionsCompleted: 5}, []string{"first_action"})
	require.NotNil(t, p.NextAchievement)
	assert.Equal(t, "eco_warrior", p.NextAchievement.ID)
	assert.InDelta(t, 50, p.Progress, 1e-9)
	assert.Equal(t, 5.0, p.Remaining)
}

func TestProgressToNext_AllDone(t *testing.T) {
	done := Stats{}
	for _, a := range All() {
		done[a.Requirement.Type] = 1e6
	}
	p := ProgressToNext(done, nil)
	assert.Nil(t, p.NextAchievement)
	assert.Equal(t, 100.0, p.Progress)
	assert.Zero(t, p.Remaining)
}

func TestEvaluateAndPoints(t *testing.T) {
	stats := Stats{StatActionsCompleted: 10, StatCarbonSaved: 150}
	view := Evaluate(stats)
	require.Len(t, view, 12)

	var earned []models.Achievement
	for _, s := range view {
		assert.Equal(t, FormatRequirement(s.Achievement), s.RequirementText)
		if s.Earned {
			earned = append(earned, s.Achievement)
			assert.Equal(t, 100.0, s.Progress)
		}
	}
	assert.Equal(t, []string{"first_action", "eco_warrior", "carbon_saver"}, EarnedIDs(stats))
	assert.Equal(t, 10+50+75, TotalPoints(earned))
}

func TestFormatRequirement(t *testing.T) {
	cases := map[string]string{
		"eco_warrior":       "Complete 10 actions",
		"carbon_saver":      "Save 100 lbs of CO₂",
		"volunteer_hero":    "Volunteer for 50 hours",
		"community_builder": "Join 3 projects",
		"streak_master":     "7 day streak",
		"impact_tracker":    "Reach 20",
	}
	for id, want := range cases {
		a, ok := ByID(id)
		require.True(t, ok)
		assert.Equal(t, want, FormatRequirement(a), id)
	}
}

func TestCollect(t *testing.T) {
	p := models.UserProfile{ActionsCompleted: 4, VolunteerHours: 6, CarbonSaved: 30, Level: 1}
	actions := []models.UserAction{
		{ActionType: models.ActionTreePlanting, ImpactValue: 30, DateCompleted: "2025-07-01"},
		{ActionType: models.ActionTreePlanting, DateCompleted: "2025-07-02"},
		{ActionType: models.ActionCleanup, ImpactValue: 1, DateCompleted: "2025-07-03"},
		{ActionType: models.ActionEnergySaving, ImpactValue: 2, DateCompleted: "2025-07-09"},
	}
	s := Collect(p, actions, 2)

	assert.Equal(t, 4.0, s[StatActionsCompleted])
	assert.Equal(t, 6.0, s[StatVolunteerHours])
	assert.Equal(t, 30.0, s[StatCarbonSaved])
	assert.Equal(t, 2.0, s[StatProjectsJoined])
	assert.Equal(t, 2.0, s[StatTreePlantingActions])
	assert.Equal(t, 1.0, s[StatCleanupActions])
	assert.Equal(t, 1.0, s[StatEnergySavingActions])
	assert.Equal(t, 3.0, s[StatMeasurementsLogged])
	assert.Equal(t, 3.0, s[StatDailyStreak])
	assert.Zero(t, s[StatUsersMentored])
}

func TestLongestStreak(t *testing.T) {
	mk := func(dates ...string) []models.UserAction {
		var out []models.UserAction
		for _, d := range dates {
			out = append(out, models.UserAction{DateCompleted: d})
		}
		return out
	}
	assert.Zero(t, LongestStreak(nil))
	assert.Equal(t, 1, LongestStreak(mk("2025-01-05", "bad")))
	assert.Equal(t, 2, LongestStreak(mk("2025-02-28", "2025-03-01", "2025-03-01")))
	assert.Equal(t, 3, LongestStreak(mk("2025-01-10", "2024-12-31", "2025-01-01", "2025-01-02", "2025-01-12")))
}

func TestDefaultGoals(t *testing.T) {
	now := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	goals := DefaultGoals("u1", now)
	require.Len(t, goals, 3)
	for _, g := range goals {
		assert.Equal(t, "2025-03", g.MonthYear)
		assert.Equal(t, "u1", g.UserID)
		assert.NotEmpty(t, g.ID)
		assert.False(t, g.Completed)
	}
	assert.Equal(t, models.GoalActionsCompleted, goals[0].GoalType)
	assert.Equal(t, 10.0, goals[0].TargetValue)
	assert.Equal(t, 20.0, goals[1].TargetValue)
	assert.Equal(t, "lbs CO₂", goals[2].Unit)
}

func TestProjectGoals_CompletedIffReached(t *testing.T) {
	goals := DefaultGoals("u1", time.Now())
	for _, tc := range []struct {
		profile models.UserProfile
		want    []bool
	}{
		{models.UserProfile{}, []bool{false, false, false}},
		{models.UserProfile{ActionsCompleted: 10, VolunteerHours: 19.5, CarbonSaved: 50}, []bool{true, false, true}},
		{models.UserProfile{ActionsCompleted: 25, VolunteerHours: 40, CarbonSaved: 49}, []bool{true, true, false}},
	} {
		got := ProjectGoals(goals, tc.profile)
		for i, g := range got {
			assert.Equal(t, tc.want[i], g.Completed, "%s", g.GoalType)
			assert.Equal(t, g.CurrentValue >= g.TargetValue, g.Completed)
		}
	}
	assert.Equal(t, 25.0, ProjectGoals(goals, models.UserProfile{ActionsCompleted: 25})[0].CurrentValue)
}
