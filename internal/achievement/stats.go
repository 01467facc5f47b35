package achievement

import (
	"slices"
	"time"

	"climateguard/models"
)

// Stat keys a requirement can name.
const (
	StatActionsCompleted    = "actions_completed"
	StatVolunteerHours      = "volunteer_hours"
	StatCarbonSaved         = "carbon_saved"
	StatLevel               = "level"
	StatTreePlantingActions = "tree_planting_actions"
	StatCleanupActions      = "cleanup_actions"
	StatEnergySavingActions = "energy_saving_actions"
	StatProjectsJoined      = "projects_joined"
	StatUsersMentored       = "users_mentored"
	StatDailyStreak         = "daily_streak"
	StatMeasurementsLogged  = "measurements_logged"
)

// Stats is a user-stats snapshot keyed by stat name.
type Stats map[string]float64

// Collect builds the snapshot for a user from their profile, action log and
// number of joined projects.
func Collect(p models.UserProfile, actions []models.UserAction, projectsJoined int) Stats {
	s := Stats(p.Stats())
	s[StatProjectsJoined] = float64(projectsJoined)
	s[StatUsersMentored] = 0

	var trees, cleanups, energy, measured float64
	for _, a := range actions {
		switch a.ActionType {
		case models.ActionTreePlanting:
			trees++
		case models.ActionCleanup:
			cleanups++
		case models.ActionEnergySaving:
			energy++
		}
		if a.ImpactValue > 0 {
			measured++
		}
	}
	s[StatTreePlantingActions] = trees
	s[StatCleanupActions] = cleanups
	s[StatEnergySavingActions] = energy
	s[StatMeasurementsLogged] = measured
	s[StatDailyStreak] = float64(LongestStreak(actions))
	return s
}

// LongestStreak is the longest run of consecutive calendar days with at
// least one completed action. Unparseable dates are ignored.
func LongestStreak(actions []models.UserAction) int {
	var days []time.Time
	for _, a := range actions {
		d, err := time.Parse("2006-01-02", a.DateCompleted)
		if err != nil {
			continue
		}
		days = append(days, d)
	}
	if len(days) == 0 {
		return 0
	}
	slices.SortFunc(days, func(a, b time.Time) int { return a.Compare(b) })
	days = slices.Compact(days)

	best, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		best = max(best, run)
	}
	return best
}
