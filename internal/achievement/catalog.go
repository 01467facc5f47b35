// Package achievement evaluates the static achievement catalog and the
// monthly goals against a user-stats snapshot. Nothing here is stored:
// earned and completed flags are recomputed on every call.
package achievement

import (
	"fmt"
	"slices"
	"strconv"

	"climateguard/models"
)

var catalog = []models.Achievement{
	{
		ID: "first_action", Type: models.CategoryMilestone, Name: "First Action",
		Description: "Complete your first environmental action", BadgeIcon: "🌱", Points: 10,
		Requirement: models.Requirement{Type: StatActionsCompleted, Value: 1},
	},
	{
		ID: "eco_warrior", Type: models.CategoryMilestone, Name: "Eco Warrior",
		Description: "Complete 10 environmental actions", BadgeIcon: "🏆", Points: 50,
		Requirement: models.Requirement{Type: StatActionsCompleted, Value: 10},
	},
	{
		ID: "climate_champion", Type: models.CategoryMilestone, Name: "Climate Champion",
		Description: "Complete 50 environmental actions", BadgeIcon: "👑", Points: 200,
		Requirement: models.Requirement{Type: StatActionsCompleted, Value: 50},
	},
	{
		ID: "carbon_saver", Type: models.CategoryImpact, Name: "Carbon Saver",
		Description: "Save 100+ lbs of CO₂ emissions", BadgeIcon: "🌍", Points: 75,
		Requirement: models.Requirement{Type: StatCarbonSaved, Value: 100, Unit: "lbs"},
	},
	{
		ID: "tree_hugger", Type: models.CategoryActionSpecific, Name: "Tree Hugger",
		Description: "Participate in 5 tree planting projects", BadgeIcon: "🌳", Points: 60,
		Requirement: models.Requirement{Type: StatTreePlantingActions, Value: 5},
	},
	{
		ID: "cleanup_hero", Type: models.CategoryActionSpecific, Name: "Cleanup Hero",
		Description: "Participate in 5 cleanup projects", BadgeIcon: "🧹", Points: 60,
		Requirement: models.Requirement{Type: StatCleanupActions, Value: 5},
	},
	{
		ID: "energy_saver", Type: models.CategoryActionSpecific, Name: "Energy Saver",
		Description: "Complete 5 energy saving actions", BadgeIcon: "⚡", Points: 60,
		Requirement: models.Requirement{Type: StatEnergySavingActions, Value: 5},
	},
	{
		ID: "volunteer_hero", Type: models.CategoryTimeBased, Name: "Volunteer Hero",
		Description: "Volunteer for 50+ hours", BadgeIcon: "⏰", Points: 100,
		Requirement: models.Requirement{Type: StatVolunteerHours, Value: 50, Unit: "hours"},
	},
	{
		ID: "community_builder", Type: models.CategorySocial, Name: "Community Builder",
		Description: "Join 3 community projects", BadgeIcon: "👥", Points: 40,
		Requirement: models.Requirement{Type: StatProjectsJoined, Value: 3},
	},
	{
		ID: "mentor", Type: models.CategoryLeadership, Name: "Mentor",
		Description: "Help 5 new users get started", BadgeIcon: "🎓", Points: 80,
		Requirement: models.Requirement{Type: StatUsersMentored, Value: 5},
	},
	{
		ID: "streak_master", Type: models.CategoryConsistency, Name: "Streak Master",
		Description: "Complete actions for 7 consecutive days", BadgeIcon: "🔥", Points: 90,
		Requirement: models.Requirement{Type: StatDailyStreak, Value: 7, Unit: "days"},
	},
	{
		ID: "impact_tracker", Type: models.CategoryMeasurement, Name: "Impact Tracker",
		Description: "Log 20 impact measurements", BadgeIcon: "📊", Points: 30,
		Requirement: models.Requirement{Type: StatMeasurementsLogged, Value: 20},
	},
}

var categoryLabels = map[models.AchievementCategory]string{
	models.CategoryMilestone:      "Milestones",
	models.CategoryImpact:         "Environmental Impact",
	models.CategoryActionSpecific: "Action Types",
	models.CategoryTimeBased:      "Time Commitment",
	models.CategorySocial:         "Community",
	models.CategoryLeadership:     "Leadership",
	models.CategoryConsistency:    "Consistency",
	models.CategoryMeasurement:    "Data Tracking",
}

// All returns a copy of the catalog in its fixed order.
func All() []models.Achievement { return slices.Clone(catalog) }

func ByID(id string) (models.Achievement, bool) {
	i := slices.IndexFunc(catalog, func(a models.Achievement) bool { return a.ID == id })
	if i < 0 {
		return models.Achievement{}, false
	}
	return catalog[i], true
}

func ByCategory(c models.AchievementCategory) []models.Achievement {
	var out []models.Achievement
	for _, a := range catalog {
		if a.Type == c {
			out = append(out, a)
		}
	}
	return out
}

// Categories maps each category to its display label.
func Categories() map[models.AchievementCategory]string {
	out := make(map[models.AchievementCategory]string, len(categoryLabels))
	for k, v := range categoryLabels {
		out[k] = v
	}
	return out
}

// FormatRequirement renders a requirement as a short sentence.
func FormatRequirement(a models.Achievement) string {
	r := a.Requirement
	v := strconv.FormatFloat(r.Value, 'f', -1, 64)
	unit := ""
	if r.Unit != "" {
		unit = " " + r.Unit
	}
	switch r.Type {
	case StatActionsCompleted:
		return fmt.Sprintf("Complete %s actions", v)
	case StatCarbonSaved:
		return fmt.Sprintf("Save %s%s of CO₂", v, unit)
	case StatVolunteerHours:
		return fmt.Sprintf("Volunteer for %s%s", v, unit)
	case StatProjectsJoined:
		return fmt.Sprintf("Join %s projects", v)
	case StatDailyStreak:
		return fmt.Sprintf("%s day streak", v)
	default:
		return fmt.Sprintf("Reach %s%s", v, unit)
	}
}
