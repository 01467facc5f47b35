package achievement

import (
	"time"

	"github.com/google/uuid"

	"climateguard/models"
)

// DefaultGoals seeds the three monthly goals for the month containing now.
func DefaultGoals(userID string, now time.Time) []models.MonthlyGoal {
	month := models.MonthKey(now)
	mk := func(t models.GoalType, target float64, unit string) models.MonthlyGoal {
		return models.MonthlyGoal{
			ID:          uuid.NewString(),
			UserID:      userID,
			GoalType:    t,
			TargetValue: target,
			Unit:        unit,
			MonthYear:   month,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}
	return []models.MonthlyGoal{
		mk(models.GoalActionsCompleted, 10, "actions"),
		mk(models.GoalVolunteerHours, 20, "hours"),
		mk(models.GoalCarbonSaved, 50, "lbs CO₂"),
	}
}

// ProjectGoals recomputes current values and completion from the profile.
func ProjectGoals(goals []models.MonthlyGoal, p models.UserProfile) []models.MonthlyGoal {
	out := make([]models.MonthlyGoal, len(goals))
	for i, g := range goals {
		out[i] = g.Project(p)
	}
	return out
}
