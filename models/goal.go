package models

import "time"

type GoalType string

const (
	GoalActionsCompleted GoalType = "actions_completed"
	GoalVolunteerHours   GoalType = "volunteer_hours"
	GoalCarbonSaved      GoalType = "carbon_saved"
)

// MonthlyGoal tracks one recurring per-user target. CurrentValue is a
// projection of the matching profile field.
type MonthlyGoal struct {
	ID           string    `bson:"_id"           json:"id"`
	UserID       string    `bson:"user_id"       json:"user_id"`
	GoalType     GoalType  `bson:"goal_type"     json:"goal_type"`
	TargetValue  float64   `bson:"target_value"  json:"target_value"`
	CurrentValue float64   `bson:"current_value" json:"current_value"`
	Unit         string    `bson:"unit"          json:"unit"`
	MonthYear    string    `bson:"month_year"    json:"month_year"` // YYYY-MM
	Completed    bool      `bson:"completed"     json:"completed"`
	CreatedAt    time.Time `bson:"created_at"    json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"    json:"updated_at"`
}

// Project sets CurrentValue from the profile and recomputes Completed.
func (g MonthlyGoal) Project(p UserProfile) MonthlyGoal {
	switch g.GoalType {
	case GoalActionsCompleted:
		g.CurrentValue = float64(p.ActionsCompleted)
	case GoalVolunteerHours:
		g.CurrentValue = p.VolunteerHours
	case GoalCarbonSaved:
		g.CurrentValue = p.CarbonSaved
	}
	g.Completed = g.CurrentValue >= g.TargetValue
	return g
}

// MonthKey formats t as YYYY-MM.
func MonthKey(t time.Time) string { return t.Format("2006-01") }
