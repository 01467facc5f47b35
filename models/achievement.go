package models

type AchievementCategory string

const (
	CategoryMilestone      AchievementCategory = "milestone"
	CategoryImpact         AchievementCategory = "impact"
	CategoryActionSpecific AchievementCategory = "action_specific"
	CategoryTimeBased      AchievementCategory = "time_based"
	CategorySocial         AchievementCategory = "social"
	CategoryLeadership     AchievementCategory = "leadership"
	CategoryConsistency    AchievementCategory = "consistency"
	CategoryMeasurement    AchievementCategory = "measurement"
)

// Requirement is a single threshold on one user stat.
type Requirement struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

// Achievement is a static catalog entry.
type Achievement struct {
	ID          string              `json:"id"`
	Type        AchievementCategory `json:"type"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	BadgeIcon   string              `json:"badge_icon"`
	Points      int                 `json:"points"`
	Requirement Requirement         `json:"requirement"`
}

// AchievementStatus is an achievement evaluated against a stats snapshot.
type AchievementStatus struct {
	Achievement
	RequirementText string  `json:"requirementText"`
	Earned          bool    `json:"earned"`
	Progress        float64 `json:"progress"`
}

// AchievementProgress describes the distance to the closest unearned achievement.
type AchievementProgress struct {
	NextAchievement *Achievement `json:"nextAchievement"`
	Progress        float64      `json:"progress"`
	Remaining       float64      `json:"remaining"`
}
