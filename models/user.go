package models

import "time"

// UserProfile is owned by the per-user aggregator and mutated only through
// explicit updates.
type UserProfile struct {
	ID                   string    `bson:"_id"                   json:"id"`
	Name                 string    `bson:"name"                  json:"name"`
	Email                string    `bson:"email,omitempty"       json:"email,omitempty"`
	Location             string    `bson:"location"              json:"location"`
	JoinDate             string    `bson:"join_date"             json:"join_date"` // YYYY-MM-DD
	ActionsCompleted     int       `bson:"actions_completed"     json:"actions_completed"`
	VolunteerHours       float64   `bson:"volunteer_hours"       json:"volunteer_hours"`
	CarbonSaved          float64   `bson:"carbon_saved"          json:"carbon_saved"` // lbs CO₂
	Level                int       `bson:"level"                 json:"level"`
	Achievements         []string  `bson:"achievements"          json:"achievements"`
	NotificationsEnabled bool      `bson:"notifications_enabled" json:"notifications_enabled"`
	LocationSharing      bool      `bson:"location_sharing"      json:"location_sharing"`
	OnboardingCompleted  bool      `bson:"onboarding_completed"  json:"onboarding_completed"`
	CreatedAt            time.Time `bson:"created_at"            json:"created_at"`
	UpdatedAt            time.Time `bson:"updated_at"            json:"updated_at"`
}

// ProfileUpdate is a partial update; nil fields are left untouched.
type ProfileUpdate struct {
	Name                 *string  `json:"name,omitempty"                  validate:"omitempty,min=1,max=80"`
	Email                *string  `json:"email,omitempty"                 validate:"omitempty,email"`
	Location             *string  `json:"location,omitempty"`
	ActionsCompleted     *int     `json:"actions_completed,omitempty"     validate:"omitempty,min=0"`
	VolunteerHours       *float64 `json:"volunteer_hours,omitempty"       validate:"omitempty,min=0"`
	CarbonSaved          *float64 `json:"carbon_saved,omitempty"          validate:"omitempty,min=0"`
	Level                *int     `json:"level,omitempty"                 validate:"omitempty,min=1"`
	Achievements         []string `json:"achievements,omitempty"`
	NotificationsEnabled *bool    `json:"notifications_enabled,omitempty"`
	LocationSharing      *bool    `json:"location_sharing,omitempty"`
	OnboardingCompleted  *bool    `json:"onboarding_completed,omitempty"`
}

// TouchesStats reports whether the update changes a field tracked by monthly goals.
func (u ProfileUpdate) TouchesStats() bool {
	return u.ActionsCompleted != nil || u.VolunteerHours != nil || u.CarbonSaved != nil
}

// Apply returns a copy of p with the update applied. The level follows the
// action count unless the update sets it explicitly.
func (u ProfileUpdate) Apply(p UserProfile, now time.Time) UserProfile {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Email != nil {
		p.Email = *u.Email
	}
	if u.Location != nil {
		p.Location = *u.Location
	}
	if u.ActionsCompleted != nil {
		p.ActionsCompleted = *u.ActionsCompleted
		p.Level = LevelFor(p.ActionsCompleted)
	}
	if u.VolunteerHours != nil {
		p.VolunteerHours = *u.VolunteerHours
	}
	if u.CarbonSaved != nil {
		p.CarbonSaved = *u.CarbonSaved
	}
	if u.Level != nil {
		p.Level = *u.Level
	}
	if u.Achievements != nil {
		p.Achievements = append([]string(nil), u.Achievements...)
	}
	if u.NotificationsEnabled != nil {
		p.NotificationsEnabled = *u.NotificationsEnabled
	}
	if u.LocationSharing != nil {
		p.LocationSharing = *u.LocationSharing
	}
	if u.OnboardingCompleted != nil {
		p.OnboardingCompleted = *u.OnboardingCompleted
	}
	p.UpdatedAt = now
	return p
}

// LevelFor maps cumulative completed actions to the Eco Warrior level.
// Level L (L >= 2) is reached at 10*L actions.
func LevelFor(actions int) int {
	if lvl := actions / 10; lvl > 1 {
		return lvl
	}
	return 1
}

// Stats is the user-stats mapping achievements and goals are evaluated against.
func (p UserProfile) Stats() map[string]float64 {
	return map[string]float64{
		"actions_completed": float64(p.ActionsCompleted),
		"volunteer_hours":   p.VolunteerHours,
		"carbon_saved":      p.CarbonSaved,
		"level":             float64(p.Level),
	}
}

type ActionType string

const (
	ActionTreePlanting ActionType = "tree_planting"
	ActionCleanup      ActionType = "cleanup"
	ActionEnergySaving ActionType = "energy_saving"
	ActionConservation ActionType = "conservation"
	ActionEducation    ActionType = "education"
)

var impactUnits = map[ActionType]string{
	ActionTreePlanting: "lbs CO₂/year",
	ActionCleanup:      "lbs waste removed",
	ActionEnergySaving: "lbs CO₂/year saved",
	ActionConservation: "gallons saved annually",
	ActionEducation:    "people educated",
}

// ImpactUnit is the default unit an action's impact is measured in.
func (t ActionType) ImpactUnit() string { return impactUnits[t] }

// UserAction is an append-only log entry.
type UserAction struct {
	ID            string     `bson:"_id"                  json:"id"`
	UserID        string     `bson:"user_id"              json:"user_id"`
	ActionType    ActionType `bson:"action_type"          json:"action_type"`
	Description   string     `bson:"description"          json:"description"`
	ImpactValue   float64    `bson:"impact_value"         json:"impact_value"`
	ImpactUnit    string     `bson:"impact_unit"          json:"impact_unit"`
	Location      string     `bson:"location"             json:"location"`
	DateCompleted string     `bson:"date_completed"       json:"date_completed"`
	ProjectID     string     `bson:"project_id,omitempty" json:"project_id,omitempty"`
	Verified      bool       `bson:"verified"             json:"verified"`
	Rating        *int       `bson:"rating,omitempty"     json:"rating,omitempty"`
	CreatedAt     time.Time  `bson:"created_at"           json:"created_at"`
}

// ActionInput is the caller-supplied part of a UserAction.
type ActionInput struct {
	ActionType    ActionType `json:"action_type"    validate:"required,oneof=tree_planting cleanup energy_saving conservation education"`
	Description   string     `json:"description"    validate:"required,max=280"`
	ImpactValue   float64    `json:"impact_value"   validate:"min=0"`
	ImpactUnit    string     `json:"impact_unit"`
	Location      string     `json:"location"`
	DateCompleted string     `json:"date_completed" validate:"omitempty,datetime=2006-01-02"`
	ProjectID     string     `json:"project_id,omitempty"`
}

// RecentAction is the short feed entry kept per user (ten most recent).
type RecentAction struct {
	ID          string    `bson:"_id"         json:"id"`
	UserID      string    `bson:"user_id"     json:"user_id"`
	ActionType  string    `bson:"action_type" json:"action_type"`
	Description string    `bson:"description" json:"description"`
	CreatedAt   time.Time `bson:"created_at"  json:"created_at"`
}
