package models

import "time"

type ProjectType string

const (
	ProjectTreePlanting ProjectType = "tree-planting"
	ProjectCleanup      ProjectType = "cleanup"
	ProjectEducation    ProjectType = "education"
	ProjectEnergy       ProjectType = "energy"
	ProjectConservation ProjectType = "conservation"
)

// ProjectTypes lists every project type in catalog order.
var ProjectTypes = []ProjectType{
	ProjectTreePlanting, ProjectCleanup, ProjectEducation, ProjectEnergy, ProjectConservation,
}

// ActionType maps a project type onto the action log vocabulary.
func (t ProjectType) ActionType() ActionType {
	switch t {
	case ProjectTreePlanting:
		return ActionTreePlanting
	case ProjectCleanup:
		return ActionCleanup
	case ProjectEnergy:
		return ActionEnergySaving
	case ProjectEducation:
		return ActionEducation
	default:
		return ActionConservation
	}
}

type Difficulty string

const (
	DifficultyEasy     Difficulty = "Easy"
	DifficultyModerate Difficulty = "Moderate"
	DifficultyHard     Difficulty = "Hard"
)

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectCancelled ProjectStatus = "cancelled"
)

// CommunityProject is a volunteer project. IsJoined and Distance are derived
// per viewing user and never stored.
type CommunityProject struct {
	ID              string        `bson:"_id"                   json:"id"`
	Title           string        `bson:"title"                 json:"title"`
	Description     string        `bson:"description"           json:"description"`
	Type            ProjectType   `bson:"type"                  json:"type"`
	Participants    int           `bson:"current_participants"  json:"participants"`
	MaxParticipants int           `bson:"max_participants"      json:"maxParticipants"`
	Date            string        `bson:"date"                  json:"date"` // YYYY-MM-DD
	Time            string        `bson:"time"                  json:"time"` // e.g. "10:00 AM"
	Location        string        `bson:"location"              json:"location"`
	Coordinates     Coordinates   `bson:"coordinates"           json:"coordinates"`
	Impact          string        `bson:"impact_goal"           json:"impact"`
	Organizer       string        `bson:"organizer_name"        json:"organizer"`
	OrganizerID     string        `bson:"organizer_id,omitempty" json:"organizerId,omitempty"`
	Difficulty      Difficulty    `bson:"difficulty"            json:"difficulty"`
	Duration        string        `bson:"duration"              json:"duration"`
	Requirements    []string      `bson:"requirements"          json:"requirements"`
	ImageURL        string        `bson:"imageUrl"              json:"imageUrl"`
	Status          ProjectStatus `bson:"status"                json:"status,omitempty"`
	CreatedAt       time.Time     `bson:"created_at"            json:"createdAt,omitempty"`

	// Injected per viewer (NOT stored):
	IsJoined bool    `bson:"-" json:"isJoined"`
	Distance float64 `bson:"-" json:"distance,omitempty"` // miles, 1 decimal; 0 means unknown
}

// Full reports whether no spot is left.
func (p CommunityProject) Full() bool { return p.Participants >= p.MaxParticipants }

// Availability is the share of free spots in [0,1].
func (p CommunityProject) Availability() float64 {
	if p.MaxParticipants <= 0 {
		return 0
	}
	return float64(p.MaxParticipants-p.Participants) / float64(p.MaxParticipants)
}

// ProjectInput is what a user supplies when creating a project.
type ProjectInput struct {
	Title           string       `json:"title"           validate:"required,min=3,max=120"`
	Description     string       `json:"description"     validate:"max=1000"`
	Type            ProjectType  `json:"type"            validate:"required,oneof=tree-planting cleanup education energy conservation"`
	Location        string       `json:"location"`
	Date            string       `json:"date"            validate:"omitempty,datetime=2006-01-02"`
	Time            string       `json:"time"`
	MaxParticipants int          `json:"maxParticipants" validate:"omitempty,min=1,max=1000"`
	Requirements    []string     `json:"requirements"`
	ImpactGoal      string       `json:"impactGoal"`
	Difficulty      Difficulty   `json:"difficulty"      validate:"omitempty,oneof=Easy Moderate Hard"`
	Duration        string       `json:"duration"`
	Coordinates     *Coordinates `json:"coordinates,omitempty"`
}

// ProjectFilters narrows a location search. Zero values mean "any".
type ProjectFilters struct {
	Type            ProjectType `json:"type,omitempty"`
	Difficulty      Difficulty  `json:"difficulty,omitempty"`
	MaxParticipants int         `json:"maxParticipants,omitempty"`
	Query           string      `json:"query,omitempty"`
	AvailableOnly   bool        `json:"availableOnly,omitempty"`
}

// ProjectPreferences drives recommended-project selection.
type ProjectPreferences struct {
	PreferredTypes []ProjectType `json:"preferredTypes,omitempty"`
	MaxDistance    float64       `json:"maxDistance,omitempty"`
	Difficulty     Difficulty    `json:"difficulty,omitempty"`
}

type CommunityStats struct {
	TotalProjects    int `json:"totalProjects"`
	ActiveVolunteers int `json:"activeVolunteers"`
	CarbonSaved      int `json:"carbonSaved"`
	TreesPlanted     int `json:"treesPlanted"`
	WasteCollected   int `json:"wasteCollected"` // lbs
}

// ProjectParticipation links a user to a joined project.
type ProjectParticipation struct {
	ID        string    `bson:"_id"        json:"id"`
	UserID    string    `bson:"user_id"    json:"user_id"`
	ProjectID string    `bson:"project_id" json:"project_id"`
	JoinedAt  time.Time `bson:"joined_at"  json:"joined_at"`
	Completed bool      `bson:"completed"  json:"completed"`
}
