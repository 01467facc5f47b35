package community

import (
	"cmp"
	"slices"

	"climateguard/models"
)

// MaxScored caps ScoreProjects results.
const MaxScored = 6

// conditionBonus is what the current conditions add to a project type.
func conditionBonus(t models.ProjectType, r models.EnvironmentalReading) int {
	score := 0
	if r.AirQuality.AQI > 100 {
		switch t {
		case models.ProjectTreePlanting:
			score += 3
		case models.ProjectCleanup:
			score += 2
		}
	}
	if r.Weather.Temperature > 85 {
		switch t {
		case models.ProjectTreePlanting:
			score += 2
		case models.ProjectEnergy:
			score++
		}
	}
	if r.Risks.Wildfire > 6 && t == models.ProjectCleanup {
		score += 3
	}
	return score
}

// Rank orders a copy of projects by environmental relevance. When both
// projects of a comparison have a known distance the closer one gets one
// extra point. Equal scores keep their input order. A nil reading leaves the
// order untouched.
func Rank(projects []models.CommunityProject, r *models.EnvironmentalReading) []models.CommunityProject {
	out := slices.Clone(projects)
	if r == nil {
		return out
	}
	slices.SortStableFunc(out, func(a, b models.CommunityProject) int {
		as, bs := conditionBonus(a.Type, *r), conditionBonus(b.Type, *r)
		if a.Distance > 0 && b.Distance > 0 {
			if a.Distance < b.Distance {
				as++
			}
			if b.Distance < a.Distance {
				bs++
			}
		}
		return bs - as
	})
	return out
}

// Score rates one project for a user at the given level.
func Score(p models.CommunityProject, r models.EnvironmentalReading, level int) int {
	if level <= 0 {
		level = 1
	}
	score := 0
	if r.AirQuality.AQI > 100 && p.Type == models.ProjectTreePlanting {
		score += 5
	}
	if r.Weather.Temperature > 85 && p.Type == models.ProjectTreePlanting {
		score += 3
	}
	if r.Risks.Wildfire > 6 && p.Type == models.ProjectCleanup {
		score += 4
	}
	if r.Risks.Heat > 3 && (p.Type == models.ProjectTreePlanting || p.Type == models.ProjectEnergy) {
		score += 3
	}

	switch {
	case p.Difficulty == models.DifficultyEasy && level <= 2:
		score += 2
	case p.Difficulty == models.DifficultyModerate && level >= 2 && level <= 4:
		score += 2
	case p.Difficulty == models.DifficultyHard && level >= 4:
		score += 2
	}

	if p.Distance > 0 {
		switch {
		case p.Distance <= 5:
			score += 3
		case p.Distance <= 10:
			score += 2
		case p.Distance <= 20:
			score++
		}
	}

	if r.AirQuality.AQI > 150 {
		score += 2
	}
	if r.Weather.Temperature > 95 {
		score += 2
	}
	return score
}

type ScoredProject struct {
	models.CommunityProject
	AIScore int `json:"aiScore"`
}

// ScoreProjects returns the best positively scored projects, highest first.
func ScoreProjects(projects []models.CommunityProject, r models.EnvironmentalReading, level int) []ScoredProject {
	out := make([]ScoredProject, 0, len(projects))
	for _, p := range projects {
		if s := Score(p, r, level); s > 0 {
			out = append(out, ScoredProject{CommunityProject: p, AIScore: s})
		}
	}
	slices.SortStableFunc(out, func(a, b ScoredProject) int { return cmp.Compare(b.AIScore, a.AIScore) })
	if len(out) > MaxScored {
		out = out[:MaxScored]
	}
	return out
}

// Featured picks the project to highlight under the current conditions.
// It prefers an unjoined project of the type the conditions call for and
// falls back to the first project. ok is false for an empty list.
func Featured(projects []models.CommunityProject, r models.EnvironmentalReading) (models.CommunityProject, bool) {
	if len(projects) == 0 {
		return models.CommunityProject{}, false
	}
	want := func(types ...models.ProjectType) func(models.CommunityProject) bool {
		return func(p models.CommunityProject) bool {
			return !p.IsJoined && (len(types) == 0 || slices.Contains(types, p.Type))
		}
	}

	pick := want()
	switch {
	case r.AirQuality.AQI > 100:
		pick = want(models.ProjectTreePlanting)
	case r.Weather.Temperature > 90:
		pick = want(models.ProjectTreePlanting, models.ProjectEnergy)
	case r.Risks.Wildfire > 6:
		pick = want(models.ProjectCleanup)
	}
	if i := slices.IndexFunc(projects, pick); i >= 0 {
		return projects[i], true
	}
	return projects[0], true
}

type Urgency string

const (
	UrgencyHigh     Urgency = "high"
	UrgencyModerate Urgency = "moderate"
)

// Recommendation suggests a project type for the current conditions.
type Recommendation struct {
	Type    models.ProjectType `json:"type"`
	Reason  string             `json:"reason"`
	Urgency Urgency            `json:"urgency"`
}

func Recommendations(r models.EnvironmentalReading) []Recommendation {
	var out []Recommendation
	if r.AirQuality.AQI > 100 {
		out = append(out, Recommendation{
			Type:    models.ProjectTreePlanting,
			Reason:  "Poor air quality detected - tree planting can improve local air quality by 25%",
			Urgency: UrgencyHigh,
		})
	}
	if r.Weather.Temperature > 85 {
		out = append(out, Recommendation{
			Type:    models.ProjectTreePlanting,
			Reason:  "High temperatures - urban trees can reduce local temperature by 2-8°F",
			Urgency: UrgencyModerate,
		})
	}
	if r.Risks.Wildfire > 6 {
		out = append(out, Recommendation{
			Type:    models.ProjectCleanup,
			Reason:  "High wildfire risk - removing dry vegetation reduces fire hazards",
			Urgency: UrgencyHigh,
		})
	}
	return out
}
