package achievement

import (
	"math"
	"slices"

	"climateguard/models"
)

// Earned reports whether stats meet a's requirement. Missing stats count as 0.
func Earned(a models.Achievement, stats Stats) bool {
	return stats[a.Requirement.Type] >= a.Requirement.Value
}

// Eligible returns every catalog entry stats currently satisfy.
func Eligible(stats Stats) []models.Achievement {
	var out []models.Achievement
	for _, a := range catalog {
		if Earned(a, stats) {
			out = append(out, a)
		}
	}
	return out
}

// Next returns the unearned achievement with the smallest positive gap.
// The first one in catalog order wins a tie.
func Next(stats Stats, earned []string) (models.Achievement, bool) {
	var (
		best models.Achievement
		gap  = math.Inf(1)
	)
	for _, a := range catalog {
		if slices.Contains(earned, a.ID) {
			continue
		}
		g := a.Requirement.Value - stats[a.Requirement.Type]
		if g > 0 && g < gap {
			best, gap = a, g
		}
	}
	return best, !math.IsInf(gap, 1)
}

// Progress is the percentage of a's requirement stats cover, capped at 100.
func Progress(a models.Achievement, stats Stats) float64 {
	if a.Requirement.Value <= 0 {
		return 100
	}
	return math.Min(100, stats[a.Requirement.Type]/a.Requirement.Value*100)
}

// ProgressToNext describes how far the user is from Next.
func ProgressToNext(stats Stats, earned []string) models.AchievementProgress {
	next, ok := Next(stats, earned)
	if !ok {
		return models.AchievementProgress{Progress: 100}
	}
	return models.AchievementProgress{
		NextAchievement: &next,
		Progress:        Progress(next, stats),
		Remaining:       math.Max(next.Requirement.Value-stats[next.Requirement.Type], 0),
	}
}

// Evaluate returns the full catalog with earned flags and progress.
func Evaluate(stats Stats) []models.AchievementStatus {
	out := make([]models.AchievementStatus, len(catalog))
	for i, a := range catalog {
		out[i] = models.AchievementStatus{
			Achievement:     a,
			RequirementText: FormatRequirement(a),
			Earned:          Earned(a, stats),
			Progress:        Progress(a, stats),
		}
	}
	return out
}

// TotalPoints sums the points of the given achievements.
func TotalPoints(as []models.Achievement) int {
	total := 0
	for _, a := range as {
		total += a.Points
	}
	return total
}

// EarnedIDs returns the ids of the achievements stats satisfy.
func EarnedIDs(stats Stats) []string {
	var ids []string
	for _, a := range Eligible(stats) {
		ids = append(ids, a.ID)
	}
	return ids
}
