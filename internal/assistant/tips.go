package assistant

import (
	"fmt"
	"time"

	"climateguard/internal/environment"
	"climateguard/models"
)

const (
	MaxTips            = 8
	MaxInsights        = 6
	MaxRecommendations = 6
)

var fallbackTips = []string{
	"Check local air quality before outdoor activities",
	"Use energy-efficient appliances to reduce consumption",
	"Participate in community environmental events",
	"Prepare an emergency kit for climate events",
	"Choose sustainable transportation options",
}

var fallbackRecommendations = []string{
	"Check air quality before outdoor activities",
	"Use energy-efficient appliances to reduce consumption",
	"Participate in local environmental community events",
	"Prepare an emergency kit for climate-related events",
	"Choose sustainable transportation options when possible",
}

var fallbackInsights = []string{
	"Your environmental actions are making a measurable difference in your community.",
	"Consistent participation in climate projects builds long-term environmental impact.",
	"Your level progression demonstrates growing expertise in environmental action.",
	"Community engagement amplifies individual environmental efforts significantly.",
	"Seasonal timing of environmental actions can maximize ecological benefits.",
}

func capped(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func levelOf(p *models.UserProfile) int {
	if p == nil || p.Level == 0 {
		return 1
	}
	return p.Level
}

// DynamicTips lists condition-driven tips. Without a reading it returns the
// generic list.
func DynamicTips(r *models.EnvironmentalReading, p *models.UserProfile) []string {
	if r == nil {
		return append([]string(nil), fallbackTips...)
	}
	var tips []string
	if r.AirQuality.AQI > 100 {
		tips = append(tips,
			fmt.Sprintf("Air quality in %s is unhealthy (AQI: %d). Stay indoors and use air purifiers if available.", r.Location.City, r.AirQuality.AQI),
			"Consider wearing N95 masks when going outside during poor air quality days.",
		)
	} else {
		tips = append(tips, fmt.Sprintf("Great air quality in %s today! Perfect for outdoor environmental activities.", r.Location.City))
	}

	switch {
	case r.Weather.Temperature > 90:
		tips = append(tips,
			"Extreme heat detected! Stay hydrated, seek shade, and check on elderly neighbors.",
			"High temperatures increase energy demand - consider reducing AC usage during peak hours.",
		)
	case r.Weather.Temperature < 40:
		tips = append(tips, "Cold weather increases heating costs - seal windows and doors to improve efficiency.")
	}

	if r.Weather.UVIndex > 7 {
		tips = append(tips, fmt.Sprintf("High UV index (%d) - use SPF 30+ sunscreen and seek shade between 10am-4pm.", r.Weather.UVIndex))
	}
	if r.Risks.Wildfire > 6 {
		tips = append(tips,
			"High wildfire risk - create defensible space around your home and prepare evacuation plans.",
			"Keep emergency supplies ready: water, flashlight, battery radio, and important documents.",
		)
	}
	if r.Risks.Heat > 3 {
		tips = append(tips, "Heat island effect detected - plant trees and create shade to cool your neighborhood.")
	}

	if levelOf(p) >= 3 {
		tips = append(tips,
			"As an experienced eco-warrior, consider mentoring newcomers in your community.",
			"Your leadership can amplify impact - organize neighborhood environmental initiatives.",
		)
	} else {
		tips = append(tips, "Build your environmental knowledge by attending local workshops and training sessions.")
	}

	tips = append(tips,
		"Use public transportation, bike, or walk to reduce your carbon footprint.",
		"Support local farmers markets for fresh, seasonal, and low-carbon food options.",
		"Switch to LED bulbs - they use 75% less energy and last 25 times longer.",
	)
	return capped(tips, MaxTips)
}

// PersonalizedInsights reflects on the user's pace and impact against the
// current conditions. It needs both a reading and a profile; without them
// the generic list is returned.
func PersonalizedInsights(r *models.EnvironmentalReading, p *models.UserProfile, now time.Time) []string {
	if r == nil || p == nil {
		return append([]string(nil), fallbackInsights...)
	}
	var out []string

	monthly := float64(p.ActionsCompleted) / 12
	switch {
	case monthly > 5:
		out = append(out, fmt.Sprintf("You're exceeding expectations with %.1f actions per month! Your consistency is driving real environmental change in %s.", monthly, r.Location.City))
	case monthly > 2:
		out = append(out, fmt.Sprintf("Your steady pace of %.1f actions per month is building meaningful impact. Consider increasing frequency to amplify your environmental influence.", monthly))
	default:
		out = append(out, "Opportunity for growth: Aim for 3+ actions per month to maximize your environmental impact and level progression.")
	}

	var perHour float64
	if p.VolunteerHours > 0 {
		perHour = p.CarbonSaved / p.VolunteerHours
	}
	switch {
	case perHour > 10:
		out = append(out, fmt.Sprintf("Exceptional efficiency! You're saving %.1f lbs CO₂ per volunteer hour - among the top performers in your community.", perHour))
	case perHour > 5:
		out = append(out, fmt.Sprintf("Good impact efficiency at %.1f lbs CO₂ per hour. Focus on high-impact projects to increase this ratio.", perHour))
	}

	if r.AirQuality.AQI > 100 {
		out = append(out, fmt.Sprintf("Poor air quality (AQI: %d) in %s creates urgency for air quality improvement projects. Your tree planting efforts are especially valuable now.", r.AirQuality.AQI, r.Location.City))
	}
	if r.Weather.Temperature > 85 {
		out = append(out, fmt.Sprintf("High temperatures (%d°F) make urban cooling projects critical. Tree planting and green infrastructure can reduce local temperatures by 2-8°F.", r.Weather.Temperature))
	}

	level := levelOf(p)
	if toNext := (level+1)*10 - p.ActionsCompleted; toNext > 0 && toNext <= 5 {
		out = append(out, fmt.Sprintf("You're close to Level %d! Just %d more actions to unlock advanced project opportunities and leadership roles.", level+1, toNext))
	}

	out = append(out, fmt.Sprintf("Your %s lbs CO₂ savings inspire others, creating an estimated %.0f lbs additional community impact through social influence.", num(p.CarbonSaved), p.CarbonSaved*0.1))

	switch environment.SeasonOf(now) {
	case environment.SeasonSummer:
		out = append(out, "Summer presents peak opportunities for tree planting and water conservation projects. Your actions during this season have amplified environmental benefits.")
	case environment.SeasonWinter:
		out = append(out, "Winter focus on energy efficiency projects can yield significant carbon savings. Indoor air quality improvements are also highly impactful during this season.")
	}
	return capped(out, MaxInsights)
}

// PersonalizedRecommendations combines conditions with the user's level and
// progress.
func PersonalizedRecommendations(r *models.EnvironmentalReading, p *models.UserProfile, now time.Time) []string {
	if r == nil {
		return append([]string(nil), fallbackRecommendations...)
	}
	level := levelOf(p)
	actions := 0
	if p != nil {
		actions = p.ActionsCompleted
	}
	var out []string

	switch {
	case r.AirQuality.AQI > 100 && level >= 3:
		out = append(out, "Lead an air quality advocacy campaign in your community")
	case r.AirQuality.AQI > 100:
		out = append(out, "Join tree planting projects to improve local air quality")
	case r.AirQuality.AQI > 50:
		out = append(out, "Participate in air quality monitoring initiatives")
	default:
		out = append(out, "Perfect air quality for outdoor environmental projects!")
	}

	if r.Weather.Temperature > 90 {
		out = append(out, "High temperatures - join urban cooling projects (tree planting reduces temps by 2-8°F)")
	}
	if r.Weather.UVIndex > 7 {
		out = append(out, "High UV levels - indoor environmental activities recommended")
	}
	if r.Risks.Heat > 3 {
		if level >= 4 {
			out = append(out, "Organize community cooling center initiatives")
		} else {
			out = append(out, "Join heat island reduction projects in your area")
		}
	}
	if r.Risks.Wildfire > 6 {
		out = append(out, "Critical: Join defensible space and fire prevention programs")
	}
	if r.Risks.Flood == models.FloodHigh {
		out = append(out, "Participate in green infrastructure and stormwater management projects")
	}

	switch {
	case actions < 5:
		out = append(out, "Complete 5 actions to unlock advanced project opportunities")
	case actions < 20:
		out = append(out, "You're doing great! Consider mentoring newcomers to the platform")
	default:
		out = append(out, "Experienced eco-warrior! Ready to lead your own community projects")
	}

	switch environment.SeasonOf(now) {
	case environment.SeasonSummer:
		out = append(out, "Summer focus: Water conservation and energy efficiency projects")
	case environment.SeasonWinter:
		out = append(out, "Winter focus: Energy efficiency and indoor air quality projects")
	}

	out = append(out,
		"Use public transportation or bike to reduce emissions",
		"Support local farmers markets for fresh, low-carbon food",
	)
	return capped(out, MaxRecommendations)
}

// Recommendations is the condition-only list shown on the dashboard. A nil
// reading is treated as clean air and mild weather.
func Recommendations(r *models.EnvironmentalReading) []string {
	var aqi, temp, wildfire, heat int
	if r != nil {
		aqi, temp = r.AirQuality.AQI, r.Weather.Temperature
		wildfire, heat = r.Risks.Wildfire, r.Risks.Heat
	}
	var out []string
	switch {
	case aqi > 100:
		out = append(out,
			"Air quality is poor - consider indoor activities and air purifiers",
			"Join local air quality monitoring initiatives",
			"Plant trees to help improve local air quality",
		)
	case aqi > 50:
		out = append(out,
			"Air quality is moderate - perfect for outdoor environmental projects",
			"Consider organizing a tree planting event",
		)
	default:
		out = append(out,
			"Excellent air quality today - great time for outdoor activities!",
			"Perfect conditions for community environmental projects",
		)
	}

	switch {
	case temp > 85:
		out = append(out,
			"High temperatures - participate in urban cooling projects",
			"Plant shade trees in your neighborhood",
			"Join energy efficiency initiatives to reduce cooling costs",
		)
	case r != nil && temp < 40:
		out = append(out,
			"Cold weather - focus on energy efficiency projects",
			"Weatherize homes for vulnerable community members",
		)
	}

	if wildfire > 6 {
		out = append(out,
			"High wildfire risk - create defensible space around buildings",
			"Join community fire prevention programs",
			"Organize neighborhood emergency preparedness meetings",
		)
	}
	if heat > 3 {
		out = append(out,
			"Heat risk elevated - check on elderly neighbors",
			"Advocate for more cooling centers in your community",
		)
	}

	out = append(out,
		"Use public transportation to reduce emissions",
		"Start composting to reduce waste",
		"Switch to LED bulbs for energy efficiency",
		"Support local farmers markets for fresh, low-carbon food",
	)
	return capped(out, MaxRecommendations)
}
