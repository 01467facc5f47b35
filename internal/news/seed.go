package news

import (
	"time"

	"climateguard/models"
)

func seed(now time.Time) []models.ClimateNews {
	ago := func(d time.Duration) time.Time { return now.Add(-d) }
	const day = 24 * time.Hour
	return []models.ClimateNews{
		{
			ID:          "1",
			Title:       "Local Air Quality Improvement Initiative Launched",
			Content:     "City announces new program to plant 10,000 trees and reduce urban heat islands through community partnerships. The initiative will focus on low-income neighborhoods and areas with high pollution levels.",
			Source:      "City Environmental Department",
			Category:    "local_action",
			Location:    "San Francisco, CA",
			Severity:    models.NewsInfo,
			PublishedAt: ago(2 * time.Hour),
			CreatedAt:   now,
		},
		{
			ID:          "2",
			Title:       "Heat Wave Warning Issued for Bay Area",
			Content:     "Temperatures expected to reach 95°F+ this week. Cooling centers open, residents advised to stay hydrated and check on elderly neighbors. Peak heat expected Tuesday-Thursday.",
			Source:      "National Weather Service",
			Category:    "weather_alert",
			Location:    "Bay Area, CA",
			Severity:    models.NewsWarning,
			PublishedAt: ago(4 * time.Hour),
			CreatedAt:   now,
		},
		{
			ID:          "3",
			Title:       "Community Solar Project Reaches 50% Funding Goal",
			Content:     "Local renewable energy initiative gains momentum with 200+ household participants. Project expected to reduce neighborhood emissions by 25% and provide energy savings to residents.",
			Source:      "Green Energy Collective",
			Category:    "renewable_energy",
			Location:    "Oakland, CA",
			Severity:    models.NewsInfo,
			PublishedAt: ago(day),
			CreatedAt:   now,
		},
		{
			ID:          "4",
			Title:       "New Study Shows Urban Gardens Reduce Local Temperature",
			Content:     "Research indicates community gardens can lower surrounding air temperature by 2-5°F during summer months. Study followed 50 urban gardens across California for 2 years.",
			Source:      "Environmental Science Journal",
			Category:    "research",
			Location:    "California",
			Severity:    models.NewsInfo,
			PublishedAt: ago(2 * day),
			CreatedAt:   now,
		},
		{
			ID:          "5",
			Title:       "Wildfire Risk Assessment Updated for Region",
			Content:     "Fire danger elevated due to dry conditions. Residents encouraged to create defensible space and review evacuation plans. Red flag warning in effect through weekend.",
			Source:      "Fire Department",
			Category:    "safety_alert",
			Location:    "Northern California",
			Severity:    models.NewsWarning,
			PublishedAt: ago(3 * day),
			CreatedAt:   now,
		},
		{
			ID:          "6",
			Title:       "Electric Vehicle Charging Network Expansion Announced",
			Content:     "City plans to install 500 new EV charging stations by 2025, focusing on underserved communities and apartment complexes. Initiative aims to accelerate clean transportation adoption.",
			Source:      "Transportation Authority",
			Category:    "clean_transport",
			Location:    "San Francisco, CA",
			Severity:    models.NewsInfo,
			PublishedAt: ago(5 * day),
			CreatedAt:   now,
		},
		{
			ID:          "7",
			Title:       "Coastal Flooding Advisory for Weekend High Tides",
			Content:     "King tides combined with storm surge may cause minor coastal flooding. Low-lying areas and parking lots near the bay should expect water accumulation.",
			Source:      "Coastal Management Office",
			Category:    "weather_alert",
			Location:    "Bay Area Coast",
			Severity:    models.NewsWarning,
			PublishedAt: ago(6 * time.Hour),
			CreatedAt:   now,
		},
		{
			ID:          "8",
			Title:       "Green Building Incentive Program Launches",
			Content:     "New rebate program offers up to $5,000 for energy-efficient home improvements including insulation, windows, and heat pumps. Applications open through city website.",
			Source:      "Building Department",
			Category:    "energy_efficiency",
			Location:    "San Francisco, CA",
			Severity:    models.NewsInfo,
			PublishedAt: ago(7 * day),
			CreatedAt:   now,
		},
	}
}
