package environment

import "climateguard/models"

// Risks derives the climate risk scores from a synthesized weather/air pair.
func Risks(w models.Weather, aq models.AirQuality) models.ClimateRisks {
	heat := 1
	switch {
	case w.FeelsLike > 110:
		heat = 5
	case w.FeelsLike > 100:
		heat = 4
	case w.FeelsLike > 90:
		heat = 3
	}

	flood := models.FloodLow
	switch {
	case w.Humidity > 90 && w.Pressure < 990:
		flood = models.FloodHigh
	case w.Humidity > 80 && w.Pressure < 1000:
		flood = models.FloodModerate
	}

	drought := 1
	switch {
	case w.Humidity < 20 && w.Temperature > 95:
		drought = 3
	case w.Humidity < 30 && w.Temperature > 85:
		drought = 2
	}

	wildfire := 2
	switch {
	case w.Temperature > 90 && w.Humidity < 30 && w.WindSpeed > 20:
		wildfire = 8
	case w.Temperature > 80 && w.Humidity < 40 && w.WindSpeed > 15:
		wildfire = 6
	}

	return models.ClimateRisks{
		Heat:       heat,
		Flood:      flood,
		Drought:    drought,
		Wildfire:   wildfire,
		AirQuality: aq.Status,
	}
}
