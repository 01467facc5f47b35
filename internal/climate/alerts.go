package climate

import (
	"fmt"
	"time"

	"climateguard/models"
)

const (
	colorRed   = "#ef4444"
	colorAmber = "#f59e0b"
)

// Alerts derives the alert list for a reading. The list is rebuilt from
// scratch on every call, so a dismissed alert comes back while its
// condition holds.
func Alerts(r models.EnvironmentalReading, now time.Time) []models.Alert {
	ms := now.UnixMilli()
	var out []models.Alert

	switch aqi := r.AirQuality.AQI; {
	case aqi > 150:
		out = append(out, models.Alert{
			ID:        fmt.Sprintf("aqi_unhealthy_%d", ms),
			Type:      "air-quality",
			Severity:  models.SeverityHigh,
			Title:     "Unhealthy Air Quality",
			Message:   fmt.Sprintf("AQI is %d. %s", aqi, r.AirQuality.HealthRecommendation),
			Timestamp: now,
			Color:     colorRed,
		})
	case aqi > 100:
		out = append(out, models.Alert{
			ID:        fmt.Sprintf("aqi_moderate_%d", ms),
			Type:      "air-quality",
			Severity:  models.SeverityModerate,
			Title:     "Air Quality Advisory",
			Message:   fmt.Sprintf("AQI is %d. Sensitive individuals should limit outdoor activities.", aqi),
			Timestamp: now,
			Color:     colorAmber,
		})
	}

	if t := r.Weather.Temperature; t > 95 {
		out = append(out, models.Alert{
			ID:        fmt.Sprintf("heat_warning_%d", ms),
			Type:      "weather",
			Severity:  models.SeverityHigh,
			Title:     "Extreme Heat Warning",
			Message:   fmt.Sprintf("Temperature is %d°F. Stay hydrated and avoid prolonged sun exposure.", t),
			Timestamp: now,
			Color:     colorRed,
		})
	}

	if r.Risks.Wildfire > 7 {
		out = append(out, models.Alert{
			ID:        fmt.Sprintf("wildfire_risk_%d", ms),
			Type:      "emergency",
			Severity:  models.SeverityHigh,
			Title:     "High Wildfire Risk",
			Message:   "Wildfire conditions are dangerous. Prepare emergency kit and know evacuation routes.",
			Timestamp: now,
			Color:     colorRed,
		})
	}
	return out
}
