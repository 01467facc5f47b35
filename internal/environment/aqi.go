package environment

// StatusInfo is the display tuple attached to an AQI value.
type StatusInfo struct {
	Status               string `json:"status"`
	Color                string `json:"color"`
	HealthRecommendation string `json:"healthRecommendation"`
}

var aqiTiers = []struct {
	max  int
	info StatusInfo
}{
	{50, StatusInfo{"Good", "#10b981",
		"Air quality is satisfactory. Enjoy outdoor activities!"}},
	{100, StatusInfo{"Moderate", "#f59e0b",
		"Air quality is acceptable for most people. Sensitive individuals should consider limiting prolonged outdoor exertion."}},
	{150, StatusInfo{"Unhealthy for Sensitive Groups", "#f97316",
		"Members of sensitive groups may experience health effects. Limit outdoor activities if you experience symptoms."}},
	{200, StatusInfo{"Unhealthy", "#ef4444",
		"Everyone may begin to experience health effects. Avoid outdoor activities."}},
}

var veryUnhealthy = StatusInfo{"Very Unhealthy", "#991b1b",
	"Health alert: everyone may experience serious health effects. Stay indoors."}

// AQIStatus maps an AQI value onto one of five fixed tiers. Upper bounds
// (50, 100, 150, 200) belong to the lower tier.
func AQIStatus(aqi int) StatusInfo {
	for _, t := range aqiTiers {
		if aqi <= t.max {
			return t.info
		}
	}
	return veryUnhealthy
}
