package emergency

import "climateguard/models"

type ProtocolType string

const (
	ProtocolEarthquake  ProtocolType = "earthquake"
	ProtocolWildfire    ProtocolType = "wildfire"
	ProtocolFlood       ProtocolType = "flood"
	ProtocolHeatWave    ProtocolType = "heat_wave"
	ProtocolAirQuality  ProtocolType = "air_quality"
	ProtocolPowerOutage ProtocolType = "power_outage"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

type Protocol struct {
	ID               string       `json:"id"`
	Type             ProtocolType `json:"type"`
	Title            string       `json:"title"`
	Severity         Severity     `json:"severity"`
	Steps            []string     `json:"steps"`
	SuppliesNeeded   []string     `json:"supplies_needed"`
	EvacuationInfo   string       `json:"evacuation_info,omitempty"`
	ShelterLocations []string     `json:"shelter_locations,omitempty"`
}

var protocols = []Protocol{
	{
		ID: "earthquake", Type: ProtocolEarthquake, Title: "Earthquake Emergency Protocol", Severity: SeverityHigh,
		Steps: []string{
			"DROP to hands and knees immediately",
			"Take COVER under a sturdy desk or table",
			"HOLD ON to your shelter and protect your head",
			"Stay where you are until shaking stops",
			"If outdoors, move away from buildings and power lines",
			"If in a vehicle, pull over and stay inside",
			"After shaking stops, check for injuries and hazards",
			"Turn on battery-powered radio for emergency information",
			"Be prepared for aftershocks",
		},
		SuppliesNeeded: []string{
			"Emergency kit with water and food",
			"Battery-powered radio",
			"Flashlight and extra batteries",
			"First aid kit",
			"Whistle for signaling help",
			"Dust masks",
			"Plastic sheeting and duct tape",
		},
		EvacuationInfo: "Know your evacuation routes. Have a family meeting point.",
		ShelterLocations: []string{
			"Moscone Center - 747 Howard St",
			"Bill Graham Civic Auditorium - 99 Grove St",
			"Local schools designated as emergency shelters",
		},
	},
	{
		ID: "wildfire", Type: ProtocolWildfire, Title: "Wildfire Emergency Protocol", Severity: SeverityCritical,
		Steps: []string{
			"Monitor emergency alerts and evacuation orders",
			"Prepare to evacuate immediately if ordered",
			"Close all windows and doors",
			"Remove flammable materials from around house",
			"Connect garden hoses to water sources",
			"Place wet towels under doors to prevent smoke",
			"If trapped, call 911 and signal for help",
			"Stay low to avoid smoke inhalation",
			"Have emergency supplies ready to go",
		},
		SuppliesNeeded: []string{
			"Go-bag with essentials",
			"N95 masks for smoke protection",
			"Important documents in waterproof container",
			"Cash and credit cards",
			"Medications",
			"Phone chargers",
			"Change of clothes",
			"Pet supplies if applicable",
		},
		EvacuationInfo: "Know multiple evacuation routes. Traffic will be heavy.",
		ShelterLocations: []string{
			"Check local emergency management for current shelters",
			"Red Cross evacuation centers",
			"Community centers outside fire zones",
		},
	},
	{
		ID: "heat_wave", Type: ProtocolHeatWave, Title: "Extreme Heat Emergency Protocol", Severity: SeverityModerate,
		Steps: []string{
			"Stay indoors during hottest parts of day (10am-6pm)",
			"Drink water regularly, even if not thirsty",
			"Wear lightweight, light-colored, loose-fitting clothing",
			"Take cool showers or baths",
			"Use fans and air conditioning if available",
			"Check on elderly neighbors and relatives",
			"Avoid alcohol and caffeine",
			"Never leave people or pets in parked vehicles",
			"Seek immediate medical attention for heat exhaustion symptoms",
		},
		SuppliesNeeded: []string{
			"Extra water (1 gallon per person per day)",
			"Electrolyte drinks",
			"Battery-powered fans",
			"Ice packs",
			"Light-colored clothing",
			"Sunscreen SPF 30+",
			"Wide-brimmed hats",
		},
		ShelterLocations: []string{
			"Public libraries with air conditioning",
			"Shopping malls",
			"Community cooling centers",
			"Senior centers",
		},
	},
	{
		ID: "air_quality", Type: ProtocolAirQuality, Title: "Poor Air Quality Protocol", Severity: SeverityModerate,
		Steps: []string{
			"Stay indoors with windows and doors closed",
			"Use air purifiers if available",
			"Avoid outdoor exercise and activities",
			"Wear N95 masks when going outside",
			"Keep medications for asthma/respiratory conditions handy",
			"Monitor air quality index (AQI) regularly",
			"Use HEPA filters in HVAC systems",
			"Avoid activities that create more particles (smoking, candles)",
			"Seek medical attention if experiencing breathing difficulties",
		},
		SuppliesNeeded: []string{
			"N95 or P100 masks",
			"Air purifiers with HEPA filters",
			"Respiratory medications",
			"Sealed windows and doors",
			"Indoor activities and entertainment",
		},
	},
	{
		ID: "flood", Type: ProtocolFlood, Title: "Flood Emergency Protocol", Severity: SeverityHigh,
		Steps: []string{
			"Move to higher ground immediately",
			"Avoid walking or driving through flood waters",
			"Turn off utilities if instructed by authorities",
			"Do not touch electrical equipment if wet",
			"Listen to emergency broadcasts",
			"Signal for help if trapped",
			"Stay away from downed power lines",
			"Boil water before drinking if advised",
			"Document damage with photos for insurance",
		},
		SuppliesNeeded: []string{
			"Waterproof emergency kit",
			"Battery-powered radio",
			"Waterproof flashlight",
			"Life jackets",
			"Rope for rescue",
			"Plastic bags for important items",
			"Water purification tablets",
		},
		EvacuationInfo: "Know flood evacuation routes. Avoid low-lying areas.",
		ShelterLocations: []string{
			"Higher elevation community centers",
			"Schools on higher ground",
			"Emergency shelters announced by authorities",
		},
	},
}

func Protocols() []Protocol {
	return append([]Protocol(nil), protocols...)
}

// ProtocolFor returns the protocol of the given type, if any.
func ProtocolFor(t ProtocolType) (Protocol, bool) {
	for _, p := range protocols {
		if p.Type == t {
			return p, true
		}
	}
	return Protocol{}, false
}

func ProtocolsBySeverity(s Severity) []Protocol {
	var out []Protocol
	for _, p := range protocols {
		if p.Severity == s {
			out = append(out, p)
		}
	}
	return out
}

// RelevantProtocols picks the protocols the current reading calls for.
// California locations always get the earthquake protocol.
func RelevantProtocols(r *models.EnvironmentalReading) []Protocol {
	if r == nil {
		return nil
	}
	var types []ProtocolType
	if r.AirQuality.AQI > 150 {
		types = append(types, ProtocolAirQuality)
	}
	if r.Weather.Temperature > 95 {
		types = append(types, ProtocolHeatWave)
	}
	if r.Risks.Wildfire > 7 {
		types = append(types, ProtocolWildfire)
	}
	if r.Location.State == "CA" {
		types = append(types, ProtocolEarthquake)
	}
	out := make([]Protocol, 0, len(types))
	for _, t := range types {
		if p, ok := ProtocolFor(t); ok {
			out = append(out, p)
		}
	}
	return out
}
