package models

import "time"

// Location is a resolved place. It is replaced wholesale on every resolution.
type Location struct {
	Latitude  float64 `bson:"latitude"  json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
	City      string  `bson:"city"      json:"city"`
	State     string  `bson:"state"     json:"state"`
	Country   string  `bson:"country"   json:"country"`
	Address   string  `bson:"address"   json:"address"`
}

// Coordinates returns the lat/lon pair of the location.
func (l Location) Coordinates() Coordinates {
	return Coordinates{Latitude: l.Latitude, Longitude: l.Longitude}
}

type Coordinates struct {
	Latitude  float64 `bson:"latitude"  json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

type AirQuality struct {
	AQI                  int     `bson:"aqi"                  json:"aqi"` // 0..500
	PM25                 float64 `bson:"pm25"                 json:"pm25"`
	PM10                 float64 `bson:"pm10"                 json:"pm10"`
	O3                   float64 `bson:"o3"                   json:"o3"`
	NO2                  float64 `bson:"no2"                  json:"no2"`
	SO2                  float64 `bson:"so2"                  json:"so2"`
	CO                   float64 `bson:"co"                   json:"co"`
	Status               string  `bson:"status"               json:"status"`
	Color                string  `bson:"color"                json:"color"`
	HealthRecommendation string  `bson:"healthRecommendation" json:"healthRecommendation"`
}

// Weather uses imperial units: °F, mph, hPa and miles.
type Weather struct {
	Temperature   int    `bson:"temperature"   json:"temperature"`
	FeelsLike     int    `bson:"feelsLike"     json:"feelsLike"`
	Humidity      int    `bson:"humidity"      json:"humidity"`
	WindSpeed     int    `bson:"windSpeed"     json:"windSpeed"`
	WindDirection int    `bson:"windDirection" json:"windDirection"`
	UVIndex       int    `bson:"uvIndex"       json:"uvIndex"` // 0..11
	Condition     string `bson:"condition"     json:"condition"`
	Description   string `bson:"description"   json:"description"`
	Pressure      int    `bson:"pressure"      json:"pressure"`
	Visibility    int    `bson:"visibility"    json:"visibility"`
}

type FloodRisk string

const (
	FloodLow      FloodRisk = "Low"
	FloodModerate FloodRisk = "Moderate"
	FloodHigh     FloodRisk = "High"
)

type ClimateRisks struct {
	Heat       int       `bson:"heat"       json:"heat"` // 1..5
	Flood      FloodRisk `bson:"flood"      json:"flood"`
	Drought    int       `bson:"drought"    json:"drought"`  // 1..3
	Wildfire   int       `bson:"wildfire"   json:"wildfire"` // 1..10
	AirQuality string    `bson:"airQuality" json:"airQuality"`
}

// EnvironmentalReading is regenerated wholesale on each refresh and never
// partially updated.
type EnvironmentalReading struct {
	AirQuality  AirQuality   `bson:"airQuality"  json:"airQuality"`
	Weather     Weather      `bson:"weather"     json:"weather"`
	Risks       ClimateRisks `bson:"risks"       json:"risks"`
	Location    Location     `bson:"location"    json:"location"`
	LastUpdated time.Time    `bson:"lastUpdated" json:"lastUpdated"`
}

type HistoricalPoint struct {
	Date        string `json:"date"` // YYYY-MM-DD
	AQI         int    `json:"aqi"`
	Temperature int    `json:"temperature"`
	Humidity    int    `json:"humidity"`
}

// DefaultLocation is used whenever no better location source answers.
func DefaultLocation() Location {
	return Location{
		Latitude:  37.7749,
		Longitude: -122.4194,
		City:      "San Francisco",
		State:     "CA",
		Country:   "United States",
		Address:   "San Francisco, CA",
	}
}
