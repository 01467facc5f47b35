package environment

import (
	"math"
	"strings"
	"time"

	"climateguard/models"
)

// Rand is the random source the synthesizer draws from. *rand.Rand from
// math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
}

// Season buckets a month: winter is December through March, summer June
// through September.
type Season int

const (
	SeasonOther Season = iota
	SeasonWinter
	SeasonSummer
)

func SeasonOf(t time.Time) Season {
	switch m := t.Month(); {
	case m == time.December || m <= time.March:
		return SeasonWinter
	case m >= time.June && m <= time.September:
		return SeasonSummer
	default:
		return SeasonOther
	}
}

func baseTemperature(loc models.Location, s Season) float64 {
	pick := func(winter, summer, other float64) float64 {
		switch s {
		case SeasonWinter:
			return winter
		case SeasonSummer:
			return summer
		}
		return other
	}
	switch {
	case strings.Contains(strings.ToLower(loc.City), "san francisco"):
		return pick(55, 75, 65)
	case loc.State == "CA":
		return pick(60, 85, 75)
	default:
		return pick(40, 80, 65)
	}
}

func baseAQI(loc models.Location) float64 {
	city := strings.ToLower(loc.City)
	switch {
	case strings.Contains(city, "los angeles"):
		return 85
	case strings.Contains(city, "san francisco"):
		return 55
	case strings.Contains(city, "new york"):
		return 65
	}
	return 45
}

// Synthesize produces a plausible air/weather pair for loc at the given local
// time. Randomness is bounded jitter around location and season baselines.
func Synthesize(loc models.Location, at time.Time, rng Rand) (models.AirQuality, models.Weather) {
	s := SeasonOf(at)
	hour := float64(at.Hour())

	daily := math.Sin((hour-6)*math.Pi/12) * 15
	temperature := round(baseTemperature(loc, s) + daily + (rng.Float64()-0.5)*10)

	aqiRaw := clamp(baseAQI(loc)+(rng.Float64()-0.5)*40, 15, 200)
	aqi := round(aqiRaw)
	pm25 := aqiRaw/4 + rng.Float64()*10
	info := AQIStatus(aqi)

	air := models.AirQuality{
		AQI:                  aqi,
		PM25:                 round1(pm25),
		PM10:                 round1(pm25*1.5 + rng.Float64()*5),
		O3:                   float64(round(30 + rng.Float64()*40)),
		NO2:                  float64(round(20 + rng.Float64()*30)),
		SO2:                  float64(round(2 + rng.Float64()*10)),
		CO:                   round1(0.3 + rng.Float64()*0.7),
		Status:               info.Status,
		Color:                info.Color,
		HealthRecommendation: info.HealthRecommendation,
	}

	humidity := round(40 + rng.Float64()*40)
	feelsLike := float64(temperature) + (rng.Float64()-0.5)*8
	if humidity > 70 {
		feelsLike += 5
	}

	condition, description := "Partly Cloudy", "partly cloudy"
	switch s {
	case SeasonSummer:
		condition, description = "Clear", "clear sky"
	case SeasonWinter:
		condition, description = "Cloudy", "overcast clouds"
	}

	weather := models.Weather{
		Temperature:   temperature,
		Humidity:      humidity,
		WindSpeed:     round(5 + rng.Float64()*15),
		WindDirection: round(rng.Float64() * 360),
		UVIndex:       int(clamp(float64(round(2+(hour-6)/2+rng.Float64()*3)), 1, 11)),
		Condition:     condition,
		Description:   description,
		Pressure:      round(1000 + rng.Float64()*40),
		Visibility:    round(8 + rng.Float64()*5),
		FeelsLike:     round(feelsLike),
	}
	return air, weather
}

// round matches half-up rounding for negative halves too.
func round(x float64) int { return int(math.Floor(x + 0.5)) }

func round1(x float64) float64 { return math.Floor(x*10+0.5) / 10 }

func clamp(x, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, x)) }
