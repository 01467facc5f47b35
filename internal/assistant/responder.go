// Package assistant is the rule-based climate assistant. It matches chat
// messages against ordered keyword rules and fills reply templates with live
// conditions. No language model is involved: equal inputs give equal output.
package assistant

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"climateguard/models"
)

// Conditions is what a reply may draw on. Either field may be nil.
type Conditions struct {
	Reading *models.EnvironmentalReading
	Profile *models.UserProfile
}

type Response struct {
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions"`
}

// Message is one chat turn.
type Message struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	IsUser      bool      `json:"isUser"`
	Timestamp   time.Time `json:"timestamp"`
	Suggestions []string  `json:"suggestions,omitempty"`
}

type rule struct {
	name     string
	keywords []string
	reply    func(c view) Response
}

// rules are evaluated top to bottom; the first whose keyword occurs in the
// lowercased message answers.
var rules = []rule{
	{"air_quality", []string{"air quality", "pollution", "aqi"}, airQualityReply},
	{"weather", []string{"weather", "temperature", "hot", "cold"}, weatherReply},
	{"carbon", []string{"carbon", "footprint", "emissions", "sustainable"}, carbonReply},
	{"community", []string{"volunteer", "community", "action", "help"}, communityReply},
	{"local", []string{"local", "nearby", "area"}, localReply},
	{"emergency", []string{"emergency", "prepare", "disaster", "kit"}, emergencyReply},
	{"recommend", []string{"recommend", "suggest", "what should"}, recommendReply},
}

// Respond answers one message.
func Respond(text string, c Conditions) Response {
	lower := strings.ToLower(text)
	v := newView(c)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.reply(v)
			}
		}
	}
	return defaultReply(v)
}

// Topic names the rule that would answer text, or "default".
func Topic(text string) string {
	lower := strings.ToLower(text)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.name
			}
		}
	}
	return "default"
}

// Chat appends the user's message and the reply to history. The reply
// depends only on text and c; history is carried, not consulted.
func Chat(history []Message, text string, c Conditions, now time.Time) ([]Message, Response) {
	resp := Respond(text, c)
	out := make([]Message, 0, len(history)+2)
	out = append(out, history...)
	out = append(out,
		Message{ID: uuid.NewString(), Text: text, IsUser: true, Timestamp: now},
		Message{ID: uuid.NewString(), Text: resp.Message, Timestamp: now, Suggestions: resp.Suggestions},
	)
	return out, resp
}

// view resolves the values templates use, with the defaults applied when a
// value is missing or zero.
type view struct {
	city        string
	aqi         int
	temp        int
	humidity    int
	uv          int
	risks       *models.ClimateRisks
	name        string
	level       int
	actions     int
	carbonSaved float64
}

func newView(c Conditions) view {
	v := view{city: "your area", aqi: 75, temp: 75, humidity: 60, uv: 5, name: "there", level: 1}
	if r := c.Reading; r != nil {
		if r.Location.City != "" {
			v.city = r.Location.City
		}
		v.aqi = orInt(r.AirQuality.AQI, v.aqi)
		v.temp = orInt(r.Weather.Temperature, v.temp)
		v.humidity = orInt(r.Weather.Humidity, v.humidity)
		v.uv = orInt(r.Weather.UVIndex, v.uv)
		v.risks = &r.Risks
	}
	if p := c.Profile; p != nil {
		if p.Name != "" {
			v.name = p.Name
		}
		v.level = orInt(p.Level, v.level)
		v.actions = p.ActionsCompleted
		v.carbonSaved = p.CarbonSaved
	}
	return v
}

func orInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func airQualityReply(v view) Response {
	switch {
	case v.aqi <= 50:
		return Response{
			Message: fmt.Sprintf("Excellent news! Air quality in %s is outstanding today with an AQI of %d. This is perfect weather for outdoor activities like walking, jogging, cycling, or participating in environmental projects. Consider taking advantage of this clean air by spending time in parks or organizing outdoor community events.", v.city, v.aqi),
			Suggestions: []string{
				"Find tree planting projects nearby",
				"Plan an outdoor workout session",
				"Organize a community walk",
				"Join outdoor environmental activities",
			},
		}
	case v.aqi <= 100:
		return Response{
			Message: fmt.Sprintf("Air quality in %s is moderate today with an AQI of %d. Most people can enjoy outdoor activities, but sensitive individuals should be cautious. Consider shorter outdoor sessions and avoid intense exercise during peak pollution hours (typically 6-10 AM and 4-8 PM).", v.city, v.aqi),
			Suggestions: []string{
				"Check hourly air quality updates",
				"Find indoor air purifying plants",
				"Join air quality monitoring projects",
				"Plan activities for cleaner air times",
			},
		}
	default:
		return Response{
			Message: fmt.Sprintf("Air quality in %s is unhealthy today with an AQI of %d. I recommend limiting outdoor activities, especially for children, elderly, and those with respiratory conditions. This is a great time to focus on indoor environmental actions or advocate for cleaner air policies.", v.city, v.aqi),
			Suggestions: []string{
				"Find indoor environmental projects",
				"Learn about air purifiers",
				"Join advocacy for cleaner air",
				"Support public transportation initiatives",
			},
		}
	}
}

func weatherReply(v view) Response {
	var b strings.Builder
	fmt.Fprintf(&b, "Current conditions in %s: %d°F with %d%% humidity and UV index of %d. ", v.city, v.temp, v.humidity, v.uv)

	var suggestions []string
	switch {
	case v.temp > 90:
		b.WriteString("It's quite hot today! High temperatures stress local ecosystems and increase energy demand. This is perfect timing for urban cooling initiatives like tree planting, which can reduce local temperatures by 2-8°F, or energy conservation projects.")
		suggestions = []string{
			"Find urban cooling projects",
			"Join tree planting initiatives",
			"Learn about energy conservation",
			"Support cooling center initiatives",
		}
	case v.temp < 40:
		b.WriteString("It's cold today! Cold weather increases energy usage for heating. This is an excellent time to focus on weatherization projects, energy efficiency improvements, and helping vulnerable community members stay warm.")
		suggestions = []string{
			"Find weatherization projects",
			"Learn about energy efficiency",
			"Join heating assistance programs",
			"Support vulnerable neighbors",
		}
	default:
		b.WriteString("Weather conditions are comfortable for most outdoor activities. This is perfect for environmental projects and community engagement. Take advantage of these ideal conditions!")
		suggestions = []string{
			"Find outdoor environmental projects",
			"Join community cleanups",
			"Participate in nature restoration",
			"Organize neighborhood initiatives",
		}
	}
	if v.uv > 7 {
		fmt.Fprintf(&b, " Note: UV levels are high (%d), so use SPF 30+ sunscreen and seek shade during peak hours (10am-4pm).", v.uv)
	}
	return Response{Message: b.String(), Suggestions: suggestions}
}

func carbonReply(v view) Response {
	msg := fmt.Sprintf("Outstanding work! You've already saved %s lbs of CO₂ through %d environmental actions as a Level %d Eco Warrior. ", num(v.carbonSaved), v.actions, v.level)
	switch {
	case v.carbonSaved < 100:
		msg += "Here are high-impact ways to boost your carbon savings: using public transport saves 2.6 tons CO₂/year, switching to LED bulbs saves 450 lbs CO₂/year, reducing meat consumption 2-3 days/week saves 1,200 lbs CO₂/year, and proper home insulation can save 2,000 lbs CO₂/year."
	case v.carbonSaved < 500:
		msg += "You're making excellent progress! To reach the next level, consider home energy audits (potential 20% savings), supporting renewable energy projects, organizing community carpooling initiatives, or starting a neighborhood composting program."
	default:
		msg += "You're a carbon-saving champion! Consider mentoring others, leading community initiatives, advocating for policy changes, or starting your own environmental organization to amplify your impact exponentially."
	}
	return Response{
		Message: msg,
		Suggestions: []string{
			"Calculate your current carbon footprint",
			"Find local renewable energy projects",
			"Join transportation alternatives",
			"Start a home energy audit",
		},
	}
}

func communityReply(v view) Response {
	msg := fmt.Sprintf("As a Level %d Eco Warrior in %s with %d completed actions, you have access to amazing community opportunities! ", v.level, v.city, v.actions)
	switch {
	case v.level == 1:
		msg += "Start with beginner-friendly projects like park cleanups, tree planting, or educational workshops. Each action builds your experience, impact, and unlocks new opportunities. You're just getting started on an amazing journey!"
	case v.level < 5:
		msg += "You're ready for more challenging projects! Consider leading small teams, organizing neighborhood initiatives, or mentoring newcomers. Your experience is valuable - share it with others!"
	default:
		msg += "You're an experienced environmental leader! Consider mentoring newcomers, starting your own community projects, partnering with local organizations, or even running for local environmental positions."
	}
	return Response{
		Message: msg,
		Suggestions: []string{
			"Find projects matching your level",
			"Connect with local environmental groups",
			"Start a neighborhood initiative",
			"Mentor other eco-warriors",
		},
	}
}

func localReply(v view) Response {
	msg := fmt.Sprintf("Based on current conditions in %s, here are location-specific recommendations: ", v.city)
	var suggestions []string
	if r := v.risks; r != nil {
		if r.Heat > 3 {
			msg += "High heat risk detected - urban cooling projects like tree planting and green roof installations are especially valuable here. "
			suggestions = append(suggestions, "Find urban cooling initiatives")
		}
		if r.Wildfire > 6 {
			msg += "Wildfire risk is elevated - defensible space creation and vegetation management projects are critical for community safety. "
			suggestions = append(suggestions, "Join fire prevention programs")
		}
		if r.Flood == models.FloodHigh {
			msg += "Flood risk detected - stormwater management and green infrastructure projects are important for resilience. "
			suggestions = append(suggestions, "Find flood mitigation projects")
		}
	}
	if len(suggestions) == 0 {
		msg += "Your area has relatively low climate risks - perfect for proactive environmental projects!"
		suggestions = []string{
			"Explore all local projects",
			"Connect with city environmental office",
			"Join neighborhood associations",
			"Start preventive initiatives",
		}
	}
	return Response{Message: msg, Suggestions: suggestions}
}

func emergencyReply(v view) Response {
	msg := fmt.Sprintf("Climate preparedness is essential for %s! Build an emergency kit with: water (1 gallon/person/day for 3 days), non-perishable food (3-day supply), battery-powered radio, flashlight, first aid supplies, medications, and important documents in waterproof container. ", v.city)
	if r := v.risks; r != nil {
		if r.Heat > 3 {
			msg += "Your area has elevated heat risk - include cooling supplies, know local cooling centers, and have a heat emergency plan. "
		}
		if r.Wildfire > 6 {
			msg += "Wildfire risk is high - prepare evacuation routes, go-bags, and create defensible space around your home. "
		}
		if r.Flood == models.FloodHigh {
			msg += "Flood risk detected - know evacuation routes, waterproof important documents, and have emergency contacts. "
		}
	}
	return Response{
		Message: msg,
		Suggestions: []string{
			"Build your emergency kit checklist",
			"Learn local evacuation routes",
			"Join community preparedness groups",
			"Create family emergency plan",
		},
	}
}

func recommendReply(v view) Response {
	var recs []string
	if v.aqi > 100 {
		recs = append(recs, "Air quality improvement projects (tree planting, clean transportation advocacy)")
	}
	if v.temp > 85 {
		recs = append(recs, "Urban cooling initiatives (shade trees, green roofs, cool pavement)")
	}
	if v.level >= 3 {
		recs = append(recs, "Leadership opportunities (project organizing, mentoring, policy advocacy)")
	} else {
		recs = append(recs, "Skill-building activities (workshops, training sessions, certification programs)")
	}
	return Response{
		Message: fmt.Sprintf("Based on your Level %d status and current environmental conditions in %s, I recommend: %s. These align perfectly with both your experience level and local environmental needs, maximizing your impact!", v.level, v.city, strings.Join(recs, ", ")),
		Suggestions: []string{
			"View recommended projects",
			"Check your skill level matches",
			"Find training opportunities",
			"Connect with project organizers",
		},
	}
}

func defaultReply(v view) Response {
	return Response{
		Message: fmt.Sprintf("Hi %s! As a Level %d Eco Warrior in %s with %d completed actions, I'm here to help you make an even bigger environmental impact. I can provide personalized recommendations based on your local conditions, suggest projects matching your experience level, help you track your climate action journey, and connect you with like-minded community members. What would you like to explore today?", v.name, v.level, v.city, v.actions),
		Suggestions: []string{
			fmt.Sprintf("What's the air quality in %s?", v.city),
			"Find projects for my level",
			"How can I increase my impact?",
			"Connect me with local groups",
		},
	}
}
