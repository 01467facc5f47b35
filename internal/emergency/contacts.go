// Package emergency holds the static emergency contact directory and the
// preparedness protocols surfaced for the current conditions.
package emergency

import (
	"strings"
	"time"
)

type ContactType string

const (
	ContactEmergency ContactType = "emergency"
	ContactMedical   ContactType = "medical"
	ContactFire      ContactType = "fire"
	ContactPolice    ContactType = "police"
	ContactUtility   ContactType = "utility"
	ContactFamily    ContactType = "family"
)

type Contact struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Phone        string      `json:"phone"`
	Type         ContactType `json:"type"`
	Location     string      `json:"location,omitempty"`
	Available24h bool        `json:"available24h"`
	Description  string      `json:"description,omitempty"`
}

var contacts = []Contact{
	{ID: "911", Name: "Emergency Services", Phone: "911", Type: ContactEmergency, Available24h: true,
		Description: "Police, Fire, Medical emergencies"},
	{ID: "poison_control", Name: "Poison Control Center", Phone: "1-800-222-1222", Type: ContactMedical, Available24h: true,
		Description: "Poison emergencies and information"},
	{ID: "red_cross", Name: "American Red Cross", Phone: "1-800-733-2767", Type: ContactEmergency, Available24h: true,
		Description: "Disaster relief and emergency assistance"},
	{ID: "sf_fire", Name: "San Francisco Fire Department", Phone: "(415) 558-3200", Type: ContactFire,
		Location: "San Francisco, CA", Available24h: true, Description: "Non-emergency fire department services"},
	{ID: "sf_police", Name: "San Francisco Police (Non-Emergency)", Phone: "(415) 553-0123", Type: ContactPolice,
		Location: "San Francisco, CA", Available24h: true, Description: "Non-emergency police services"},
	{ID: "pge", Name: "PG&E Emergency Line", Phone: "1-800-743-5000", Type: ContactUtility,
		Location: "Northern California", Available24h: true, Description: "Gas leaks, power outages, downed lines"},
	{ID: "sf_311", Name: "SF 311 Customer Service", Phone: "311", Type: ContactUtility,
		Location: "San Francisco, CA", Available24h: false, Description: "City services and non-emergency issues"},
	{ID: "bay_area_211", Name: "Bay Area 211", Phone: "211", Type: ContactEmergency,
		Location: "Bay Area, CA", Available24h: true, Description: "Community resources and assistance"},
}

// Contacts returns the directory. With a location, contacts bound to another
// area are dropped; unbound contacts always stay.
func Contacts(location string) []Contact {
	loc := strings.ToLower(strings.TrimSpace(location))
	out := make([]Contact, 0, len(contacts))
	for _, c := range contacts {
		if loc == "" || c.Location == "" || strings.Contains(strings.ToLower(c.Location), loc) {
			out = append(out, c)
		}
	}
	return out
}

func ContactsByType(t ContactType) []Contact {
	var out []Contact
	for _, c := range contacts {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

// DialString strips everything but digits and '+'.
func DialString(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsAvailable reports whether the contact answers at the given local time.
// Services without 24h coverage are assumed open 08:00-18:00.
func IsAvailable(c Contact, now time.Time) bool {
	if c.Available24h {
		return true
	}
	h := now.Hour()
	return h >= 8 && h < 18
}

// SuppliesChecklist is the general preparedness checklist.
func SuppliesChecklist() []string {
	return []string{
		"Water (1 gallon per person per day for 3 days)",
		"Non-perishable food (3-day supply)",
		"Battery-powered or hand crank radio",
		"Flashlight and extra batteries",
		"First aid kit",
		"Whistle for signaling help",
		"Dust masks and plastic sheeting",
		"Moist towelettes and garbage bags",
		"Wrench or pliers to turn off utilities",
		"Manual can opener",
		"Local maps",
		"Cell phone with chargers and backup battery",
		"Cash and credit cards",
		"Emergency contact information",
		"Copies of important documents",
		"Sleeping bags and blankets",
		"Change of clothing and sturdy shoes",
		"Fire extinguisher",
		"Matches in waterproof container",
		"Feminine supplies and personal hygiene items",
		"Mess kits, paper cups, plates, utensils",
		"Paper and pencil",
		"Books, games, puzzles for children",
	}
}
