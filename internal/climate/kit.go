package climate

import (
	"time"

	"climateguard/models"
)

// DefaultKit is the starter emergency kit seeded for a user without one.
func DefaultKit(userID string, now time.Time) []models.EmergencyKitItem {
	date := func(s string) *string { return &s }
	item := func(id, name string, status models.KitStatus, qty string, expires *string) models.EmergencyKitItem {
		return models.EmergencyKitItem{
			ID:          id,
			UserID:      userID,
			ItemName:    name,
			Status:      status,
			Quantity:    qty,
			Expires:     expires,
			LastUpdated: now,
		}
	}
	return []models.EmergencyKitItem{
		item("kit_1", "Water (1 gallon/person/day)", models.KitComplete, "3 gallons", nil),
		item("kit_2", "Non-perishable food (3 days)", models.KitIncomplete, "0 days", nil),
		item("kit_3", "Battery-powered radio", models.KitComplete, "1 unit", nil),
		item("kit_4", "Flashlight", models.KitComplete, "2 units", date("2025-03-15")),
		item("kit_5", "First aid kit", models.KitIncomplete, "1 kit (expired)", date("2024-12-20")),
		item("kit_6", "Medications", models.KitComplete, "30 days supply", date("2025-06-30")),
	}
}
