package models

import "time"

type KitStatus string

const (
	KitComplete   KitStatus = "complete"
	KitIncomplete KitStatus = "incomplete"
)

// EmergencyKitItem ids repeat across users, so the item id is not the
// document key.
type EmergencyKitItem struct {
	ID          string    `bson:"item_id"      json:"id"` // kit_1..kit_6, unique per user
	UserID      string    `bson:"user_id"      json:"user_id"`
	ItemName    string    `bson:"item_name"    json:"item_name"`
	Status      KitStatus `bson:"status"       json:"status"`
	Quantity    string    `bson:"quantity"     json:"quantity"`
	Expires     *string   `bson:"expires"      json:"expires"` // YYYY-MM-DD or null
	LastUpdated time.Time `bson:"last_updated" json:"last_updated"`
}

// Expired is evaluated against the given day; items without a date never expire.
func (k EmergencyKitItem) Expired(now time.Time) bool {
	if k.Expires == nil || *k.Expires == "" {
		return false
	}
	if _, err := time.Parse("2006-01-02", *k.Expires); err != nil {
		return false
	}
	return now.Format("2006-01-02") > *k.Expires
}

// KitUpdate is a partial kit item update. Set ClearExpires to drop the date.
type KitUpdate struct {
	ItemName     *string    `json:"item_name,omitempty" validate:"omitempty,min=1,max=120"`
	Status       *KitStatus `json:"status,omitempty"    validate:"omitempty,oneof=complete incomplete"`
	Quantity     *string    `json:"quantity,omitempty"  validate:"omitempty,max=60"`
	Expires      *string    `json:"expires,omitempty"   validate:"omitempty,datetime=2006-01-02"`
	ClearExpires bool       `json:"clear_expires,omitempty"`
}

// Apply returns a copy of k with the update applied.
func (u KitUpdate) Apply(k EmergencyKitItem, now time.Time) EmergencyKitItem {
	if u.ItemName != nil {
		k.ItemName = *u.ItemName
	}
	if u.Status != nil {
		k.Status = *u.Status
	}
	if u.Quantity != nil {
		k.Quantity = *u.Quantity
	}
	if u.Expires != nil {
		exp := *u.Expires
		k.Expires = &exp
	}
	if u.ClearExpires {
		k.Expires = nil
	}
	k.LastUpdated = now
	return k
}
