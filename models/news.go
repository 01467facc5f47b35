package models

import "time"

type NewsSeverity string

const (
	NewsInfo     NewsSeverity = "info"
	NewsWarning  NewsSeverity = "warning"
	NewsCritical NewsSeverity = "critical"
)

type ClimateNews struct {
	ID          string       `bson:"_id"                json:"id"`
	Title       string       `bson:"title"              json:"title"`
	Content     string       `bson:"content"            json:"content"`
	Source      string       `bson:"source"             json:"source"`
	URL         string       `bson:"url,omitempty"      json:"url,omitempty"`
	Category    string       `bson:"category"           json:"category"`
	Location    string       `bson:"location,omitempty" json:"location,omitempty"`
	Severity    NewsSeverity `bson:"severity"           json:"severity"`
	PublishedAt time.Time    `bson:"published_at"       json:"published_at"`
	CreatedAt   time.Time    `bson:"created_at"         json:"created_at"`
}
