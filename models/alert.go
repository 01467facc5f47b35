package models

import "time"

type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "low"
	SeverityModerate AlertSeverity = "moderate"
	SeverityHigh     AlertSeverity = "high"
)

// Alert is ephemeral: regenerated from thresholds on every refresh.
type Alert struct {
	ID        string        `json:"id"`
	Type      string        `json:"type"` // air-quality | weather | emergency
	Severity  AlertSeverity `json:"severity"`
	Title     string        `json:"title"`
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
	Color     string        `json:"color"`
}
