package domain

import "time"

// LogType groups activity log entries by what they describe
type LogType string

const (
	LogTypeSale    LogType = "sale"
	LogTypeProduct LogType = "product"
	LogTypeSystem  LogType = "system"
)

// ActivityLog is one entry of the activity feed
type ActivityLog struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Type      LogType   `json:"type"`
}
