package models

import "time"

// Health status values
const (
	StatusOK          = "ok"
	StatusUnavailable = "unavailable"
)

// NetworkHealth describes the network snapshot currently being served
type NetworkHealth struct {
	SnapshotID string    `json:"snapshotId"`
	Source     string    `json:"source"`
	LoadedAt   time.Time `json:"loadedAt"`
	AgeSeconds int       `json:"ageSeconds"`
	Stations   int       `json:"stations"`
	Edges      int       `json:"edges"`
	Lines      int       `json:"lines"`
	Records    int       `json:"records"`
}

// HealthResponse is the JSON response for GET /health
type HealthResponse struct {
	Status    string         `json:"status"`
	Network   *NetworkHealth `json:"network,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}
