package domain

import "time"

// ServerHealth is the latest tracked probe outcome for a single MCP server.
type ServerHealth struct {
	Name           string
	Status         ProbeStatus
	Latency        *time.Duration
	Note           string
	LastChecked    *time.Time
	LastSuccessful *time.Time
}
