package pipeline

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Report is a record of one pipeline run: identity, timing, per-stage
// durations, and what the run produced or skipped.
type Report struct {
	ID               string           `json:"id"`
	StartedAt        time.Time        `json:"started_at"`
	DurationMS       int64            `json:"duration_ms"`
	StageDurationsMS map[string]int64 `json:"stage_durations_ms"`
	Pages            int              `json:"pages"`
	Sections         int              `json:"sections"`
	Skipped          []string         `json:"skipped,omitempty"`
	Outcome          string           `json:"outcome"` // success|failed
	Error            string           `json:"error,omitempty"`
}

func newReport() *Report {
	return &Report{
		ID:               uuid.NewString(),
		StartedAt:        time.Now().UTC(),
		StageDurationsMS: make(map[string]int64),
	}
}

// ToJSON serializes the report.
func (r *Report) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return data, nil
}
