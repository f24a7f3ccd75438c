package attendance

import (
	"coachdesk-backend/internal/schedule"
)

type SetMarkRequest struct {
	Assisted *bool `json:"assisted" binding:"required"`
}

type SetMarkResponse struct {
	Mark    Mark `json:"mark"`
	Created bool `json:"created"`
}

type MarksResponse struct {
	OccurrenceID schedule.OccurrenceKey `json:"occurrence_id"`
	Items        []Mark                 `json:"items"`
}

// Sheet is what the coach sees for one occurrence.
type Sheet struct {
	OccurrenceID schedule.OccurrenceKey `json:"occurrence_id"`
	SessionID    string                 `json:"session_id"`
	TeamID       string                 `json:"team_id"`
	Date         string                 `json:"date"`
	Rows         []RosterMark           `json:"rows"`
	Counts       Counts                 `json:"counts"`
}
