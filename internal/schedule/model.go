package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	DateLayout    = "2006-01-02"
	StatusPlanned = "scheduled"

	DefaultTeamName = "Equipo"
	DefaultLocation = "Ubicación no disponible"
)

// SessionDefinition is one row of the sessions table: a weekly commitment of a
// team between StartDate and EndDate (both inclusive).
type SessionDefinition struct {
	SessionID string `db:"sessionid" json:"session_id" validate:"required"`
	TeamID    string `db:"teamid" json:"team_id" validate:"required"`
	CoachID   string `db:"coachid" json:"coach_id"`
	StartDate string `db:"startdate" json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `db:"enddate" json:"end_date" validate:"required,datetime=2006-01-02"`
	StartTime string `db:"starttime" json:"start_time" validate:"required"`
	EndTime   string `db:"endtime" json:"end_time" validate:"required"`
	Weekday   string `db:"daysofweek" json:"weekday" validate:"required"`
	Repeat    string `db:"repeat_rule" json:"repeat"`
}

var validate = validator.New()

// Validate checks the row shape. An unknown weekday label is not an error
// here; the expander skips those separately.
func (d SessionDefinition) Validate() error {
	if err := validate.Struct(d); err != nil {
		return err
	}
	start, _ := time.Parse(DateLayout, d.StartDate)
	end, _ := time.Parse(DateLayout, d.EndDate)
	if end.Before(start) {
		return fmt.Errorf("end date %s is before start date %s", d.EndDate, d.StartDate)
	}
	if _, err := parseClock(d.StartTime); err != nil {
		return fmt.Errorf("start time: %w", err)
	}
	if _, err := parseClock(d.EndTime); err != nil {
		return fmt.Errorf("end time: %w", err)
	}
	return nil
}

// TeamInfo carries the display fields copied onto every occurrence of a team.
type TeamInfo struct {
	Name     string
	Location string
}

type Occurrence struct {
	ID             OccurrenceKey `json:"id"`
	SessionID      string        `json:"session_id"`
	TeamID         string        `json:"team_id"`
	TeamName       string        `json:"team_name"`
	StartsAt       time.Time     `json:"starts_at"`
	EndsAt         time.Time     `json:"ends_at"`
	OccurrenceDate string        `json:"occurrence_date"`
	Location       string        `json:"location"`
	Status         string        `json:"status"`
}

// clock is a time of day.
type clock struct{ h, m, s int }

// parseClock reads "H:M" or "H:M:S"; missing seconds are 0.
func parseClock(v string) (clock, error) {
	parts := strings.Split(strings.TrimSpace(v), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return clock{}, fmt.Errorf("invalid time of day %q", v)
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return clock{}, fmt.Errorf("invalid time of day %q", v)
		}
		nums[i] = n
	}
	c := clock{h: nums[0], m: nums[1], s: nums[2]}
	if c.h > 23 || c.m > 59 || c.s > 59 {
		return clock{}, fmt.Errorf("invalid time of day %q", v)
	}
	return c, nil
}

// combineDateTime puts a civil date and a time of day together in loc.
func combineDateTime(date time.Time, c clock, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, c.h, c.m, c.s, 0, loc)
}
