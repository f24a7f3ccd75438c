package schedule

import (
	"sort"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"
)

// Window bounds expansion to the calendar dates From..To, both inclusive, in
// From's location. A zero To means no upper bound besides each EndDate.
type Window struct {
	From time.Time
	To   time.Time
}

// Expand returns the occurrences dated today or later, sorted by StartsAt.
// Times are built in today's location. Definitions that are expired, invalid
// or carry an unknown weekday are skipped.
func Expand(defs []SessionDefinition, teams map[string]TeamInfo, today time.Time) []Occurrence {
	return ExpandWindow(defs, teams, Window{From: today})
}

func ExpandWindow(defs []SessionDefinition, teams map[string]TeamInfo, w Window) []Occurrence {
	loc := w.From.Location()
	from := civilDate(w.From)
	var to time.Time
	if !w.To.IsZero() {
		to = civilDate(w.To.In(loc))
	}

	out := []Occurrence{}
	for _, def := range defs {
		out = append(out, expandOne(def, teams, from, to, loc)...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].StartsAt.Equal(out[j].StartsAt) {
			return out[i].StartsAt.Before(out[j].StartsAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func expandOne(def SessionDefinition, teams map[string]TeamInfo, from, to time.Time, loc *time.Location) []Occurrence {
	if err := def.Validate(); err != nil {
		logger.Info.Printf("skipping session %q: %v", def.SessionID, err)
		return nil
	}
	// Validate already parsed these
	start, _ := time.Parse(DateLayout, def.StartDate)
	end, _ := time.Parse(DateLayout, def.EndDate)
	startClock, _ := parseClock(def.StartTime)
	endClock, _ := parseClock(def.EndTime)

	if end.Before(from) {
		return nil
	}

	weekday, ok := ParseWeekday(def.Weekday)
	if !ok {
		logger.Info.Printf("skipping session %q: unrecognized weekday %q", def.SessionID, def.Weekday)
		return nil
	}

	last := end
	if !to.IsZero() && to.Before(last) {
		last = to
	}

	team := teamInfoFor(teams, def.TeamID)

	var out []Occurrence
	for d := firstOnOrAfter(start, weekday); !d.After(last); d = d.AddDate(0, 0, 7) {
		if d.Before(from) {
			continue
		}
		out = append(out, Occurrence{
			ID:             NewOccurrenceKey(def.SessionID, d),
			SessionID:      def.SessionID,
			TeamID:         def.TeamID,
			TeamName:       team.Name,
			StartsAt:       combineDateTime(d, startClock, loc),
			EndsAt:         combineDateTime(d, endClock, loc),
			OccurrenceDate: d.Format(DateLayout),
			Location:       team.Location,
			Status:         StatusPlanned,
		})
	}
	return out
}

// firstOnOrAfter walks forward from d one day at a time until the weekday matches.
func firstOnOrAfter(d time.Time, wd time.Weekday) time.Time {
	for d.Weekday() != wd {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// civilDate drops the time of day and moves the calendar date to UTC midnight,
// which is the frame all date walking happens in.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func teamInfoFor(teams map[string]TeamInfo, teamID string) TeamInfo {
	info := teams[teamID]
	if info.Name == "" {
		info.Name = DefaultTeamName
	}
	if info.Location == "" {
		info.Location = DefaultLocation
	}
	return info
}
