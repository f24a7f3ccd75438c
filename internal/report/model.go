package report

import (
	"sort"

	"coachdesk-backend/internal/attendance"
	"coachdesk-backend/internal/roster"
	"coachdesk-backend/internal/schedule"
)

const topAbsenteeLimit = 5

type Period struct {
	From string `json:"from"` // YYYY-MM-DD
	To   string `json:"to"`
}

type TeamSummary struct {
	TeamID         string  `json:"team_id"`
	TeamName       string  `json:"team_name"`
	Sessions       int     `json:"sessions"`
	Present        int     `json:"present"`
	Absent         int     `json:"absent"`
	AttendanceRate float64 `json:"attendance_rate"` // percent of marked
}

type Absentee struct {
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	TeamName  string `json:"team_name"`
	Absences  int    `json:"absences"`
}

type Report struct {
	Staff        roster.Staff  `json:"staff"`
	Period       Period        `json:"period"`
	Teams        []TeamSummary `json:"teams"`
	TopAbsentees []Absentee    `json:"top_absentees"`
}

// Empty reports have no team with an occurrence in the period; they are not mailed.
func (r Report) Empty() bool { return len(r.Teams) == 0 }

// Build summarises one coach's week. occ and marks must already be limited to
// the period; marks of sessions not in occ are ignored. names maps student id
// to display name.
func Build(staff roster.Staff, teams []roster.Team, occ []schedule.Occurrence, marks []attendance.Mark, names map[string]string, p Period) Report {
	teamOf := make(map[schedule.OccurrenceKey]string, len(occ))
	sessions := make(map[string]int)
	for _, o := range occ {
		teamOf[o.ID] = o.TeamID
		sessions[o.TeamID]++
	}

	type absKey struct{ student, team string }
	present := make(map[string]int)
	absent := make(map[string]int)
	absences := make(map[absKey]int)
	for _, m := range marks {
		teamID, ok := teamOf[schedule.OccurrenceKey{SessionID: m.SessionID, Date: m.Date}]
		if !ok {
			continue
		}
		if m.Assisted {
			present[teamID]++
		} else {
			absent[teamID]++
			absences[absKey{m.StudentID, teamID}]++
		}
	}

	teamNames := make(map[string]string, len(teams))
	out := Report{Staff: staff, Period: p, Teams: []TeamSummary{}, TopAbsentees: []Absentee{}}
	for _, t := range teams {
		teamNames[t.TeamID] = t.Name
		if sessions[t.TeamID] == 0 {
			continue
		}
		s := TeamSummary{
			TeamID:   t.TeamID,
			TeamName: t.Name,
			Sessions: sessions[t.TeamID],
			Present:  present[t.TeamID],
			Absent:   absent[t.TeamID],
		}
		if marked := s.Present + s.Absent; marked > 0 {
			s.AttendanceRate = float64(s.Present) / float64(marked) * 100
		}
		out.Teams = append(out.Teams, s)
	}

	for k, n := range absences {
		name := names[k.student]
		if name == "" {
			name = "Unknown Student"
		}
		out.TopAbsentees = append(out.TopAbsentees, Absentee{
			StudentID: k.student,
			Name:      name,
			TeamName:  teamNames[k.team],
			Absences:  n,
		})
	}
	sort.Slice(out.TopAbsentees, func(i, j int) bool {
		a, b := out.TopAbsentees[i], out.TopAbsentees[j]
		if a.Absences != b.Absences {
			return a.Absences > b.Absences
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.TeamName < b.TeamName
	})
	if len(out.TopAbsentees) > topAbsenteeLimit {
		out.TopAbsentees = out.TopAbsentees[:topAbsenteeLimit]
	}
	return out
}
