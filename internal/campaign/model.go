package campaign

import "strings"

type TeamRef struct {
	TeamID         string `json:"team_id"`
	Name           string `json:"name"`
	Sport          string `json:"sport,omitempty"`
	SchoolName     string `json:"school_name,omitempty"`
	SchoolLocation string `json:"school_location,omitempty"`
}

// Coach is one campaign recipient with the selected teams they coach.
type Coach struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Phone string    `json:"phone,omitempty"`
	Teams []TeamRef `json:"teams"`
}

// coachRow is sessions JOIN staff JOIN teams LEFT JOIN schools, one row per session.
type coachRow struct {
	CoachID        string  `db:"coachid"`
	CoachName      string  `db:"coach_name"`
	CoachEmail     string  `db:"coach_email"`
	CoachPhone     *string `db:"coach_phone"`
	TeamID         string  `db:"teamid"`
	TeamName       string  `db:"team_name"`
	Sport          *string `db:"sport"`
	SchoolName     *string `db:"school_name"`
	SchoolLocation *string `db:"school_location"`
}

// groupCoaches folds session rows into coaches, keeping first-seen order and
// listing each team once per coach.
func groupCoaches(rows []coachRow) []Coach {
	idx := make(map[string]int)
	var out []Coach
	for _, r := range rows {
		i, ok := idx[r.CoachID]
		if !ok {
			i = len(out)
			idx[r.CoachID] = i
			out = append(out, Coach{
				ID:    r.CoachID,
				Name:  r.CoachName,
				Email: strings.TrimSpace(r.CoachEmail),
				Phone: deref(r.CoachPhone),
			})
		}
		c := &out[i]
		if c.hasTeam(r.TeamID) {
			continue
		}
		c.Teams = append(c.Teams, TeamRef{
			TeamID:         r.TeamID,
			Name:           r.TeamName,
			Sport:          deref(r.Sport),
			SchoolName:     deref(r.SchoolName),
			SchoolLocation: deref(r.SchoolLocation),
		})
	}
	return out
}

func (c Coach) hasTeam(teamID string) bool {
	for _, t := range c.Teams {
		if t.TeamID == teamID {
			return true
		}
	}
	return false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
