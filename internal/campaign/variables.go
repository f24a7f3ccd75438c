package campaign

import "strings"

// Variables are the placeholders a campaign subject or body may use.
// Team and school values come from the coach's first team.
type Variables struct {
	CoachName      string
	CoachEmail     string
	CoachPhone     string
	TeamName       string
	TeamNames      string
	SchoolName     string
	SchoolLocation string
	Sport          string
}

// VariableNames lists the placeholders in the form they are written.
var VariableNames = []string{
	"{COACH_NAME}",
	"{COACH_EMAIL}",
	"{COACH_PHONE}",
	"{TEAM_NAME}",
	"{TEAM_NAMES}",
	"{SCHOOL_NAME}",
	"{SCHOOL_LOCATION}",
	"{SPORT}",
}

func VariablesFor(c Coach) Variables {
	v := Variables{
		CoachName:  c.Name,
		CoachEmail: c.Email,
		CoachPhone: c.Phone,
	}
	if len(c.Teams) == 0 {
		return v
	}
	first := c.Teams[0]
	v.TeamName = first.Name
	v.SchoolName = first.SchoolName
	v.SchoolLocation = first.SchoolLocation
	v.Sport = first.Sport

	names := make([]string, 0, len(c.Teams))
	for _, t := range c.Teams {
		names = append(names, t.Name)
	}
	v.TeamNames = strings.Join(names, ", ")
	return v
}

// ReplaceVariables substitutes every occurrence of each placeholder. Unknown
// braces are left as written; empty values yield "".
func ReplaceVariables(template string, v Variables) string {
	return strings.NewReplacer(
		"{COACH_NAME}", v.CoachName,
		"{COACH_EMAIL}", v.CoachEmail,
		"{COACH_PHONE}", v.CoachPhone,
		"{TEAM_NAME}", v.TeamName,
		"{TEAM_NAMES}", v.TeamNames,
		"{SCHOOL_NAME}", v.SchoolName,
		"{SCHOOL_LOCATION}", v.SchoolLocation,
		"{SPORT}", v.Sport,
	).Replace(template)
}
