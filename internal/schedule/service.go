package schedule

import (
	"context"
	"time"

	"coachdesk-backend/internal/platform/apierr"
	"coachdesk-backend/internal/platform/db"
	"coachdesk-backend/internal/platform/metrics"
	"coachdesk-backend/internal/roster"
)

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// TeamSource lists the teams a coach works with.
type TeamSource interface {
	MyTeams(ctx context.Context, staffID string) ([]roster.Team, error)
}

type Service struct {
	store *Store
	teams TeamSource
	clock Clock
	loc   *time.Location
}

func NewService(conn db.DBTX, teams TeamSource, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		store: NewStore(conn),
		teams: teams,
		clock: realClock{},
		loc:   loc,
	}
}

// WithClock replaces the wall clock, for tests.
func (s *Service) WithClock(c Clock) *Service {
	s.clock = c
	return s
}

// Today is the current time in the schedule timezone.
func (s *Service) Today() time.Time { return s.clock.Now().In(s.loc) }

func (s *Service) Location() *time.Location { return s.loc }

// GET /coach/occurrences
func (s *Service) UpcomingOccurrences(ctx context.Context, staffID string) ([]Occurrence, error) {
	return s.occurrences(ctx, staffID, Window{From: s.Today()})
}

// OccurrencesBetween expands the coach's sessions over from..to (inclusive dates).
func (s *Service) OccurrencesBetween(ctx context.Context, staffID string, from, to time.Time) ([]Occurrence, error) {
	if to.Before(from) {
		return nil, apierr.Invalid("to must be >= from")
	}
	return s.occurrences(ctx, staffID, Window{From: s.sameDate(from), To: s.sameDate(to)})
}

// sameDate keeps t's calendar date and moves it to midnight in the service
// location, so a caller in another timezone gets the days it asked for.
func (s *Service) sameDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc)
}

func (s *Service) occurrences(ctx context.Context, staffID string, w Window) ([]Occurrence, error) {
	teams, err := s.teams.MyTeams(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if len(teams) == 0 {
		return []Occurrence{}, nil
	}

	ids := make([]string, 0, len(teams))
	for _, t := range teams {
		ids = append(ids, t.TeamID)
	}
	defs, err := s.store.ByTeams(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := ExpandWindow(defs, TeamInfos(teams), w)
	metrics.OccurrencesExpanded.Add(float64(len(out)))
	return out, nil
}

// Definition resolves the session behind an occurrence key. A missing session
// is a NOT_FOUND error.
func (s *Service) Definition(ctx context.Context, key OccurrenceKey) (*SessionDefinition, error) {
	def, err := s.store.ByID(ctx, key.SessionID)
	if err != nil {
		return nil, err
	}
	if def == nil {
		return nil, apierr.NotFound("session not found")
	}
	return def, nil
}

// GET /admin/teams/:team_id/sessions
func (s *Service) SessionsByTeam(ctx context.Context, teamID string) ([]SessionDefinition, error) {
	if teamID == "" {
		return nil, apierr.Invalid("team_id is required")
	}
	return s.store.ByTeam(ctx, teamID)
}

// TeamInfos builds the expander's team map; the location is the school's.
func TeamInfos(teams []roster.Team) map[string]TeamInfo {
	out := make(map[string]TeamInfo, len(teams))
	for _, t := range teams {
		info := TeamInfo{Name: t.Name}
		if t.School != nil && t.School.Location != nil {
			info.Location = *t.School.Location
		}
		out[t.TeamID] = info
	}
	return out
}
