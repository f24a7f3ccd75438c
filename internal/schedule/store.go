package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"coachdesk-backend/internal/platform/db"
)

const sessionColumns = `sessionid, teamid, coachid, startdate, enddate, starttime, endtime, daysofweek, repeat_rule`

type Store struct{ db db.DBTX }

func NewStore(conn db.DBTX) *Store { return &Store{db: conn} }

// ByTeams returns the session definitions of teamIDs ordered by start date.
func (s *Store) ByTeams(ctx context.Context, teamIDs []string) ([]SessionDefinition, error) {
	if len(teamIDs) == 0 {
		return []SessionDefinition{}, nil
	}
	q, args, err := sqlx.In(`SELECT `+sessionColumns+` FROM sessions WHERE teamid IN (?) ORDER BY startdate, sessionid`, teamIDs)
	if err != nil {
		return nil, err
	}

	out := []SessionDefinition{}
	if err := s.db.SelectContext(ctx, &out, s.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("select sessions: %w", err)
	}
	return out, nil
}

// ByTeam lists every session of teamID, newest start date first.
func (s *Store) ByTeam(ctx context.Context, teamID string) ([]SessionDefinition, error) {
	q := `SELECT ` + sessionColumns + ` FROM sessions WHERE teamid = ? ORDER BY startdate DESC, sessionid`

	out := []SessionDefinition{}
	if err := s.db.SelectContext(ctx, &out, s.db.Rebind(q), teamID); err != nil {
		return nil, fmt.Errorf("select sessions of team %s: %w", teamID, err)
	}
	return out, nil
}

// ByID returns nil, nil when the session does not exist.
func (s *Store) ByID(ctx context.Context, sessionID string) (*SessionDefinition, error) {
	q := `SELECT ` + sessionColumns + ` FROM sessions WHERE sessionid = ?`

	var d SessionDefinition
	err := s.db.GetContext(ctx, &d, s.db.Rebind(q), sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select session %s: %w", sessionID, err)
	}
	return &d, nil
}
