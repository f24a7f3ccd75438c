package campaign

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"coachdesk-backend/internal/platform/db"
)

type Store struct{ db db.DBTX }

func NewStore(conn db.DBTX) *Store { return &Store{db: conn} }

// CoachesForTeams returns the coaches holding a session in any of teamIDs.
func (s *Store) CoachesForTeams(ctx context.Context, teamIDs []string) ([]Coach, error) {
	if len(teamIDs) == 0 {
		return nil, nil
	}
	q, args, err := sqlx.In(`
SELECT se.coachid, st.name AS coach_name, st.email AS coach_email, st.phone AS coach_phone,
	t.teamid, t.name AS team_name, t.sport,
	sc.name AS school_name, sc.location AS school_location
FROM sessions se
JOIN staff st ON st.id = se.coachid
JOIN teams t ON t.teamid = se.teamid
LEFT JOIN schools sc ON sc.schoolid = t.schoolid
WHERE se.teamid IN (?)
ORDER BY st.name, st.id, t.name, t.teamid`, teamIDs)
	if err != nil {
		return nil, err
	}

	var rows []coachRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("select coaches for teams: %w", err)
	}
	return groupCoaches(rows), nil
}
