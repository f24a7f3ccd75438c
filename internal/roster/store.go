package roster

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"coachdesk-backend/internal/platform/db"
)

type Store struct{ db db.DBTX }

func NewStore(conn db.DBTX) *Store { return &Store{db: conn} }

const teamColumns = `
	t.teamid, t.name, t.description, t.isactive, t.participants, t.price,
	sc.schoolid, sc.name AS school_name, sc.location AS school_location
FROM teams t
LEFT JOIN schools sc ON sc.schoolid = t.schoolid`

// ActiveRoster: students with an active enrollment in teamID.
func (s *Store) ActiveRoster(ctx context.Context, teamID string) ([]Student, error) {
	const q = `
SELECT s.studentid, s.firstname, s.lastname, s.dob, s.grade,
	s.ecname, s.ecphone, s.ecrelationship, s.dismissal
FROM enrollments e
JOIN students s ON s.studentid = e.studentid
WHERE e.teamid = ? AND e.isactive = ?
ORDER BY s.lastname, s.firstname, s.studentid`

	out := []Student{}
	if err := s.db.SelectContext(ctx, &out, s.db.Rebind(q), teamID, true); err != nil {
		return nil, fmt.Errorf("select roster for team %s: %w", teamID, err)
	}
	return out, nil
}

// TeamsForCoach: active teams that have at least one session coached by staffID.
func (s *Store) TeamsForCoach(ctx context.Context, staffID string) ([]Team, error) {
	q := `SELECT` + teamColumns + `
WHERE t.isactive = ?
AND t.teamid IN (SELECT DISTINCT teamid FROM sessions WHERE coachid = ?)
ORDER BY t.name, t.teamid`

	var rows []teamRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(q), true, staffID); err != nil {
		return nil, fmt.Errorf("select teams for coach %s: %w", staffID, err)
	}
	out := make([]Team, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

// AllTeams: every active team, by name.
func (s *Store) AllTeams(ctx context.Context) ([]Team, error) {
	q := `SELECT` + teamColumns + `
WHERE t.isactive = ?
ORDER BY t.name, t.teamid`

	var rows []teamRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(q), true); err != nil {
		return nil, fmt.Errorf("select teams: %w", err)
	}
	out := make([]Team, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

// CoachesTeam: staffID holds a session of teamID and the team is active.
func (s *Store) CoachesTeam(ctx context.Context, staffID, teamID string) (bool, error) {
	const q = `
SELECT COUNT(*)
FROM sessions se
JOIN teams t ON t.teamid = se.teamid
WHERE se.coachid = ? AND se.teamid = ? AND t.isactive = ?`

	var n int
	if err := s.db.GetContext(ctx, &n, s.db.Rebind(q), staffID, teamID, true); err != nil {
		return false, fmt.Errorf("check coach %s of team %s: %w", staffID, teamID, err)
	}
	return n > 0, nil
}

// CoachesStudent: studentID has an active enrollment in an active team staffID coaches.
func (s *Store) CoachesStudent(ctx context.Context, staffID, studentID string) (bool, error) {
	const q = `
SELECT COUNT(*)
FROM enrollments e
JOIN teams t ON t.teamid = e.teamid
WHERE e.studentid = ? AND e.isactive = ? AND t.isactive = ?
AND e.teamid IN (SELECT teamid FROM sessions WHERE coachid = ?)`

	var n int
	if err := s.db.GetContext(ctx, &n, s.db.Rebind(q), studentID, true, true, staffID); err != nil {
		return false, fmt.Errorf("check coach %s of student %s: %w", staffID, studentID, err)
	}
	return n > 0, nil
}

func (s *Store) TeamByID(ctx context.Context, teamID string) (*Team, error) {
	q := `SELECT` + teamColumns + `
WHERE t.teamid = ?`

	var r teamRow
	err := s.db.GetContext(ctx, &r, s.db.Rebind(q), teamID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select team %s: %w", teamID, err)
	}
	t := r.toModel()
	return &t, nil
}

func (s *Store) StudentByID(ctx context.Context, studentID string) (*Student, error) {
	const q = `
SELECT studentid, firstname, lastname, dob, grade, ecname, ecphone, ecrelationship, dismissal
FROM students
WHERE studentid = ?`

	var st Student
	err := s.db.GetContext(ctx, &st, s.db.Rebind(q), studentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select student %s: %w", studentID, err)
	}
	return &st, nil
}

func (s *Store) StaffByID(ctx context.Context, id string) (*Staff, error) {
	const q = `SELECT id, userid, name, email, phone FROM staff WHERE id = ?`

	var st Staff
	err := s.db.GetContext(ctx, &st, s.db.Rebind(q), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select staff %s: %w", id, err)
	}
	return &st, nil
}

func (s *Store) ListStaff(ctx context.Context) ([]Staff, error) {
	const q = `SELECT id, userid, name, email, phone FROM staff ORDER BY name, id`

	out := []Staff{}
	if err := s.db.SelectContext(ctx, &out, q); err != nil {
		return nil, fmt.Errorf("select staff: %w", err)
	}
	return out, nil
}
