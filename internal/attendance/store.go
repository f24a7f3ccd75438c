package attendance

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"coachdesk-backend/internal/platform/db"
	"coachdesk-backend/internal/schedule"
)

type MarkStore interface {
	FindMarks(ctx context.Context, key schedule.OccurrenceKey) ([]Mark, error)
	FindMarksForSessions(ctx context.Context, sessionIDs []string, from, to string) ([]Mark, error)
	FindMark(ctx context.Context, key schedule.OccurrenceKey, studentID string) (*Mark, error)
	InsertMark(ctx context.Context, m Mark) error
	UpdateAssisted(ctx context.Context, id string, assisted bool) error
	List(ctx context.Context, q ListQuery) ([]MarkDetail, int64, error)
	Stats(ctx context.Context, f Filter) ([]DateStats, int, error)
}

const markColumns = `id, sessionid, studentid, assisted, attended_on`

type Store struct{ db db.DBTX }

func NewStore(conn db.DBTX) *Store { return &Store{db: conn} }

// FindMarks: every mark of the session on exactly that date.
func (s *Store) FindMarks(ctx context.Context, key schedule.OccurrenceKey) ([]Mark, error) {
	q := `SELECT ` + markColumns + `
FROM assistance
WHERE sessionid = ? AND attended_on = ?
ORDER BY studentid`

	out := []Mark{}
	if err := s.db.SelectContext(ctx, &out, s.db.Rebind(q), key.SessionID, key.Date); err != nil {
		return nil, err
	}
	return out, nil
}

// FindMarksForSessions: marks of several sessions between from and to (inclusive dates).
func (s *Store) FindMarksForSessions(ctx context.Context, sessionIDs []string, from, to string) ([]Mark, error) {
	if len(sessionIDs) == 0 {
		return []Mark{}, nil
	}
	q, args, err := sqlx.In(`SELECT `+markColumns+`
FROM assistance
WHERE sessionid IN (?) AND attended_on BETWEEN ? AND ?
ORDER BY attended_on, sessionid, studentid`, sessionIDs, from, to)
	if err != nil {
		return nil, err
	}

	out := []Mark{}
	if err := s.db.SelectContext(ctx, &out, s.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	return out, nil
}

// FindMark: point lookup on (session, student, date); nil, nil when absent.
func (s *Store) FindMark(ctx context.Context, key schedule.OccurrenceKey, studentID string) (*Mark, error) {
	q := `SELECT ` + markColumns + `
FROM assistance
WHERE sessionid = ? AND studentid = ? AND attended_on = ?
LIMIT 1`

	var m Mark
	err := s.db.GetContext(ctx, &m, s.db.Rebind(q), key.SessionID, studentID, key.Date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) InsertMark(ctx context.Context, m Mark) error {
	const q = `INSERT INTO assistance (id, sessionid, studentid, assisted, attended_on) VALUES (?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, s.db.Rebind(q), m.ID, m.SessionID, m.StudentID, m.Assisted, m.Date)
	return err
}

// UpdateAssisted touches only the assisted column of the row with id.
// mysql reports 0 affected rows for a no-op update, so the count is not checked.
func (s *Store) UpdateAssisted(ctx context.Context, id string, assisted bool) error {
	const q = `UPDATE assistance SET assisted = ? WHERE id = ?`
	_, err := s.db.ExecContext(ctx, s.db.Rebind(q), assisted, id)
	return err
}
