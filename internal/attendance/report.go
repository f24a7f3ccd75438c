package attendance

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"coachdesk-backend/internal/platform/apierr"
	"coachdesk-backend/internal/schedule"
)

const (
	SortDateDesc     = "date_desc"
	SortDateAsc      = "date_asc"
	DefaultPageLimit = 50
	MaxPageLimit     = 500
)

// Filter narrows the admin views. Empty fields do not filter; From and To are
// inclusive YYYY-MM-DD.
type Filter struct {
	TeamID    string
	SessionID string
	StudentID string
	From      string
	To        string
}

type ListQuery struct {
	Filter
	Sort   string
	Limit  int
	Offset int
}

// MarkDetail is a mark joined with its student and session.
type MarkDetail struct {
	Mark
	FirstName string  `db:"firstname" json:"first_name"`
	LastName  string  `db:"lastname" json:"last_name"`
	Grade     *string `db:"grade" json:"grade,omitempty"`
	TeamID    string  `db:"teamid" json:"team_id"`
	StartTime string  `db:"starttime" json:"start_time"`
	EndTime   string  `db:"endtime" json:"end_time"`
}

type DateStats struct {
	Date    string `db:"attended_on" json:"date"`
	Present int    `db:"present" json:"present"`
	Absent  int    `db:"-" json:"absent"`
	Total   int    `db:"total" json:"total"`
}

type Stats struct {
	TotalSessions     int         `json:"total_sessions"`
	TotalStudents     int         `json:"total_students"`
	AverageAttendance float64     `json:"average_attendance"`
	ByDate            []DateStats `json:"attendance_by_date"`
}

type ListResponse struct {
	Items  []MarkDetail `json:"items"`
	Total  int64        `json:"total"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}

// ===== Store =====

const detailFrom = `
FROM assistance a
LEFT JOIN sessions se ON se.sessionid = a.sessionid
LEFT JOIN students s ON s.studentid = a.studentid`

// List: dynamic WHERE + ORDER + LIMIT/OFFSET, plus the unpaged count.
func (s *Store) List(ctx context.Context, q ListQuery) ([]MarkDetail, int64, error) {
	wheres, args := q.Filter.where()

	var buf bytes.Buffer
	buf.WriteString(`
SELECT a.id, a.sessionid, a.studentid, a.assisted, a.attended_on,
	COALESCE(s.firstname, '') AS firstname, COALESCE(s.lastname, '') AS lastname, s.grade,
	COALESCE(se.teamid, '') AS teamid, COALESCE(se.starttime, '') AS starttime, COALESCE(se.endtime, '') AS endtime`)
	buf.WriteString(detailFrom)
	if len(wheres) > 0 {
		buf.WriteString(" WHERE " + strings.Join(wheres, " AND "))
	}

	switch q.Sort {
	case SortDateAsc:
		buf.WriteString(" ORDER BY a.attended_on ASC, se.starttime ASC, s.lastname ASC, s.firstname ASC, a.id ASC")
	default:
		buf.WriteString(" ORDER BY a.attended_on DESC, se.starttime DESC, s.lastname ASC, s.firstname ASC, a.id ASC")
	}
	buf.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", clampLimit(q.Limit), q.Offset))

	out := []MarkDetail{}
	if err := s.db.SelectContext(ctx, &out, s.db.Rebind(buf.String()), args...); err != nil {
		return nil, 0, err
	}

	// COUNT over the same WHERE
	cnt := "SELECT COUNT(*)" + detailFrom
	if len(wheres) > 0 {
		cnt += " WHERE " + strings.Join(wheres, " AND ")
	}
	var total int64
	if err := s.db.GetContext(ctx, &total, s.db.Rebind(cnt), args...); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Stats: present/total per date over the filter, and the distinct students.
func (s *Store) Stats(ctx context.Context, f Filter) ([]DateStats, int, error) {
	wheres, args := f.where()
	where := ""
	if len(wheres) > 0 {
		where = " WHERE " + strings.Join(wheres, " AND ")
	}

	q := `
SELECT a.attended_on, SUM(CASE WHEN a.assisted THEN 1 ELSE 0 END) AS present, COUNT(*) AS total` +
		detailFrom + where + `
GROUP BY a.attended_on
ORDER BY a.attended_on`

	rows := []DateStats{}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(q), args...); err != nil {
		return nil, 0, err
	}

	var students int
	if err := s.db.GetContext(ctx, &students, s.db.Rebind("SELECT COUNT(DISTINCT a.studentid)"+detailFrom+where), args...); err != nil {
		return nil, 0, err
	}
	return rows, students, nil
}

// ===== Service =====

// GET /admin/attendance
func (s *Service) List(ctx context.Context, q ListQuery) (ListResponse, error) {
	if err := q.Filter.validate(); err != nil {
		return ListResponse{}, err
	}
	switch q.Sort {
	case "":
		q.Sort = SortDateDesc
	case SortDateDesc, SortDateAsc:
	default:
		return ListResponse{}, apierr.Invalid("sort must be date_desc or date_asc")
	}
	if q.Offset < 0 {
		return ListResponse{}, apierr.Invalid("offset must not be negative")
	}
	q.Limit = clampLimit(q.Limit)

	items, total, err := s.store.List(ctx, q)
	if err != nil {
		return ListResponse{}, fmt.Errorf("list marks: %w", err)
	}
	return ListResponse{Items: items, Total: total, Limit: q.Limit, Offset: q.Offset}, nil
}

// GET /admin/attendance/stats
// AverageAttendance is present marks over all marks, as a percentage.
func (s *Service) Stats(ctx context.Context, f Filter) (Stats, error) {
	if err := f.validate(); err != nil {
		return Stats{}, err
	}
	byDate, students, err := s.store.Stats(ctx, f)
	if err != nil {
		return Stats{}, fmt.Errorf("attendance stats: %w", err)
	}

	out := Stats{TotalSessions: len(byDate), TotalStudents: students, ByDate: byDate}
	var present, total int
	for i := range out.ByDate {
		d := &out.ByDate[i]
		d.Absent = d.Total - d.Present
		present += d.Present
		total += d.Total
	}
	if total > 0 {
		out.AverageAttendance = float64(present) / float64(total) * 100
	}
	return out, nil
}

// ===== helpers =====

func (f Filter) where() ([]string, []any) {
	var (
		wheres []string
		args   []any
	)
	if f.TeamID != "" {
		wheres = append(wheres, "se.teamid = ?")
		args = append(args, f.TeamID)
	}
	if f.SessionID != "" {
		wheres = append(wheres, "a.sessionid = ?")
		args = append(args, f.SessionID)
	}
	if f.StudentID != "" {
		wheres = append(wheres, "a.studentid = ?")
		args = append(args, f.StudentID)
	}
	if f.From != "" {
		wheres = append(wheres, "a.attended_on >= ?")
		args = append(args, f.From)
	}
	if f.To != "" {
		wheres = append(wheres, "a.attended_on <= ?")
		args = append(args, f.To)
	}
	return wheres, args
}

func (f Filter) validate() error {
	if f.From != "" {
		if _, err := time.Parse(schedule.DateLayout, f.From); err != nil {
			return apierr.Invalid("from must be YYYY-MM-DD")
		}
	}
	if f.To != "" {
		if _, err := time.Parse(schedule.DateLayout, f.To); err != nil {
			return apierr.Invalid("to must be YYYY-MM-DD")
		}
	}
	if f.From != "" && f.To != "" && f.From > f.To {
		return apierr.Invalid("from must not be after to")
	}
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageLimit
	}
	if limit > MaxPageLimit {
		return MaxPageLimit
	}
	return limit
}
