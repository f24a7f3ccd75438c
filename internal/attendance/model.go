package attendance

import "coachdesk-backend/internal/roster"

// Mark is one row of the assistance table.
type Mark struct {
	ID        string `db:"id" json:"id"`
	SessionID string `db:"sessionid" json:"session_id"`
	StudentID string `db:"studentid" json:"student_id"`
	Date      string `db:"attended_on" json:"date"` // YYYY-MM-DD
	Assisted  bool   `db:"assisted" json:"assisted"`
}

// RosterMark is a roster student joined with the mark for one occurrence.
// Assistance is nil for an unmarked student, which is not the same as a mark
// with Assisted false.
type RosterMark struct {
	roster.Student
	Assistance *Mark `json:"assistance,omitempty"`
}

type Counts struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Marked  int `json:"marked"`
	Total   int `json:"total"`
	Pending int `json:"pending"`
}

// Merge joins roster and marks by student id. Neither input is modified and
// the result does not alias marks.
func Merge(students []roster.Student, marks []Mark) []RosterMark {
	byStudent := make(map[string]Mark, len(marks))
	for _, m := range marks {
		byStudent[m.StudentID] = m
	}

	out := make([]RosterMark, 0, len(students))
	for _, st := range students {
		row := RosterMark{Student: st}
		if m, ok := byStudent[st.StudentID]; ok {
			mark := m
			row.Assistance = &mark
		}
		out = append(out, row)
	}
	return out
}

// Tally derives the counts from merged rows; Present+Absent+Pending == Total.
func Tally(rows []RosterMark) Counts {
	var c Counts
	for _, r := range rows {
		switch {
		case r.Assistance == nil:
		case r.Assistance.Assisted:
			c.Present++
		default:
			c.Absent++
		}
	}
	c.Marked = c.Present + c.Absent
	c.Total = len(rows)
	c.Pending = c.Total - c.Marked
	return c
}
