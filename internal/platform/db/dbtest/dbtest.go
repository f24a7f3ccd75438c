// Package dbtest provides a migrated in-memory database and row fixtures for
// store and handler tests.
package dbtest

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"coachdesk-backend/internal/platform/db"
)

func New(t testing.TB) *sqlx.DB {
	t.Helper()
	conn, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func exec(t testing.TB, conn *sqlx.DB, q string, args ...any) {
	t.Helper()
	_, err := conn.Exec(conn.Rebind(q), args...)
	require.NoError(t, err)
}

func School(t testing.TB, conn *sqlx.DB, id, name, location string) {
	exec(t, conn, `INSERT INTO schools (schoolid, name, location) VALUES (?, ?, ?)`, id, name, location)
}

// Team inserts an active team; schoolID may be empty.
func Team(t testing.TB, conn *sqlx.DB, id, name, schoolID string) {
	var school any
	if schoolID != "" {
		school = schoolID
	}
	exec(t, conn, `INSERT INTO teams (teamid, name, isactive, participants, price, schoolid) VALUES (?, ?, ?, 0, 0, ?)`,
		id, name, true, school)
}

func InactiveTeam(t testing.TB, conn *sqlx.DB, id, name string) {
	exec(t, conn, `INSERT INTO teams (teamid, name, isactive, participants, price) VALUES (?, ?, ?, 0, 0)`,
		id, name, false)
}

func Staff(t testing.TB, conn *sqlx.DB, id, name, email string) {
	exec(t, conn, `INSERT INTO staff (id, name, email) VALUES (?, ?, ?)`, id, name, email)
}

func Student(t testing.TB, conn *sqlx.DB, id, first, last string) {
	exec(t, conn, `INSERT INTO students (studentid, firstname, lastname) VALUES (?, ?, ?)`, id, first, last)
}

func Enroll(t testing.TB, conn *sqlx.DB, enrollmentID, teamID, studentID string, active bool) {
	exec(t, conn, `INSERT INTO enrollments (enrollmentid, teamid, studentid, isactive) VALUES (?, ?, ?, ?)`,
		enrollmentID, teamID, studentID, active)
}

type Session struct {
	ID, TeamID, CoachID string
	StartDate, EndDate  string
	StartTime, EndTime  string
	Weekday             string
}

func InsertSession(t testing.TB, conn *sqlx.DB, s Session) {
	if s.StartTime == "" {
		s.StartTime = "16:00"
	}
	if s.EndTime == "" {
		s.EndTime = "17:00"
	}
	exec(t, conn, `INSERT INTO sessions (sessionid, teamid, coachid, startdate, enddate, starttime, endtime, daysofweek, repeat_rule)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, 'weekly')`,
		s.ID, s.TeamID, s.CoachID, s.StartDate, s.EndDate, s.StartTime, s.EndTime, s.Weekday)
}

func Mark(t testing.TB, conn *sqlx.DB, id, sessionID, studentID, date string, assisted bool) {
	exec(t, conn, `INSERT INTO assistance (id, sessionid, studentid, assisted, attended_on) VALUES (?, ?, ?, ?, ?)`,
		id, sessionID, studentID, assisted, date)
}

func SetSport(t testing.TB, conn *sqlx.DB, teamID, sport string) {
	exec(t, conn, `UPDATE teams SET sport = ? WHERE teamid = ?`, sport, teamID)
}

func SetPhone(t testing.TB, conn *sqlx.DB, staffID, phone string) {
	exec(t, conn, `UPDATE staff SET phone = ? WHERE id = ?`, phone, staffID)
}
