package attendance

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"coachdesk-backend/internal/platform/apierr"
	"coachdesk-backend/internal/platform/db/dbtest"
	"coachdesk-backend/internal/roster"
	"coachdesk-backend/internal/schedule"
)

func seedLedger(t *testing.T) (*sqlx.DB, *Service) {
	conn := dbtest.New(t)
	dbtest.Team(t, conn, "t1", "Sharks", "")
	dbtest.Student(t, conn, "st1", "Ana", "Alvarez")
	dbtest.Student(t, conn, "st2", "Beto", "Bravo")
	dbtest.Student(t, conn, "st3", "Caro", "Cruz")
	dbtest.Enroll(t, conn, "e1", "t1", "st1", true)
	dbtest.Enroll(t, conn, "e2", "t1", "st2", true)
	dbtest.Enroll(t, conn, "e3", "t1", "st3", true)
	dbtest.InsertSession(t, conn, dbtest.Session{ID: "sess_a", TeamID: "t1", CoachID: "c1",
		StartDate: "2025-01-01", EndDate: "2025-03-31", Weekday: "monday"})

	rs := roster.NewService(conn)
	sched := schedule.NewService(conn, rs, time.UTC)
	return conn, NewService(conn, sched, rs)
}

func countMarks(t *testing.T, conn *sqlx.DB, sessionID, studentID, date string) int {
	var n int
	err := conn.Get(&n, conn.Rebind(`SELECT COUNT(*) FROM assistance WHERE sessionid = ? AND studentid = ? AND attended_on = ?`),
		sessionID, studentID, date)
	require.NoError(t, err)
	return n
}

func TestSetMark_Idempotent(t *testing.T) {
	conn, svc := seedLedger(t)
	ctx := context.Background()
	occ := "sess_a_2025-01-06"

	first, created, err := svc.SetMark(ctx, occ, "st1", true)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Len(t, first.ID, 26)

	second, created, err := svc.SetMark(ctx, occ, "st1", true)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, countMarks(t, conn, "sess_a", "st1", "2025-01-06"))

	third, created, err := svc.SetMark(ctx, occ, "st1", false)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, third.ID)
	assert.False(t, third.Assisted)
	assert.Equal(t, 1, countMarks(t, conn, "sess_a", "st1", "2025-01-06"))

	marks, err := svc.MarksForOccurrence(ctx, occ)
	require.NoError(t, err)
	require.Len(t, marks, 1)
	assert.False(t, marks[0].Assisted)
	assert.Equal(t, "2025-01-06", marks[0].Date)
}

func TestSetMark_DatesAreSeparateRows(t *testing.T) {
	conn, svc := seedLedger(t)
	ctx := context.Background()

	_, _, err := svc.SetMark(ctx, "sess_a_2025-01-06", "st1", true)
	require.NoError(t, err)
	_, created, err := svc.SetMark(ctx, "sess_a_2025-01-13", "st1", false)
	require.NoError(t, err)
	assert.True(t, created)

	assert.Equal(t, 1, countMarks(t, conn, "sess_a", "st1", "2025-01-06"))
	assert.Equal(t, 1, countMarks(t, conn, "sess_a", "st1", "2025-01-13"))

	marks, err := svc.MarksForOccurrence(ctx, "sess_a_2025-01-13")
	require.NoError(t, err)
	require.Len(t, marks, 1)
	assert.False(t, marks[0].Assisted)

	between, err := svc.MarksBetween(ctx, []string{"sess_a"}, "2025-01-01", "2025-01-10")
	require.NoError(t, err)
	require.Len(t, between, 1)
	assert.Equal(t, "2025-01-06", between[0].Date)
}

func TestSetMark_InvalidInput(t *testing.T) {
	_, svc := seedLedger(t)
	ctx := context.Background()

	for _, id := range []string{"nounderscore", "sess_a_2025-02-30", "_2025-01-06"} {
		_, _, err := svc.SetMark(ctx, id, "st1", true)
		assert.True(t, apierr.Is(err, apierr.CodeInvalidArgument), id)

		_, err = svc.MarksForOccurrence(ctx, id)
		assert.True(t, apierr.Is(err, apierr.CodeInvalidArgument), id)
	}

	_, _, err := svc.SetMark(ctx, "sess_a_2025-01-06", " ", true)
	assert.True(t, apierr.Is(err, apierr.CodeInvalidArgument))
}

func TestSheet(t *testing.T) {
	_, svc := seedLedger(t)
	ctx := context.Background()
	occ := "sess_a_2025-01-06"

	_, _, err := svc.SetMark(ctx, occ, "st1", true)
	require.NoError(t, err)
	_, _, err = svc.SetMark(ctx, occ, "st2", false)
	require.NoError(t, err)

	sheet, err := svc.Sheet(ctx, occ)
	require.NoError(t, err)
	assert.Equal(t, "t1", sheet.TeamID)
	assert.Equal(t, "2025-01-06", sheet.Date)
	require.Len(t, sheet.Rows, 3)
	assert.Nil(t, sheet.Rows[2].Assistance)
	assert.Equal(t, Counts{Present: 1, Absent: 1, Marked: 2, Total: 3, Pending: 1}, sheet.Counts)

	_, err = svc.Sheet(ctx, "missing_2025-01-06")
	assert.True(t, apierr.Is(err, apierr.CodeNotFound))
}

// ===== store failures =====

type MockStore struct {
	mock.Mock
}

func (m *MockStore) FindMarks(ctx context.Context, key schedule.OccurrenceKey) ([]Mark, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Mark), args.Error(1)
}

func (m *MockStore) FindMarksForSessions(ctx context.Context, sessionIDs []string, from, to string) ([]Mark, error) {
	args := m.Called(ctx, sessionIDs, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Mark), args.Error(1)
}

func (m *MockStore) FindMark(ctx context.Context, key schedule.OccurrenceKey, studentID string) (*Mark, error) {
	args := m.Called(ctx, key, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Mark), args.Error(1)
}

func (m *MockStore) InsertMark(ctx context.Context, mk Mark) error {
	return m.Called(ctx, mk).Error(0)
}

func (m *MockStore) UpdateAssisted(ctx context.Context, id string, assisted bool) error {
	return m.Called(ctx, id, assisted).Error(0)
}

func (m *MockStore) List(ctx context.Context, q ListQuery) ([]MarkDetail, int64, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]MarkDetail), args.Get(1).(int64), args.Error(2)
}

func (m *MockStore) Stats(ctx context.Context, f Filter) ([]DateStats, int, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]DateStats), args.Int(1), args.Error(2)
}

type seqIDs struct{ n int }

func (g *seqIDs) New() (string, error) {
	g.n++
	return fmt.Sprintf("id-%d", g.n), nil
}

func TestSetMark_StoreErrorsSurface(t *testing.T) {
	ctx := context.Background()
	key := schedule.OccurrenceKey{SessionID: "s", Date: "2025-01-06"}
	boom := errors.New("connection reset")

	t.Run("lookup", func(t *testing.T) {
		st := new(MockStore)
		st.On("FindMark", ctx, key, "st1").Return(nil, boom).Once()

		_, _, err := NewServiceWithStore(st, nil, nil, &seqIDs{}).SetMark(ctx, key.String(), "st1", true)
		assert.ErrorIs(t, err, boom)
		st.AssertNotCalled(t, "InsertMark", mock.Anything, mock.Anything)
		st.AssertExpectations(t)
	})

	t.Run("insert", func(t *testing.T) {
		st := new(MockStore)
		st.On("FindMark", ctx, key, "st1").Return(nil, nil).Once()
		st.On("InsertMark", ctx, Mark{ID: "id-1", SessionID: "s", StudentID: "st1", Date: "2025-01-06", Assisted: true}).
			Return(boom).Once()

		_, _, err := NewServiceWithStore(st, nil, nil, &seqIDs{}).SetMark(ctx, key.String(), "st1", true)
		assert.ErrorIs(t, err, boom)
		st.AssertExpectations(t)
	})

	t.Run("update uses the existing id", func(t *testing.T) {
		st := new(MockStore)
		existing := &Mark{ID: "m-9", SessionID: "s", StudentID: "st1", Date: "2025-01-06", Assisted: true}
		st.On("FindMark", ctx, key, "st1").Return(existing, nil).Once()
		st.On("UpdateAssisted", ctx, "m-9", false).Return(boom).Once()

		_, _, err := NewServiceWithStore(st, nil, nil, &seqIDs{}).SetMark(ctx, key.String(), "st1", false)
		assert.ErrorIs(t, err, boom)
		st.AssertExpectations(t)
	})

	t.Run("read path", func(t *testing.T) {
		st := new(MockStore)
		st.On("FindMarks", ctx, key).Return(nil, boom).Once()

		_, err := NewServiceWithStore(st, nil, nil, &seqIDs{}).MarksForOccurrence(ctx, key.String())
		assert.ErrorIs(t, err, boom)
		assert.False(t, apierr.Is(err, apierr.CodeInvalidArgument))
		st.AssertExpectations(t)
	})
}
