package attendance

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coachdesk-backend/internal/platform/auth"
	"coachdesk-backend/internal/platform/db/dbtest"
)

func newLedgerRouter(svc *Service, staffID, role string, writeMW ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if staffID != "" {
			c.Set(auth.CtxStaffIDKey, staffID)
		}
		c.Set(auth.CtxRoleKey, role)
	})
	RegisterRoutes(r, r, svc, writeMW...)
	return r
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_MarkFlow(t *testing.T) {
	_, svc := seedLedger(t)

	var mwCalls int
	r := newLedgerRouter(svc, "c1", auth.RoleCoach, func(c *gin.Context) { mwCalls++ })

	do := func(method, path, body string) *httptest.ResponseRecorder {
		return serve(r, method, path, body)
	}

	w := do(http.MethodPut, "/coach/occurrences/sess_a_2025-01-06/attendance/st1", `{"assisted":true}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var res SetMarkResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Created)
	assert.True(t, res.Mark.Assisted)

	w = do(http.MethodPut, "/coach/occurrences/sess_a_2025-01-06/attendance/st1", `{"assisted":false}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, mwCalls)

	w = do(http.MethodPut, "/coach/occurrences/sess_a_2025-01-06/attendance/st1", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(http.MethodGet, "/coach/occurrences/sess_a_2025-01-06/attendance", "")
	require.Equal(t, http.StatusOK, w.Code)
	var sheet struct {
		OccurrenceID string `json:"occurrence_id"`
		Rows         []struct {
			StudentID  string `json:"student_id"`
			Assistance *struct {
				Assisted bool `json:"assisted"`
			} `json:"assistance"`
		} `json:"rows"`
		Counts Counts `json:"counts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sheet))
	assert.Equal(t, "sess_a_2025-01-06", sheet.OccurrenceID)
	require.Len(t, sheet.Rows, 3)
	require.NotNil(t, sheet.Rows[0].Assistance)
	assert.False(t, sheet.Rows[0].Assistance.Assisted)
	assert.Nil(t, sheet.Rows[1].Assistance)
	assert.Equal(t, Counts{Absent: 1, Marked: 1, Total: 3, Pending: 2}, sheet.Counts)

	w = do(http.MethodGet, "/coach/occurrences/sess_a_2025-01-06/marks", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"student_id":"st1"`)

	w = do(http.MethodGet, "/coach/occurrences/garbage/marks", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"INVALID_ARGUMENT"`)
}

func TestHandler_OtherCoachIsForbidden(t *testing.T) {
	conn, svc := seedLedger(t)

	var mwCalls int
	r := newLedgerRouter(svc, "intruder", auth.RoleCoach, func(c *gin.Context) { mwCalls++ })

	w := serve(r, http.MethodPut, "/coach/occurrences/sess_a_2025-01-06/attendance/st1", `{"assisted":true}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"FORBIDDEN"`)
	assert.Equal(t, 0, countMarks(t, conn, "sess_a", "st1", "2025-01-06"))
	assert.Equal(t, 0, mwCalls)

	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/coach/occurrences/sess_a_2025-01-06/attendance", "").Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/coach/occurrences/sess_a_2025-01-06/marks", "").Code)

	// unknown session and malformed id keep their own codes
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/coach/occurrences/nope_2025-01-06/marks", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/coach/occurrences/garbage/marks", "").Code)

	noStaff := newLedgerRouter(svc, "", auth.RoleCoach)
	w = serve(noStaff, http.MethodPut, "/coach/occurrences/sess_a_2025-01-06/attendance/st1", `{"assisted":true}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, 0, countMarks(t, conn, "sess_a", "st1", "2025-01-06"))

	admin := newLedgerRouter(svc, "", auth.RoleAdmin)
	w = serve(admin, http.MethodPut, "/coach/occurrences/sess_a_2025-01-06/attendance/st1", `{"assisted":true}`)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, 1, countMarks(t, conn, "sess_a", "st1", "2025-01-06"))
}

func seedReport(t *testing.T) *Service {
	conn, svc := seedLedger(t)
	dbtest.Team(t, conn, "t2", "Bears", "")
	dbtest.InsertSession(t, conn, dbtest.Session{ID: "sess_b", TeamID: "t2", CoachID: "c2",
		StartDate: "2025-01-01", EndDate: "2025-03-31", Weekday: "tuesday"})
	dbtest.Mark(t, conn, "m1", "sess_a", "st1", "2025-01-06", true)
	dbtest.Mark(t, conn, "m2", "sess_a", "st2", "2025-01-06", false)
	dbtest.Mark(t, conn, "m3", "sess_a", "st1", "2025-01-13", true)
	dbtest.Mark(t, conn, "m4", "sess_b", "st3", "2025-01-07", true)
	return svc
}

func TestHandler_AdminList(t *testing.T) {
	r := newLedgerRouter(seedReport(t), "", auth.RoleAdmin)

	list := func(query string) ListResponse {
		t.Helper()
		w := serve(r, http.MethodGet, "/admin/attendance"+query, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var res ListResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		return res
	}

	all := list("")
	assert.EqualValues(t, 4, all.Total)
	assert.Equal(t, DefaultPageLimit, all.Limit)

	team := list("?team_id=t1")
	assert.EqualValues(t, 3, team.Total)
	require.Len(t, team.Items, 3)
	assert.Equal(t, "2025-01-13", team.Items[0].Date)
	assert.Equal(t, "st1", team.Items[1].StudentID)
	assert.Equal(t, "Alvarez", team.Items[1].LastName)
	assert.Equal(t, "st2", team.Items[2].StudentID)
	assert.Equal(t, "t1", team.Items[2].TeamID)
	assert.Equal(t, "16:00", team.Items[2].StartTime)

	page := list("?team_id=t1&sort=date_asc&limit=1&offset=2")
	assert.EqualValues(t, 3, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "2025-01-13", page.Items[0].Date)

	ranged := list("?from=2025-01-07&to=2025-01-31")
	assert.EqualValues(t, 2, ranged.Total)
	require.Len(t, ranged.Items, 2)
	assert.Equal(t, "sess_b", ranged.Items[1].SessionID)

	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/admin/attendance?from=2025-02-01&to=2025-01-01", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/admin/attendance?sort=name", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/admin/attendance?from=01/02/2025", "").Code)
}

func TestHandler_AdminStats(t *testing.T) {
	r := newLedgerRouter(seedReport(t), "", auth.RoleAdmin)

	w := serve(r, http.MethodGet, "/admin/attendance/stats?team_id=t1", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var stats Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.TotalSessions)
	assert.Equal(t, 2, stats.TotalStudents)
	assert.InDelta(t, 66.67, stats.AverageAttendance, 0.01)
	assert.Equal(t, []DateStats{
		{Date: "2025-01-06", Present: 1, Absent: 1, Total: 2},
		{Date: "2025-01-13", Present: 1, Absent: 0, Total: 1},
	}, stats.ByDate)

	w = serve(r, http.MethodGet, "/admin/attendance/stats?from=2025-02-01", "")
	require.Equal(t, http.StatusOK, w.Code)
	stats = Stats{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Zero(t, stats.TotalSessions)
	assert.Zero(t, stats.AverageAttendance)
	assert.Empty(t, stats.ByDate)
}
