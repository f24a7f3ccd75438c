package campaign

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"coachdesk-backend/internal/platform/apierr"
	"coachdesk-backend/internal/platform/db/dbtest"
	"coachdesk-backend/internal/platform/mail"
)

type recordingMailer struct {
	sent []mail.Message
	err  error
}

func (m *recordingMailer) Send(ctx context.Context, msg mail.Message) (string, error) {
	ids, err := m.SendBatch(ctx, []mail.Message{msg})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

func (m *recordingMailer) SendBatch(_ context.Context, msgs []mail.Message) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	ids := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		m.sent = append(m.sent, msg)
		ids = append(ids, "id")
	}
	return ids, nil
}

type MockCoachSource struct{ mock.Mock }

func (m *MockCoachSource) CoachesForTeams(ctx context.Context, teamIDs []string) ([]Coach, error) {
	args := m.Called(ctx, teamIDs)
	if v := args.Get(0); v != nil {
		return v.([]Coach), args.Error(1)
	}
	return nil, args.Error(1)
}

func seed(t *testing.T) *sqlx.DB {
	conn := dbtest.New(t)
	dbtest.School(t, conn, "sc1", "Lincoln", "Main St")
	dbtest.Team(t, conn, "t1", "Sharks", "sc1")
	dbtest.SetSport(t, conn, "t1", "Soccer")
	dbtest.Team(t, conn, "t2", "Eagles", "")
	dbtest.Team(t, conn, "t3", "Other", "")
	dbtest.Staff(t, conn, "c1", "Ana", "ana@example.com")
	dbtest.SetPhone(t, conn, "c1", "555-0100")
	dbtest.Staff(t, conn, "c2", "Beto", "nope")
	dbtest.Staff(t, conn, "c3", "Ciro", "ciro@example.com")

	for _, s := range []dbtest.Session{
		{ID: "s1", TeamID: "t1", CoachID: "c1", Weekday: "lunes"},
		{ID: "s2", TeamID: "t1", CoachID: "c1", Weekday: "miércoles"},
		{ID: "s3", TeamID: "t2", CoachID: "c1", Weekday: "martes"},
		{ID: "s4", TeamID: "t2", CoachID: "c2", Weekday: "jueves"},
		{ID: "s5", TeamID: "t3", CoachID: "c3", Weekday: "viernes"},
	} {
		s.StartDate, s.EndDate = "2025-01-01", "2025-06-30"
		dbtest.InsertSession(t, conn, s)
	}
	return conn
}

func TestReplaceVariables(t *testing.T) {
	v := Variables{CoachName: "Ana", TeamName: "Sharks", TeamNames: "Eagles, Sharks"}
	got := ReplaceVariables("Hi {COACH_NAME}! {COACH_NAME} coaches {TEAM_NAMES} ({TEAM_NAME}) {SPORT}{UNKNOWN}", v)
	assert.Equal(t, "Hi Ana! Ana coaches Eagles, Sharks (Sharks) {UNKNOWN}", got)
}

func TestVariablesFor(t *testing.T) {
	c := Coach{
		Name: "Ana", Email: "ana@example.com",
		Teams: []TeamRef{
			{TeamID: "t1", Name: "Sharks", Sport: "Soccer", SchoolName: "Lincoln", SchoolLocation: "Main St"},
			{TeamID: "t2", Name: "Eagles"},
		},
	}
	assert.Equal(t, Variables{
		CoachName: "Ana", CoachEmail: "ana@example.com",
		TeamName: "Sharks", TeamNames: "Sharks, Eagles",
		SchoolName: "Lincoln", SchoolLocation: "Main St", Sport: "Soccer",
	}, VariablesFor(c))

	assert.Equal(t, Variables{CoachName: "Solo"}, VariablesFor(Coach{Name: "Solo"}))
}

func TestRenderBody(t *testing.T) {
	html, text, err := RenderBody("# Hola\nline one\nline two <script>x</script>", false)
	require.NoError(t, err)
	assert.Contains(t, html, "<h1>Hola</h1>")
	assert.Contains(t, html, "<br")
	assert.NotContains(t, html, "<script>")
	assert.Equal(t, "# Hola\nline one\nline two <script>x</script>", text)

	html, text, err = RenderBody("<p>as is</p>", true)
	require.NoError(t, err)
	assert.Equal(t, "<p>as is</p>", html)
	assert.Empty(t, text)
}

func TestStore_CoachesForTeams(t *testing.T) {
	st := NewStore(seed(t))

	got, err := st.CoachesForTeams(context.Background(), []string{"t1", "t2"})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, Coach{
		ID: "c1", Name: "Ana", Email: "ana@example.com", Phone: "555-0100",
		Teams: []TeamRef{
			{TeamID: "t2", Name: "Eagles"},
			{TeamID: "t1", Name: "Sharks", Sport: "Soccer", SchoolName: "Lincoln", SchoolLocation: "Main St"},
		},
	}, got[0])
	assert.Equal(t, "c2", got[1].ID)
	assert.Equal(t, []TeamRef{{TeamID: "t2", Name: "Eagles"}}, got[1].Teams)

	none, err := st.CoachesForTeams(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestService_Send(t *testing.T) {
	m := &recordingMailer{}
	svc := NewService(NewStore(seed(t)), m)

	res, err := svc.Send(context.Background(), Request{
		TeamIDs: []string{"t1", "t2"},
		Subject: "News for {TEAM_NAME}",
		Content: "Hi **{COACH_NAME}**, you coach {TEAM_NAMES}.",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, []SendError{{Coach: "Beto", Error: "invalid email"}}, res.Errors)

	require.Len(t, m.sent, 1)
	msg := m.sent[0]
	assert.Equal(t, []string{"ana@example.com"}, msg.To)
	assert.Equal(t, "News for Eagles", msg.Subject)
	assert.Contains(t, msg.HTML, "<strong>Ana</strong>, you coach Eagles, Sharks.")
	assert.Equal(t, "Hi **Ana**, you coach Eagles, Sharks.", msg.Text)
}

func TestService_SendBatchFailure(t *testing.T) {
	m := &recordingMailer{err: errors.New("provider down")}
	svc := NewService(NewStore(seed(t)), m)

	res, err := svc.Send(context.Background(), Request{TeamIDs: []string{"t1", "t3"}, Subject: "s", Content: "c", IsHTML: true})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 0, res.Sent)
	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, "provider down", res.Errors[0].Error)
}

func TestService_SendValidation(t *testing.T) {
	svc := NewService(NewStore(seed(t)), &recordingMailer{})
	ctx := context.Background()

	_, err := svc.Send(ctx, Request{Subject: "s", Content: "c"})
	assert.True(t, apierr.Is(err, apierr.CodeInvalidArgument))

	_, err = svc.Send(ctx, Request{TeamIDs: []string{"t1"}, Subject: " ", Content: "c"})
	assert.True(t, apierr.Is(err, apierr.CodeInvalidArgument))

	_, err = svc.Send(ctx, Request{TeamIDs: []string{"missing"}, Subject: "s", Content: "c"})
	assert.True(t, apierr.Is(err, apierr.CodeNotFound))
}

func TestService_StoreError(t *testing.T) {
	src := new(MockCoachSource)
	src.On("CoachesForTeams", mock.Anything, []string{"t1"}).Return(nil, errors.New("db gone"))
	svc := NewService(src, &recordingMailer{})

	_, err := svc.Send(context.Background(), Request{TeamIDs: []string{"t1"}, Subject: "s", Content: "c"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db gone")
	src.AssertExpectations(t)
}

func TestService_Preview(t *testing.T) {
	svc := NewService(NewStore(seed(t)), &recordingMailer{})
	ctx := context.Background()
	base := Request{TeamIDs: []string{"t1", "t2"}, Subject: "Hola {COACH_NAME}", Content: "{SCHOOL_NAME}"}

	p, err := svc.Preview(ctx, PreviewRequest{Request: base})
	require.NoError(t, err)
	assert.Equal(t, "c1", p.Coach.ID)
	assert.Equal(t, "Hola Ana", p.Subject)
	assert.Equal(t, 2, p.Recipients)

	p, err = svc.Preview(ctx, PreviewRequest{Request: base, CoachID: "c2"})
	require.NoError(t, err)
	assert.Equal(t, "Hola Beto", p.Subject)

	_, err = svc.Preview(ctx, PreviewRequest{Request: base, CoachID: "c3"})
	assert.True(t, apierr.Is(err, apierr.CodeNotFound))
}

func TestHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := &recordingMailer{}
	r := gin.New()
	RegisterRoutes(r, NewService(NewStore(seed(t)), m))

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := do(http.MethodPost, "/admin/campaigns/send", `{"team_ids":[],"subject":"s","content":"c"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(http.MethodPost, "/admin/campaigns/send", `{"team_ids":["t3"],"subject":"Hi {COACH_NAME}","content":"c"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 1, res.Sent)
	require.Len(t, m.sent, 1)
	assert.Equal(t, "Hi Ciro", m.sent[0].Subject)

	w = do(http.MethodPost, "/admin/campaigns/preview", `{"team_ids":["t3"],"subject":"s","content":"c","coach_id":"c3"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"recipients":1`)

	w = do(http.MethodPost, "/admin/campaigns/preview", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(http.MethodGet, "/admin/campaigns/variables", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "{TEAM_NAMES}")
}
