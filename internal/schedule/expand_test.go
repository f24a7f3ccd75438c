package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func dates(occ []Occurrence) []string {
	out := make([]string, 0, len(occ))
	for _, o := range occ {
		out = append(out, o.OccurrenceDate)
	}
	return out
}

func def(id, weekday, start, end string) SessionDefinition {
	return SessionDefinition{
		SessionID: id,
		TeamID:    "team-1",
		CoachID:   "coach-1",
		StartDate: start,
		EndDate:   end,
		StartTime: "16:00",
		EndTime:   "17:30:15",
		Weekday:   weekday,
		Repeat:    "weekly",
	}
}

func TestExpand_MondaysOfJanuary(t *testing.T) {
	got := Expand([]SessionDefinition{def("s1", "monday", "2025-01-01", "2025-01-31")}, nil, day("2025-01-01"))
	assert.Equal(t, []string{"2025-01-06", "2025-01-13", "2025-01-20", "2025-01-27"}, dates(got))

	for _, o := range got {
		assert.Equal(t, "s1", o.SessionID)
		assert.Equal(t, "s1_"+o.OccurrenceDate, o.ID.String())
		assert.Equal(t, StatusPlanned, o.Status)
		assert.Equal(t, time.Monday, o.StartsAt.Weekday())
	}
}

func TestExpand_ExpiredDefinition(t *testing.T) {
	got := Expand([]SessionDefinition{def("s1", "lunes", "2025-01-01", "2025-01-31")}, nil, day("2025-02-01"))
	assert.Empty(t, got)
}

func TestExpand_IncludesTodayExcludesPast(t *testing.T) {
	// 2025-01-13 is a Monday
	today := time.Date(2025, 1, 13, 23, 59, 0, 0, time.UTC)
	got := Expand([]SessionDefinition{def("s1", "Lunes", "2025-01-01", "2025-01-31")}, nil, today)
	assert.Equal(t, []string{"2025-01-13", "2025-01-20", "2025-01-27"}, dates(got))
}

func TestExpand_EndDateIsInclusive(t *testing.T) {
	got := Expand([]SessionDefinition{def("s1", "friday", "2025-01-01", "2025-01-31")}, nil, day("2025-01-31"))
	assert.Equal(t, []string{"2025-01-31"}, dates(got))
}

func TestExpand_WeekdayNeverInRange(t *testing.T) {
	// Wed..Fri has no Monday
	got := Expand([]SessionDefinition{def("s1", "monday", "2025-01-01", "2025-01-03")}, nil, day("2025-01-01"))
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestExpand_SkipsBadDefinitionsAndKeepsOthers(t *testing.T) {
	badTime := def("bad-time", "monday", "2025-01-01", "2025-01-31")
	badTime.StartTime = "25:00"

	defs := []SessionDefinition{
		def("unknown-day", "funday", "2025-01-01", "2025-01-31"),
		def("reversed", "monday", "2025-01-31", "2025-01-01"),
		badTime,
		def("ok", "monday", "2025-01-01", "2025-01-10"),
	}
	got := Expand(defs, nil, day("2025-01-01"))
	require.Len(t, got, 1)
	assert.Equal(t, "ok", got[0].SessionID)
}

func TestExpand_TimesAndLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	today := time.Date(2025, 1, 1, 9, 0, 0, 0, loc)

	got := Expand([]SessionDefinition{def("s1", "monday", "2025-01-01", "2025-01-07")}, nil, today)
	require.Len(t, got, 1)

	assert.Equal(t, time.Date(2025, 1, 6, 16, 0, 0, 0, loc), got[0].StartsAt)
	assert.Equal(t, time.Date(2025, 1, 6, 17, 30, 15, 0, loc), got[0].EndsAt)
	assert.Equal(t, "2025-01-06", got[0].OccurrenceDate)
}

func TestExpand_SortedAcrossDefinitions(t *testing.T) {
	tue := def("tue", "martes", "2025-01-01", "2025-01-15")
	mon := def("mon", "monday", "2025-01-01", "2025-01-15")
	mon.StartTime = "08:00"

	got := Expand([]SessionDefinition{tue, mon}, nil, day("2025-01-01"))
	assert.Equal(t, []string{"2025-01-06", "2025-01-07", "2025-01-13", "2025-01-14"}, dates(got))
	assert.Equal(t, "mon", got[0].SessionID)
	assert.Equal(t, "tue", got[1].SessionID)

	again := Expand([]SessionDefinition{tue, mon}, nil, day("2025-01-01"))
	assert.Equal(t, got, again)
}

func TestExpand_TeamInfoDefaults(t *testing.T) {
	d := def("s1", "monday", "2025-01-01", "2025-01-07")

	got := Expand([]SessionDefinition{d}, nil, day("2025-01-01"))
	require.Len(t, got, 1)
	assert.Equal(t, DefaultTeamName, got[0].TeamName)
	assert.Equal(t, DefaultLocation, got[0].Location)

	teams := map[string]TeamInfo{"team-1": {Name: "Sharks", Location: "Lincoln Gym"}}
	got = Expand([]SessionDefinition{d}, teams, day("2025-01-01"))
	require.Len(t, got, 1)
	assert.Equal(t, "Sharks", got[0].TeamName)
	assert.Equal(t, "Lincoln Gym", got[0].Location)
}

func TestExpandWindow(t *testing.T) {
	d := def("s1", "monday", "2025-01-01", "2025-01-31")
	got := ExpandWindow([]SessionDefinition{d}, nil, Window{From: day("2025-01-10"), To: day("2025-01-20")})
	assert.Equal(t, []string{"2025-01-13", "2025-01-20"}, dates(got))

	got = ExpandWindow([]SessionDefinition{d}, nil, Window{From: day("2024-12-01"), To: day("2025-01-07")})
	assert.Equal(t, []string{"2025-01-06"}, dates(got))
}

func TestParseClock(t *testing.T) {
	c, err := parseClock("7:05")
	require.NoError(t, err)
	assert.Equal(t, clock{h: 7, m: 5}, c)

	c, err = parseClock("18:30:59")
	require.NoError(t, err)
	assert.Equal(t, clock{h: 18, m: 30, s: 59}, c)

	for _, bad := range []string{"", "18", "18:xx", "1:2:3:4", "24:00", "-1:00"} {
		_, err := parseClock(bad)
		assert.Error(t, err, bad)
	}
}
