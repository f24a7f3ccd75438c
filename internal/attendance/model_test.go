package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coachdesk-backend/internal/roster"
)

func students(ids ...string) []roster.Student {
	out := make([]roster.Student, 0, len(ids))
	for _, id := range ids {
		out = append(out, roster.Student{StudentID: id, FirstName: id})
	}
	return out
}

func TestMerge_UnmarkedVersusAbsent(t *testing.T) {
	rs := students("a", "b", "c")
	marks := []Mark{
		{ID: "m1", SessionID: "s", StudentID: "a", Date: "2025-01-06", Assisted: true},
		{ID: "m2", SessionID: "s", StudentID: "b", Date: "2025-01-06", Assisted: false},
		{ID: "m3", SessionID: "s", StudentID: "zz", Date: "2025-01-06", Assisted: true}, // not on roster
	}

	rows := Merge(rs, marks)
	require.Len(t, rows, 3)

	require.NotNil(t, rows[0].Assistance)
	assert.True(t, rows[0].Assistance.Assisted)
	require.NotNil(t, rows[1].Assistance)
	assert.False(t, rows[1].Assistance.Assisted)
	assert.Nil(t, rows[2].Assistance)

	c := Tally(rows)
	assert.Equal(t, Counts{Present: 1, Absent: 1, Marked: 2, Total: 3, Pending: 1}, c)
}

func TestMerge_DoesNotMutateOrAlias(t *testing.T) {
	rs := students("a")
	marks := []Mark{{ID: "m1", StudentID: "a", Assisted: true}}

	rows := Merge(rs, marks)
	rows[0].Assistance.Assisted = false
	rows[0].FirstName = "changed"

	assert.True(t, marks[0].Assisted)
	assert.Equal(t, "a", rs[0].FirstName)
}

func TestMerge_Empty(t *testing.T) {
	rows := Merge(nil, []Mark{{StudentID: "a"}})
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
	assert.Equal(t, Counts{}, Tally(rows))
}

func TestTally_Consistent(t *testing.T) {
	// every assignment of {unmarked, present, absent} over four students
	states := []*bool{nil, ptr(true), ptr(false)}
	rs := students("a", "b", "c", "d")

	for i := 0; i < 81; i++ {
		var marks []Mark
		n := i
		for _, st := range rs {
			if s := states[n%3]; s != nil {
				marks = append(marks, Mark{StudentID: st.StudentID, Assisted: *s})
			}
			n /= 3
		}
		c := Tally(Merge(rs, marks))
		assert.Equal(t, c.Total, c.Present+c.Absent+c.Pending)
		assert.Equal(t, c.Marked, c.Present+c.Absent)
		assert.Equal(t, len(marks), c.Marked)
		assert.Equal(t, 4, c.Total)
	}
}

func ptr(b bool) *bool { return &b }
