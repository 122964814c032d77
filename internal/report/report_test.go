package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pomodoro/zenpomo/internal/model"
)

func rec(name, date string, sessions int) model.CompletionRecord {
	return model.CompletionRecord{ID: name + date, Name: name, Date: date, TotalFocusSessionsCompleted: sessions}
}

func TestBuildMonthLayout(t *testing.T) {
	// October 2026 starts on a Thursday.
	m := BuildMonth(2026, time.October, nil, "")
	assert.Equal(t, 3, m.Offset)
	assert.Len(t, m.Days, 31)
	assert.Equal(t, "2026-10-31", m.Days[30].Date)
	assert.Equal(t, 0, m.ActiveDays)
	assert.Equal(t, MomentumBuilding, m.Momentum)

	weeks := m.Weeks()
	require.Len(t, weeks, 5)
	assert.Equal(t, 0, weeks[0][2].Day)
	assert.Equal(t, 1, weeks[0][3].Day)
	assert.Equal(t, 31, weeks[4][5].Day)
	assert.Equal(t, 0, weeks[4][6].Day)
}

func TestBuildMonthMondayStart(t *testing.T) {
	// June 2026 starts on a Monday; February 2026 has 28 days.
	assert.Equal(t, 0, BuildMonth(2026, time.June, nil, "").Offset)
	feb := BuildMonth(2026, time.February, nil, "")
	assert.Len(t, feb.Days, 28)
	assert.Equal(t, 6, feb.Offset)
}

func TestBuildMonthActivityAndFilter(t *testing.T) {
	records := []model.CompletionRecord{
		rec("Write", "2026-10-01", 4),
		rec("Write", "2026-10-01", 2),
		rec("Read", "2026-10-02", 1),
		rec("Write", "2026-11-01", 3),
		rec("Café", "2026-10-05", 1),
	}

	all := BuildMonth(2026, time.October, records, "")
	assert.Equal(t, 3, all.ActiveDays)
	assert.Equal(t, 2, all.Days[0].Plans)
	assert.Equal(t, 6, all.Days[0].FocusSessions)

	write := BuildMonth(2026, time.October, records, " Write ")
	assert.Equal(t, 1, write.ActiveDays)
	assert.Equal(t, "Write", write.Task)
	assert.False(t, write.Days[1].Active)

	// Composed and decomposed forms name the same task.
	cafe := BuildMonth(2026, time.October, records, "Cafe\u0301")
	assert.Equal(t, 1, cafe.ActiveDays)
	assert.True(t, cafe.Days[4].Active)
}

func TestMomentum(t *testing.T) {
	assert.Equal(t, MomentumBuilding, Momentum(10))
	assert.Equal(t, MomentumStrong, Momentum(11))

	records := make([]model.CompletionRecord, 0, 11)
	for d := 1; d <= 11; d++ {
		records = append(records, rec("Write", time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC).Format("2006-01-02"), 1))
	}
	assert.Equal(t, MomentumStrong, BuildMonth(2026, time.March, records, "").Momentum)
}

func TestRender(t *testing.T) {
	m := BuildMonth(2026, time.June, []model.CompletionRecord{rec("Write", "2026-06-02", 1)}, "Write")

	var buf bytes.Buffer
	require.NoError(t, m.Render(&buf))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Equal(t, "June 2026 - Write", lines[0])
	assert.Equal(t, " 1   2*  3   4   5   6   7 ", lines[2])
	assert.Equal(t, "Active days: 1  Building up", lines[len(lines)-1])
}

func TestTaskNames(t *testing.T) {
	names := TaskNames(
		[]model.CompletionRecord{rec("Write", "", 0), rec(" ", "", 0), rec("Read", "", 0)},
		[]model.PlannedTask{{Name: "Write"}, {Name: "Code"}},
	)
	assert.Equal(t, []string{"Code", "Read", "Write"}, names)
}
