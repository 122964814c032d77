package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "pomodoro/zenpomo/internal/errors"
	"pomodoro/zenpomo/internal/model"
)

func sampleRecords() []model.CompletionRecord {
	return []model.CompletionRecord{
		{
			ID:                          "0192a0b0-0000-7000-8000-000000000001",
			Name:                        "Write report",
			Date:                        "2026-10-19",
			TotalFocusSessionsCompleted: 4,
			Configuration:               model.DefaultConfiguration(),
			CreatedAt:                   time.Date(2026, 10, 19, 11, 30, 0, 0, time.UTC),
		},
		{
			ID:                          "0192a0b0-0000-7000-8000-000000000002",
			Name:                        "Review, part 2",
			Date:                        "2026-10-20",
			TotalFocusSessionsCompleted: 1,
			Configuration:               model.Configuration{FocusDurationSeconds: 60, ShortBreakDurationSeconds: 30, LongBreakDurationSeconds: 90, FocusRepsPerBlock: 2, LongBreakCount: 1},
			CreatedAt:                   time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC),
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"json":                 FormatJSON,
		"YAML":                 FormatYAML,
		"yml":                  FormatYAML,
		"report.csv":           FormatCSV,
		"out/zenpomo.XLSX":     FormatXLSX,
		" zenpomo-report.json": FormatJSON,
	}
	for input, want := range tests {
		got, err := ParseFormat(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseFormat("pdf")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestFileName(t *testing.T) {
	day := time.Date(2026, 3, 7, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "zenpomo-report-2026-03-07.xlsx", FileName(FormatXLSX, day))
}

func TestJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sampleRecords()))
	assert.Contains(t, buf.String(), `"totalFocusSessionsCompleted": 4`)

	got, err := Read(&buf, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, sampleRecords(), got)
}

func TestYAMLRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatYAML, sampleRecords()))
	assert.Contains(t, buf.String(), "total_focus_sessions_completed: 4")

	got, err := Read(&buf, FormatYAML)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Review, part 2", got[1].Name)
	assert.True(t, got[0].CreatedAt.Equal(sampleRecords()[0].CreatedAt))
}

func TestReadRejectsGarbage(t *testing.T) {
	_, err := Read(bytes.NewBufferString("{not json"), FormatJSON)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	_, err = Read(bytes.NewBufferString("a,b"), FormatCSV)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, sampleRecords()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, "Review, part 2", rows[2][1])
	assert.Equal(t, []string{"60", "30", "90", "2", "1"}, rows[2][4:])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, sampleRecords()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, "Write report", rows[1][1])
	assert.Equal(t, "1500", rows[1][4])
}

func TestWriteEmptyHistory(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, nil))
	assert.Equal(t, "[]\n", buf.String())
}
