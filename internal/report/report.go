// Package report builds the monthly activity calendar from completion
// history.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"pomodoro/zenpomo/internal/completion"
	"pomodoro/zenpomo/internal/model"
)

const (
	MomentumStrong   = "Unstoppable"
	MomentumBuilding = "Building up"

	// Active days above this earn the strong momentum label.
	momentumThreshold = 10
)

type Day struct {
	Day           int    `json:"day"`
	Date          string `json:"date"`
	Active        bool   `json:"active"`
	Plans         int    `json:"plans"`
	FocusSessions int    `json:"focusSessions"`
}

type Month struct {
	Year       int        `json:"year"`
	Month      time.Month `json:"month"`
	Task       string     `json:"task,omitempty"`
	Offset     int        `json:"offset"`
	Days       []Day      `json:"days"`
	ActiveDays int        `json:"activeDays"`
	Momentum   string     `json:"momentum"`
}

// BuildMonth lays out one calendar month. Weeks start on Monday; Offset is
// the number of blank cells before day 1. An empty task matches every
// record.
func BuildMonth(year int, month time.Month, records []model.CompletionRecord, task string) Month {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	total := first.AddDate(0, 1, -1).Day()
	filter := normalize(task)

	byDate := make(map[string][]model.CompletionRecord)
	for _, record := range records {
		if filter != "" && normalize(record.Name) != filter {
			continue
		}
		byDate[record.Date] = append(byDate[record.Date], record)
	}

	m := Month{
		Year:   year,
		Month:  month,
		Task:   strings.TrimSpace(task),
		Offset: (int(first.Weekday()) + 6) % 7,
		Days:   make([]Day, 0, total),
	}
	for d := 1; d <= total; d++ {
		date := time.Date(year, month, d, 0, 0, 0, 0, time.UTC).Format(completion.DateLayout)
		day := Day{Day: d, Date: date}
		for _, record := range byDate[date] {
			day.Plans++
			day.FocusSessions += record.TotalFocusSessionsCompleted
		}
		day.Active = day.Plans > 0
		if day.Active {
			m.ActiveDays++
		}
		m.Days = append(m.Days, day)
	}
	m.Momentum = Momentum(m.ActiveDays)
	return m
}

func Momentum(activeDays int) string {
	if activeDays > momentumThreshold {
		return MomentumStrong
	}
	return MomentumBuilding
}

// Weeks splits the month into Monday-first rows. Blank cells have Day 0.
func (m Month) Weeks() [][]Day {
	cells := make([]Day, m.Offset, m.Offset+len(m.Days))
	cells = append(cells, m.Days...)
	for len(cells)%7 != 0 {
		cells = append(cells, Day{})
	}

	weeks := make([][]Day, 0, len(cells)/7)
	for i := 0; i < len(cells); i += 7 {
		weeks = append(weeks, cells[i:i+7])
	}
	return weeks
}

// Render draws the month as a text calendar. Active days are starred.
func (m Month) Render(w io.Writer) error {
	title := fmt.Sprintf("%s %d", m.Month, m.Year)
	if m.Task != "" {
		title += " - " + m.Task
	}

	var b strings.Builder
	b.WriteString(title + "\n")
	b.WriteString(" Mo  Tu  We  Th  Fr  Sa  Su\n")
	for _, week := range m.Weeks() {
		for i, day := range week {
			if i > 0 {
				b.WriteByte(' ')
			}
			switch {
			case day.Day == 0:
				b.WriteString("   ")
			case day.Active:
				fmt.Fprintf(&b, "%2d*", day.Day)
			default:
				fmt.Fprintf(&b, "%2d ", day.Day)
			}
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "Active days: %d  %s\n", m.ActiveDays, m.Momentum)

	_, err := io.WriteString(w, b.String())
	return err
}

// TaskNames lists every distinct non-empty name found in history and planned
// tasks, sorted.
func TaskNames(records []model.CompletionRecord, tasks []model.PlannedTask) []string {
	seen := make(map[string]struct{})
	names := make([]string, 0)
	add := func(name string) {
		name = normalize(name)
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	for _, record := range records {
		add(record.Name)
	}
	for _, task := range tasks {
		add(task.Name)
	}
	sort.Strings(names)
	return names
}

func normalize(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
