package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Zuo-Peng/wca/internal/stats"
)

const barWidth = 30

var (
	styleHeading = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).MarginTop(1)
	styleHeader  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	styleCell    = lipgloss.NewStyle().Padding(0, 1)
	styleBar     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleBorder  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			return styleCell
		}).
		Headers(headers...)
}

func bar(n, maxN int) string {
	if maxN <= 0 || n <= 0 {
		return ""
	}
	w := max(n*barWidth/maxN, 1)
	return styleBar.Render(strings.Repeat("█", w))
}

func countTable(title string, counts []stats.Count, limit int) string {
	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	maxN := 0
	for _, c := range counts {
		maxN = max(maxN, c.Count)
	}
	t := newTable(title, "count", "")
	for _, c := range counts {
		t.Row(c.Key, strconv.Itoa(c.Count), bar(c.Count, maxN))
	}
	return t.String()
}

// RenderReport lays out a stats report as a sequence of tables.
func RenderReport(title string, r stats.Report) string {
	var sections []string
	heading := func(s string) { sections = append(sections, styleHeading.Render(s)) }

	user := r.User
	if user == "" {
		user = stats.Overall
	}
	heading(fmt.Sprintf("%s (%s)", title, user))
	summary := newTable("messages", "words", "media", "links").
		Row(strconv.Itoa(r.Summary.Messages), strconv.Itoa(r.Summary.Words),
			strconv.Itoa(r.Summary.Media), strconv.Itoa(r.Summary.Links))
	sections = append(sections, summary.String())

	if len(r.BusiestUsers) > 0 {
		heading("Busiest users")
		t := newTable("sender", "messages", "%")
		for _, u := range r.BusiestUsers {
			t.Row(u.Sender, strconv.Itoa(u.Count), strconv.FormatFloat(u.Percent, 'f', 2, 64))
		}
		sections = append(sections, t.String())
	}

	if len(r.CommonWords) > 0 {
		heading("Most common words")
		sections = append(sections, countTable("word", r.CommonWords, 10))
	}

	heading("Monthly timeline")
	sections = append(sections, countTable("month", r.Monthly, 0))

	heading("Busiest days")
	sections = append(sections, countTable("day", r.WeekActivity, 0))

	heading("Busiest months")
	sections = append(sections, countTable("month", r.MonthActivity, 0))

	heading("Weekly activity by period")
	sections = append(sections, renderHeatmap(r.Heatmap))

	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

// renderHeatmap shows one row per weekday with a cell per hour period.
func renderHeatmap(h stats.Heatmap) string {
	headers := []string{"day"}
	for i := range h.Periods {
		headers = append(headers, strconv.Itoa(i))
	}
	t := newTable(headers...)
	for d, day := range h.Days {
		row := []string{day[:3]}
		for _, n := range h.Counts[d] {
			if n == 0 {
				row = append(row, "·")
			} else {
				row = append(row, strconv.Itoa(n))
			}
		}
		t.Row(row...)
	}
	return t.String()
}
