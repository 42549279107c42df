package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/wca/internal/index"
	"github.com/Zuo-Peng/wca/internal/parse"
	"github.com/Zuo-Peng/wca/internal/search"
)

// linesPerItem is the number of terminal lines each entry occupies.
const linesPerItem = 2

// item is one selectable row: a message hit, or a whole chat (msgID -1).
type item struct {
	key    string
	msgID  int
	title  string
	date   string
	sender string
	notice bool
	detail string
}

func resultItems(results []search.Result) []item {
	items := make([]item, 0, len(results))
	for _, r := range results {
		snippet := strings.NewReplacer(">>>", "", "<<<", "").Replace(r.Snippet)
		items = append(items, item{
			key:    r.TranscriptKey,
			msgID:  r.MsgID,
			title:  r.Title,
			date:   r.Date,
			sender: r.Sender,
			notice: r.Kind == parse.KindNotification,
			detail: snippet,
		})
	}
	return items
}

// transcriptItems keeps the chats whose title contains filter, ignoring case.
func transcriptItems(ts []index.TranscriptRow, filter string) []item {
	filter = strings.ToLower(strings.TrimSpace(filter))
	var items []item
	for _, t := range ts {
		if filter != "" && !strings.Contains(strings.ToLower(t.Title), filter) {
			continue
		}
		detail := fmt.Sprintf("%d messages", t.MessageCount)
		if t.UnparsedCount > 0 {
			detail += fmt.Sprintf(", %d unparsed", t.UnparsedCount)
		}
		items = append(items, item{
			key:    t.TranscriptKey,
			msgID:  -1,
			title:  t.Title,
			date:   t.LastAt,
			detail: detail,
		})
	}
	return items
}

// shortDate trims an RFC 3339 timestamp to its date.
func shortDate(s string) string {
	if s == "" {
		return "??????????"
	}
	if len(s) >= 10 {
		return s[:10]
	}
	return s
}

func truncate(s string, w int) string {
	s = strings.Join(strings.Fields(s), " ")
	if runewidth.StringWidth(s) > w {
		return runewidth.Truncate(s, max(w, 0), "…")
	}
	return s
}

// renderList renders the left panel with scrolling.
func (m model) renderList(width, height int) string {
	if len(m.items) == 0 {
		return lipgloss.NewStyle().
			Foreground(colorDim).
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No results")
	}

	var lines []string
	for i := m.listOffset; i < len(m.items); i++ {
		if len(lines)+linesPerItem > height {
			break
		}
		lines = append(lines, formatItem(m.items[i], width, i == m.cursor)...)
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

// formatItem lays an entry out as two lines:
//
//	line 1: [>] date  who  title
//	line 2:    detail (dimmed)
func formatItem(it item, width int, selected bool) []string {
	date := shortDate(it.date)

	var who string
	switch {
	case it.msgID < 0:
		who = ""
	case it.notice:
		who = styleNotice.Render("*") + " "
	default:
		who = styleSender.Render(truncate(it.sender, 14)) + " "
	}

	// prefix(2) + date(10) + space
	titleMax := width - 2 - len(date) - 1 - lipgloss.Width(who)
	line1 := fmt.Sprintf("%s %s%s", date, who, truncate(it.title, titleMax))
	if selected {
		line1 = styleListSelected.Render("> ") + line1
	} else {
		line1 = "  " + line1
	}

	line2 := "    " + styleSubtle.Render(truncate(it.detail, width-4))
	return []string{line1, line2}
}

// adjustListScroll keeps the cursor visible within the list viewport.
func (m *model) adjustListScroll(listHeight int) {
	visible := max(listHeight/linesPerItem, 1)
	if m.cursor < m.listOffset {
		m.listOffset = m.cursor
	}
	if m.cursor >= m.listOffset+visible {
		m.listOffset = m.cursor - visible + 1
	}
}
