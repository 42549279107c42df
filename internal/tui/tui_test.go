package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/wca/internal/index"
	"github.com/Zuo-Peng/wca/internal/parse"
	"github.com/Zuo-Peng/wca/internal/search"
)

func TestOpenCommand(t *testing.T) {
	assert.Equal(t, "wca open 'chat:WhatsApp Chat with Friends' --hit 3",
		openCommand(item{key: "chat:WhatsApp Chat with Friends", msgID: 3}))
	assert.Equal(t, `wca open 'chat:Bob'\''s group'`,
		openCommand(item{key: "chat:Bob's group", msgID: -1}))
}

func TestResultItems(t *testing.T) {
	items := resultItems([]search.Result{
		{TranscriptKey: "chat:a", MsgID: 4, Title: "A", Sender: "Alice", Kind: parse.KindMessage, Snippet: "say >>>hello<<< there"},
		{TranscriptKey: "chat:a", MsgID: 5, Title: "A", Sender: parse.GroupNotification, Kind: parse.KindNotification, Snippet: "Bob left"},
	})
	require.Len(t, items, 2)
	assert.Equal(t, "say hello there", items[0].detail)
	assert.False(t, items[0].notice)
	assert.True(t, items[1].notice)
	assert.Equal(t, 5, items[1].msgID)
}

func TestTranscriptItems(t *testing.T) {
	ts := []index.TranscriptRow{
		{TranscriptKey: "chat:f", Title: "Family", LastAt: "2024-03-01T10:00:00Z", MessageCount: 12},
		{TranscriptKey: "chat:w", Title: "Work", LastAt: "2024-02-01T10:00:00Z", MessageCount: 3, UnparsedCount: 1},
	}

	all := transcriptItems(ts, "")
	require.Len(t, all, 2)
	assert.Equal(t, -1, all[0].msgID)
	assert.Equal(t, "12 messages", all[0].detail)
	assert.Equal(t, "3 messages, 1 unparsed", all[1].detail)

	filtered := transcriptItems(ts, "  WOR ")
	require.Len(t, filtered, 1)
	assert.Equal(t, "chat:w", filtered[0].key)
}

func TestFormatItem(t *testing.T) {
	it := item{key: "chat:f", msgID: 1, title: "Family", date: "2024-01-12T21:05:00Z", sender: "Alice", detail: "hello"}

	lines := formatItem(it, 60, true)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "> ")
	assert.Contains(t, lines[0], "2024-01-12")
	assert.Contains(t, lines[0], "Alice")
	assert.Contains(t, lines[0], "Family")
	assert.Contains(t, lines[1], "hello")

	unparsed := formatItem(item{msgID: 2, title: "Family", notice: true}, 60, false)
	assert.True(t, strings.HasPrefix(unparsed[0], "  ??????????"))
}

func TestAdjustListScroll(t *testing.T) {
	m := model{items: make([]item, 10)}
	m.cursor = 6
	m.adjustListScroll(6) // three visible items
	assert.Equal(t, 4, m.listOffset)

	m.cursor = 1
	m.adjustListScroll(6)
	assert.Equal(t, 1, m.listOffset)
}

func TestUpdate_ItemsAndNavigation(t *testing.T) {
	m := newModel(nil, modeSearch, "hello", search.Options{})

	// stale results for another query are ignored
	next, _ := m.Update(itemsMsg{query: "hel", items: []item{{key: "chat:x"}}})
	m = next.(model)
	assert.Empty(t, m.items)

	items := []item{{key: "chat:a", msgID: 0}, {key: "chat:a", msgID: 1}}
	next, cmd := m.Update(itemsMsg{query: "hello", items: items})
	m = next.(model)
	assert.Len(t, m.items, 2)
	assert.NotNil(t, cmd, "preview should load")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(model)
	assert.Equal(t, 1, m.cursor)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(model)
	assert.Equal(t, 1, m.cursor, "cursor stays on the last item")

	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(model)
	require.NotNil(t, m.chosen)
	assert.Equal(t, 1, m.chosen.msgID)
	assert.True(t, m.quitting)
	assert.NotNil(t, cmd)
}

func TestUpdate_KindCycle(t *testing.T) {
	m := newModel(nil, modeSearch, "hello", search.Options{Kind: parse.KindMessage})
	assert.Equal(t, parse.KindMessage, m.kind())

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	m = next.(model)
	assert.Equal(t, parse.KindNotification, m.kind())
	assert.NotNil(t, cmd)

	// results computed under the previous kind are stale
	next, _ = m.Update(itemsMsg{query: "hello", kind: parse.KindMessage, items: []item{{key: "chat:x"}}})
	assert.Empty(t, next.(model).items)
}

func TestUpdate_PreviewStale(t *testing.T) {
	m := newModel(nil, modeSearch, "q", search.Options{})
	m.items = []item{{key: "chat:a", msgID: 2}}

	next, _ := m.Update(previewRenderedMsg{key: "chat:a", msgID: 9, content: "old"})
	m = next.(model)
	assert.Equal(t, "", m.previewKey)

	next, _ = m.Update(previewRenderedMsg{key: "chat:a", msgID: 2, content: "fresh", hitLine: 3})
	m = next.(model)
	assert.Equal(t, "chat:a:2", m.previewKey)
}
