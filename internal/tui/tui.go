package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Zuo-Peng/wca/internal/index"
	"github.com/Zuo-Peng/wca/internal/parse"
	"github.com/Zuo-Peng/wca/internal/search"
)

const debounceDelay = 200 * time.Millisecond

type tuiMode int

const (
	modeSearch tuiMode = iota
	modeTranscripts
)

// kindFilters is the cycle order of the kind filter.
var kindFilters = []string{"", parse.KindMessage, parse.KindNotification}

// message types

type itemsMsg struct {
	query string
	kind  string
	items []item
	err   error
}

type debounceTickMsg struct {
	query string
}

// model

type model struct {
	db          *index.DB
	searchOpts  search.Options
	mode        tuiMode
	query       string
	kindIdx     int
	items       []item
	cursor      int
	listOffset  int
	filterInput textinput.Model
	preview     viewport.Model
	previewKey  string // "key:msgID" of the rendered preview
	width       int
	height      int
	ready       bool
	quitting    bool
	chosen      *item
}

func newModel(db *index.DB, mode tuiMode, query string, opts search.Options) model {
	ti := textinput.New()
	ti.Placeholder = "Search messages..."
	if mode == modeTranscripts {
		ti.Placeholder = "Filter chats..."
	}
	ti.Focus()
	ti.SetValue(query)
	ti.Prompt = "> "
	ti.PromptStyle = styleInputPrompt
	ti.TextStyle = styleInput
	ti.CharLimit = 256

	m := model{
		db:          db,
		searchOpts:  opts,
		mode:        mode,
		query:       query,
		filterInput: ti,
		preview:     viewport.New(0, 0),
	}
	for i, k := range kindFilters {
		if k == opts.Kind {
			m.kindIdx = i
		}
	}
	return m
}

// Run starts the message search browser and blocks until it exits.
// Choosing a result copies the command that opens it to the clipboard.
func Run(db *index.DB, query string, opts search.Options) error {
	return run(newModel(db, modeSearch, query, opts))
}

// RunTranscripts starts the browser over indexed chats, most recent first.
func RunTranscripts(db *index.DB) error {
	return run(newModel(db, modeTranscripts, "", search.Options{}))
}

func run(m model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}

	fm := finalModel.(model)
	if fm.chosen != nil {
		copyOpenCommand(*fm.chosen)
	}
	return nil
}

// openCommand returns the shell command that opens it in an editor.
func openCommand(it item) string {
	if it.msgID < 0 {
		return "wca open " + shellQuote(it.key)
	}
	return fmt.Sprintf("wca open %s --hit %d", shellQuote(it.key), it.msgID)
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func copyOpenCommand(it item) {
	cmd := openCommand(it)
	if err := clipboard.WriteAll(cmd); err != nil {
		fmt.Printf("%s\n", cmd)
		return
	}
	fmt.Printf("Copied to clipboard: %s\n", cmd)
}

func (m model) kind() string { return kindFilters[m.kindIdx] }

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.mode == modeTranscripts || m.query != "" {
		cmds = append(cmds, m.load(m.query))
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.preview = newViewport(m.previewWidth(), m.panelHeight())
		m.previewKey = ""
		cmds = append(cmds, m.loadCurrentPreview())
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.Enter):
			if it, ok := m.current(); ok {
				m.chosen = &it
				m.quitting = true
				return m, tea.Quit
			}
			return m, nil

		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.adjustListScroll(m.panelHeight())
				cmds = append(cmds, m.loadCurrentPreview())
			}
			return m, tea.Batch(cmds...)

		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.items)-1 {
				m.cursor++
				m.adjustListScroll(m.panelHeight())
				cmds = append(cmds, m.loadCurrentPreview())
			}
			return m, tea.Batch(cmds...)

		case key.Matches(msg, keys.Kind):
			if m.mode != modeSearch {
				return m, nil
			}
			m.kindIdx = (m.kindIdx + 1) % len(kindFilters)
			return m, m.load(m.query)

		case key.Matches(msg, keys.PreviewUp):
			m.preview.LineUp(m.panelHeight() / 2)
			return m, nil

		case key.Matches(msg, keys.PreviewDn):
			m.preview.LineDown(m.panelHeight() / 2)
			return m, nil

		case key.Matches(msg, keys.PageUp):
			m.preview.LineUp(m.panelHeight())
			return m, nil

		case key.Matches(msg, keys.PageDown):
			m.preview.LineDown(m.panelHeight())
			return m, nil
		}

		var tiCmd tea.Cmd
		m.filterInput, tiCmd = m.filterInput.Update(msg)
		cmds = append(cmds, tiCmd)

		if q := m.filterInput.Value(); q != m.query {
			m.query = q
			cmds = append(cmds, scheduleDebounce(q))
		}
		return m, tea.Batch(cmds...)

	case tea.MouseMsg:
		if !m.ready || len(m.items) == 0 {
			return m, nil
		}
		return m.handleMouse(msg)

	case debounceTickMsg:
		if msg.query == m.query {
			cmds = append(cmds, m.load(msg.query))
		}
		return m, tea.Batch(cmds...)

	case itemsMsg:
		if msg.query != m.query || msg.kind != m.kind() {
			return m, nil // stale
		}
		m.cursor = 0
		m.listOffset = 0
		m.previewKey = ""
		if msg.err != nil {
			m.items = nil
			m.preview.SetContent("Error: " + msg.err.Error())
			return m, nil
		}
		m.items = msg.items
		if len(m.items) == 0 {
			m.preview.SetContent("")
			return m, nil
		}
		return m, m.loadCurrentPreview()

	case previewRenderedMsg:
		k := previewCacheKey(msg.key, msg.msgID)
		if k == m.previewKey {
			return m, nil
		}
		if it, ok := m.current(); ok && previewCacheKey(it.key, it.msgID) != k {
			return m, nil // stale
		}
		if msg.err != nil {
			m.preview.SetContent("Preview error: " + msg.err.Error())
		} else {
			m.preview.SetContent(msg.content)
			if msg.hitLine > 0 {
				m.preview.SetYOffset(msg.hitLine)
			} else {
				m.preview.GotoTop()
			}
		}
		m.previewKey = k
		return m, nil
	}

	return m, tea.Batch(cmds...)
}

func (m model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	region, idx := m.hitTest(msg.X, msg.Y)

	switch {
	case region == regionList && msg.Button == tea.MouseButtonWheelUp:
		if m.listOffset > 0 {
			m.listOffset--
		}
	case region == regionList && msg.Button == tea.MouseButtonWheelDown:
		maxOffset := max(len(m.items)-m.panelHeight()/linesPerItem, 0)
		if m.listOffset < maxOffset {
			m.listOffset++
		}
	case region == regionList && msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
		if idx >= 0 && idx < len(m.items) && idx != m.cursor {
			m.cursor = idx
			m.adjustListScroll(m.panelHeight())
			return m, m.loadCurrentPreview()
		}
	case region == regionPreview && (msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown):
		var cmd tea.Cmd
		m.preview, cmd = m.preview.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) View() string {
	if m.quitting || !m.ready {
		return ""
	}

	listW := m.listWidth()
	previewW := m.previewWidth()
	panelH := m.panelHeight()

	listPanel := stylePanelBorder.
		Width(listW).
		Height(panelH).
		Render(m.renderList(listW, panelH))

	m.preview.Width = previewW
	m.preview.Height = panelH
	previewPanel := styleActiveBorder.
		Width(previewW).
		Height(panelH).
		Render(m.preview.View())

	panels := lipgloss.JoinHorizontal(lipgloss.Top, listPanel, previewPanel)
	return lipgloss.JoinVertical(lipgloss.Left, m.filterInput.View(), panels, m.statusBar())
}

// layout

func (m model) listWidth() int {
	if m.width <= 0 {
		return 40
	}
	return max(m.width*40/100-4, 20)
}

func (m model) previewWidth() int {
	if m.width <= 0 {
		return 60
	}
	return max(m.width*60/100-4, 20)
}

func (m model) panelHeight() int {
	if m.height <= 0 {
		return 20
	}
	// input row, status bar and two bordered panels
	return max(m.height-6, 5)
}

type mouseRegion int

const (
	regionNone mouseRegion = iota
	regionList
	regionPreview
)

// hitTest maps terminal coordinates to a panel and list item index.
func (m model) hitTest(x, y int) (mouseRegion, int) {
	top := 2 // input row + top border
	if y < top || y > top+m.panelHeight()-1 {
		return regionNone, -1
	}
	lw := m.listWidth()
	switch {
	case x >= 1 && x <= lw:
		return regionList, m.listOffset + (y-top)/linesPerItem
	case x > lw+2:
		return regionPreview, -1
	}
	return regionNone, -1
}

func (m model) statusBar() string {
	parts := []string{fmt.Sprintf("%d results", len(m.items))}
	if m.mode == modeSearch {
		kind := m.kind()
		if kind == "" {
			kind = "all"
		}
		parts = append(parts, "C-t kind: "+kind)
	}
	parts = append(parts,
		"up/dn navigate",
		"C-u/C-d preview",
		"Enter copy open cmd",
		"Esc quit",
	)
	return styleStatusBar.Render(strings.Join(parts, " | "))
}

func (m model) current() (item, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return item{}, false
	}
	return m.items[m.cursor], true
}

// load fetches the items for query in the current mode.
func (m model) load(query string) tea.Cmd {
	db := m.db
	mode := m.mode
	kind := m.kind()
	opts := m.searchOpts
	opts.Query = query
	opts.Kind = kind
	return func() tea.Msg {
		if mode == modeTranscripts {
			ts, err := db.ListTranscripts()
			if err != nil {
				return itemsMsg{query: query, kind: kind, err: err}
			}
			return itemsMsg{query: query, kind: kind, items: transcriptItems(ts, query)}
		}
		results, err := search.Search(db, opts)
		return itemsMsg{query: query, kind: kind, items: resultItems(results), err: err}
	}
}

func scheduleDebounce(query string) tea.Cmd {
	return tea.Tick(debounceDelay, func(time.Time) tea.Msg {
		return debounceTickMsg{query: query}
	})
}

func (m model) loadCurrentPreview() tea.Cmd {
	it, ok := m.current()
	if !ok || previewCacheKey(it.key, it.msgID) == m.previewKey {
		return nil
	}
	return loadPreviewCmd(m.db, it, m.query, m.previewWidth())
}

func previewCacheKey(key string, msgID int) string {
	return fmt.Sprintf("%s:%d", key, msgID)
}
