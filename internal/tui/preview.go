package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zuo-Peng/wca/internal/index"
	"github.com/Zuo-Peng/wca/internal/render"
)

// previewRenderedMsg is sent when an async preview render completes.
type previewRenderedMsg struct {
	key     string
	msgID   int
	content string
	hitLine int
	err     error
}

// loadPreviewCmd renders the whole conversation around it off the UI loop.
func loadPreviewCmd(db *index.DB, it item, query string, width int) tea.Cmd {
	return func() tea.Msg {
		content, hitLine, err := render.RenderConversation(db, it.key, render.Options{
			HitMsgID: it.msgID,
			Context:  -1,
			Width:    width,
			Query:    query,
		})
		return previewRenderedMsg{
			key:     it.key,
			msgID:   it.msgID,
			content: content,
			hitLine: hitLine,
			err:     err,
		}
	}
}

func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.Style = stylePanelBorder
	return vp
}
