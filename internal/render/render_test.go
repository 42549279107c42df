package render

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/wca/internal/index"
	"github.com/Zuo-Peng/wca/internal/parse"
	"github.com/Zuo-Peng/wca/internal/stats"
)

const chat = `12/1/24, 9:05 PM - Alice: pizza tonight?
12/1/24, 9:06 PM - Bob: sure
12/1/24, 9:07 PM - Carol joined
12/1/24, 9:08 PM - Alice: great, pizza at 8
`

func quietOptions() parse.Options {
	opts := parse.DefaultOptions()
	opts.Logger = slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return opts
}

func setupDB(t *testing.T) *index.DB {
	t.Helper()
	dir := t.TempDir()
	root := filepath.Join(dir, "exports")
	require.NoError(t, os.MkdirAll(root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "WhatsApp Chat with Friends.txt"), []byte(chat), 0o644))

	db, err := index.OpenDB(filepath.Join(dir, "wca.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	opts := quietOptions()
	ix := &index.Indexer{DB: db, Root: root, Options: opts, Logger: opts.Logger}
	_, err = ix.IndexAll()
	require.NoError(t, err)
	return db
}

func TestRenderConversation(t *testing.T) {
	db := setupDB(t)

	out, hitLine, err := RenderConversation(db, "chat:WhatsApp Chat with Friends", Options{HitMsgID: 2, Context: 1, Query: "pizza"})
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.Greater(t, len(lines), hitLine)
	assert.Equal(t, 4, hitLine)
	assert.Contains(t, lines[0], "Friends")
	assert.Contains(t, lines[1], "1 messages before")
	assert.Contains(t, lines[hitLine], ">> * > 12/1/24, 9:07 PM")
	assert.Contains(t, out, "Bob")
	assert.Contains(t, out, colorBoldRed+"pizza"+colorReset)
	assert.NotContains(t, out, "messages after")
}

func TestRenderConversation_NotFound(t *testing.T) {
	db := setupDB(t)
	_, _, err := RenderConversation(db, "chat:missing", Options{})
	assert.ErrorIs(t, err, index.ErrTranscriptNotFound)
}

func TestWrapLine(t *testing.T) {
	assert.Equal(t, []string{"abcdef"}, wrapLine("abcdef", 0))
	assert.Equal(t, []string{"abc", "def", "g"}, wrapLine("abcdefg", 3))
	assert.Equal(t, []string{"\033[1mab", "cd\033[0m"}, wrapLine("\033[1mabcd\033[0m", 2))
	assert.Equal(t, []string{"你好", "世界"}, wrapLine("你好世界", 4))
	assert.Equal(t, []string{""}, wrapLine("", 5))
}

func TestHighlightKeywords(t *testing.T) {
	got := highlightKeywords("Pizza and PIZZA", "pizza AND")
	assert.Equal(t, colorBoldRed+"Pizza"+colorReset+" and "+colorBoldRed+"PIZZA"+colorReset, got)
	assert.Equal(t, "plain", highlightKeywords("plain", ""))
}

func TestRenderReport(t *testing.T) {
	res, err := parse.Preprocess(chat, quietOptions())
	require.NoError(t, err)

	out := RenderReport("Friends", stats.Build(res.Records, "", nil))
	assert.Contains(t, out, "Friends")
	assert.Contains(t, out, "Busiest users")
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "January-2024")
	assert.Contains(t, out, "Friday")
	assert.Contains(t, out, "pizza")
}
