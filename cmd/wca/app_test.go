package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/wca/internal/index"
)

const chat = "12/1/24, 9:05 PM - Alice: Hello\n12/1/24, 9:06 PM - Bob: Hi\n"

func newTestApp(t *testing.T) (*app, string) {
	t.Helper()
	dir := t.TempDir()
	root := filepath.Join(dir, "exports")
	require.NoError(t, os.MkdirAll(root, 0o755))

	cfgPath := filepath.Join(dir, "config.toml")
	cfg := fmt.Sprintf("export_root = %q\ndb_path = %q\ntimezone = \"Asia/Kolkata\"\nlog_level = \"error\"\npreserve_colons = true\n",
		root, filepath.Join(dir, "wca.db"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	a := &app{cfgPath: cfgPath}
	require.NoError(t, a.load())
	return a, root
}

func TestApp_ParseOptions(t *testing.T) {
	a, _ := newTestApp(t)
	opts := a.parseOptions()

	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	assert.Equal(t, kolkata.String(), opts.Location.String())
	assert.True(t, opts.MonthFirst)
	assert.True(t, opts.PreserveColons)
	assert.NotNil(t, opts.Logger)
}

func TestApp_LoadRecords(t *testing.T) {
	a, root := newTestApp(t)
	path := filepath.Join(root, "WhatsApp Chat with Team.txt")
	require.NoError(t, os.WriteFile(path, []byte(chat), 0o644))

	title, recs, err := a.loadRecords(path)
	require.NoError(t, err)
	assert.Equal(t, "Team", title)
	assert.Len(t, recs, 2)

	db, err := a.openDB()
	require.NoError(t, err)
	a.refresh(db)
	require.NoError(t, db.Close())

	title, recs, err = a.loadRecords("chat:WhatsApp Chat with Team")
	require.NoError(t, err)
	assert.Equal(t, "Team", title)
	require.Len(t, recs, 2)
	assert.Equal(t, "Bob", recs[1].Sender)

	_, _, err = a.loadRecords("chat:missing")
	assert.ErrorIs(t, err, index.ErrTranscriptNotFound)
}
