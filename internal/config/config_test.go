package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := LoadFile(filepath.Join(home, "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "WhatsApp"), cfg.ExportRoot)
	assert.Equal(t, filepath.Join(home, ".config", "wca", "wca.db"), cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.MonthFirstFallback)
	assert.False(t, cfg.PreserveColons)
	assert.Equal(t, "UTC", cfg.Location().String())
}

func TestLoadFile_Overrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfgPath := filepath.Join(home, "config.toml")
	content := `
export_root = "~/chats"
db_path = "/tmp/wca-test.db"
log_level = "debug"
timezone = "Asia/Kolkata"
month_first_fallback = false
preserve_colons = true
stop_words_file = "~/stop.txt"
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))

	cfg, err := LoadFile(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "chats"), cfg.ExportRoot)
	assert.Equal(t, "/tmp/wca-test.db", cfg.DBPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.MonthFirstFallback)
	assert.True(t, cfg.PreserveColons)
	assert.Equal(t, filepath.Join(home, "stop.txt"), cfg.StopWordsFile)
	assert.Equal(t, "Asia/Kolkata", cfg.Location().String())
}

func TestLoadFile_Errors(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	bad := filepath.Join(home, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("export_root = ["), 0o644))
	_, err := LoadFile(bad)
	assert.Error(t, err)

	tz := filepath.Join(home, "tz.toml")
	require.NoError(t, os.WriteFile(tz, []byte(`timezone = "Mars/Olympus"`), 0o644))
	_, err = LoadFile(tz)
	assert.ErrorContains(t, err, "Mars/Olympus")
}

func TestPath_Env(t *testing.T) {
	t.Setenv("WCA_CONFIG", "/etc/wca.toml")
	p, err := Path()
	require.NoError(t, err)
	assert.Equal(t, "/etc/wca.toml", p)
}
