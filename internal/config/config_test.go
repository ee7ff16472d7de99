package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inTempDir runs the test from an empty directory so no stray .env is read.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	inTempDir(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := inTempDir(t)
	path := filepath.Join(dir, "tablesim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server_url: ws://table.example:9000/ws/
drag_delay: 150ms
cell_width: 10
log_level: debug
`), 0o600))
	t.Setenv("TABLESIM_CELL_WIDTH", "12")
	t.Setenv("TABLESIM_MOVE_INTERVAL", "80ms")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ws://table.example:9000/ws/", cfg.ServerURL)
	assert.Equal(t, 150*time.Millisecond, cfg.DragDelay)
	assert.Equal(t, 80*time.Millisecond, cfg.MoveInterval)
	assert.Equal(t, 12, cfg.CellWidth, "environment wins over the file")
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 16, cfg.CellHeight)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("TABLESIM_DEBUG_ADDR=127.0.0.1:7070\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("TABLESIM_DEBUG_ADDR") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7070", cfg.DebugAddr)
}

func TestLoad_Errors(t *testing.T) {
	inTempDir(t)

	_, err := Load("does-not-exist.yaml")
	assert.Error(t, err)

	t.Setenv("TABLESIM_DRAG_DELAY", "soon")
	_, err = Load("")
	assert.True(t, errors.Is(err, ErrInvalid), "got %v", err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"wss", func(c *Config) { c.ServerURL = "wss://table.example/ws/" }, true},
		{"http scheme", func(c *Config) { c.ServerURL = "http://table.example/ws/" }, false},
		{"no host", func(c *Config) { c.ServerURL = "ws:///ws/" }, false},
		{"zero drag delay", func(c *Config) { c.DragDelay = 0 }, false},
		{"negative interval", func(c *Config) { c.HandInterval = -time.Second }, false},
		{"zero cell", func(c *Config) { c.CellHeight = 0 }, false},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.ok && err != nil {
				t.Fatalf("want valid, got %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrInvalid) {
				t.Fatalf("want ErrInvalid, got %v", err)
			}
		})
	}
}
