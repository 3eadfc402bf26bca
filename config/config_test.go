package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unset clears key for the duration of the test.
func unset(t *testing.T, keys ...string) {
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

var allKeys = []string{
	"PORT", "TRACKER_URL", "FEED_URL", "DB_PATH", "LOG_LEVEL",
	"MAZE_WIDTH", "MAZE_HEIGHT", "MAZE_GRANULARITY", "MAZE_PLAYERS", "MAZE_SEED", "MAZE_MAX_RETRIES",
	"PLACEMENT_REACH", "PLAY_REACH", "REDRAW_RETRY_MS", "REDRAW_DURATION_MS", "NEW_GAME_DELAY_MS",
}

func missingFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadDefaults(t *testing.T) {
	unset(t, allKeys...)

	cfg, err := Load(missingFile(t))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Maze.Validate())
}

func TestLoadOverridesAndClamps(t *testing.T) {
	unset(t, allKeys...)
	t.Setenv("MAZE_WIDTH", "30")
	t.Setenv("MAZE_HEIGHT", "3")
	t.Setenv("MAZE_PLAYERS", "9")
	t.Setenv("MAZE_SEED", "77")
	t.Setenv("PLACEMENT_REACH", "2")
	t.Setenv("PLAY_REACH", "1")
	t.Setenv("NEW_GAME_DELAY_MS", "1500")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("TRACKER_URL", "ws://board:9000/ws")

	cfg, err := Load(missingFile(t))
	require.NoError(t, err)

	assert.Equal(t, 28, cfg.Maze.Width)
	assert.Equal(t, 8, cfg.Maze.Height)
	assert.Equal(t, 4, cfg.Maze.Players)
	assert.Equal(t, int64(77), cfg.Maze.Seed)
	assert.Equal(t, 2, cfg.PlayReach)
	assert.Equal(t, 1500*time.Millisecond, cfg.NewGameDelay)
	assert.Equal(t, log.DebugLevel, cfg.LogLevel)
	assert.Equal(t, "ws://board:9000/ws", cfg.TrackerURL)
	assert.NoError(t, cfg.Maze.Validate())
}

func TestLoadRejectsBadValues(t *testing.T) {
	unset(t, allKeys...)
	t.Setenv("MAZE_WIDTH", "wide")
	_, err := Load(missingFile(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAZE_WIDTH")

	unset(t, allKeys...)
	t.Setenv("LOG_LEVEL", "loud")
	_, err = Load(missingFile(t))
	assert.Error(t, err)
}

func TestLoadReadsEnvFile(t *testing.T) {
	unset(t, allKeys...)
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("DB_PATH=games.db\nMAZE_GRANULARITY=1\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "games.db", cfg.DBPath)
	assert.Equal(t, 1, cfg.Maze.Granularity)
}

func TestClamp(t *testing.T) {
	cfg := Config{Maze: Default().Maze}
	cfg.Maze.Granularity = 0
	cfg.Maze.Width = 1000
	cfg.PlacementReach = -3
	cfg.PlayReach = 100

	Clamp(&cfg)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 1, cfg.Maze.Granularity)
	assert.Equal(t, 128, cfg.Maze.Width)
	assert.Equal(t, 1, cfg.PlacementReach)
	assert.Equal(t, 20, cfg.PlayReach)
	assert.Equal(t, 10*time.Millisecond, cfg.RedrawRetry)

	g := cfg.Game()
	assert.Equal(t, cfg.Maze, g.Maze)
	assert.Equal(t, cfg.PlayReach, g.PlayReach)
	assert.Nil(t, g.Tracker)
}
