// Package config reads server settings from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/zucenko/tablemaze/game"
	"github.com/zucenko/tablemaze/maze"
)

type Config struct {
	Port       string // HTTP port of the server
	TrackerURL string // websocket URL of the board tracker, empty for manual input
	FeedURL    string // snapshot feed the projector connects to
	DBPath     string // SQLite file for finished games, empty disables it
	LogLevel   log.Level

	Maze maze.Config

	PlacementReach int
	PlayReach      int

	RedrawRetry    time.Duration
	RedrawDuration time.Duration
	NewGameDelay   time.Duration
}

func Default() Config {
	return Config{
		Port:           "8080",
		FeedURL:        "ws://localhost:8080/play",
		DBPath:         "tablemaze.db",
		LogLevel:       log.InfoLevel,
		Maze:           maze.DefaultConfig(),
		PlacementReach: game.DefaultPlacementReach,
		PlayReach:      game.DefaultPlayReach,
		RedrawRetry:    game.DefaultRedrawRetry,
		RedrawDuration: game.DefaultRedrawDuration,
		NewGameDelay:   game.DefaultNewGameDelay,
	}
}

// Load reads the given .env files (".env" when none are given), then the
// environment, and clamps the result. Missing files are not an error.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			log.Debugf("[APP] %s not loaded: %v", f, err)
		}
	}

	cfg := Default()
	var err error
	setString(&cfg.Port, "PORT")
	setString(&cfg.TrackerURL, "TRACKER_URL")
	setString(&cfg.FeedURL, "FEED_URL")
	setString(&cfg.DBPath, "DB_PATH")
	if s, ok := os.LookupEnv("LOG_LEVEL"); ok {
		if cfg.LogLevel, err = log.ParseLevel(s); err != nil {
			return cfg, fmt.Errorf("LOG_LEVEL: %w", err)
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"MAZE_WIDTH", &cfg.Maze.Width},
		{"MAZE_HEIGHT", &cfg.Maze.Height},
		{"MAZE_GRANULARITY", &cfg.Maze.Granularity},
		{"MAZE_PLAYERS", &cfg.Maze.Players},
		{"MAZE_MAX_RETRIES", &cfg.Maze.MaxRetries},
		{"PLACEMENT_REACH", &cfg.PlacementReach},
		{"PLAY_REACH", &cfg.PlayReach},
	}
	for _, i := range ints {
		if err := setInt(i.dst, i.key); err != nil {
			return cfg, err
		}
	}
	if s, ok := os.LookupEnv("MAZE_SEED"); ok {
		if cfg.Maze.Seed, err = strconv.ParseInt(s, 10, 64); err != nil {
			return cfg, fmt.Errorf("MAZE_SEED must be an integer: %w", err)
		}
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"REDRAW_RETRY_MS", &cfg.RedrawRetry},
		{"REDRAW_DURATION_MS", &cfg.RedrawDuration},
		{"NEW_GAME_DELAY_MS", &cfg.NewGameDelay},
	}
	for _, d := range durations {
		ms := int(*d.dst / time.Millisecond)
		if err := setInt(&ms, d.key); err != nil {
			return cfg, err
		}
		*d.dst = time.Duration(ms) * time.Millisecond
	}

	Clamp(&cfg)
	return cfg, nil
}

func setString(dst *string, key string) {
	if s, ok := os.LookupEnv(key); ok {
		*dst = s
	}
}

func setInt(dst *int, key string) error {
	s, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("%s must be an integer: %w", key, err)
	}
	*dst = v
	return nil
}

// Clamp forces every value into a range the generator and machine accept.
// Board sides are rounded down to a multiple of twice the granularity.
func Clamp(cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Defaulting to port %s", cfg.Port)
	}

	m := &cfg.Maze
	m.Granularity = clampInt(m.Granularity, 1, 4)
	step := 2 * m.Granularity
	m.Width = clampInt(m.Width, 4*m.Granularity, 128)
	m.Height = clampInt(m.Height, 4*m.Granularity, 128)
	m.Width -= m.Width % step
	m.Height -= m.Height % step
	m.Players = clampInt(m.Players, 1, maze.MaxPlayers)
	m.MaxRetries = clampInt(m.MaxRetries, 0, 100)

	cfg.PlacementReach = clampInt(cfg.PlacementReach, 1, 10)
	cfg.PlayReach = clampInt(cfg.PlayReach, cfg.PlacementReach, 20)

	cfg.RedrawRetry = clampDuration(cfg.RedrawRetry, 10*time.Millisecond, 10*time.Second)
	cfg.RedrawDuration = clampDuration(cfg.RedrawDuration, 10*time.Millisecond, 10*time.Second)
	cfg.NewGameDelay = clampDuration(cfg.NewGameDelay, 0, 5*time.Minute)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampDuration(v, lo, hi time.Duration) time.Duration {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Game returns the machine settings. Tracker and renderer are left to the caller.
func (c Config) Game() game.Config {
	return game.Config{
		Maze:           c.Maze,
		PlacementReach: c.PlacementReach,
		PlayReach:      c.PlayReach,
		RedrawRetry:    c.RedrawRetry,
		RedrawDuration: c.RedrawDuration,
		NewGameDelay:   c.NewGameDelay,
	}
}
