package model

import "time"

// Snapshot is what renderers receive after every state change.
type Snapshot struct {
	GameID     string       `json:"gameId"`
	Generation uint64       `json:"generation"`
	Phase      Phase        `json:"phase"`
	Width      int          `json:"width"`
	Height     int          `json:"height"`
	Walls      []WallMask   `json:"walls"`
	Tiles      []int        `json:"tiles"`
	Treasure   Position     `json:"treasure"`
	Current    int          `json:"current"`
	Winner     int          `json:"winner"`
	Players    []PlayerView `json:"players"`
}

type PlayerView struct {
	Index         int         `json:"index"`
	State         PlayerState `json:"state"`
	ReachDistance int         `json:"reachDistance"`
	Position      Position    `json:"position"`
	Anchor        Position    `json:"anchor"`
	Reachable     []Position  `json:"reachable"`
}

// TileAt returns the tile index for (x,y) as a renderer would draw it for
// the given player, darkening non-anchor tiles during placement.
func (s *Snapshot) TileAt(x, y int, player *PlayerView) int {
	if x < 0 || y < 0 || x >= s.Width || y >= s.Height {
		return BlackTileIndex
	}
	tile := s.Tiles[y*s.Width+x]
	if player != nil && s.Phase == PhasePlacement {
		if player.Anchor.X != x || player.Anchor.Y != y {
			tile += DarkenTileOffset
		}
	}
	return tile
}

func (s *Snapshot) WallAt(x, y int) WallMask {
	if x < 0 || y < 0 || x >= s.Width || y >= s.Height {
		return WallAllSides | WallBorder
	}
	return s.Walls[y*s.Width+x]
}

// GameResult is recorded once a game is won.
type GameResult struct {
	GameID     string    `json:"game_id"`
	Generation uint64    `json:"generation"`
	Winner     int       `json:"winner"`
	Moves      int       `json:"moves"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Players    int       `json:"players"`
	Treasure   Position  `json:"treasure"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}
