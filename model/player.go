package model

import "fmt"

type PlayerState int

const (
	Disabled PlayerState = iota
	InitialPlacement
	Idle
	Turn
)

func (s PlayerState) Name() string {
	switch s {
	case Disabled:
		return "DISABLED"
	case InitialPlacement:
		return "INITIAL_PLACEMENT"
	case Idle:
		return "IDLE"
	case Turn:
		return "TURN"
	default:
		return fmt.Sprintf("N/A(%d)", s)
	}
}

// Player is a physical token on the board. Position is only authoritative
// once an observation has confirmed it.
type Player struct {
	Index         int
	State         PlayerState
	ReachDistance int
	Position      Position
	Anchor        Position
}

type Phase int

const (
	PhaseInitializing Phase = iota
	PhasePlacement
	PhasePlaying
	PhaseWon
)

func (p Phase) Name() string {
	switch p {
	case PhaseInitializing:
		return "INITIALIZING"
	case PhasePlacement:
		return "INITIAL_PLACEMENT"
	case PhasePlaying:
		return "PLAYING"
	case PhaseWon:
		return "WON"
	default:
		return fmt.Sprintf("N/A(%d)", p)
	}
}
