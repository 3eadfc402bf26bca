package game

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/zucenko/tablemaze/model"
)

var (
	ErrStaleObservation = errors.New("stale observation")
	ErrInvalidMove      = errors.New("invalid move")
	ErrInvalidEvent     = errors.New("invalid event")
)

// Event is anything the machine loop consumes: resets, observations coming
// from the tracker and its own timers.
type Event interface {
	event()
}

type Reset struct{}

// ObjectFound reports a token seen at Position for a placement subscription.
type ObjectFound struct {
	Subscriber uuid.UUID
	Position   model.Position
}

// ObjectMoved reports a token that left From and was seen at Position.
type ObjectMoved struct {
	Subscriber uuid.UUID
	Position   model.Position
	From       model.Position
}

func (Reset) event()       {}
func (ObjectFound) event() {}
func (ObjectMoved) event() {}

func (e ObjectFound) Validate() error {
	if e.Subscriber == uuid.Nil {
		return fmt.Errorf("%w: found without subscriber", ErrInvalidEvent)
	}
	return nil
}

func (e ObjectMoved) Validate() error {
	if e.Subscriber == uuid.Nil {
		return fmt.Errorf("%w: moved without subscriber", ErrInvalidEvent)
	}
	return nil
}

type validator interface {
	Validate() error
}

type redrawRetry struct{}

type redrawDone struct{}

type newGame struct {
	generation uint64
}

func (redrawRetry) event() {}
func (redrawDone) event()  {}
func (newGame) event()     {}

type ChangeKind int

const (
	ChangeGenerated ChangeKind = iota
	ChangePlayerPlaced
	ChangePlayStarted
	ChangePlayerMoved
	ChangeTurnAdvanced
	ChangeGameWon
)

func (k ChangeKind) Name() string {
	switch k {
	case ChangeGenerated:
		return "GENERATED"
	case ChangePlayerPlaced:
		return "PLAYER_PLACED"
	case ChangePlayStarted:
		return "PLAY_STARTED"
	case ChangePlayerMoved:
		return "PLAYER_MOVED"
	case ChangeTurnAdvanced:
		return "TURN_ADVANCED"
	case ChangeGameWon:
		return "GAME_WON"
	default:
		return fmt.Sprintf("N/A(%d)", k)
	}
}

// Change is delivered to listeners once per completed transition.
type Change struct {
	Kind     ChangeKind
	Player   int
	Snapshot model.Snapshot
	Result   *model.GameResult
}

type Renderer interface {
	Redraw(snapshot model.Snapshot)
}
