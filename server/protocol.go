package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/zucenko/tablemaze/game"
	"github.com/zucenko/tablemaze/model"
)

// Actions understood by the board tracking server.
const (
	ActionReset                    = "reset"
	ActionInitializeBoard          = "initializeBoard"
	ActionInitializeTiledBoardArea = "initializeTiledBoardArea"
	ActionReportFound              = "reportBackWhenBrickFoundAtAnyOfPositions"
	ActionReportMoved              = "reportBackWhenBrickMovedToAnyOfPositions"
	ActionResetReporter            = "resetReporter"
	ActionResetReporters           = "resetReporters"

	ActionBrickFound = "brickFoundAtPosition"
	ActionBrickMoved = "brickMovedToPosition"

	ResultOK     = "OK"
	ResultUpdate = "UPDATE"
)

var ErrProtocol = errors.New("tracker protocol error")

// Message is the envelope in both directions. Requests carry their request
// id inside the payload, replies carry it next to the result.
type Message struct {
	Result    string          `json:"result,omitempty"`
	Action    string          `json:"action"`
	Payload   json.RawMessage `json:"payload"`
	RequestID string          `json:"requestId,omitempty"`
}

// Point is a tile position on the wire, [x, y].
type Point [2]int

func pointOf(p model.Position) Point {
	return Point{p.X, p.Y}
}

func (p Point) Position() model.Position {
	return model.Position{X: p[0], Y: p[1]}
}

func pointsOf(ps []model.Position) []Point {
	out := make([]Point, len(ps))
	for i, p := range ps {
		out[i] = pointOf(p)
	}
	return out
}

type requestPayload struct {
	RequestID string `json:"requestId,omitempty"`
}

type tiledAreaPayload struct {
	RequestID  string  `json:"requestId,omitempty"`
	ID         int     `json:"id"`
	TileCountX int     `json:"tileCountX"`
	TileCountY int     `json:"tileCountY"`
	X1         float64 `json:"x1"`
	Y1         float64 `json:"y1"`
	X2         float64 `json:"x2"`
	Y2         float64 `json:"y2"`
}

type reportFoundPayload struct {
	RequestID      string  `json:"requestId,omitempty"`
	AreaID         int     `json:"areaId"`
	ValidPositions []Point `json:"validPositions"`
	ID             int     `json:"id"`
}

type reportMovedPayload struct {
	RequestID       string  `json:"requestId,omitempty"`
	AreaID          int     `json:"areaId"`
	InitialPosition Point   `json:"initialPosition"`
	ValidPositions  []Point `json:"validPositions"`
	ID              int     `json:"id"`
}

type reporterPayload struct {
	RequestID string `json:"requestId,omitempty"`
	ID        int    `json:"id"`
}

type updatePayload struct {
	ID              *int   `json:"id"`
	Position        *Point `json:"position"`
	InitialPosition *Point `json:"initialPosition,omitempty"`
}

func newMessage(action string, payload interface{}) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Action: action, Payload: raw}, nil
}

// subscribeMessage turns a subscription into the matching reporter request.
func subscribeMessage(areaID, reporter int, req game.Request) (Message, error) {
	switch req.Kind {
	case game.Found:
		return newMessage(ActionReportFound, reportFoundPayload{
			AreaID:         areaID,
			ValidPositions: pointsOf(req.Positions),
			ID:             reporter,
		})
	case game.Moved:
		return newMessage(ActionReportMoved, reportMovedPayload{
			AreaID:          areaID,
			InitialPosition: pointOf(req.From),
			ValidPositions:  pointsOf(req.Positions),
			ID:              reporter,
		})
	default:
		return Message{}, fmt.Errorf("%w: kind %d", ErrProtocol, req.Kind)
	}
}

func ParseMessage(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	if m.Action == "" {
		return Message{}, fmt.Errorf("%w: missing action", ErrProtocol)
	}
	return m, nil
}

// Update is a decoded reporter callback.
type Update struct {
	Reporter int
	Kind     game.Kind
	Position model.Position
	From     model.Position
}

// Update decodes an UPDATE message. ok is false for every other message.
func (m Message) Update() (u Update, ok bool, err error) {
	if m.Result != ResultUpdate {
		return Update{}, false, nil
	}
	switch m.Action {
	case ActionBrickFound:
		u.Kind = game.Found
	case ActionBrickMoved:
		u.Kind = game.Moved
	default:
		return Update{}, false, nil
	}
	var p updatePayload
	if err := json.Unmarshal(m.Payload, &p); err != nil {
		return Update{}, false, fmt.Errorf("%w: %s payload: %v", ErrProtocol, m.Action, err)
	}
	if p.ID == nil || p.Position == nil {
		return Update{}, false, fmt.Errorf("%w: %s without id or position", ErrProtocol, m.Action)
	}
	u.Reporter = *p.ID
	u.Position = p.Position.Position()
	if p.InitialPosition != nil {
		u.From = p.InitialPosition.Position()
	}
	return u, true, nil
}

// Event turns the update into the machine event for subscriber.
func (u Update) Event(subscriber uuid.UUID) game.Event {
	if u.Kind == game.Moved {
		return game.ObjectMoved{Subscriber: subscriber, Position: u.Position, From: u.From}
	}
	return game.ObjectFound{Subscriber: subscriber, Position: u.Position}
}
