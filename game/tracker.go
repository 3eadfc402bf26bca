package game

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/zucenko/tablemaze/model"
)

type Kind int

const (
	// Found asks to be told when the token is seen on any of the positions.
	Found Kind = iota
	// Moved asks to be told when the token leaves From for any of the positions.
	Moved
)

func (k Kind) Name() string {
	switch k {
	case Found:
		return "FOUND"
	case Moved:
		return "MOVED"
	default:
		return fmt.Sprintf("N/A(%d)", k)
	}
}

type Request struct {
	Subscriber uuid.UUID
	Kind       Kind
	From       model.Position
	Positions  []model.Position
}

// Handle identifies a subscription on the tracker side.
type Handle struct {
	ID         int
	Subscriber uuid.UUID
}

// Tracker is the position tracking collaborator. Calls must not block and
// must not call back into the Machine synchronously.
type Tracker interface {
	Subscribe(req Request) (Handle, error)
	Cancel(h Handle) error
	CancelAll() error
}

// RecordingTracker keeps subscriptions in memory. It serves setups without
// a camera, where observations are injected through the API.
type RecordingTracker struct {
	mu     sync.Mutex
	nextID int
	active map[int]Request
}

func NewRecordingTracker() *RecordingTracker {
	return &RecordingTracker{active: make(map[int]Request)}
}

func (t *RecordingTracker) Subscribe(req Request) (Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	t.active[t.nextID] = req
	return Handle{ID: t.nextID, Subscriber: req.Subscriber}, nil
}

func (t *RecordingTracker) Cancel(h Handle) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.active, h.ID)
	return nil
}

func (t *RecordingTracker) CancelAll() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = make(map[int]Request)
	return nil
}

// Active returns the live requests keyed by handle id.
func (t *RecordingTracker) Active() map[int]Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[int]Request, len(t.active))
	for id, r := range t.active {
		out[id] = r
	}
	return out
}
