package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/zucenko/tablemaze/game"
)

var (
	ErrNotConnected   = errors.New("tracker not connected")
	ErrTrackerBusy    = errors.New("tracker send queue full")
	ErrTrackerRefused = errors.New("tracker refused request")
)

const (
	defaultTrackerTimeout = 5 * time.Second
	defaultTrackerBuffer  = 64
	trackerRetryDelay     = 2 * time.Second
)

type TrackerConfig struct {
	URL string

	// board size in tiles
	Width, Height int

	AreaID  int
	Timeout time.Duration // Optional
	Buffer  int           // Optional

	// OnConnect is called after every successful handshake. The tracker
	// forgets reporters when a connection drops, so this is where callers
	// re-issue their subscriptions.
	OnConnect func()
}

// Tracker talks to the board tracking server over a websocket and turns its
// reporter callbacks into machine events.
type Tracker struct {
	cfg  TrackerConfig
	sink func(game.Event) bool
	log  *log.Entry

	Dialer *websocket.Dialer

	mu        sync.Mutex
	conn      *websocket.Conn
	outgoing  chan Message
	done      chan struct{}
	nextID    int
	reporters map[int]uuid.UUID
	waiters   map[string]chan Message
}

func NewTracker(cfg TrackerConfig, sink func(game.Event) bool) *Tracker {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTrackerTimeout
	}
	if cfg.Buffer == 0 {
		cfg.Buffer = defaultTrackerBuffer
	}
	return &Tracker{
		cfg:       cfg,
		sink:      sink,
		log:       log.WithField("component", "tracker"),
		Dialer:    websocket.DefaultDialer,
		reporters: make(map[int]uuid.UUID),
		waiters:   make(map[string]chan Message),
	}
}

// Connect dials the tracker, starts the socket loops and initializes the
// tiled board area.
func (t *Tracker) Connect(ctx context.Context) error {
	conn, _, err := t.Dialer.DialContext(ctx, t.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", t.cfg.URL, err)
	}
	done := make(chan struct{})
	outgoing := make(chan Message, t.cfg.Buffer)

	t.mu.Lock()
	if t.conn != nil {
		t.conn.Close()
	}
	t.conn = conn
	t.done = done
	t.outgoing = outgoing
	t.reporters = make(map[int]uuid.UUID)
	t.mu.Unlock()

	go t.loopRead(conn, done)
	go t.loopWrite(conn, outgoing, done)

	if err := t.handshake(ctx); err != nil {
		conn.Close()
		return err
	}
	t.log.Infof("Tracker connected to %s", t.cfg.URL)
	return nil
}

func (t *Tracker) handshake(ctx context.Context) error {
	if _, err := t.request(ctx, ActionReset, func(id string) interface{} {
		return requestPayload{RequestID: id}
	}); err != nil {
		return err
	}
	if _, err := t.request(ctx, ActionInitializeBoard, func(id string) interface{} {
		return requestPayload{RequestID: id}
	}); err != nil {
		return err
	}
	_, err := t.request(ctx, ActionInitializeTiledBoardArea, func(id string) interface{} {
		return tiledAreaPayload{
			RequestID:  id,
			ID:         t.cfg.AreaID,
			TileCountX: t.cfg.Width,
			TileCountY: t.cfg.Height,
			X1:         0, Y1: 0, X2: 1, Y2: 1,
		}
	})
	return err
}

// request sends a message and waits for the reply carrying its request id.
func (t *Tracker) request(ctx context.Context, action string, payload func(id string) interface{}) (Message, error) {
	id := uuid.NewString()
	msg, err := newMessage(action, payload(id))
	if err != nil {
		return Message{}, err
	}
	reply := make(chan Message, 1)
	t.mu.Lock()
	t.waiters[id] = reply
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		delete(t.waiters, id)
		t.mu.Unlock()
	}()

	if err := t.send(msg); err != nil {
		return Message{}, err
	}
	select {
	case m := <-reply:
		if m.Result != ResultOK {
			return m, fmt.Errorf("%w: %s answered %s", ErrTrackerRefused, action, m.Result)
		}
		return m, nil
	case <-ctx.Done():
		return Message{}, ctx.Err()
	case <-time.After(t.cfg.Timeout):
		return Message{}, fmt.Errorf("%s: no reply after %v", action, t.cfg.Timeout)
	}
}

func (t *Tracker) send(msg Message) error {
	t.mu.Lock()
	outgoing, done := t.outgoing, t.done
	t.mu.Unlock()
	if outgoing == nil {
		return ErrNotConnected
	}
	select {
	case <-done:
		return ErrNotConnected
	default:
	}
	select {
	case outgoing <- msg:
		return nil
	default:
		t.log.Warnf("Tracker.send dropping %s, outgoing FULL", msg.Action)
		return ErrTrackerBusy
	}
}

func (t *Tracker) Subscribe(req game.Request) (game.Handle, error) {
	t.mu.Lock()
	t.nextID++
	id := t.nextID
	t.mu.Unlock()

	msg, err := subscribeMessage(t.cfg.AreaID, id, req)
	if err != nil {
		return game.Handle{}, err
	}
	if err := t.send(msg); err != nil {
		return game.Handle{}, err
	}
	t.mu.Lock()
	t.reporters[id] = req.Subscriber
	t.mu.Unlock()
	return game.Handle{ID: id, Subscriber: req.Subscriber}, nil
}

func (t *Tracker) Cancel(h game.Handle) error {
	t.mu.Lock()
	delete(t.reporters, h.ID)
	t.mu.Unlock()
	msg, err := newMessage(ActionResetReporter, reporterPayload{ID: h.ID})
	if err != nil {
		return err
	}
	return t.send(msg)
}

func (t *Tracker) CancelAll() error {
	t.mu.Lock()
	t.reporters = make(map[int]uuid.UUID)
	t.mu.Unlock()
	msg, err := newMessage(ActionResetReporters, requestPayload{})
	if err != nil {
		return err
	}
	return t.send(msg)
}

func (t *Tracker) Close() error {
	t.mu.Lock()
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

// Run keeps the tracker connected until ctx is done.
func (t *Tracker) Run(ctx context.Context) {
	for {
		if err := t.Connect(ctx); err != nil {
			t.log.Warnf("Tracker.Run connect %v", err)
		} else {
			if t.cfg.OnConnect != nil {
				t.cfg.OnConnect()
			}
			t.mu.Lock()
			done := t.done
			t.mu.Unlock()
			select {
			case <-done:
				t.log.Warn("Tracker.Run connection lost")
			case <-ctx.Done():
			}
		}
		select {
		case <-ctx.Done():
			t.Close()
			return
		case <-time.After(trackerRetryDelay):
		}
	}
}

func (t *Tracker) loopRead(conn *websocket.Conn, done chan struct{}) {
	t.log.Debug("Tracker.loopRead STARTED")
	defer close(done)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			var ne net.Error
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) || errors.As(err, &ne) {
				t.log.Infof("Tracker.loopRead closed %v", err)
			} else {
				t.log.Warnf("Tracker.loopRead %v", err)
			}
			break
		}
		msg, err := ParseMessage(data)
		if err != nil {
			t.log.Warnf("Tracker.loopRead %v", err)
			continue
		}
		t.dispatch(msg)
	}
	t.log.Debug("Tracker.loopRead ENDED")
}

func (t *Tracker) dispatch(msg Message) {
	update, ok, err := msg.Update()
	if err != nil {
		t.log.Warnf("Tracker.dispatch %v", err)
		return
	}
	if ok {
		t.mu.Lock()
		subscriber, known := t.reporters[update.Reporter]
		t.mu.Unlock()
		if !known {
			t.log.Debugf("Tracker.dispatch dropping update for reporter %d", update.Reporter)
			return
		}
		t.sink(update.Event(subscriber))
		return
	}
	if msg.RequestID == "" {
		return
	}
	t.mu.Lock()
	waiter, found := t.waiters[msg.RequestID]
	t.mu.Unlock()
	if !found {
		return
	}
	select {
	case waiter <- msg:
	default:
	}
}

// this function only consumes. no worries about full buffer stuck
func (t *Tracker) loopWrite(conn *websocket.Conn, outgoing chan Message, done chan struct{}) {
	t.log.Debug("Tracker.loopWrite STARTED")
	for {
		select {
		case msg := <-outgoing:
			conn.SetWriteDeadline(time.Now().Add(t.cfg.Timeout))
			if err := conn.WriteJSON(msg); err != nil {
				t.log.Warnf("Tracker.loopWrite %s %v", msg.Action, err)
				conn.Close()
				return
			}
		case <-done:
			t.log.Debug("Tracker.loopWrite ENDED")
			return
		}
	}
}
