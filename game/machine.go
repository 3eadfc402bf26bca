// Package game drives a tabletop maze round: player placement, turn order
// and the win, all fed by observations coming from a position tracker.
package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/zucenko/tablemaze/maze"
	"github.com/zucenko/tablemaze/model"
)

const (
	DefaultPlacementReach = 2
	DefaultPlayReach      = 3

	DefaultRedrawRetry    = 200 * time.Millisecond
	DefaultRedrawDuration = 500 * time.Millisecond
	DefaultNewGameDelay   = 5 * time.Second

	defaultEventBuffer = 64
)

type Config struct {
	Maze maze.Config

	PlacementReach int
	PlayReach      int

	RedrawRetry    time.Duration
	RedrawDuration time.Duration
	NewGameDelay   time.Duration

	Tracker   Tracker
	Renderer  Renderer  // Optional
	Scheduler Scheduler // Optional (nil = timers posting back to Run)
	Logger    *log.Entry

	EventBuffer int
}

func (c *Config) setDefaults() {
	if c.PlacementReach == 0 {
		c.PlacementReach = DefaultPlacementReach
	}
	if c.PlayReach == 0 {
		c.PlayReach = DefaultPlayReach
	}
	if c.RedrawRetry == 0 {
		c.RedrawRetry = DefaultRedrawRetry
	}
	if c.RedrawDuration == 0 {
		c.RedrawDuration = DefaultRedrawDuration
	}
	if c.NewGameDelay == 0 {
		c.NewGameDelay = DefaultNewGameDelay
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = defaultEventBuffer
	}
	if c.Logger == nil {
		c.Logger = log.NewEntry(log.StandardLogger())
	}
}

// issue is a subscription handed to the tracker.
type issue struct {
	player int
	kind   Kind
	handle Handle
	reach  *maze.Reach
}

// Machine is the turn state machine. All transitions run under mu; tracker
// calls are made while holding it, renderer and listener callbacks are made
// after it is released.
type Machine struct {
	mu  sync.RWMutex
	cfg Config
	log *log.Entry

	gen       *maze.Generator
	tracker   Tracker
	renderer  Renderer
	sched     Scheduler
	events    chan Event
	stop      chan struct{}
	stopOnce  sync.Once
	listeners []func(Change)

	grid       *model.Grid
	treasure   model.Position
	phase      model.Phase
	generation uint64
	gameID     uuid.UUID
	startedAt  time.Time
	moves      int
	current    int
	winner     int
	players    *Registry

	issued   map[uuid.UUID]*issue
	byPlayer map[int]uuid.UUID

	redrawBusy    bool
	redrawPending bool
	outbox        []func()
}

func NewMachine(cfg Config) (*Machine, error) {
	cfg.setDefaults()
	if cfg.Tracker == nil {
		return nil, errors.New("machine needs a tracker")
	}
	if cfg.PlacementReach < 0 || cfg.PlayReach < 0 {
		return nil, fmt.Errorf("%w: negative reach", maze.ErrConfiguration)
	}
	gen, err := maze.NewGenerator(cfg.Maze)
	if err != nil {
		return nil, err
	}
	m := &Machine{
		cfg:      cfg,
		log:      cfg.Logger.WithField("component", "machine"),
		gen:      gen,
		tracker:  cfg.Tracker,
		renderer: cfg.Renderer,
		events:   make(chan Event, cfg.EventBuffer),
		stop:     make(chan struct{}),
		phase:    model.PhaseInitializing,
		current:  -1,
		winner:   -1,
		players:  NewRegistry(nil, cfg.PlacementReach),
		issued:   make(map[uuid.UUID]*issue),
		byPlayer: make(map[int]uuid.UUID),
	}
	m.sched = cfg.Scheduler
	if m.sched == nil {
		m.sched = timerScheduler{post: m.deliver}
	}
	return m, nil
}

// OnChange registers a listener called after every completed transition.
func (m *Machine) OnChange(fn func(Change)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Post queues ev for Run without blocking. It reports false when the queue
// is full and the event was dropped.
func (m *Machine) Post(ev Event) bool {
	select {
	case m.events <- ev:
		return true
	default:
		m.log.Warnf("Dropping %T, Machine.Events FULL", ev)
		return false
	}
}

// deliver is used by timers, which must not lose their event.
func (m *Machine) deliver(ev Event) {
	select {
	case m.events <- ev:
	case <-m.stop:
	}
}

// Run consumes posted events until ctx is done.
func (m *Machine) Run(ctx context.Context) {
	m.log.Info("Machine.Run starting")
	defer m.stopOnce.Do(func() { close(m.stop) })
	for {
		select {
		case <-ctx.Done():
			m.log.Info("Machine.Run stopped")
			return
		case ev := <-m.events:
			err := m.Handle(ev)
			switch {
			case err == nil:
			case errors.Is(err, ErrStaleObservation), errors.Is(err, ErrInvalidMove):
				m.log.Debugf("Machine.Run discarded %T: %v", ev, err)
			default:
				m.log.Errorf("Machine.Run %T: %v", ev, err)
			}
		}
	}
}

// Handle applies a single event synchronously.
func (m *Machine) Handle(ev Event) error {
	if v, ok := ev.(validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	m.mu.Lock()
	var err error
	switch e := ev.(type) {
	case Reset:
		err = m.createRandomMaze()
	case ObjectFound:
		err = m.observe(e.Subscriber, Found, e.Position)
	case ObjectMoved:
		err = m.observe(e.Subscriber, Moved, e.Position)
	case redrawDone:
		m.onRedrawDone()
	case redrawRetry:
		m.onRedrawRetry()
	case newGame:
		if e.generation != m.generation {
			m.log.Debugf("Machine.Handle new game for old generation %d", e.generation)
			break
		}
		err = m.createRandomMaze()
	default:
		err = fmt.Errorf("%w: unknown %T", ErrInvalidEvent, ev)
	}
	m.mu.Unlock()
	m.flush()
	return err
}

// NewGame generates a fresh maze and restarts placement.
func (m *Machine) NewGame() error {
	return m.Handle(Reset{})
}

func (m *Machine) flush() {
	m.mu.Lock()
	out := m.outbox
	m.outbox = nil
	m.mu.Unlock()
	for _, fn := range out {
		fn()
	}
}

func (m *Machine) createRandomMaze() error {
	res, err := m.gen.Generate()
	if err != nil {
		return err
	}
	m.generation++
	m.gameID = uuid.New()
	m.startedAt = time.Now()
	m.moves = 0
	m.grid = res.Grid
	m.treasure = res.Treasure

	m.dropSubscriptions()
	if err := m.tracker.CancelAll(); err != nil {
		m.log.Warnf("createRandomMaze tracker.CancelAll %v", err)
	}

	m.players.Reset(res.Starts, m.cfg.PlacementReach)
	m.phase = model.PhasePlacement
	m.current = -1
	m.winner = -1

	m.log.WithFields(log.Fields{
		"generation": m.generation,
		"attempts":   res.Attempts,
		"treasure":   res.Treasure,
	}).Info("maze generated")

	m.notify(ChangeGenerated, -1, nil)
	m.requestRedraw()

	m.players.Each(func(p *model.Player) {
		m.subscribe(p, Found)
	})
	return nil
}

func (m *Machine) observe(token uuid.UUID, kind Kind, pos model.Position) error {
	iss, ok := m.issued[token]
	if !ok {
		return fmt.Errorf("%w: unknown subscriber %s", ErrStaleObservation, token)
	}
	if iss.kind != kind {
		return fmt.Errorf("%w: %s observation for %s subscription", ErrStaleObservation, kind.Name(), iss.kind.Name())
	}
	p, ok := m.players.Get(iss.player)
	if !ok || p.State == model.Disabled || m.byPlayer[p.Index] != token {
		return fmt.Errorf("%w: player %d not expected", ErrStaleObservation, iss.player)
	}
	if !iss.reach.Has(pos) {
		return fmt.Errorf("%w: player %d to %v", ErrInvalidMove, p.Index, pos)
	}

	switch m.phase {
	case model.PhasePlacement:
		switch {
		case p.State == model.InitialPlacement && pos.Equals(p.Anchor):
			m.confirmPlacement(p)
		case p.State == model.InitialPlacement, p.State == model.Idle:
			m.startPlay(p, pos)
		default:
			return fmt.Errorf("%w: player %d is %s", ErrStaleObservation, p.Index, p.State.Name())
		}
	case model.PhasePlaying:
		if p.Index != m.current || p.State != model.Turn {
			return fmt.Errorf("%w: player %d is %s", ErrStaleObservation, p.Index, p.State.Name())
		}
		m.move(p, pos)
	default:
		return fmt.Errorf("%w: phase %s", ErrStaleObservation, m.phase.Name())
	}
	return nil
}

func (m *Machine) confirmPlacement(p *model.Player) {
	p.State = model.Idle
	p.ReachDistance = m.cfg.PlayReach
	p.Position = p.Anchor
	m.log.WithFields(log.Fields{
		"generation": m.generation,
		"player":     p.Index,
		"position":   p.Position,
	}).Info("player placed")

	m.notify(ChangePlayerPlaced, p.Index, nil)
	m.requestRedraw()
	m.subscribe(p, Moved)
}

// startPlay turns the first token seen off its anchor into the active
// player. Players that never confirmed placement sit the game out.
func (m *Machine) startPlay(p *model.Player, pos model.Position) {
	m.phase = model.PhasePlaying
	m.current = p.Index
	m.players.Each(func(o *model.Player) {
		if o.Index != p.Index && o.State == model.InitialPlacement {
			o.State = model.Disabled
		}
	})
	m.players.Each(func(o *model.Player) {
		if o.Index != p.Index {
			m.unsubscribe(o.Index)
		}
	})
	p.State = model.Turn
	p.ReachDistance = m.cfg.PlayReach
	p.Position = pos
	m.moves++

	m.log.WithFields(log.Fields{
		"generation": m.generation,
		"player":     p.Index,
		"position":   pos,
		"phase":      m.phase.Name(),
	}).Info("play started")

	if pos.Equals(m.treasure) {
		m.win(p)
		return
	}
	m.notify(ChangePlayStarted, p.Index, nil)
	m.requestRedraw()
	m.subscribe(p, Moved)
}

func (m *Machine) move(p *model.Player, pos model.Position) {
	p.Position = pos
	m.moves++
	m.log.WithFields(log.Fields{
		"generation": m.generation,
		"player":     p.Index,
		"position":   pos,
	}).Info("player moved")

	if pos.Equals(m.treasure) {
		m.win(p)
		return
	}
	m.notify(ChangePlayerMoved, p.Index, nil)
	m.advanceTurn()
}

func (m *Machine) advanceTurn() {
	prev := m.current
	if p, ok := m.players.Get(prev); ok && p.State == model.Turn {
		p.State = model.Idle
	}
	next, ok := m.players.NextActive(prev)
	if !ok {
		m.log.Warn("advanceTurn no active player")
		return
	}
	np, _ := m.players.Get(next)
	np.State = model.Turn
	m.current = next
	m.unsubscribe(prev)

	m.log.WithFields(log.Fields{
		"generation": m.generation,
		"player":     next,
	}).Info("turn advanced")

	m.notify(ChangeTurnAdvanced, next, nil)
	m.requestRedraw()
	m.subscribe(np, Moved)
}

func (m *Machine) win(p *model.Player) {
	m.phase = model.PhaseWon
	m.winner = p.Index
	m.players.DisableAll()
	m.dropSubscriptions()
	if err := m.tracker.CancelAll(); err != nil {
		m.log.Warnf("win tracker.CancelAll %v", err)
	}

	result := &model.GameResult{
		GameID:     m.gameID.String(),
		Generation: m.generation,
		Winner:     p.Index,
		Moves:      m.moves,
		Width:      m.grid.Width(),
		Height:     m.grid.Height(),
		Players:    m.players.Len(),
		Treasure:   m.treasure,
		StartedAt:  m.startedAt,
		FinishedAt: time.Now(),
	}
	m.log.WithFields(log.Fields{
		"generation": m.generation,
		"player":     p.Index,
		"moves":      m.moves,
	}).Info("game won")

	m.notify(ChangeGameWon, p.Index, result)
	m.requestRedraw()
	m.sched.After(m.cfg.NewGameDelay, newGame{generation: m.generation})
}

// moveSet is what the tracker is told to watch for player p: cells within
// reach that no other active player stands on. A Moved subscription also
// leaves out the cell the token is leaving.
func (m *Machine) moveSet(p *model.Player, kind Kind) *maze.Reach {
	exclude := m.players.Occupied(p.Index)
	if kind == Moved {
		exclude = append(exclude, p.Position)
	}
	return maze.Reachable(m.grid, p.Position, p.ReachDistance).Excluding(exclude...)
}

func (m *Machine) subscribe(p *model.Player, kind Kind) {
	m.unsubscribe(p.Index)
	reach := m.moveSet(p, kind)
	token := uuid.New()
	req := Request{
		Subscriber: token,
		Kind:       kind,
		From:       p.Position,
		Positions:  reach.Positions(),
	}
	handle, err := m.tracker.Subscribe(req)
	if err != nil {
		m.log.Warnf("subscribe player %d: %v", p.Index, err)
	}
	m.issued[token] = &issue{player: p.Index, kind: kind, handle: handle, reach: reach}
	m.byPlayer[p.Index] = token
	m.log.WithFields(log.Fields{
		"generation": m.generation,
		"player":     p.Index,
		"kind":       kind.Name(),
		"positions":  reach.Len(),
	}).Debug("subscribed")
}

func (m *Machine) unsubscribe(player int) {
	token, ok := m.byPlayer[player]
	if !ok {
		return
	}
	iss := m.issued[token]
	delete(m.issued, token)
	delete(m.byPlayer, player)
	if iss == nil || iss.handle.ID == 0 {
		return
	}
	if err := m.tracker.Cancel(iss.handle); err != nil {
		m.log.Warnf("unsubscribe player %d: %v", player, err)
	}
}

func (m *Machine) dropSubscriptions() {
	m.issued = make(map[uuid.UUID]*issue)
	m.byPlayer = make(map[int]uuid.UUID)
}

func (m *Machine) notify(kind ChangeKind, player int, result *model.GameResult) {
	if len(m.listeners) == 0 {
		return
	}
	change := Change{Kind: kind, Player: player, Snapshot: m.snapshot(), Result: result}
	listeners := append([]func(Change){}, m.listeners...)
	m.outbox = append(m.outbox, func() {
		for _, fn := range listeners {
			fn(change)
		}
	})
}
