package game

import (
	"github.com/google/uuid"

	"github.com/zucenko/tablemaze/maze"
	"github.com/zucenko/tablemaze/model"
)

// Snapshot copies the state renderers need.
func (m *Machine) Snapshot() model.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot()
}

func (m *Machine) snapshot() model.Snapshot {
	s := model.Snapshot{
		Generation: m.generation,
		Phase:      m.phase,
		Treasure:   m.treasure,
		Current:    m.current,
		Winner:     m.winner,
		Players:    make([]model.PlayerView, 0, m.players.Len()),
	}
	if m.gameID != uuid.Nil {
		s.GameID = m.gameID.String()
	}
	if m.grid != nil {
		s.Width = m.grid.Width()
		s.Height = m.grid.Height()
		s.Walls = m.grid.Masks()
		s.Tiles = m.grid.TileIndices()
	}
	m.players.Each(func(p *model.Player) {
		s.Players = append(s.Players, model.PlayerView{
			Index:         p.Index,
			State:         p.State,
			ReachDistance: p.ReachDistance,
			Position:      p.Position,
			Anchor:        p.Anchor,
			Reachable:     m.reachable(p),
		})
	})
	return s
}

func (m *Machine) Phase() model.Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.phase
}

// Player returns a copy of player i.
func (m *Machine) Player(i int) (model.Player, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.players.Get(i)
	if !ok {
		return model.Player{}, false
	}
	return *p, true
}

// Grid returns the current maze. It is not modified until the next
// generation replaces it.
func (m *Machine) Grid() *model.Grid {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.grid
}

func (m *Machine) Treasure() model.Position {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.treasure
}

func (m *Machine) WallMask(x, y int) model.WallMask {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.grid == nil {
		return model.WallAllSides | model.WallBorder
	}
	return m.grid.WallMask(x, y)
}

func (m *Machine) TileIndex(x, y int) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.grid == nil {
		return model.BlackTileIndex
	}
	return m.grid.TileIndex(x, y)
}

// ReachablePositions lists the cells player i may be shown as reachable,
// in discovery order. Disabled or unknown players reach nothing.
func (m *Machine) ReachablePositions(i int) []model.Position {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.players.Get(i)
	if !ok {
		return nil
	}
	return m.reachable(p)
}

func (m *Machine) reachable(p *model.Player) []model.Position {
	if m.grid == nil || p.State == model.Disabled {
		return nil
	}
	r := maze.Reachable(m.grid, p.Position, p.ReachDistance)
	return r.Excluding(m.players.Occupied(p.Index)...).Positions()
}

// Subscription returns the live subscription of player i, if any.
func (m *Machine) Subscription(i int) (Request, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	token, ok := m.byPlayer[i]
	if !ok {
		return Request{}, false
	}
	iss := m.issued[token]
	p, _ := m.players.Get(i)
	return Request{
		Subscriber: token,
		Kind:       iss.kind,
		From:       p.Position,
		Positions:  iss.reach.Positions(),
	}, true
}
