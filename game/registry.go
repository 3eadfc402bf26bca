package game

import (
	"github.com/zucenko/tablemaze/model"
)

// Registry owns the players of the current game. Indexes are stable for
// the lifetime of a game and define turn order.
type Registry struct {
	players []*model.Player
}

func NewRegistry(anchors []model.Position, reach int) *Registry {
	r := &Registry{}
	r.Reset(anchors, reach)
	return r
}

// Reset recreates one player per anchor, each waiting for its token to be
// placed on the anchor cell.
func (r *Registry) Reset(anchors []model.Position, reach int) {
	r.players = make([]*model.Player, len(anchors))
	for i, a := range anchors {
		r.players[i] = &model.Player{
			Index:         i,
			State:         model.InitialPlacement,
			ReachDistance: reach,
			Position:      a,
			Anchor:        a,
		}
	}
}

func (r *Registry) Len() int {
	return len(r.players)
}

func (r *Registry) Get(i int) (*model.Player, bool) {
	if i < 0 || i >= len(r.players) {
		return nil, false
	}
	return r.players[i], true
}

func (r *Registry) Each(fn func(p *model.Player)) {
	for _, p := range r.players {
		fn(p)
	}
}

// NextActive returns the first player after index `after`, wrapping, that
// is not Disabled. The player at `after` itself is considered last.
func (r *Registry) NextActive(after int) (int, bool) {
	n := len(r.players)
	if n == 0 {
		return -1, false
	}
	if after < -1 || after >= n {
		after = -1
	}
	for k := 1; k <= n; k++ {
		i := (after + k) % n
		if i < 0 {
			i += n
		}
		if r.players[i].State != model.Disabled {
			return i, true
		}
	}
	return -1, false
}

func (r *Registry) DisableAll() {
	for _, p := range r.players {
		p.State = model.Disabled
	}
}

// Occupied lists the positions held by non-disabled players other than
// `except`.
func (r *Registry) Occupied(except int) []model.Position {
	out := make([]model.Position, 0, len(r.players))
	for _, p := range r.players {
		if p.Index == except || p.State == model.Disabled {
			continue
		}
		out = append(out, p.Position)
	}
	return out
}

// OccupiedBy returns the index of the non-disabled player standing on pos,
// ignoring `except`.
func (r *Registry) OccupiedBy(pos model.Position, except int) (int, bool) {
	for _, p := range r.players {
		if p.Index == except || p.State == model.Disabled {
			continue
		}
		if p.Position.Equals(pos) {
			return p.Index, true
		}
	}
	return -1, false
}

// CountIn returns how many players are in state s.
func (r *Registry) CountIn(s model.PlayerState) int {
	n := 0
	for _, p := range r.players {
		if p.State == s {
			n++
		}
	}
	return n
}
