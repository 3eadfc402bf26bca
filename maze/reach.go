package maze

import (
	"github.com/zucenko/tablemaze/model"
	"github.com/zyedidia/generic/mapset"
)

// Reach is the set of positions reachable from a start cell within a step
// budget. Positions keeps BFS discovery order for renderers.
type Reach struct {
	set   mapset.Set[model.Position]
	order []model.Position
}

func newReach() *Reach {
	return &Reach{set: mapset.New[model.Position]()}
}

func (r *Reach) put(p model.Position) {
	if r.set.Has(p) {
		return
	}
	r.set.Put(p)
	r.order = append(r.order, p)
}

func (r *Reach) Has(p model.Position) bool {
	return r.set.Has(p)
}

func (r *Reach) Len() int {
	return r.set.Size()
}

// Positions returns a copy of the members in discovery order.
func (r *Reach) Positions() []model.Position {
	out := make([]model.Position, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Reach) Each(fn func(p model.Position)) {
	for _, p := range r.order {
		fn(p)
	}
}

// Excluding returns a new Reach without the given positions.
func (r *Reach) Excluding(ps ...model.Position) *Reach {
	skip := mapset.New[model.Position]()
	for _, p := range ps {
		skip.Put(p)
	}
	out := newReach()
	for _, p := range r.order {
		if !skip.Has(p) {
			out.put(p)
		}
	}
	return out
}

func (r *Reach) IsSubsetOf(o *Reach) bool {
	for _, p := range r.order {
		if !o.Has(p) {
			return false
		}
	}
	return true
}

// Reachable runs a bounded breadth first search from start through open
// walls. A cell at distance d is a member when d <= max and is expanded
// only when d < max, so Reachable(g, p, 0) is {p}. A negative max means
// no bound. An invalid start yields an empty set.
func Reachable(grid *model.Grid, start model.Position, max int) *Reach {
	r := newReach()
	if !grid.IsValid(start) {
		return r
	}

	distance := make([]int, grid.Width()*grid.Height())
	for i := range distance {
		distance[i] = -1
	}
	distance[grid.Index(start)] = 0
	queue := []model.Position{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		r.put(current)

		d := distance[grid.Index(current)]
		if max >= 0 && d >= max {
			continue
		}
		for _, dir := range model.Directions {
			if !grid.IsOpen(current, dir) {
				continue
			}
			n := current.Step(dir)
			if distance[grid.Index(n)] >= 0 {
				continue
			}
			distance[grid.Index(n)] = d + 1
			queue = append(queue, n)
		}
	}
	return r
}

// Connected reports whether a path of open walls joins a and b.
func Connected(grid *model.Grid, a, b model.Position) bool {
	return Reachable(grid, a, -1).Has(b)
}
