package main

import (
	"github.com/gdamore/tcell/v2"

	"github.com/zucenko/tablemaze/maze"
	"github.com/zucenko/tablemaze/model"
)

// canvas is the part of tcell.Screen the view draws on.
type canvas interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
}

var playerColors = [maze.MaxPlayers]tcell.Color{
	tcell.ColorGreen, tcell.ColorBlue, tcell.ColorYellow, tcell.ColorPurple,
}

var (
	wallStyle     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	borderStyle   = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	treasureStyle = tcell.StyleDefault.Foreground(tcell.ColorGold).Bold(true)
)

// view draws a generated maze two screen cells per board cell: the cell at
// (2x+1, 2y+1), its walls on the even rows and columns between.
type view struct {
	res   *maze.Result
	reach int
	sets  []*maze.Reach
}

func newView(res *maze.Result, reach int) *view {
	v := &view{res: res}
	v.setReach(reach)
	return v
}

func (v *view) setReach(reach int) {
	if reach < 0 {
		reach = 0
	}
	v.reach = reach
	v.sets = v.sets[:0]
	for _, s := range v.res.Starts {
		v.sets = append(v.sets, maze.Reachable(v.res.Grid, s, reach))
	}
}

func (v *view) draw(c canvas) {
	g := v.res.Grid
	for y := 0; y <= 2*g.Height(); y++ {
		for x := 0; x <= 2*g.Width(); x++ {
			c.SetContent(x, y, ' ', nil, tcell.StyleDefault)
		}
	}
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			p := model.Position{X: x, Y: y}
			sx, sy := 2*x+1, 2*y+1
			if g.IsBorder(p) {
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						c.SetContent(sx+dx, sy+dy, '█', nil, borderStyle)
					}
				}
				continue
			}
			r, comb, style := v.cellRune(p)
			c.SetContent(sx, sy, r, comb, style)
			if g.HasWall(p, model.Up) {
				c.SetContent(sx, sy-1, '─', nil, wallStyle)
			}
			if g.HasWall(p, model.Down) {
				c.SetContent(sx, sy+1, '─', nil, wallStyle)
			}
			if g.HasWall(p, model.Left) {
				c.SetContent(sx-1, sy, '│', nil, wallStyle)
			}
			if g.HasWall(p, model.Right) {
				c.SetContent(sx+1, sy, '│', nil, wallStyle)
			}
		}
	}
	// corners
	for y := 0; y <= g.Height(); y++ {
		for x := 0; x <= g.Width(); x++ {
			if v.cornerUsed(x, y) {
				c.SetContent(2*x, 2*y, '┼', nil, wallStyle)
			}
		}
	}
}

// cornerUsed reports whether any wall meets the lattice point left-above
// cell (x,y).
func (v *view) cornerUsed(x, y int) bool {
	g := v.res.Grid
	up := model.Position{X: x, Y: y - 1}
	left := model.Position{X: x - 1, Y: y}
	here := model.Position{X: x, Y: y}
	return (g.IsValid(here) && (g.HasWall(here, model.Up) || g.HasWall(here, model.Left))) ||
		(g.IsValid(up) && g.HasWall(up, model.Left)) ||
		(g.IsValid(left) && g.HasWall(left, model.Up))
}

func (v *view) cellRune(p model.Position) (rune, []rune, tcell.Style) {
	if p == v.res.Treasure {
		return '$', nil, treasureStyle
	}
	for i, s := range v.res.Starts {
		if p == s {
			return rune('1' + i), nil, tcell.StyleDefault.Foreground(playerColors[i]).Bold(true)
		}
	}
	for i, set := range v.sets {
		if set.Has(p) {
			return '·', nil, tcell.StyleDefault.Foreground(playerColors[i])
		}
	}
	return ' ', nil, tcell.StyleDefault
}
