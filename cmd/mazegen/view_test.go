package main

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zucenko/tablemaze/maze"
	"github.com/zucenko/tablemaze/model"
)

type fakeCanvas map[model.Position]rune

func (c fakeCanvas) SetContent(x, y int, r rune, _ []rune, _ tcell.Style) {
	c[model.Position{X: x, Y: y}] = r
}

func generate(t *testing.T) *maze.Result {
	res, err := maze.Generate(maze.Config{Width: 8, Height: 8, Granularity: 2, Players: 2, Seed: 5})
	require.NoError(t, err)
	return res
}

func TestViewDrawsStartsTreasureAndBorder(t *testing.T) {
	res := generate(t)
	v := newView(res, 1)
	c := fakeCanvas{}
	v.draw(c)

	at := func(p model.Position) rune { return c[model.Position{X: 2*p.X + 1, Y: 2*p.Y + 1}] }
	assert.Equal(t, '1', at(res.Starts[0]))
	assert.Equal(t, '2', at(res.Starts[1]))
	assert.Equal(t, '$', at(res.Treasure))
	assert.Equal(t, '█', at(model.Position{X: 0, Y: 0}))
	assert.Equal(t, '█', at(model.Position{X: 7, Y: 7}))
}

func TestViewReachMarksCells(t *testing.T) {
	res := generate(t)
	v := newView(res, 0)
	for _, s := range v.sets {
		assert.Equal(t, 1, s.Len())
	}

	v.setReach(3)
	assert.Equal(t, 3, v.reach)
	marked := 0
	for y := 0; y < res.Grid.Height(); y++ {
		for x := 0; x < res.Grid.Width(); x++ {
			if r, _, _ := v.cellRune(model.Position{X: x, Y: y}); r == '·' {
				marked++
			}
		}
	}
	assert.Greater(t, marked, 0)

	v.setReach(-4)
	assert.Equal(t, 0, v.reach)
}
