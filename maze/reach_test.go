package maze

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zucenko/tablemaze/model"
)

// 8x8 board with a ten cell loop in the top half.
const loop = "" +
	"#|#|.|.|.|.|#|#\n" +
	"- - - - - - - -\n" +
	"#|#|. . . .|#|#\n" +
	"- -   - -   - -\n" +
	".|.|.|.|.|.|.|.\n" +
	"- -   - -   - -\n" +
	".|.|. . . .|.|.\n" +
	"- - - - - - - -\n" +
	".|.|.|.|.|.|.|.\n" +
	"- - - - - - - -\n" +
	".|.|.|.|.|.|.|.\n" +
	"- - - - - - - -\n" +
	"#|#|.|.|.|.|#|#\n" +
	"- - - - - - - -\n" +
	"#|#|.|.|.|.|#|#\n"

func loopGrid(t *testing.T) *model.Grid {
	g, err := model.ParseGrid(strings.NewReader(loop))
	require.NoError(t, err)
	require.NoError(t, g.CheckSymmetry())
	return g
}

func TestReachableZeroIsStart(t *testing.T) {
	g := loopGrid(t)
	start := model.Position{X: 2, Y: 1}

	r := Reachable(g, start, 0)
	assert.Equal(t, []model.Position{start}, r.Positions())
}

func TestReachableBoundIsInclusive(t *testing.T) {
	g := loopGrid(t)
	start := model.Position{X: 2, Y: 1}

	r := Reachable(g, start, 1)
	assert.Equal(t, 3, r.Len())
	assert.True(t, r.Has(model.Position{X: 3, Y: 1}))
	assert.True(t, r.Has(model.Position{X: 2, Y: 2}))
	assert.False(t, r.Has(model.Position{X: 4, Y: 1}))

	r = Reachable(g, start, 2)
	assert.True(t, r.Has(model.Position{X: 4, Y: 1}))
	assert.True(t, r.Has(model.Position{X: 2, Y: 3}))
	assert.False(t, r.Has(model.Position{X: 5, Y: 1}))
}

func TestReachableIsMonotonic(t *testing.T) {
	g := loopGrid(t)
	start := model.Position{X: 2, Y: 1}

	prev := Reachable(g, start, 0)
	for d := 1; d <= 10; d++ {
		next := Reachable(g, start, d)
		assert.True(t, prev.IsSubsetOf(next), "distance %d", d)
		prev = next
	}
	// the loop has ten cells and stabilizes
	assert.Equal(t, 10, prev.Len())
	assert.Equal(t, prev.Positions(), Reachable(g, start, -1).Positions())
}

func TestReachableDoesNotCrossWalls(t *testing.T) {
	g := loopGrid(t)

	r := Reachable(g, model.Position{X: 2, Y: 4}, 10)
	assert.Equal(t, 1, r.Len())
	assert.False(t, Connected(g, model.Position{X: 2, Y: 1}, model.Position{X: 2, Y: 4}))
	assert.True(t, Connected(g, model.Position{X: 2, Y: 1}, model.Position{X: 5, Y: 3}))
}

func TestReachableInvalidStart(t *testing.T) {
	g := loopGrid(t)

	assert.Equal(t, 0, Reachable(g, model.Position{X: 0, Y: 0}, 3).Len())
	assert.Equal(t, 0, Reachable(g, model.Position{X: -1, Y: 3}, 3).Len())
}

func TestReachableDiscoveryOrder(t *testing.T) {
	g := loopGrid(t)

	got := Reachable(g, model.Position{X: 2, Y: 1}, 1).Positions()
	require.Len(t, got, 3)
	assert.Equal(t, model.Position{X: 2, Y: 1}, got[0])
	// Right is explored before Down
	assert.Equal(t, model.Position{X: 3, Y: 1}, got[1])
	assert.Equal(t, model.Position{X: 2, Y: 2}, got[2])
}

func TestReachExcluding(t *testing.T) {
	g := loopGrid(t)
	start := model.Position{X: 2, Y: 1}

	r := Reachable(g, start, 2).Excluding(start, model.Position{X: 3, Y: 1})
	assert.False(t, r.Has(start))
	assert.False(t, r.Has(model.Position{X: 3, Y: 1}))
	assert.True(t, r.Has(model.Position{X: 4, Y: 1}))
	assert.Equal(t, r.Len(), len(r.Positions()))
}
