package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGridMarksCornerBlocks(t *testing.T) {
	g := NewGrid(8, 6)

	for _, p := range []Position{{0, 0}, {1, 1}, {7, 0}, {6, 1}, {0, 5}, {1, 4}, {7, 5}, {6, 4}} {
		assert.True(t, g.IsBorder(p), "expected border at %v", p)
		assert.False(t, g.IsValid(p))
	}
	for _, p := range []Position{{2, 0}, {4, 0}, {0, 2}, {7, 3}, {3, 3}} {
		assert.False(t, g.IsBorder(p), "unexpected border at %v", p)
		assert.True(t, g.Cell(p).IsClosed())
	}
	assert.False(t, g.IsValid(Position{-1, 2}))
	assert.False(t, g.IsValid(Position{8, 2}))
}

func TestRemoveWallIsSymmetric(t *testing.T) {
	g := NewGrid(8, 8)
	p := Position{3, 3}

	g.RemoveWall(p, Right)

	assert.False(t, g.HasWall(p, Right))
	assert.False(t, g.HasWall(Position{4, 3}, Left))
	assert.True(t, g.IsOpen(p, Right))
	assert.True(t, g.IsOpen(Position{4, 3}, Left))
	assert.False(t, g.IsOpen(p, Down))
	require.NoError(t, g.CheckSymmetry())
}

func TestRemoveWallIgnoresBorder(t *testing.T) {
	g := NewGrid(8, 8)

	g.RemoveWall(Position{2, 0}, Left)

	assert.True(t, g.HasWall(Position{2, 0}, Left))
	assert.Equal(t, WallAllSides|WallBorder, g.WallMask(1, 0))
}

func TestCheckSymmetryReportsOneSidedWall(t *testing.T) {
	g := NewGrid(8, 8)
	p := Position{2, 3}
	g.SetWalls(p, g.Cell(p).Walls&^WallDown)

	err := g.CheckSymmetry()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "(2,3)")
}

func TestTileIndexForMask(t *testing.T) {
	assert.Equal(t, WallTileStartIndex+15, TileIndexForMask(WallAllSides))
	assert.Equal(t, WallTileStartIndex, TileIndexForMask(0))
	assert.Equal(t, WallTileStartIndex+int(WallUp|WallLeft), TileIndexForMask(WallUp|WallLeft))
	assert.Equal(t, BlackTileIndex, TileIndexForMask(WallAllSides|WallBorder))
}

func TestWallMaskOutOfBounds(t *testing.T) {
	g := NewGrid(8, 8)
	assert.Equal(t, WallAllSides|WallBorder, g.WallMask(-1, 0))
	assert.Equal(t, BlackTileIndex, g.TileIndex(8, 8))
}

const corridor = "" +
	"#|#|. . .|#|#\n" +
	"- - - - - - -\n" +
	"#|#|.|.|.|#|#\n"

func TestParseGrid(t *testing.T) {
	g, err := ParseGrid(strings.NewReader(corridor))
	require.NoError(t, err)

	assert.Equal(t, 7, g.Width())
	assert.Equal(t, 2, g.Height())
	assert.True(t, g.IsOpen(Position{2, 0}, Right))
	assert.True(t, g.IsOpen(Position{3, 0}, Right))
	assert.False(t, g.IsOpen(Position{4, 0}, Right))
	assert.False(t, g.IsOpen(Position{3, 0}, Down))
	assert.Equal(t, WallTileStartIndex+int(WallUp|WallDown), g.TileIndex(3, 0))
	require.NoError(t, g.CheckSymmetry())

	assert.Equal(t, corridor, FormatGrid(g))
}

func TestParseGridRejectsBadInput(t *testing.T) {
	_, err := ParseGrid(strings.NewReader(""))
	assert.Error(t, err)

	_, err = ParseGrid(strings.NewReader(".|.|. . .|#|#\n"))
	assert.Error(t, err, "corner must be border")

	_, err = ParseGrid(strings.NewReader("#|#x. . .|#|#\n"))
	assert.Error(t, err)
}

func TestSnapshotTileAtDarkensDuringPlacement(t *testing.T) {
	g := NewGrid(8, 8)
	g.CalculateTileIndices()
	s := Snapshot{Phase: PhasePlacement, Width: 8, Height: 8, Tiles: g.TileIndices(), Walls: g.Masks()}
	pv := &PlayerView{Anchor: Position{4, 0}}

	assert.Equal(t, WallTileStartIndex+15, s.TileAt(4, 0, pv))
	assert.Equal(t, WallTileStartIndex+15+DarkenTileOffset, s.TileAt(3, 3, pv))

	s.Phase = PhasePlaying
	assert.Equal(t, WallTileStartIndex+15, s.TileAt(3, 3, pv))
	assert.Equal(t, BlackTileIndex, s.TileAt(9, 0, pv))
}

func TestNames(t *testing.T) {
	assert.Equal(t, "TURN", Turn.Name())
	assert.Equal(t, "PLAYING", PhasePlaying.Name())
	assert.Equal(t, "N/A(9)", PlayerState(9).Name())
}
