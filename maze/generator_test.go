package maze

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zucenko/tablemaze/model"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"default", DefaultConfig(), true},
		{"small", Config{Width: 8, Height: 8, Granularity: 2, Players: 2}, true},
		{"odd width", Config{Width: 30, Height: 20, Granularity: 2, Players: 4}, false},
		{"too small", Config{Width: 4, Height: 4, Granularity: 2, Players: 1}, false},
		{"zero granularity", Config{Width: 8, Height: 8, Players: 1}, false},
		{"no players", Config{Width: 8, Height: 8, Granularity: 2}, false},
		{"too many players", Config{Width: 8, Height: 8, Granularity: 2, Players: 5}, false},
		{"negative retries", Config{Width: 8, Height: 8, Granularity: 2, Players: 1, MaxRetries: -1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrConfiguration)
			}
		})
	}
}

func TestGenerateRejectsBadConfig(t *testing.T) {
	_, err := Generate(Config{Width: 10, Height: 8, Granularity: 2, Players: 2})
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestStartPositions(t *testing.T) {
	assert.Equal(t, []model.Position{{X: 16, Y: 0}}, StartPositions(32, 20, 1))
	assert.Equal(t, []model.Position{{X: 16, Y: 0}, {X: 16, Y: 19}}, StartPositions(32, 20, 2))
	assert.Equal(t, []model.Position{
		{X: 16, Y: 0}, {X: 31, Y: 10}, {X: 16, Y: 19}, {X: 0, Y: 10},
	}, StartPositions(32, 20, 4))
}

func TestGenerateProducesConnectedSymmetricMaze(t *testing.T) {
	for _, seed := range []int64{1, 2, 3, 42, 1234} {
		cfg := DefaultConfig()
		cfg.Seed = seed
		res, err := Generate(cfg)
		require.NoError(t, err, "seed %d", seed)

		grid := res.Grid
		require.NoError(t, grid.CheckSymmetry())
		require.Len(t, res.Starts, cfg.Players)

		for _, s := range res.Starts {
			assert.False(t, s.Equals(res.Treasure))
			assert.True(t, Connected(grid, s, res.Treasure), "seed %d start %v", seed, s)
		}

		// every carved cell belongs to one component
		all := Reachable(grid, res.Starts[0], -1)
		for y := 0; y < grid.Height(); y++ {
			for x := 0; x < grid.Width(); x++ {
				p := model.Position{X: x, Y: y}
				if !grid.IsValid(p) || grid.Cell(p).IsClosed() {
					continue
				}
				assert.True(t, all.Has(p), "seed %d cell %v is cut off", seed, p)
			}
		}

		// every lattice node was reached by the growth
		for y := 0; y < grid.Height(); y += cfg.Granularity {
			for x := 0; x < grid.Width(); x += cfg.Granularity {
				p := model.Position{X: x, Y: y}
				if grid.IsValid(p) {
					assert.False(t, grid.Cell(p).IsClosed(), "seed %d node %v closed", seed, p)
				}
			}
		}
	}
}

func TestGenerateIsDeterministicForSeed(t *testing.T) {
	cfg := Config{Width: 16, Height: 12, Granularity: 2, Players: 3, Seed: 7}
	a, err := Generate(cfg)
	require.NoError(t, err)
	b, err := Generate(cfg)
	require.NoError(t, err)

	assert.Equal(t, a.Grid.Masks(), b.Grid.Masks())
	assert.Equal(t, a.Treasure, b.Treasure)
}

func TestGenerateKeepsBorderAndTiles(t *testing.T) {
	res, err := Generate(Config{Width: 8, Height: 8, Granularity: 2, Players: 2, Seed: 99})
	require.NoError(t, err)

	grid := res.Grid
	for _, p := range []model.Position{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 7, Y: 0}, {X: 6, Y: 7}, {X: 0, Y: 6}} {
		assert.True(t, grid.IsBorder(p), "%v", p)
		assert.Equal(t, model.BlackTileIndex, grid.TileIndex(p.X, p.Y))
	}
	p := res.Treasure
	assert.Equal(t, model.TileIndexForMask(grid.WallMask(p.X, p.Y)), grid.TileIndex(p.X, p.Y))
}

func TestDigStopsAtOpenCell(t *testing.T) {
	grid := model.NewGrid(8, 8)
	grid.RemoveWall(model.Position{X: 4, Y: 3}, model.Right)

	Dig(grid, model.Position{X: 4, Y: 0}, model.Down)

	assert.True(t, grid.IsOpen(model.Position{X: 4, Y: 0}, model.Down))
	assert.True(t, grid.IsOpen(model.Position{X: 4, Y: 1}, model.Down))
	assert.True(t, grid.IsOpen(model.Position{X: 4, Y: 2}, model.Down))
	assert.False(t, grid.IsOpen(model.Position{X: 4, Y: 3}, model.Down))
}

func TestDigLeavesOpenEntryAlone(t *testing.T) {
	grid := model.NewGrid(8, 8)
	grid.RemoveWall(model.Position{X: 4, Y: 0}, model.Right)
	before := grid.Masks()

	Dig(grid, model.Position{X: 4, Y: 0}, model.Down)

	assert.Equal(t, before, grid.Masks())
}

func TestSmoothRepairsOneSidedWall(t *testing.T) {
	grid := model.NewGrid(8, 8)
	p := model.Position{X: 3, Y: 3}
	grid.SetWalls(p, grid.Cell(p).Walls&^model.WallRight)
	require.Error(t, grid.CheckSymmetry())

	Smooth(grid)

	require.NoError(t, grid.CheckSymmetry())
	assert.True(t, grid.IsOpen(p, model.Right))
}

func TestFormatGeneratedGrid(t *testing.T) {
	res, err := Generate(Config{Width: 8, Height: 8, Granularity: 2, Players: 2, Seed: 5})
	require.NoError(t, err)

	parsed, err := model.ParseGrid(strings.NewReader(model.FormatGrid(res.Grid)))
	require.NoError(t, err)
	assert.Equal(t, res.Grid.Masks(), parsed.Masks())
}
