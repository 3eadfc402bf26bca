// Package maze builds connected mazes on a model.Grid and answers bounded
// reachability queries over them.
package maze

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/zucenko/tablemaze/model"
)

const (
	DefaultWidth       = 32
	DefaultHeight      = 20
	DefaultGranularity = 2
	DefaultPlayers     = 4
	DefaultMaxRetries  = 10

	MaxPlayers = 4
)

var (
	ErrConfiguration = errors.New("maze configuration error")

	errUnreachable = errors.New("treasure unreachable")
)

type Config struct {
	Width, Height int

	// Granularity is the lattice step of the frontier growth. Cells off the
	// lattice are corridor or solid filler.
	Granularity int
	Players     int

	Seed       int64 // Optional (0 = Random)
	MaxRetries int   // Optional (0 = DefaultMaxRetries)
}

func DefaultConfig() Config {
	return Config{
		Width:       DefaultWidth,
		Height:      DefaultHeight,
		Granularity: DefaultGranularity,
		Players:     DefaultPlayers,
	}
}

// Validate checks that the board leaves room for the corner frame and that
// every entry point lands on the granularity lattice.
func (c Config) Validate() error {
	if c.Granularity < 1 {
		return fmt.Errorf("%w: granularity %d", ErrConfiguration, c.Granularity)
	}
	step := 2 * c.Granularity
	if c.Width%step != 0 || c.Height%step != 0 {
		return fmt.Errorf("%w: %dx%d is not a multiple of %d", ErrConfiguration, c.Width, c.Height, step)
	}
	if c.Width < 4*c.Granularity || c.Height < 4*c.Granularity {
		return fmt.Errorf("%w: %dx%d is smaller than %d", ErrConfiguration, c.Width, c.Height, 4*c.Granularity)
	}
	if c.Players < 1 || c.Players > MaxPlayers {
		return fmt.Errorf("%w: %d players, expected 1..%d", ErrConfiguration, c.Players, MaxPlayers)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("%w: max retries %d", ErrConfiguration, c.MaxRetries)
	}
	return nil
}

type Result struct {
	Grid     *model.Grid
	Treasure model.Position
	Starts   []model.Position
	Attempts int
}

// Entry is a border cell players start from and the direction leading into
// the maze body.
type Entry struct {
	Position  model.Position
	Direction model.Direction
}

// EntryPoints returns the four edge midpoints: top, right, bottom, left.
func EntryPoints(width, height int) [4]Entry {
	return [4]Entry{
		{Position: model.Position{X: width / 2, Y: 0}, Direction: model.Down},
		{Position: model.Position{X: width - 1, Y: height / 2}, Direction: model.Left},
		{Position: model.Position{X: width / 2, Y: height - 1}, Direction: model.Up},
		{Position: model.Position{X: 0, Y: height / 2}, Direction: model.Right},
	}
}

// entry indices handed to players, keeping two players on opposite sides
var startOrder = [MaxPlayers + 1][]int{
	1: {0},
	2: {0, 2},
	3: {0, 1, 2},
	4: {0, 1, 2, 3},
}

// StartPositions returns the entry cells assigned to players 0..players-1.
func StartPositions(width, height, players int) []model.Position {
	entries := EntryPoints(width, height)
	starts := make([]model.Position, 0, players)
	for _, i := range startOrder[players] {
		starts = append(starts, entries[i].Position)
	}
	return starts
}

type Generator struct {
	cfg Config
	rng *rand.Rand
}

func NewGenerator(cfg Config) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(seed))}, nil
}

// Generate is a one shot NewGenerator(cfg).Generate().
func Generate(cfg Config) (*Result, error) {
	gen, err := NewGenerator(cfg)
	if err != nil {
		return nil, err
	}
	return gen.Generate()
}

// Generate builds mazes until one connects every start with the treasure,
// giving up with ErrConfiguration after MaxRetries attempts.
func (gen *Generator) Generate() (*Result, error) {
	var lastErr error
	for attempt := 1; attempt <= gen.cfg.MaxRetries; attempt++ {
		res, err := gen.attempt()
		if err == nil {
			res.Attempts = attempt
			return res, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w: no connected maze after %d attempts: %v", ErrConfiguration, gen.cfg.MaxRetries, lastErr)
}

func (gen *Generator) attempt() (*Result, error) {
	w, h := gen.cfg.Width, gen.cfg.Height
	grid := model.NewGrid(w, h)

	gen.grow(grid)
	for _, e := range EntryPoints(w, h) {
		Dig(grid, e.Position, e.Direction)
	}
	Smooth(grid)
	grid.CalculateTileIndices()

	if err := grid.CheckSymmetry(); err != nil {
		return nil, err
	}

	starts := StartPositions(w, h, gen.cfg.Players)
	treasure, ok := gen.placeTreasure(grid, starts)
	if !ok {
		return nil, errUnreachable
	}
	for _, s := range starts {
		if !Connected(grid, s, treasure) {
			return nil, fmt.Errorf("%w from %v", errUnreachable, s)
		}
	}
	return &Result{Grid: grid, Treasure: treasure, Starts: starts}, nil
}

type wall struct {
	from, to model.Position
	dir      model.Direction
}

// grow runs randomized frontier growth over the granularity lattice. A
// frontier wall is carved only when exactly one of its ends already belongs
// to the maze, which keeps the lattice a spanning tree.
func (gen *Generator) grow(grid *model.Grid) {
	step := gen.cfg.Granularity
	inMaze := make([]bool, grid.Width()*grid.Height())

	seed := model.Position{X: grid.Width() / 2, Y: grid.Height() / 2}
	seed = model.Position{X: seed.X - seed.X%step, Y: seed.Y - seed.Y%step}

	frontier := make([]wall, 0)
	add := func(p model.Position) {
		inMaze[grid.Index(p)] = true
		for _, d := range model.Directions {
			n := p.StepN(d, step)
			if grid.IsValid(n) {
				frontier = append(frontier, wall{from: p, to: n, dir: d})
			}
		}
	}
	add(seed)

	for len(frontier) > 0 {
		i := gen.rng.Intn(len(frontier))
		w := frontier[i]
		frontier[i] = frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]

		a, b := inMaze[grid.Index(w.from)], inMaze[grid.Index(w.to)]
		if a == b {
			continue
		}
		carve(grid, w.from, w.dir, step)
		if a {
			add(w.to)
		} else {
			add(w.from)
		}
	}
}

// carve opens the straight corridor of length step starting at p.
func carve(grid *model.Grid, p model.Position, d model.Direction, step int) {
	for i := 0; i < step; i++ {
		grid.RemoveWall(p, d)
		p = p.Step(d)
	}
}

// Dig opens a straight corridor from an entry cell in direction d until it
// breaks into a cell that was already open. An entry that is already open
// is left alone.
func Dig(grid *model.Grid, from model.Position, d model.Direction) {
	pos := from
	if !grid.IsValid(pos) || !grid.Cell(pos).IsClosed() {
		return
	}
	for {
		next := pos.Step(d)
		if !grid.IsValid(next) {
			return
		}
		wasOpen := !grid.Cell(next).IsClosed()
		grid.RemoveWall(pos, d)
		pos = next
		if wasOpen {
			return
		}
	}
}

// Smooth clears any wall bit whose facing neighbour reports an opening, so
// that every remaining wall is seen from both sides.
func Smooth(grid *model.Grid) {
	for y := 0; y < grid.Height(); y++ {
		for x := 0; x < grid.Width(); x++ {
			p := model.Position{X: x, Y: y}
			if !grid.IsValid(p) {
				continue
			}
			walls := grid.Cell(p).Walls
			for _, d := range model.Directions {
				n := p.Step(d)
				if !grid.IsValid(n) {
					continue
				}
				if !grid.HasWall(n, d.Opposite()) {
					walls &^= d.Wall()
				}
			}
			grid.SetWalls(p, walls)
		}
	}
}

// placeTreasure picks a random open lattice cell that no player starts on.
func (gen *Generator) placeTreasure(grid *model.Grid, starts []model.Position) (model.Position, bool) {
	step := gen.cfg.Granularity
	candidates := make([]model.Position, 0)
	for y := 0; y < grid.Height(); y += step {
		for x := 0; x < grid.Width(); x += step {
			p := model.Position{X: x, Y: y}
			if !grid.IsValid(p) || grid.Cell(p).IsClosed() || isStart(p, starts) {
				continue
			}
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return model.Position{}, false
	}
	return candidates[gen.rng.Intn(len(candidates))], true
}

func isStart(p model.Position, starts []model.Position) bool {
	for _, s := range starts {
		if s.Equals(p) {
			return true
		}
	}
	return false
}
