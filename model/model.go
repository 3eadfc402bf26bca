package model

import "fmt"

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) Equals(o Position) bool {
	return p.X == o.X && p.Y == o.Y
}

// Step returns the neighbouring position one cell away in direction d.
func (p Position) Step(d Direction) Position {
	m := directionMovements[d]
	return Position{X: p.X + m.X, Y: p.Y + m.Y}
}

// StepN is Step repeated n times.
func (p Position) StepN(d Direction, n int) Position {
	m := directionMovements[d]
	return Position{X: p.X + n*m.X, Y: p.Y + n*m.Y}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

type Direction int

const (
	Up Direction = iota
	Right
	Down
	Left
)

var Directions = [4]Direction{Up, Right, Down, Left}

var directionMovements = [4]Position{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

func (d Direction) Opposite() Direction {
	return (d + 2) % 4
}

// Wall is the wall bit blocking direction d.
func (d Direction) Wall() WallMask {
	return 1 << uint(d)
}

// WallMask has one bit per blocked side plus WallBorder for cells that
// belong to the permanent frame.
type WallMask uint8

const (
	WallUp WallMask = 1 << iota
	WallRight
	WallDown
	WallLeft
	WallBorder

	WallAllSides = WallUp | WallRight | WallDown | WallLeft
)

// Sides strips the border flag.
func (m WallMask) Sides() WallMask {
	return m & WallAllSides
}

func (m WallMask) Has(w WallMask) bool {
	return m&w == w
}

const (
	BlackTileIndex       = 5
	TransparentTileIndex = 6
	WallTileStartIndex   = 7
	DarkenTileOffset     = 20
)

// TileIndexForMask maps a wall mask to the renderer tile sheet.
func TileIndexForMask(m WallMask) int {
	if m.Has(WallBorder) {
		return BlackTileIndex
	}
	return WallTileStartIndex + int(m.Sides())
}

type Cell struct {
	Walls     WallMask
	TileIndex int
}

func (c Cell) IsBorder() bool {
	return c.Walls.Has(WallBorder)
}

// IsClosed reports a cell with all four sides walled.
func (c Cell) IsClosed() bool {
	return c.Walls.Sides() == WallAllSides
}

// Grid is a width x height board of cells stored row by row.
type Grid struct {
	width, height int
	cells         []Cell
}
