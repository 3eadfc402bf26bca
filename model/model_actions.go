package model

import "fmt"

// NewGrid returns a fully walled grid. The 2x2 block in each corner is
// marked as border and never takes part in the maze.
func NewGrid(width, height int) *Grid {
	g := &Grid{
		width:  width,
		height: height,
		cells:  make([]Cell, width*height),
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			walls := WallAllSides
			if g.isCornerBlock(x, y) {
				walls |= WallBorder
			}
			g.cells[y*width+x] = Cell{Walls: walls, TileIndex: TransparentTileIndex}
		}
	}
	return g
}

func (g *Grid) isCornerBlock(x, y int) bool {
	left, top := x <= 1, y <= 1
	right, bottom := x >= g.width-2, y >= g.height-2
	return (left || right) && (top || bottom)
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

func (g *Grid) InBounds(p Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < g.width && p.Y < g.height
}

func (g *Grid) IsBorder(p Position) bool {
	return g.InBounds(p) && g.cells[g.index(p)].IsBorder()
}

// IsValid reports whether p is on the board and not part of the border.
func (g *Grid) IsValid(p Position) bool {
	return g.InBounds(p) && !g.cells[g.index(p)].IsBorder()
}

func (g *Grid) index(p Position) int {
	return p.Y*g.width + p.X
}

// Index returns the row-major offset of p, used by callers keeping
// per-cell side tables.
func (g *Grid) Index(p Position) int {
	return g.index(p)
}

func (g *Grid) Cell(p Position) Cell {
	return g.cells[g.index(p)]
}

// WallMask returns the full mask for (x,y), border flag included.
// Out of bounds coordinates read as a closed border cell.
func (g *Grid) WallMask(x, y int) WallMask {
	p := Position{X: x, Y: y}
	if !g.InBounds(p) {
		return WallAllSides | WallBorder
	}
	return g.cells[g.index(p)].Walls
}

func (g *Grid) TileIndex(x, y int) int {
	p := Position{X: x, Y: y}
	if !g.InBounds(p) {
		return BlackTileIndex
	}
	return g.cells[g.index(p)].TileIndex
}

func (g *Grid) SetWalls(p Position, walls WallMask) {
	g.cells[g.index(p)].Walls = walls
}

func (g *Grid) HasWall(p Position, d Direction) bool {
	return g.cells[g.index(p)].Walls.Has(d.Wall())
}

// IsOpen reports whether a move from p one step in direction d is allowed.
func (g *Grid) IsOpen(p Position, d Direction) bool {
	if !g.IsValid(p) {
		return false
	}
	n := p.Step(d)
	if !g.IsValid(n) {
		return false
	}
	return !g.HasWall(p, d) && !g.HasWall(n, d.Opposite())
}

// RemoveWall clears the wall between p and its neighbour in direction d on
// both sides.
func (g *Grid) RemoveWall(p Position, d Direction) {
	n := p.Step(d)
	if !g.IsValid(p) || !g.IsValid(n) {
		return
	}
	g.cells[g.index(p)].Walls &^= d.Wall()
	g.cells[g.index(n)].Walls &^= d.Opposite().Wall()
}

// CalculateTileIndices derives every tile index from its wall mask.
func (g *Grid) CalculateTileIndices() {
	for i := range g.cells {
		g.cells[i].TileIndex = TileIndexForMask(g.cells[i].Walls)
	}
}

// CheckSymmetry returns an error naming the first pair of adjacent playable
// cells that disagree about the wall between them.
func (g *Grid) CheckSymmetry() error {
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			p := Position{X: x, Y: y}
			if !g.IsValid(p) {
				continue
			}
			for _, d := range [2]Direction{Right, Down} {
				n := p.Step(d)
				if !g.IsValid(n) {
					continue
				}
				if g.HasWall(p, d) != g.HasWall(n, d.Opposite()) {
					return fmt.Errorf("asymmetric wall between %v and %v", p, n)
				}
			}
		}
	}
	return nil
}

// Masks copies the wall masks row by row.
func (g *Grid) Masks() []WallMask {
	masks := make([]WallMask, len(g.cells))
	for i, c := range g.cells {
		masks[i] = c.Walls
	}
	return masks
}

func (g *Grid) TileIndices() []int {
	tiles := make([]int, len(g.cells))
	for i, c := range g.cells {
		tiles[i] = c.TileIndex
	}
	return tiles
}
