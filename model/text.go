package model

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Text layout, one character per cell and one per wall:
//
//	even lines: cell ('#' border, '.' board) followed by '|' (wall) or ' '
//	odd lines:  '-' (wall below the cell) or ' ', separated by ' '
//
// Outer sides are always walls and are not written.

func FormatGrid(g *Grid) string {
	var b strings.Builder
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			p := Position{X: x, Y: y}
			if g.IsBorder(p) {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
			if x < g.width-1 {
				if g.HasWall(p, Right) {
					b.WriteByte('|')
				} else {
					b.WriteByte(' ')
				}
			}
		}
		b.WriteByte('\n')
		if y == g.height-1 {
			break
		}
		for x := 0; x < g.width; x++ {
			if g.HasWall(Position{X: x, Y: y}, Down) {
				b.WriteByte('-')
			} else {
				b.WriteByte(' ')
			}
			if x < g.width-1 {
				b.WriteByte(' ')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func ParseGrid(reader io.Reader) (*Grid, error) {
	scanner := bufio.NewScanner(reader)
	scanner.Split(bufio.ScanLines)
	lines := make([]string, 0)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("empty grid")
	}
	height := (len(lines) + 1) / 2
	width := (len(lines[0]) + 1) / 2
	g := NewGrid(width, height)

	for row, s := range lines {
		y := row / 2
		if row%2 == 0 {
			// real line
			if (len(s)+1)/2 != width {
				return nil, fmt.Errorf("line %d: expected %d cells, got %d", row+1, width, (len(s)+1)/2)
			}
			for i, char := range s {
				x := i / 2
				p := Position{X: x, Y: y}
				if i%2 == 0 {
					border := char == '#'
					if border != g.IsBorder(p) {
						return nil, fmt.Errorf("line %d: border mismatch at %v", row+1, p)
					}
					continue
				}
				switch char {
				case ' ':
					g.RemoveWall(p, Right)
				case '|':
				default:
					return nil, fmt.Errorf("line %d: unexpected %q", row+1, char)
				}
			}
			continue
		}
		// bottom wall
		for i, char := range s {
			if i%2 != 0 {
				continue
			}
			p := Position{X: i / 2, Y: y}
			if !g.InBounds(p) {
				return nil, fmt.Errorf("line %d: too long", row+1)
			}
			switch char {
			case ' ':
				g.RemoveWall(p, Down)
			case '-':
			default:
				return nil, fmt.Errorf("line %d: unexpected %q", row+1, char)
			}
		}
	}
	g.CalculateTileIndices()
	return g, nil
}
